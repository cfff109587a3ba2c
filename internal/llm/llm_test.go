package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"CareerPortal_ResultsProject/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// imageServer answers the submit call with task "t1" and status calls from statuses in order,
// repeating the last one. A status of "500" answers with an HTTP error.
func imageServer(t *testing.T, statuses ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/generations":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.NotEmpty(t, body["prompt"])
			w.Write([]byte(`{"task_id":"t1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/generations/t1":
			n := int(polls.Add(1)) - 1
			if n >= len(statuses) {
				n = len(statuses) - 1
			}
			if statuses[n] == "500" {
				http.Error(w, "busy", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(statuses[n]))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &polls
}

func newTestImageClient(t *testing.T, baseURL string, maxAttempts int) (*ImageClient, *[]time.Duration) {
	t.Helper()
	c := NewImageClient(config.ImageConfig{BaseURL: baseURL, MaxAttempts: maxAttempts}, zap.NewNop())
	var waits []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c, &waits
}

func TestImageGenerateCompletesAfterPending(t *testing.T) {
	srv, polls := imageServer(t,
		`{"status":"pending"}`,
		`{"status":"processing"}`,
		`{"status":"COMPLETED","url":"https://img/a.png"}`,
	)
	c, waits := newTestImageClient(t, srv.URL, 60)

	res, err := c.Generate(context.Background(), "an office with plants")
	require.NoError(t, err)
	assert.Equal(t, ImageResult{URL: "https://img/a.png", Variants: []string{"https://img/a.png"}}, res)
	assert.EqualValues(t, 3, polls.Load())
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second}, *waits)
}

func TestImageNeverTerminalTimesOut(t *testing.T) {
	srv, polls := imageServer(t, `{"status":"queued"}`)
	c, _ := newTestImageClient(t, srv.URL, 4)

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrImageTimeout)
	assert.EqualValues(t, 4, polls.Load())
}

func TestImageTerminalFailure(t *testing.T) {
	srv, _ := imageServer(t, `{"status":"pending"}`, `{"state":"Error","error":"nsfw"}`)
	c, _ := newTestImageClient(t, srv.URL, 10)

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrImageFailed)
	assert.NotErrorIs(t, err, ErrImageTimeout)
}

func TestImageTransientErrorsUseShortRetryTwice(t *testing.T) {
	srv, _ := imageServer(t, "500", "500", "500",
		`{"status":"done","images":[{"url":"https://img/1.png"},{"url":"https://img/2.png"}]}`)
	c, waits := newTestImageClient(t, srv.URL, 10)

	res, err := c.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "https://img/1.png", res.URL)
	assert.Equal(t, []string{"https://img/1.png", "https://img/2.png"}, res.Variants)
	assert.Equal(t, []time.Duration{5 * time.Second, 2 * time.Second, 2 * time.Second, 5 * time.Second}, *waits)
}

func TestImagePollStopsOnCancel(t *testing.T) {
	srv, _ := imageServer(t, `{"status":"pending"}`)
	c := NewImageClient(config.ImageConfig{BaseURL: srv.URL, PollInterval: time.Hour, MaxAttempts: 3}, zap.NewNop())
	t.Cleanup(c.httpClient.CloseIdleConnections)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Poll(ctx, "t1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClassifyStatus(t *testing.T) {
	for status, want := range map[string]jobState{
		"completed": stateSucceeded,
		"Done":      stateSucceeded,
		"SUCCEEDED": stateSucceeded,
		"success":   stateSucceeded,
		"failed":    stateFailed,
		"ERROR":     stateFailed,
		"failure":   stateFailed,
		"queued":    statePending,
		"":          statePending,
	} {
		assert.Equal(t, want, classifyStatus(status), status)
	}
}

func TestChatComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "Portal", r.Header.Get("X-Title"))

		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test/model", req.Model)
		assert.Equal(t, 800, req.MaxTokens)
		assert.Len(t, req.Messages, 2)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"## Paths\nData analyst"}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(config.LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "test/model", SiteName: "Portal"})
	defer c.httpClient.CloseIdleConnections()

	out, err := c.Complete(context.Background(), ChatRequest{
		Messages:    []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
		Temperature: 0.7,
		MaxTokens:   800,
	})
	require.NoError(t, err)
	assert.Equal(t, "## Paths\nData analyst", out)
}

func TestChatCompleteErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "empty") {
			w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewChatClient(config.LLMConfig{APIKey: "sk", BaseURL: srv.URL})
	defer c.httpClient.CloseIdleConnections()
	_, err := c.Complete(context.Background(), ChatRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")

	c = NewChatClient(config.LLMConfig{APIKey: "empty", BaseURL: srv.URL})
	defer c.httpClient.CloseIdleConnections()
	_, err = c.Complete(context.Background(), ChatRequest{})
	assert.ErrorIs(t, err, ErrEmptyCompletion)

	_, err = NewChatClient(config.LLMConfig{}).Complete(context.Background(), ChatRequest{})
	assert.Error(t, err)
}

func TestNarrationText(t *testing.T) {
	assert.Equal(t, "Strengths\nYou are curious.", NarrationText("## Strengths\n**You** are curious."))

	long := strings.Repeat("Sentence one is here. ", 400)
	out := NarrationText(long)
	assert.LessOrEqual(t, len(out), maxNarrationBytes)
	assert.True(t, strings.HasSuffix(out, "."))
}

func TestNarrationTextInvalidBytes(t *testing.T) {
	assert.Equal(t, "Hello world", NarrationText("Hello\xff world"))

	// one stray byte near the start must not empty the whole text
	long := "\xffIntro. " + strings.Repeat("Évaluation terminée. ", 400)
	out := NarrationText(long)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), maxNarrationBytes)
	assert.Greater(t, len(out), maxNarrationBytes/2)
	assert.True(t, strings.HasPrefix(out, "Intro."))

	// a cut inside a multi-byte rune backs off to the rune start
	out = NarrationText(strings.Repeat("é", maxNarrationBytes))
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, maxNarrationBytes, len(out))
}
