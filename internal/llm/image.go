package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CareerPortal_ResultsProject/internal/config"
	"CareerPortal_ResultsProject/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrImageTimeout = errors.New("image generation timed out")
	ErrImageFailed  = errors.New("image generation failed")
)

// transient status errors retried on the short interval
const fastRetries = 2

type jobState int

const (
	statePending jobState = iota
	stateSucceeded
	stateFailed
)

func (s jobState) String() string {
	switch s {
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	default:
		return "pending"
	}
}

// classifyStatus maps a provider status string; unknown values count as pending.
func classifyStatus(status string) jobState {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "completed", "done", "succeeded", "success":
		return stateSucceeded
	case "failed", "error", "failure":
		return stateFailed
	default:
		return statePending
	}
}

// ImageResult always carries the primary URL and at least that URL as a variant.
type ImageResult struct {
	URL      string   `json:"url"`
	Variants []string `json:"variants"`
}

// imageRef accepts either a bare URL or an object with a url field.
type imageRef string

func (r *imageRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = imageRef(s)
		return nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = imageRef(obj.URL)
	return nil
}

type submitResponse struct {
	ID     string `json:"id"`
	TaskID string `json:"task_id"`
	Task   string `json:"taskId"`
}

type statusResponse struct {
	Status   string     `json:"status"`
	State    string     `json:"state"`
	URL      string     `json:"url"`
	ImageURL string     `json:"image_url"`
	Images   []imageRef `json:"images"`
	Variants []imageRef `json:"variants"`
	Error    string     `json:"error"`
}

func (s statusResponse) status() string {
	if s.Status != "" {
		return s.Status
	}
	return s.State
}

func (s statusResponse) result() ImageResult {
	var variants []string
	for _, refs := range [][]imageRef{s.Variants, s.Images} {
		for _, r := range refs {
			if r != "" {
				variants = append(variants, string(r))
			}
		}
		if len(variants) > 0 {
			break
		}
	}
	primary := s.URL
	if primary == "" {
		primary = s.ImageURL
	}
	if primary == "" && len(variants) > 0 {
		primary = variants[0]
	}
	if len(variants) == 0 && primary != "" {
		variants = []string{primary}
	}
	return ImageResult{URL: primary, Variants: variants}
}

// ImageClient submits prompts to the asynchronous image API and polls the job.
type ImageClient struct {
	apiKey        string
	baseURL       string
	model         string
	httpClient    *http.Client
	pollInterval  time.Duration
	retryInterval time.Duration
	maxAttempts   int
	sleep         func(ctx context.Context, d time.Duration) error
	log           *zap.Logger
}

func NewImageClient(cfg config.ImageConfig, log *zap.Logger) *ImageClient {
	c := &ImageClient{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		model:         cfg.Model,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		pollInterval:  cfg.PollInterval,
		retryInterval: cfg.RetryInterval,
		maxAttempts:   cfg.MaxAttempts,
		sleep:         sleepContext,
		log:           log,
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 5 * time.Second
	}
	if c.retryInterval <= 0 {
		c.retryInterval = 2 * time.Second
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 60
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate submits prompt and blocks until the job finishes, fails, exhausts the attempt
// budget or ctx is done.
func (c *ImageClient) Generate(ctx context.Context, prompt string) (ImageResult, error) {
	taskID, err := c.Submit(ctx, prompt)
	if err != nil {
		return ImageResult{}, err
	}
	return c.Poll(ctx, taskID)
}

func (c *ImageClient) Submit(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]string{"model": c.model, "prompt": prompt})
	if err != nil {
		return "", err
	}
	var out submitResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/generations", body, &out); err != nil {
		return "", fmt.Errorf("Submit(): %w", err)
	}
	for _, id := range []string{out.ID, out.TaskID, out.Task} {
		if id != "" {
			return id, nil
		}
	}
	return "", errors.New("Submit(): response carried no task id")
}

func (c *ImageClient) status(ctx context.Context, taskID string) (statusResponse, error) {
	var out statusResponse
	err := c.do(ctx, http.MethodGet, c.baseURL+"/generations/"+url.PathEscape(taskID), nil, &out)
	return out, err
}

func (c *ImageClient) Poll(ctx context.Context, taskID string) (ImageResult, error) {
	transient := 0
	wait := c.pollInterval

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.sleep(ctx, wait); err != nil {
			return ImageResult{}, err
		}
		wait = c.pollInterval

		st, err := c.status(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				return ImageResult{}, ctx.Err()
			}
			transient++
			if transient <= fastRetries {
				wait = c.retryInterval
			}
			metrics.ImagePolls.WithLabelValues("error").Inc()
			c.log.Warn("ImageClient.Poll(): status request failed",
				zap.String("task_id", taskID), zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		state := classifyStatus(st.status())
		metrics.ImagePolls.WithLabelValues(state.String()).Inc()
		switch state {
		case stateSucceeded:
			res := st.result()
			if res.URL == "" {
				return ImageResult{}, fmt.Errorf("%w: task %s completed without an image url", ErrImageFailed, taskID)
			}
			return res, nil
		case stateFailed:
			return ImageResult{}, fmt.Errorf("%w: task %s reported %q %s", ErrImageFailed, taskID, st.status(), st.Error)
		}
	}
	return ImageResult{}, fmt.Errorf("%w: task %s after %d attempts", ErrImageTimeout, taskID, c.maxAttempts)
}

func (c *ImageClient) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.Unmarshal(raw, out)
}
