package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/llm"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/settings"
	"CareerPortal_ResultsProject/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChat struct {
	mu       sync.Mutex
	requests []llm.ChatRequest
	reply    string
	err      error
}

func (f *fakeChat) Complete(_ context.Context, req llm.ChatRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

type fakeImages struct {
	prompts []string
	result  llm.ImageResult
	err     error
}

func (f *fakeImages) Generate(_ context.Context, p string) (llm.ImageResult, error) {
	f.prompts = append(f.prompts, p)
	return f.result, f.err
}

type fakeNarrator struct {
	err error
}

func (f *fakeNarrator) Narrate(_ context.Context, text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fixture struct {
	portal   *Portal
	db       *storage.DB
	chat     *fakeChat
	images   *fakeImages
	narrator *fakeNarrator
	voice    *fakeTranscriber
	runtime  *settings.Runtime
	recordID string
}

func newFixture(t *testing.T, balance int) *fixture {
	t.Helper()
	db, err := storage.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	profiles := db.Profiles()
	profile := &models.UserProfile{
		Code:               "ABC123",
		PersonalityFactors: "G+6, S+4, K-2, X+9, m+3",
		Fields: map[string]string{
			models.FieldName:   "Ann",
			models.FieldJob:    "nurse",
			models.FieldSector: "education",
		},
		TokenBalance: balance,
	}
	require.NoError(t, profiles.Create(context.Background(), profile))

	catalog, err := prompt.DefaultCatalog()
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		chat:     &fakeChat{reply: "## Your paths\n1. Trainer"},
		images:   &fakeImages{result: llm.ImageResult{URL: "https://img/1.png", Variants: []string{"https://img/1.png"}}},
		narrator: &fakeNarrator{},
		voice:    &fakeTranscriber{text: "I enjoy mentoring"},
		runtime:  settings.NewRuntime(false),
		recordID: profile.ID,
	}
	l := ledger.New(profiles, nil, f.runtime, zap.NewNop())
	f.portal = NewPortal(Deps{
		Profiles:       profiles,
		Ledger:         l,
		History:        db,
		Catalog:        catalog,
		Chat:           f.chat,
		Images:         f.images,
		Transcriber:    f.voice,
		Narrator:       f.narrator,
		PlaceholderURL: "/static/placeholder.png",
		NarrationCost:  5,
		Log:            zap.NewNop(),
	})
	return f
}

func (f *fixture) balance(t *testing.T) int {
	t.Helper()
	b, err := f.portal.Balance(context.Background(), f.recordID)
	require.NoError(t, err)
	return b
}

func TestVerifyCode(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	view, err := f.portal.VerifyCode(ctx, "  ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, f.recordID, view.ID)
	assert.Equal(t, "Ann", view.Name)
	assert.Equal(t, 50, view.TokenBalance)
	require.Len(t, view.Categories.Primary, 3)
	assert.Equal(t, "G", view.Categories.Primary[0].Symbol)
	require.Len(t, view.Categories.Secondary, 1)
	assert.Contains(t, view.Explanation, "## Primary factors")

	_, err = f.portal.VerifyCode(ctx, "WRONG")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = f.portal.VerifyCode(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateTextFeature(t *testing.T) {
	f := newFixture(t, 50)
	var events []string
	res, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.CareerPaths, func(e Event) {
		events = append(events, e.Type)
	})
	require.NoError(t, err)

	assert.Equal(t, "career_paths", res.Feature)
	assert.Equal(t, "## Your paths\n1. Trainer", res.Text)
	assert.Nil(t, res.Image)
	assert.Equal(t, 40, res.Balance)
	assert.Equal(t, 10, res.Charged)
	assert.Equal(t, 40, f.balance(t))
	assert.Equal(t, []string{EventCharged, EventText, EventDone}, events)

	require.Len(t, f.chat.requests, 1)
	req := f.chat.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	user := req.Messages[1].Content
	assert.Contains(t, user, "for Ann (")
	assert.Contains(t, user, "working as nurse in education")
	assert.Contains(t, user, "- G+6:")
	assert.NotContains(t, user, "{")
	assert.Equal(t, 1800, req.MaxTokens)

	history, err := f.portal.History(context.Background(), f.recordID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.GenerationID, history[0].ID)
}

func TestGenerateImageFeature(t *testing.T) {
	f := newFixture(t, 50)
	var events []string
	res, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.WorkEnvironment, func(e Event) {
		events = append(events, e.Type)
	})
	require.NoError(t, err)

	require.NotNil(t, res.Image)
	assert.Equal(t, Image{URL: "https://img/1.png", Variants: []string{"https://img/1.png"}}, *res.Image)
	assert.Equal(t, 30, res.Balance)
	assert.Equal(t, []string{EventCharged, EventText, EventImagePending, EventImage, EventDone}, events)
	require.Len(t, f.images.prompts, 1)
	assert.Contains(t, f.images.prompts[0], "ideas and creativity, social service")
}

func TestImageFailureFallsBackToPlaceholder(t *testing.T) {
	for _, imageErr := range []error{
		fmt.Errorf("%w: task t1", llm.ErrImageTimeout),
		fmt.Errorf("%w: task t1", llm.ErrImageFailed),
		errors.New("connection refused"),
	} {
		f := newFixture(t, 50)
		f.images.err = imageErr

		res, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.FutureVision, nil)
		require.NoError(t, err)
		assert.Equal(t, "## Your paths\n1. Trainer", res.Text)
		require.NotNil(t, res.Image)
		assert.True(t, res.Image.Placeholder)
		assert.Equal(t, "/static/placeholder.png", res.Image.URL)
		assert.Equal(t, []string{"/static/placeholder.png"}, res.Image.Variants)
		assert.Equal(t, 25, f.balance(t))

		history, err := f.portal.History(context.Background(), f.recordID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].Placeholder)
	}
}

func TestGenerateWithoutImageClient(t *testing.T) {
	f := newFixture(t, 50)
	f.portal.images = nil

	res, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.WorkEnvironment, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Image)
	assert.True(t, res.Image.Placeholder)
	assert.Equal(t, "/static/placeholder.png", res.Image.URL)
	assert.Equal(t, 30, res.Balance)
	assert.Empty(t, f.images.prompts)
}

func TestGenerateInsufficientBalance(t *testing.T) {
	f := newFixture(t, 5)
	var events []Event
	_, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.CareerPaths, func(e Event) {
		events = append(events, e)
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Empty(t, f.chat.requests)
	assert.Equal(t, 5, f.balance(t))
	require.Len(t, events, 1)
	assert.Equal(t, EventError, events[0].Type)
}

func TestGenerateRefundsOnCompletionFailure(t *testing.T) {
	f := newFixture(t, 50)
	f.chat.err = errors.New("API request failed with status 502")

	_, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.DevelopmentPlan, nil)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, f.chat.err)
	assert.Contains(t, err.Error(), "502")
	assert.Equal(t, 50, f.balance(t))

	// the upstream cause stays inspectable
	f.chat.err = fmt.Errorf("post completion: %w", context.Canceled)
	_, err = f.portal.GenerateFeature(context.Background(), f.recordID, prompt.DevelopmentPlan, nil)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 50, f.balance(t))

	history, err := f.portal.History(context.Background(), f.recordID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGenerateInTestModeIsFree(t *testing.T) {
	f := newFixture(t, 0)
	f.runtime.Update(true, "test")

	res, err := f.portal.GenerateFeature(context.Background(), f.recordID, prompt.Strengths, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Charged)
	assert.Equal(t, 0, f.balance(t))
}

func TestGenerateUnknownRecord(t *testing.T) {
	f := newFixture(t, 50)
	_, err := f.portal.GenerateFeature(context.Background(), "recMissing", prompt.Strengths, nil)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProfileEntries(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	entry, additional, err := f.portal.AddEntry(ctx, f.recordID, " Skills ", "Public speaking", "")
	require.NoError(t, err)
	assert.Equal(t, models.SourceUser, entry.Source)
	assert.NotEmpty(t, entry.ID)
	require.Len(t, additional["skills"], 1)

	voice, _, err := f.portal.AddVoiceEntry(ctx, f.recordID, "goals", []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, models.SourceVoice, voice.Source)
	assert.Equal(t, "I enjoy mentoring", voice.Content)

	view, err := f.portal.Profile(ctx, f.recordID)
	require.NoError(t, err)
	assert.Len(t, view.Additional, 2)

	additional, err = f.portal.RemoveEntry(ctx, f.recordID, "skills", entry.ID)
	require.NoError(t, err)
	assert.NotContains(t, additional, "skills")

	_, err = f.portal.RemoveEntry(ctx, f.recordID, "skills", entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, _, err = f.portal.AddEntry(ctx, f.recordID, "skills", "   ", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = f.portal.AddEntry(ctx, f.recordID, "skills", "x", "robot")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, _, err = f.portal.AddEntry(ctx, f.recordID, strings.Repeat("c", 65), "x", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.voice.err = llm.ErrNoSpeech
	_, _, err = f.portal.AddVoiceEntry(ctx, f.recordID, "goals", []byte{1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentEntriesAreAllKept(t *testing.T) {
	f := newFixture(t, 50)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := f.portal.AddEntry(ctx, f.recordID, "interests", fmt.Sprintf("topic %d", i), models.SourceAI)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	view, err := f.portal.Profile(ctx, f.recordID)
	require.NoError(t, err)
	assert.Len(t, view.Additional["interests"], 10)
}

func TestNarrate(t *testing.T) {
	f := newFixture(t, 12)
	ctx := context.Background()

	audio, balance, err := f.portal.Narrate(ctx, f.recordID, prompt.Strengths, "You are curious.")
	require.NoError(t, err)
	assert.Equal(t, "mp3:You are curious.", string(audio))
	assert.Equal(t, 7, balance)

	f.narrator.err = errors.New("quota exceeded")
	_, balance, err = f.portal.Narrate(ctx, f.recordID, prompt.Strengths, "Again.")
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, f.narrator.err)
	assert.Equal(t, 7, balance)
	assert.Equal(t, 7, f.balance(t))

	_, _, err = f.portal.Narrate(ctx, f.recordID, prompt.Strengths, "## ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.narrator.err = nil
	_, _, err = f.portal.Narrate(ctx, f.recordID, prompt.Strengths, "One more.")
	require.NoError(t, err)
	_, _, err = f.portal.Narrate(ctx, f.recordID, prompt.Strengths, "Too poor now.")
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestAddTokensByCode(t *testing.T) {
	f := newFixture(t, 10)
	id, balance, err := f.portal.AddTokensByCode(context.Background(), "ABC123", 90)
	require.NoError(t, err)
	assert.Equal(t, f.recordID, id)
	assert.Equal(t, 100, balance)

	_, _, err = f.portal.AddTokensByCode(context.Background(), "NOPE", 5)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, _, err = f.portal.AddTokensByCode(context.Background(), "ABC123", 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}
