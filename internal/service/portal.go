// Package service implements the portal use cases on top of the record store, the ledger
// and the generation clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CareerPortal_ResultsProject/internal/factors"
	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/llm"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/prompt"
	"CareerPortal_ResultsProject/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrEntryNotFound = errors.New("profile entry not found")
	ErrUnavailable   = errors.New("service not configured")
	ErrGeneration    = errors.New("generation failed")
)

const (
	maxEntryLength = 2000
	maxCategoryLen = 64
)

// Ledger is the token ledger used by paid actions.
type Ledger interface {
	Balance(ctx context.Context, recordID string) (int, error)
	Deduct(ctx context.Context, recordID string, amount int) (ledger.Receipt, error)
	Add(ctx context.Context, recordID string, amount int) (int, error)
	Refund(ctx context.Context, recordID string, r ledger.Receipt) (int, error)
}

type HistoryStore interface {
	CreateGeneration(ctx context.Context, g *models.Generation) error
	GetGenerationsByRecordID(ctx context.Context, recordID string, limit int) ([]models.Generation, error)
}

type ChatCompleter interface {
	Complete(ctx context.Context, req llm.ChatRequest) (string, error)
}

type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (llm.ImageResult, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Narrator interface {
	Narrate(ctx context.Context, text string) ([]byte, error)
}

// Deps wires a Portal. Images, Transcriber and Narrator may be nil.
type Deps struct {
	Profiles       storage.ProfileStore
	Ledger         Ledger
	History        HistoryStore
	Catalog        *prompt.Catalog
	Chat           ChatCompleter
	Images         ImageGenerator
	Transcriber    Transcriber
	Narrator       Narrator
	Locker         ledger.Locker
	PlaceholderURL string
	NarrationCost  int
	Log            *zap.Logger
}

type Portal struct {
	profiles       storage.ProfileStore
	ledger         Ledger
	history        HistoryStore
	catalog        *prompt.Catalog
	chat           ChatCompleter
	images         ImageGenerator
	transcriber    Transcriber
	narrator       Narrator
	locker         ledger.Locker
	placeholderURL string
	narrationCost  int
	log            *zap.Logger
}

func NewPortal(d Deps) *Portal {
	if d.Locker == nil {
		d.Locker = ledger.NewKeyedMutex()
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Portal{
		profiles:       d.Profiles,
		ledger:         d.Ledger,
		history:        d.History,
		catalog:        d.Catalog,
		chat:           d.Chat,
		images:         d.Images,
		transcriber:    d.Transcriber,
		narrator:       d.Narrator,
		locker:         d.Locker,
		placeholderURL: d.PlaceholderURL,
		narrationCost:  d.NarrationCost,
		log:            d.Log,
	}
}

// ProfileView is what the client sees of a verified record.
type ProfileView struct {
	ID           string                   `json:"id"`
	Code         string                   `json:"code"`
	Name         string                   `json:"name"`
	Fields       map[string]string        `json:"fields"`
	TokenBalance int                      `json:"tokenBalance"`
	Additional   models.AdditionalProfile `json:"additionalProfile"`
	Categories   factors.Categories       `json:"categories"`
	Explanation  string                   `json:"explanation"`
}

func (p *Portal) view(profile *models.UserProfile) *ProfileView {
	decoded := factors.Parse(profile.PersonalityFactors)
	if len(decoded.Dropped) > 0 {
		p.log.Info("Portal.view(): unknown factor tokens dropped",
			zap.String("record_id", profile.ID), zap.Strings("dropped", decoded.Dropped))
	}
	additional := profile.Additional
	if additional == nil {
		additional = models.AdditionalProfile{}
	}
	return &ProfileView{
		ID:           profile.ID,
		Code:         profile.Code,
		Name:         profile.Field(models.FieldName),
		Fields:       profile.Fields,
		TokenBalance: profile.TokenBalance,
		Additional:   additional,
		Categories:   decoded.Categories(),
		Explanation:  decoded.Explain(),
	}
}

// VerifyCode looks up the record carrying code. One lookup, no retry.
func (p *Portal) VerifyCode(ctx context.Context, code string) (*ProfileView, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	profile, err := p.profiles.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	p.log.Info("Portal.VerifyCode(): code verified", zap.String("record_id", profile.ID))
	return p.view(profile), nil
}

func (p *Portal) Profile(ctx context.Context, recordID string) (*ProfileView, error) {
	profile, err := p.profiles.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return p.view(profile), nil
}

func normalizeCategory(category string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || len(category) > maxCategoryLen {
		return "", fmt.Errorf("%w: category must be 1-%d characters", ErrInvalidInput, maxCategoryLen)
	}
	return category, nil
}

// AddEntry appends a suggestion under category and returns the stored entry.
func (p *Portal) AddEntry(ctx context.Context, recordID, category, content, source string) (models.ProfileEntry, models.AdditionalProfile, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return models.ProfileEntry{}, nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxEntryLength {
		return models.ProfileEntry{}, nil, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, maxEntryLength)
	}
	switch source {
	case models.SourceUser, models.SourceVoice, models.SourceAI:
	case "":
		source = models.SourceUser
	default:
		return models.ProfileEntry{}, nil, fmt.Errorf("%w: unknown source %q", ErrInvalidInput, source)
	}

	entry := models.ProfileEntry{
		ID:      uuid.NewString(),
		Content: content,
		Source:  source,
		AddedAt: time.Now().UTC(),
	}

	var updated models.AdditionalProfile
	err = p.withProfile(ctx, recordID, func(profile *models.UserProfile) (*models.AdditionalProfile, error) {
		updated = profile.Additional.Add(category, entry)
		return &updated, nil
	})
	if err != nil {
		return models.ProfileEntry{}, nil, err
	}
	return entry, updated, nil
}

// AddVoiceEntry transcribes a recording and stores it as a voice entry.
func (p *Portal) AddVoiceEntry(ctx context.Context, recordID, category string, audio []byte) (models.ProfileEntry, models.AdditionalProfile, error) {
	if p.transcriber == nil {
		return models.ProfileEntry{}, nil, fmt.Errorf("%w: speech-to-text", ErrUnavailable)
	}
	if len(audio) == 0 {
		return models.ProfileEntry{}, nil, fmt.Errorf("%w: audio is required", ErrInvalidInput)
	}
	text, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		if errors.Is(err, llm.ErrNoSpeech) {
			return models.ProfileEntry{}, nil, fmt.Errorf("%w: no speech recognized", ErrInvalidInput)
		}
		return models.ProfileEntry{}, nil, err
	}
	return p.AddEntry(ctx, recordID, category, text, models.SourceVoice)
}

func (p *Portal) RemoveEntry(ctx context.Context, recordID, category, entryID string) (models.AdditionalProfile, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}
	var updated models.AdditionalProfile
	err = p.withProfile(ctx, recordID, func(profile *models.UserProfile) (*models.AdditionalProfile, error) {
		out, ok := profile.Additional.Remove(category, entryID)
		if !ok {
			return nil, ErrEntryNotFound
		}
		updated = out
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// withProfile runs a read-modify-write of the additional profile under the record lock.
func (p *Portal) withProfile(ctx context.Context, recordID string, change func(*models.UserProfile) (*models.AdditionalProfile, error)) error {
	unlock, err := p.locker.Lock(ctx, "profile:"+recordID)
	if err != nil {
		return err
	}
	defer unlock()

	profile, err := p.profiles.Get(ctx, recordID)
	if err != nil {
		return err
	}
	additional, err := change(profile)
	if err != nil {
		return err
	}
	_, err = p.profiles.Update(ctx, recordID, storage.ProfilePatch{Additional: additional})
	return err
}

func (p *Portal) History(ctx context.Context, recordID string, limit int) ([]models.Generation, error) {
	return p.history.GetGenerationsByRecordID(ctx, recordID, limit)
}

func (p *Portal) Balance(ctx context.Context, recordID string) (int, error) {
	return p.ledger.Balance(ctx, recordID)
}

func (p *Portal) DeductTokens(ctx context.Context, recordID string, amount int) (ledger.Receipt, error) {
	return p.ledger.Deduct(ctx, recordID, amount)
}

// AddTokensByCode credits the record carrying code; used by operators.
func (p *Portal) AddTokensByCode(ctx context.Context, code string, amount int) (string, int, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", 0, fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	profile, err := p.profiles.FindByCode(ctx, code)
	if err != nil {
		return "", 0, err
	}
	balance, err := p.ledger.Add(ctx, profile.ID, amount)
	if err != nil {
		return "", 0, err
	}
	p.log.Info("Portal.AddTokensByCode(): tokens added",
		zap.String("record_id", profile.ID), zap.Int("amount", amount), zap.Int("balance", balance))
	return profile.ID, balance, nil
}

// Narrate charges the narration cost and renders text as MP3. The charge is refunded when
// synthesis fails.
func (p *Portal) Narrate(ctx context.Context, recordID string, f prompt.Feature, text string) ([]byte, int, error) {
	if p.narrator == nil {
		return nil, 0, fmt.Errorf("%w: text-to-speech", ErrUnavailable)
	}
	if strings.TrimSpace(llm.NarrationText(text)) == "" {
		return nil, 0, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	var receipt ledger.Receipt
	if p.narrationCost > 0 {
		r, err := p.ledger.Deduct(ctx, recordID, p.narrationCost)
		if err != nil {
			return nil, r.Balance, err
		}
		receipt = r
	} else {
		balance, err := p.ledger.Balance(ctx, recordID)
		if err != nil {
			return nil, 0, err
		}
		receipt.Balance = balance
	}

	audio, err := p.narrator.Narrate(ctx, text)
	if err != nil {
		p.log.Error("Portal.Narrate(): synthesis failed",
			zap.String("record_id", recordID), zap.String("feature", f.String()), zap.Error(err))
		balance, refundErr := p.ledger.Refund(context.WithoutCancel(ctx), recordID, receipt)
		if refundErr != nil {
			balance = receipt.Balance
		}
		return nil, balance, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return audio, receipt.Balance, nil
}
