/**
* Name: 			tts.go
* Description: 		Google Text-to-Speech narration of generated results
* Workflow: 		create client, synthesize text, return MP3 audio
 */

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"

	"CareerPortal_ResultsProject/internal/config"
)

// maxNarrationBytes is the synthesis request limit of the API.
const maxNarrationBytes = 5000

var ErrEmptyNarration = errors.New("nothing to narrate")

type Narrator struct {
	client   *texttospeech.Client
	language string
	voice    string
	log      *zap.Logger
}

func NewNarrator(ctx context.Context, cfg config.GoogleConfig, log *zap.Logger) (*Narrator, error) {
	client, err := texttospeech.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("NewNarrator(): failed to create TTS client: %w", err)
	}
	return &Narrator{client: client, language: cfg.LanguageCode, voice: cfg.Voice, log: log}, nil
}

// Narrate renders text as MP3. Markdown markers are stripped and the text is cut to the
// request limit.
func (n *Narrator) Narrate(ctx context.Context, text string) ([]byte, error) {
	text = NarrationText(text)
	if text == "" {
		return nil, ErrEmptyNarration
	}

	resp, err := n.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: n.language,
			Name:         n.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		n.log.Error("Narrate(): SynthesizeSpeech failed", zap.Error(err))
		return nil, fmt.Errorf("Narrate(): %w", err)
	}
	n.log.Debug("Narrate(): synthesized", zap.Int("audio_bytes", len(resp.AudioContent)))
	return resp.AudioContent, nil
}

var markdownMarkers = strings.NewReplacer("#", "", "*", "", "`", "", "_", " ")

// NarrationText prepares generated markdown for speech.
func NarrationText(text string) string {
	text = strings.ToValidUTF8(strings.TrimSpace(markdownMarkers.Replace(text)), "")
	if len(text) <= maxNarrationBytes {
		return text
	}
	// do not split a multi-byte rune
	end := maxNarrationBytes
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	cut := text[:end]
	if i := strings.LastIndexAny(cut, ".!?\n"); i > maxNarrationBytes/2 {
		cut = cut[:i+1]
	}
	return strings.TrimSpace(cut)
}

func (n *Narrator) Close() error {
	if n.client != nil {
		return n.client.Close()
	}
	return nil
}
