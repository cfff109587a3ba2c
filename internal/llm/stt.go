/**
* Name: 			stt.go
* Description: 		Google Speech-to-Text for dictated profile entries
* Workflow: 		create client, send recorded clip, join final transcripts
 */

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"CareerPortal_ResultsProject/internal/config"
)

var ErrNoSpeech = errors.New("no speech recognized")

type Transcriber struct {
	client   *speech.Client
	language string
	log      *zap.Logger
}

func clientOptions(cfg config.GoogleConfig) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}

func NewTranscriber(ctx context.Context, cfg config.GoogleConfig, log *zap.Logger) (*Transcriber, error) {
	client, err := speech.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("NewTranscriber(): failed to create speech client: %w", err)
	}
	return &Transcriber{client: client, language: cfg.LanguageCode, log: log}, nil
}

// Transcribe recognizes a short browser recording (WebM/Opus).
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", ErrNoSpeech
	}
	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            48000,
			LanguageCode:               t.language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		t.log.Error("Transcribe(): recognize failed", zap.Error(err))
		return "", fmt.Errorf("Transcribe(): %w", err)
	}

	parts := make([]string, 0, len(resp.Results))
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		if s := strings.TrimSpace(result.Alternatives[0].Transcript); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", ErrNoSpeech
	}
	text := strings.Join(parts, " ")
	t.log.Debug("Transcribe(): recognized", zap.Int("audio_bytes", len(audio)), zap.Int("chars", len(text)))
	return text, nil
}

func (t *Transcriber) Close() error {
	if t.client != nil {
		return t.client.Close()
	}
	return nil
}
