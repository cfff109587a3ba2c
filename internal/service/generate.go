package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CareerPortal_ResultsProject/internal/factors"
	"CareerPortal_ResultsProject/internal/ledger"
	"CareerPortal_ResultsProject/internal/llm"
	"CareerPortal_ResultsProject/internal/metrics"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/prompt"

	"go.uber.org/zap"
)

// Progress event types streamed to WebSocket clients.
const (
	EventCharged      = "charged"
	EventText         = "text"
	EventImagePending = "image_pending"
	EventImage        = "image"
	EventDone         = "done"
	EventError        = "error"
)

type Event struct {
	Type    string         `json:"type"`
	Feature string         `json:"feature"`
	Balance *int           `json:"balance,omitempty"`
	Text    string         `json:"text,omitempty"`
	Image   *Image         `json:"image,omitempty"`
	Result  *FeatureResult `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Observer receives progress events. It is called from the generating goroutine.
type Observer func(Event)

type Image struct {
	URL         string   `json:"url"`
	Variants    []string `json:"variants"`
	Placeholder bool     `json:"placeholder"`
}

type FeatureResult struct {
	GenerationID string `json:"generationId,omitempty"`
	Feature      string `json:"feature"`
	Title        string `json:"title"`
	Text         string `json:"text"`
	Image        *Image `json:"image,omitempty"`
	Balance      int    `json:"balance"`
	Charged      int    `json:"charged"`
}

// GenerateFeature charges the feature cost, asks the chat model for the text and, for image
// features, runs the image job. A failed text completion is refunded; a failed image falls
// back to the placeholder.
func (p *Portal) GenerateFeature(ctx context.Context, recordID string, f prompt.Feature, observe Observer) (*FeatureResult, error) {
	if observe == nil {
		observe = func(Event) {}
	}
	info := f.Info()
	start := time.Now()
	log := p.log.With(zap.String("record_id", recordID), zap.String("feature", info.Key))

	res, err := p.generate(ctx, recordID, f, info, observe, log)
	metrics.GenerationDuration.WithLabelValues(info.Key).Observe(time.Since(start).Seconds())
	if err != nil {
		status := "error"
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			status = "insufficient"
		}
		metrics.Generations.WithLabelValues(info.Key, status).Inc()
		observe(Event{Type: EventError, Feature: info.Key, Message: err.Error()})
		return nil, err
	}
	metrics.Generations.WithLabelValues(info.Key, "ok").Inc()
	observe(Event{Type: EventDone, Feature: info.Key, Result: res})
	return res, nil
}

func (p *Portal) generate(ctx context.Context, recordID string, f prompt.Feature, info prompt.FeatureInfo, observe Observer, log *zap.Logger) (*FeatureResult, error) {
	profile, err := p.profiles.Get(ctx, recordID)
	if err != nil {
		return nil, err
	}

	receipt, err := p.ledger.Deduct(ctx, recordID, info.Cost)
	if err != nil {
		return nil, err
	}
	balance := receipt.Balance
	observe(Event{Type: EventCharged, Feature: info.Key, Balance: &balance})

	decoded := factors.Parse(profile.PersonalityFactors)
	if len(decoded.Dropped) > 0 {
		log.Info("Portal.GenerateFeature(): unknown factor tokens dropped", zap.Strings("dropped", decoded.Dropped))
	}
	data := prompt.Variables(profile, decoded)
	data[prompt.VarFeatureTitle] = info.Title
	templates := p.catalog.Templates(f)

	userPrompt := p.compose(templates.Prompt, data, "prompt", log)
	text, err := p.chat.Complete(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: p.catalog.System},
			{Role: "user", Content: userPrompt},
		},
		Temperature: p.catalog.Temperature,
		MaxTokens:   p.catalog.MaxTokens,
	})
	if err != nil {
		log.Error("Portal.GenerateFeature(): completion failed, refunding", zap.Error(err))
		// refund even when the client went away
		if _, refundErr := p.ledger.Refund(context.WithoutCancel(ctx), recordID, receipt); refundErr != nil {
			log.Error("Portal.GenerateFeature(): refund failed", zap.Error(refundErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	observe(Event{Type: EventText, Feature: info.Key, Text: text})

	res := &FeatureResult{
		Feature: info.Key,
		Title:   info.Title,
		Text:    text,
		Balance: balance,
		Charged: receipt.Charged,
	}

	if info.WantsImage {
		observe(Event{Type: EventImagePending, Feature: info.Key})
		imagePrompt := p.compose(templates.Image, data, "image", log)
		res.Image = p.image(ctx, imagePrompt, log)
		observe(Event{Type: EventImage, Feature: info.Key, Image: res.Image})
	}

	gen := &models.Generation{
		RecordID: recordID,
		Feature:  info.Key,
		Text:     text,
	}
	if res.Image != nil {
		gen.ImageURL = res.Image.URL
		gen.ImageVariants = res.Image.Variants
		gen.Placeholder = res.Image.Placeholder
	}
	if err := p.history.CreateGeneration(context.WithoutCancel(ctx), gen); err != nil {
		log.Warn("Portal.GenerateFeature(): failed to store history", zap.Error(err))
	} else {
		res.GenerationID = gen.ID
	}
	return res, nil
}

func (p *Portal) compose(template string, data map[string]string, kind string, log *zap.Logger) string {
	c := prompt.Compose(template, data)
	if len(c.Missing) > 0 {
		log.Debug("Portal.compose(): empty template values", zap.String("template", kind), zap.Strings("missing", c.Missing))
	}
	if len(c.Leftover) > 0 {
		log.Warn("Portal.compose(): unresolved placeholders", zap.String("template", kind), zap.Strings("leftover", c.Leftover))
	}
	return c.Text
}

// image runs the image job; any failure degrades to the placeholder.
func (p *Portal) image(ctx context.Context, imagePrompt string, log *zap.Logger) *Image {
	if p.images == nil {
		return p.placeholder()
	}
	img, err := p.images.Generate(ctx, imagePrompt)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrImageTimeout):
			log.Warn("Portal.image(): image job timed out, using placeholder", zap.Error(err))
		case errors.Is(err, llm.ErrImageFailed):
			log.Warn("Portal.image(): image job failed, using placeholder", zap.Error(err))
		default:
			log.Error("Portal.image(): image request failed, using placeholder", zap.Error(err))
		}
		return p.placeholder()
	}
	return &Image{URL: img.URL, Variants: img.Variants}
}

func (p *Portal) placeholder() *Image {
	return &Image{URL: p.placeholderURL, Variants: []string{p.placeholderURL}, Placeholder: true}
}
