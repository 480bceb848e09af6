// Package analyze asks a Gemini model for a short review of a closed trade.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrTradeOpen  = errors.New("only closed trades can be reviewed")
	ErrNoResponse = errors.New("model returned no text")
)

const DefaultModel = "gemini-2.5-flash"

// Generator is the part of genai.Models a Reviewer needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Reviewer struct {
	gen   Generator
	model string
	log   *zap.Logger
}

// NewReviewer wraps gen. An empty model selects DefaultModel.
func NewReviewer(gen Generator, model string, log *zap.Logger) *Reviewer {
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reviewer{gen: gen, model: model, log: log}
}

// Dial creates a Gemini API client. An empty apiKey lets genai read
// GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
func Dial(ctx context.Context, apiKey, model string, log *zap.Logger) (*Reviewer, error) {
	cc := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if apiKey != "" {
		cc.APIKey = apiKey
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return NewReviewer(client.Models, model, log), nil
}

// Review returns the model's feedback on t.
func (r *Reviewer) Review(ctx context.Context, t portfolio.Trade) (string, error) {
	if !t.IsClosed() {
		return "", fmt.Errorf("review trade %q: %w", t.ID, ErrTradeOpen)
	}

	log := r.log.With(zap.String("trade", t.ID), zap.String("model", r.model))
	log.Debug("requesting trade review")

	resp, err := r.gen.GenerateContent(ctx, r.model, genai.Text(Prompt(t)), nil)
	if err != nil {
		log.Warn("trade review failed", zap.Error(err))
		return "", fmt.Errorf("review trade %q: %w", t.ID, err)
	}

	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("review trade %q: %w", t.ID, ErrNoResponse)
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
