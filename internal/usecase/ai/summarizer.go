package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
)

// Generator is the generative-language API surface the summarizer needs
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	EmbedContent(ctx context.Context, text string) ([]float32, error)
}

// Summarizer turns a transcript into a summary, action items and an embedding
type Summarizer struct {
	gen    Generator
	parser *Parser
	logger *zap.Logger
}

// NewSummarizer creates a summarizer on top of a generator client
func NewSummarizer(gen Generator, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		gen:    gen,
		parser: NewParser(),
		logger: logger,
	}
}

const promptTemplate = `You are an AI meeting assistant.

Here is a meeting title: %s

Here is a meeting transcript:
%s

Extract the following:
1. A concise summary (3-5 sentences).
2. A list of action items with responsible persons and deadlines if mentioned.

Return only valid JSON with this structure:
{
  "summary": "string",
  "actions": [
    { "task": "string", "owner": "string", "deadline": "string (if mentioned)" }
  ]
}`

// BuildPrompt renders the extraction prompt for a meeting
func BuildPrompt(title, transcript string) string {
	return fmt.Sprintf(promptTemplate, title, transcript)
}

// Summarize calls the model once, parses its JSON and embeds the result.
// Generation and parse failures are errors; an embedding failure only leaves
// the result without a vector.
func (s *Summarizer) Summarize(ctx context.Context, title, transcript string) (*entities.SummaryResult, error) {
	text, err := s.gen.GenerateContent(ctx, BuildPrompt(title, transcript))
	if err != nil {
		metrics.SummarizeFailures.WithLabelValues("generate").Inc()
		return nil, errors.ErrAISummaryFailed(err)
	}

	extracted, err := s.parser.ParseSummary(text)
	if err != nil {
		metrics.SummarizeFailures.WithLabelValues("parse").Inc()
		s.logger.Warn("model output is not valid JSON",
			zap.Int("output_len", len(text)),
			zap.Error(err),
		)
		return nil, err
	}

	result := &entities.SummaryResult{
		Summary:     extracted.Summary,
		ActionItems: s.parser.FormatActionItems(extracted.Actions),
	}

	embedding, err := s.Embed(ctx, entities.BuildEmbeddingText(title, result.Summary, result.ActionItems))
	if err != nil {
		metrics.SummarizeFailures.WithLabelValues("embed").Inc()
		s.logger.Warn("embedding failed, meeting will be stored without vector",
			zap.String("title", title),
			zap.Error(err),
		)
		return result, nil
	}
	result.Embedding = embedding

	return result, nil
}

// Embed returns the embedding of text
func (s *Summarizer) Embed(ctx context.Context, text string) ([]float32, error) {
	values, err := s.gen.EmbedContent(ctx, text)
	if err != nil {
		return nil, errors.ErrAIEmbedFailed(err)
	}
	if len(values) == 0 {
		return nil, errors.ErrAIEmbedFailed(entities.ErrEmptyEmbedding)
	}
	return values, nil
}
