package ai

import (
	"context"
	stdErrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-notes/errors"
)

type fakeGenerator struct {
	text      string
	genErr    error
	embedding []float32
	embedErr  error

	prompts    []string
	embedTexts []string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.genErr
}

func (f *fakeGenerator) EmbedContent(_ context.Context, text string) ([]float32, error) {
	f.embedTexts = append(f.embedTexts, text)
	return f.embedding, f.embedErr
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Weekly sync", "Ann: ship it")
	assert.Contains(t, p, "Here is a meeting title: Weekly sync")
	assert.Contains(t, p, "Here is a meeting transcript:\nAnn: ship it")
	assert.Contains(t, p, `"actions"`)
}

func TestSummarize_Success(t *testing.T) {
	gen := &fakeGenerator{
		text:      `{"summary":"We shipped.","actions":[{"task":"Write notes","owner":"Ann","deadline":"Fri"}]}`,
		embedding: []float32{0.1, 0.2, 0.3},
	}
	s := NewSummarizer(gen, nil)

	res, err := s.Summarize(context.Background(), "Sync", "transcript")
	require.NoError(t, err)
	assert.Equal(t, "We shipped.", res.Summary)
	assert.Equal(t, []string{"Write notes - Ann (Fri)"}, res.ActionItems)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Embedding)

	require.Len(t, gen.prompts, 1)
	require.Len(t, gen.embedTexts, 1)
	assert.True(t, strings.HasPrefix(gen.embedTexts[0], "Sync"))
	assert.Contains(t, gen.embedTexts[0], "We shipped.")
	assert.Contains(t, gen.embedTexts[0], "Write notes - Ann (Fri)")
}

func TestSummarize_GenerateFailure(t *testing.T) {
	gen := &fakeGenerator{genErr: stdErrors.New("gemini generateContent returned status 503")}
	s := NewSummarizer(gen, nil)

	_, err := s.Summarize(context.Background(), "Sync", "transcript")
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorCode_AI_SUMMARY_FAILED, appErr.Code)
	assert.Empty(t, gen.embedTexts, "no embedding after a failed generation")
}

func TestSummarize_ParseFailure(t *testing.T) {
	gen := &fakeGenerator{text: "I cannot help with that."}
	s := NewSummarizer(gen, nil)

	_, err := s.Summarize(context.Background(), "Sync", "transcript")
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorCode_AI_PARSE_FAILED, appErr.Code)
}

func TestSummarize_EmbedFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{
		text:     `{"summary":"S","actions":[]}`,
		embedErr: stdErrors.New("quota"),
	}
	s := NewSummarizer(gen, nil)

	res, err := s.Summarize(context.Background(), "Sync", "transcript")
	require.NoError(t, err)
	assert.Equal(t, "S", res.Summary)
	assert.Empty(t, res.ActionItems)
	assert.Nil(t, res.Embedding)
	assert.False(t, res.HasEmbedding())
}

func TestEmbed_EmptyVector(t *testing.T) {
	s := NewSummarizer(&fakeGenerator{embedding: []float32{}}, nil)

	_, err := s.Embed(context.Background(), "q")
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, errors.ErrorCode_AI_EMBED_FAILED, appErr.Code)
}
