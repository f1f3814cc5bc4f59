package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/johnquangdev/meeting-notes/pkg/config"
)

// GeminiClient is a minimal client for the Gemini generative-language REST API
type GeminiClient struct {
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	client         *http.Client
}

// NewGeminiClient creates a Gemini client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGeminiClient(cfg *config.GeminiConfig) *GeminiClient {
	c := &GeminiClient{
		baseURL:        "https://generativelanguage.googleapis.com",
		model:          "gemini-2.5-flash-lite",
		embeddingModel: "text-embedding-004",
		client:         &http.Client{},
	}
	if cfg != nil {
		c.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.Model != "" {
			c.model = cfg.Model
		}
		if cfg.EmbeddingModel != "" {
			c.embeddingModel = cfg.EmbeddingModel
		}
		c.client.Timeout = cfg.Timeout
	}
	if c.apiKey == "" {
		c.apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return c
}

// Part is a single text segment of a content block
type Part struct {
	Text string `json:"text"`
}

// Content is a role-less content block
type Content struct {
	Parts []Part `json:"parts"`
}

// GenerateContentRequest is the payload for :generateContent
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// GenerateContentResponse is a minimal response shape
type GenerateContentResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
}

// EmbedContentRequest is the payload for :embedContent
type EmbedContentRequest struct {
	Model   string  `json:"model"`
	Content Content `json:"content"`
}

// EmbedContentResponse carries the embedding values
type EmbedContentResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

// GenerateContent sends the prompt to the text model and returns the
// concatenated text of the first candidate.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	reqBody := GenerateContentRequest{
		Contents: []Content{{Parts: []Part{{Text: prompt}}}},
	}

	var gr GenerateContentResponse
	if err := g.post(ctx, g.model, "generateContent", reqBody, &gr); err != nil {
		return "", err
	}
	if len(gr.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// EmbedContent returns the embedding vector for text from the embedding model
func (g *GeminiClient) EmbedContent(ctx context.Context, text string) ([]float32, error) {
	reqBody := EmbedContentRequest{
		Model:   "models/" + g.embeddingModel,
		Content: Content{Parts: []Part{{Text: text}}},
	}

	var er EmbedContentResponse
	if err := g.post(ctx, g.embeddingModel, "embedContent", reqBody, &er); err != nil {
		return nil, err
	}
	return er.Embedding.Values, nil
}

func (g *GeminiClient) post(ctx context.Context, model, method string, payload, out interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:%s", g.baseURL, model, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gemini %s returned status %d: %s", method, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
