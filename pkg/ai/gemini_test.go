package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/johnquangdev/meeting-notes/pkg/config"
)

func newTestClient(url string) *GeminiClient {
	return NewGeminiClient(&config.GeminiConfig{
		APIKey:         "test-key",
		BaseURL:        url,
		Model:          "test-model",
		EmbeddingModel: "test-embed",
		Timeout:        5 * time.Second,
	})
}

func TestGenerateContent_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/test-model:generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Fatalf("missing api key header")
		}
		var payload GenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if len(payload.Contents) != 1 || payload.Contents[0].Parts[0].Text != "hello" {
			t.Fatalf("unexpected payload %+v", payload)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"summary\":"},{"text":"\"ok\"}"}]}}]}`))
	}))
	defer ts.Close()

	got, err := newTestClient(ts.URL).GenerateContent(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if got != `{"summary":"ok"}` {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestGenerateContent_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota"}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).GenerateContent(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 429 response")
	}
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts.URL).GenerateContent(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestEmbedContent_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/test-embed:embedContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var payload EmbedContentRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		if payload.Model != "models/test-embed" {
			t.Fatalf("unexpected model %s", payload.Model)
		}
		w.Write([]byte(`{"embedding":{"values":[0.1,0.2,0.3]}}`))
	}))
	defer ts.Close()

	vec, err := newTestClient(ts.URL).EmbedContent(context.Background(), "text")
	if err != nil {
		t.Fatalf("EmbedContent: %v", err)
	}
	if len(vec) != 3 || vec[2] != float32(0.3) {
		t.Fatalf("unexpected vector %v", vec)
	}
}
