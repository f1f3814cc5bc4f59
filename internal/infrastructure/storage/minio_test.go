package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/pkg/config"
)

// fakeS3 answers the handful of S3 calls the archive makes
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)
	bucket := parts[0]

	switch {
	case r.Method == http.MethodGet && r.URL.Query().Has("location"):
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.buckets[bucket] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 1:
		f.buckets[bucket] = true
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && len(parts) == 2:
		body, _ := io.ReadAll(r.Body)
		if strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
			body = decodeChunked(body)
		}
		f.objects[r.URL.Path] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

// decodeChunked strips aws-chunked framing: "<hex>;chunk-signature=...\r\n<data>\r\n"
func decodeChunked(raw []byte) []byte {
	var out []byte
	rest := string(raw)
	for {
		line, after, ok := strings.Cut(rest, "\r\n")
		if !ok {
			return out
		}
		sizeHex, _, _ := strings.Cut(line, ";")
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil || size == 0 || int64(len(after)) < size {
			return out
		}
		out = append(out, after[:size]...)
		rest = strings.TrimPrefix(after[size:], "\r\n")
	}
}

func TestTranscriptArchive_CreatesBucketAndUploads(t *testing.T) {
	fake := &fakeS3{buckets: map[string]bool{}, objects: map[string][]byte{}}
	ts := httptest.NewServer(fake)
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)

	archive, err := NewTranscriptArchive(context.Background(), &config.StorageConfig{
		Endpoint:        u.Host,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "transcripts",
	})
	require.NoError(t, err)
	assert.True(t, fake.buckets["transcripts"])

	summary := "Shipped"
	m := &entities.Meeting{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		Title:       "Sync",
		Transcript:  "hello",
		Summary:     &summary,
		ActionItems: []string{"Ship - Bob"},
	}
	require.NoError(t, archive.Archive(context.Background(), m))

	body, ok := fake.objects["/transcripts/"+ObjectName(m)]
	require.True(t, ok, "object not uploaded: %v", fake.objects)

	var got archivedMeeting
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, m.ID.String(), got.ID)
	assert.Equal(t, "hello", got.Transcript)
	assert.Equal(t, []string{"Ship - Bob"}, got.ActionItems)
}
