package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/pkg/config"
)

// TranscriptArchive keeps a JSON copy of every stored meeting in object storage
type TranscriptArchive struct {
	client *minio.Client
	bucket string
}

// archivedMeeting is the object body written per meeting
type archivedMeeting struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Transcript  string    `json:"transcript"`
	Summary     *string   `json:"summary"`
	ActionItems []string  `json:"actionItems"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTranscriptArchive creates a MinIO client and makes sure the bucket exists
func NewTranscriptArchive(ctx context.Context, cfg *config.StorageConfig) (*TranscriptArchive, error) {
	// Initialize MinIO client
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &TranscriptArchive{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return archive, nil
}

// ensureBucket creates the bucket when missing. Objects stay private.
func (a *TranscriptArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectName returns the key a meeting is archived under
func ObjectName(m *entities.Meeting) string {
	return fmt.Sprintf("meetings/%s/%s.json", m.UserID, m.ID)
}

// Archive uploads the meeting as JSON
func (a *TranscriptArchive) Archive(ctx context.Context, m *entities.Meeting) error {
	body, err := encodeMeeting(m)
	if err != nil {
		return errors.ErrStorageFailed("archive_encode", err)
	}
	return a.upload(ctx, ObjectName(m), bytes.NewReader(body), int64(len(body)), "application/json")
}

// upload uploads a file to MinIO
func (a *TranscriptArchive) upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.ErrStorageFailed("archive_upload", err)
	}
	return nil
}

func encodeMeeting(m *entities.Meeting) ([]byte, error) {
	return json.Marshal(archivedMeeting{
		ID:          m.ID.String(),
		UserID:      m.UserID.String(),
		Title:       m.Title,
		Transcript:  m.Transcript,
		Summary:     m.Summary,
		ActionItems: []string(m.ActionItems),
		CreatedAt:   m.CreatedAt,
	})
}
