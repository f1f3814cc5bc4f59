package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// VectorRepository is the similarity-search store for meeting embeddings
type VectorRepository interface {
	// Store upserts the vector document keyed by meeting ID
	Store(ctx context.Context, vector *entities.MeetingVector) error

	// Search returns up to topK of the caller's meetings ranked by similarity
	Search(ctx context.Context, userID string, queryVector []float32, topK int) ([]entities.SimilarMeeting, error)

	// ExistingMeetingIDs returns the subset of ids that already have a vector
	ExistingMeetingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}
