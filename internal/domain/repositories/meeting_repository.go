package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// MeetingRepository defines persistence for summarized meetings
type MeetingRepository interface {
	// Create inserts a meeting row
	Create(ctx context.Context, meeting *entities.Meeting) error

	// FindByID finds a meeting by ID
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)

	// List returns every meeting, newest first
	List(ctx context.Context) ([]*entities.Meeting, error)

	// ListCreatedSince returns meetings created at or after since, newest first
	ListCreatedSince(ctx context.Context, since time.Time, limit int) ([]*entities.Meeting, error)
}
