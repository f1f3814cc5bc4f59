package meeting

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
	"github.com/johnquangdev/meeting-notes/internal/domain/repositories"
	"github.com/johnquangdev/meeting-notes/pkg/metrics"
)

const (
	// DefaultSearchTopK is used when the caller does not pass topK
	DefaultSearchTopK = 5
	// MaxSearchTopK bounds topK on search requests
	MaxSearchTopK = 20
)

// Summarizer produces the summary, action items and embedding of a transcript
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (*entities.SummaryResult, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Archiver keeps a copy of the stored meeting outside the database
type Archiver interface {
	Archive(ctx context.Context, m *entities.Meeting) error
}

// Service orchestrates meeting creation, listing and similarity search
type Service struct {
	meetings   repositories.MeetingRepository
	vectors    repositories.VectorRepository
	jobs       repositories.EmbeddingJobRepository
	summarizer Summarizer
	archive    Archiver
	logger     *zap.Logger
}

// NewService creates a new meeting service. archive may be nil.
func NewService(
	meetings repositories.MeetingRepository,
	vectors repositories.VectorRepository,
	jobs repositories.EmbeddingJobRepository,
	summarizer Summarizer,
	archive Archiver,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		meetings:   meetings,
		vectors:    vectors,
		jobs:       jobs,
		summarizer: summarizer,
		archive:    archive,
		logger:     logger,
	}
}

// Create summarizes the transcript, stores the meeting and indexes its vector.
// Nothing is written when summarization fails. Once the row exists the call
// succeeds; a vector that could not be written is handed to the reconciler.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title, transcript string) (*entities.Meeting, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(transcript) == "" {
		return nil, errors.ErrInvalidArgument("title and transcript required")
	}
	if userID == uuid.Nil {
		return nil, errors.ErrUnauthenticated()
	}

	result, err := s.summarizer.Summarize(ctx, title, transcript)
	if err != nil {
		return nil, err
	}

	meeting := entities.NewMeeting(userID, title, transcript, result)
	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, errors.ErrDBQueryFailed("insert_meeting", err)
	}
	metrics.MeetingsCreated.Inc()

	s.indexVector(ctx, meeting, result.Embedding)

	if s.archive != nil {
		if err := s.archive.Archive(ctx, meeting); err != nil {
			s.logger.Warn("failed to archive transcript",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("meeting created",
		zap.String("meeting_id", meeting.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("action_items", len(meeting.ActionItems)),
	)
	return meeting, nil
}

// indexVector writes the vector inline or defers it to the reconciler
func (s *Service) indexVector(ctx context.Context, meeting *entities.Meeting, embedding []float32) {
	reason := "embedding unavailable"
	if len(embedding) > 0 {
		err := s.vectors.Store(ctx, entities.NewMeetingVector(meeting, embedding))
		if err == nil {
			metrics.VectorWrites.WithLabelValues("stored").Inc()
			return
		}
		reason = err.Error()
		s.logger.Warn("vector write failed, deferring to reconciler",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}

	metrics.VectorWrites.WithLabelValues("deferred").Inc()
	if err := s.jobs.Enqueue(ctx, meeting.ID, reason); err != nil {
		// the orphan sweep picks the meeting up later
		s.logger.Error("failed to enqueue embedding job",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Error(err),
		)
	}
}

// List returns every meeting, newest first
func (s *Service) List(ctx context.Context) ([]*entities.Meeting, error) {
	meetings, err := s.meetings.List(ctx)
	if err != nil {
		return nil, errors.ErrDBQueryFailed("list_meetings", err)
	}
	if meetings == nil {
		meetings = []*entities.Meeting{}
	}
	return meetings, nil
}

// Search embeds the query and returns the caller's most similar meetings.
// A nil topK means DefaultSearchTopK.
func (s *Service) Search(ctx context.Context, userID uuid.UUID, query string, requested *int) ([]entities.SimilarMeeting, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.ErrInvalidArgument("q required")
	}
	topK := DefaultSearchTopK
	if requested != nil {
		topK = *requested
	}
	if topK < 1 || topK > MaxSearchTopK {
		return nil, errors.ErrInvalidArgument("topK must be between 1 and 20")
	}

	vector, err := s.summarizer.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.vectors.Search(ctx, userID.String(), vector, topK)
	if err != nil {
		return nil, err
	}
	metrics.SearchRequests.Inc()
	return hits, nil
}
