package meeting

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

type fakeMeetingRepo struct {
	mu        sync.Mutex
	rows      []*entities.Meeting
	createErr error
	listErr   error
}

func (f *fakeMeetingRepo) Create(_ context.Context, m *entities.Meeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	cp := *m
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeMeetingRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.rows {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, entities.ErrMeetingNotFound
}

func (f *fakeMeetingRepo) List(_ context.Context) ([]*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*entities.Meeting, 0, len(f.rows))
	for _, m := range f.rows {
		cp := *m
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeMeetingRepo) ListCreatedSince(_ context.Context, since time.Time, limit int) ([]*entities.Meeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Meeting
	for _, m := range f.rows {
		if !m.CreatedAt.Before(since) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeMeetingRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeVectorRepo struct {
	mu        sync.Mutex
	docs      map[string]*entities.MeetingVector
	storeErrs []error // consumed one per Store call
	storeCall int
	hits      []entities.SimilarMeeting
	lastUser  string
	lastTopK  int
}

func newFakeVectorRepo() *fakeVectorRepo {
	return &fakeVectorRepo{docs: map[string]*entities.MeetingVector{}}
}

func (f *fakeVectorRepo) Store(_ context.Context, v *entities.MeetingVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storeCall++
	if len(f.storeErrs) > 0 {
		err := f.storeErrs[0]
		f.storeErrs = f.storeErrs[1:]
		if err != nil {
			return err
		}
	}
	cp := *v
	f.docs[v.MeetingID] = &cp
	return nil
}

func (f *fakeVectorRepo) Search(_ context.Context, userID string, _ []float32, topK int) ([]entities.SimilarMeeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser = userID
	f.lastTopK = topK
	out := []entities.SimilarMeeting{}
	for _, h := range f.hits {
		if h.UserID == userID && len(out) < topK {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeVectorRepo) ExistingMeetingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := f.docs[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeVectorRepo) has(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[id.String()]
	return ok
}

// fakeJobRepo keeps one job per meeting, like the unique index on meeting_id
type fakeJobRepo struct {
	mu         sync.Mutex
	byMeeting  map[uuid.UUID]*entities.EmbeddingJob
	enqueueErr error
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{byMeeting: map[uuid.UUID]*entities.EmbeddingJob{}}
}

func (f *fakeJobRepo) Enqueue(_ context.Context, meetingID uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	if existing, ok := f.byMeeting[meetingID]; ok {
		if existing.Status == entities.EmbeddingJobStatusProcessing {
			return nil
		}
		existing.Status = entities.EmbeddingJobStatusPending
		existing.Attempts = 0
		existing.LastError = &reason
		existing.NextAttemptAt = time.Now()
		return nil
	}
	f.byMeeting[meetingID] = entities.NewEmbeddingJob(meetingID, reason)
	return nil
}

func (f *fakeJobRepo) ClaimDue(_ context.Context, now time.Time, limit int) ([]*entities.EmbeddingJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.EmbeddingJob
	for _, j := range f.byMeeting {
		if len(out) >= limit {
			break
		}
		if j.Status == entities.EmbeddingJobStatusPending && !j.NextAttemptAt.After(now) {
			j.Status = entities.EmbeddingJobStatusProcessing
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) find(id uuid.UUID) *entities.EmbeddingJob {
	for _, j := range f.byMeeting {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (f *fakeJobRepo) MarkCompleted(_ context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j := f.find(jobID); j != nil {
		j.Status = entities.EmbeddingJobStatusCompleted
		j.Attempts++
	}
	return nil
}

func (f *fakeJobRepo) MarkAttemptFailed(_ context.Context, job *entities.EmbeddingJob, errMsg string, next time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	j := f.find(job.ID)
	if j == nil {
		return nil
	}
	j.Status = entities.EmbeddingJobStatusPending
	if job.IsExhausted() {
		j.Status = entities.EmbeddingJobStatusFailed
	}
	j.Attempts++
	j.LastError = &errMsg
	j.NextAttemptAt = next
	return nil
}

func (f *fakeJobRepo) ResetStale(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeJobRepo) CountByStatus(_ context.Context, status entities.EmbeddingJobStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, j := range f.byMeeting {
		if j.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeJobRepo) get(meetingID uuid.UUID) (entities.EmbeddingJob, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.byMeeting[meetingID]
	if !ok {
		return entities.EmbeddingJob{}, false
	}
	return *j, true
}

type fakeSummarizer struct {
	mu        sync.Mutex
	result    *entities.SummaryResult
	err       error
	embed     []float32
	embedErrs []error // consumed one per Embed call
	calls     int
	embedded  []string
}

func (f *fakeSummarizer) Summarize(_ context.Context, _, _ string) (*entities.SummaryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.result
	return &cp, nil
}

func (f *fakeSummarizer) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedded = append(f.embedded, text)
	if len(f.embedErrs) > 0 {
		err := f.embedErrs[0]
		f.embedErrs = f.embedErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.embed, nil
}

type fakeArchive struct {
	err   error
	count int
}

func (f *fakeArchive) Archive(_ context.Context, _ *entities.Meeting) error {
	f.count++
	return f.err
}
