package repository

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name"}))

	_, err := repo.FindByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, entities.ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Upsert_ReturnsStoredRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	storedID := uuid.New()
	now := time.Now()

	mock.ExpectExec(`INSERT INTO "users" .* ON CONFLICT \("email"\) DO UPDATE SET "name"="excluded"."name","updated_at"="excluded"."updated_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}).
			AddRow(storedID.String(), "alice@example.com", "alice", "hash", now, now))

	user := entities.NewUser("alice@example.com", "hash", "alice")
	got, err := repo.Upsert(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, storedID, got.ID)
	assert.Equal(t, "alice", got.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_List_NewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMeetingRepository(db)

	newer, older := uuid.New(), uuid.New()
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "meetings" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "transcript", "summary", "action_items", "user_id", "created_at", "updated_at"}).
			AddRow(newer.String(), "Sync", "t", "done", []byte(`["Ship - Bob"]`), userID.String(), now, now).
			AddRow(older.String(), "Kickoff", "t", nil, []byte(`[]`), userID.String(), now.Add(-time.Hour), now.Add(-time.Hour)))

	meetings, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	assert.Equal(t, newer, meetings[0].ID)
	assert.Equal(t, []string{"Ship - Bob"}, []string(meetings[0].ActionItems))
	assert.Equal(t, "done", meetings[0].SummaryText())
	assert.Nil(t, meetings[1].Summary)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMeetingRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "meetings" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, entities.ErrMeetingNotFound)
}

func TestEmbeddingJobRepository_ClaimDue_SkipsLostRaces(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmbeddingJobRepository(db)

	won, lost := uuid.New(), uuid.New()
	now := time.Now()
	cols := []string{"id", "meeting_id", "status", "attempts", "max_attempts", "last_error", "next_attempt_at", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT \* FROM "embedding_jobs" WHERE status = \$1 AND next_attempt_at <= \$2 ORDER BY next_attempt_at ASC`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(won.String(), uuid.NewString(), "pending", 0, 5, nil, now, now, now).
			AddRow(lost.String(), uuid.NewString(), "pending", 1, 5, "boom", now, now, now))
	mock.ExpectExec(`UPDATE "embedding_jobs" SET .* WHERE id = \$3 AND status = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "embedding_jobs" SET .* WHERE id = \$3 AND status = \$4`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.ClaimDue(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, won, claimed[0].ID)
	assert.Equal(t, entities.EmbeddingJobStatusProcessing, claimed[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingJobRepository_MarkAttemptFailed_TerminalOnLastAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmbeddingJobRepository(db)

	job := entities.NewEmbeddingJob(uuid.New(), "")
	job.Attempts = job.MaxAttempts - 1

	mock.ExpectExec(`UPDATE "embedding_jobs" SET "attempts"=attempts \+ 1,"last_error"=\$1,"next_attempt_at"=\$2,"status"=\$3,"updated_at"=\$4 WHERE id = \$5`).
		WithArgs("boom", sqlmock.AnyArg(), string(entities.EmbeddingJobStatusFailed), sqlmock.AnyArg(), job.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkAttemptFailed(context.Background(), job, "boom", time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingJobRepository_MarkAttemptFailed_Reschedules(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmbeddingJobRepository(db)

	job := entities.NewEmbeddingJob(uuid.New(), "")

	mock.ExpectExec(`UPDATE "embedding_jobs" SET .*"status"=\$3`).
		WithArgs("boom", sqlmock.AnyArg(), string(entities.EmbeddingJobStatusPending), sqlmock.AnyArg(), job.ID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkAttemptFailed(context.Background(), job, "boom", time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingJobRepository_Enqueue_ReArmsUnlessProcessing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmbeddingJobRepository(db)

	// 9 insert columns, then the 5 conflict assignments sorted by column
	args := make([]driver.Value, 15)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	args[9] = 0
	args[10] = "vector missing"
	args[12] = string(entities.EmbeddingJobStatusPending)
	args[14] = string(entities.EmbeddingJobStatusProcessing)

	mock.ExpectExec(`INSERT INTO "embedding_jobs" .* ON CONFLICT \("meeting_id"\) DO UPDATE SET "attempts"=\$10,"last_error"=\$11,"next_attempt_at"=\$12,"status"=\$13,"updated_at"=\$14 WHERE "embedding_jobs"\."status" <> \$15`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// a worker holds the job: the guarded update touches nothing and that is not an error
	mock.ExpectExec(`INSERT INTO "embedding_jobs" .* ON CONFLICT \("meeting_id"\) DO UPDATE SET .* WHERE "embedding_jobs"\."status" <> \$15`).
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(0, 0))

	meetingID := uuid.New()
	require.NoError(t, repo.Enqueue(context.Background(), meetingID, "vector missing"))
	require.NoError(t, repo.Enqueue(context.Background(), meetingID, "vector missing"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddingJobRepository_ResetStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmbeddingJobRepository(db)

	before := time.Now().Add(-4 * time.Minute)

	mock.ExpectExec(`UPDATE "embedding_jobs" SET "status"=\$1,"updated_at"=\$2 WHERE status = \$3 AND updated_at < \$4`).
		WithArgs(string(entities.EmbeddingJobStatusPending), sqlmock.AnyArg(), string(entities.EmbeddingJobStatusProcessing), before).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ResetStale(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepository_ListCreatedSince_NewestFirstWithLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMeetingRepository(db)

	since := time.Now().Add(-24 * time.Hour)
	newer, older := uuid.New(), uuid.New()
	now := time.Now()
	cols := []string{"id", "title", "transcript", "user_id", "created_at", "updated_at"}

	mock.ExpectQuery(`SELECT \* FROM "meetings" WHERE created_at >= \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(since, 2).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(newer.String(), "Newer", "t", uuid.NewString(), now, now).
			AddRow(older.String(), "Older", "t", uuid.NewString(), now.Add(-time.Hour), now))
	mock.ExpectQuery(`SELECT \* FROM "meetings" WHERE created_at >= \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(since, 100).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListCreatedSince(context.Background(), since, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, newer, got[0].ID)
	assert.Equal(t, older, got[1].ID)

	// a non-positive limit falls back to 100
	_, err = repo.ListCreatedSince(context.Background(), since, 0)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
