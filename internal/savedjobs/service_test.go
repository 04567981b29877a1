package savedjobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewService(mock, nil, nil), mock
}

func saveInput() SaveInput {
	return SaveInput{
		ProviderJobID: "abc123",
		Title:         "Data Scientist",
		Company:       "Acme",
		Location:      "London",
		SourceURL:     "https://example.com/job/abc123",
	}
}

func TestSaveCreatesRecord(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("INSERT INTO saved_jobs").
		WithArgs("user-1", "abc123", "Data Scientist", "Acme", "London", "https://example.com/job/abc123").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.Save(context.Background(), "user-1", saveInput()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAlreadySavedIsSuccess(t *testing.T) {
	// ON CONFLICT DO NOTHING reports zero rows for a duplicate — including
	// the losing side of a concurrent race — and the toggle still succeeds.
	svc, mock := newMockService(t)

	mock.ExpectExec("INSERT INTO saved_jobs").
		WithArgs("user-1", "abc123", "Data Scientist", "Acme", "London", "https://example.com/job/abc123").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, svc.Save(context.Background(), "user-1", saveInput()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveValidation(t *testing.T) {
	svc, mock := newMockService(t)

	var ve *ValidationError

	err := svc.Save(context.Background(), "", saveInput())
	require.ErrorAs(t, err, &ve)

	in := saveInput()
	in.ProviderJobID = ""
	err = svc.Save(context.Background(), "user-1", in)
	require.ErrorAs(t, err, &ve)

	// Neither call may reach the store.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveStoreError(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("INSERT INTO saved_jobs").
		WithArgs("user-1", "abc123", "Data Scientist", "Acme", "London", "https://example.com/job/abc123").
		WillReturnError(errors.New("connection reset"))

	err := svc.Save(context.Background(), "user-1", saveInput())
	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve), "store failures are not validation failures")
}

func TestUnsaveDeletesOwnRecordOnly(t *testing.T) {
	// Ownership is part of the key: the DELETE carries user_id, so one
	// user's unsave can never touch another user's record.
	svc, mock := newMockService(t)

	mock.ExpectExec("DELETE FROM saved_jobs").
		WithArgs("user-a", "abc123").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, svc.Unsave(context.Background(), "user-a", "abc123"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsaveMissingRecordIsSuccess(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("DELETE FROM saved_jobs").
		WithArgs("user-1", "gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, svc.Unsave(context.Background(), "user-1", "gone"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnsaveTwiceBothSucceed(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("DELETE FROM saved_jobs").
		WithArgs("user-1", "abc123").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM saved_jobs").
		WithArgs("user-1", "abc123").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, svc.Unsave(context.Background(), "user-1", "abc123"))
	require.NoError(t, svc.Unsave(context.Background(), "user-1", "abc123"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReturnsNewestFirst(t *testing.T) {
	svc, mock := newMockService(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "provider_job_id", "title", "company", "location", "source_url", "saved_at",
	}).
		AddRow("id-2", "user-1", "job-2", "DS II", "Beta", "Leeds", "https://example.com/2", now).
		AddRow("id-1", "user-1", "job-1", "DS I", "Acme", "London", "https://example.com/1", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, user_id, provider_job_id").
		WithArgs("user-1").
		WillReturnRows(rows)

	jobs, err := svc.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "job-2", jobs[0].ProviderJobID)
	assert.Equal(t, "job-1", jobs[1].ProviderJobID)
}

func TestSavedIDs(t *testing.T) {
	svc, mock := newMockService(t)

	rows := pgxmock.NewRows([]string{"provider_job_id"}).
		AddRow("job-1").
		AddRow("job-2")

	mock.ExpectQuery("SELECT provider_job_id FROM saved_jobs").
		WithArgs("user-1").
		WillReturnRows(rows)

	ids, err := svc.SavedIDs(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"job-1": true, "job-2": true}, ids)
}
