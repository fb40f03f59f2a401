package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "eda-copilot/internal/common/errors"
	"eda-copilot/internal/common/logger"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, logger.NewTestLogger(t)), mock
}

func TestEnsureSchema(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS query_history").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	store, mock := newTestStore(t)

	args := json.RawMessage(`{"wafer_diameter":300}`)
	mock.ExpectExec("INSERT INTO query_history").
		WithArgs("s1", "calculate dies", "die_calculation", 0.67, "calculate_die_per_wafer", []byte(args)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Insert(context.Background(), Record{
		SessionID:     "s1",
		Query:         "calculate dies",
		Intent:        "die_calculation",
		Confidence:    0.67,
		SuggestedTool: "calculate_die_per_wafer",
		Arguments:     args,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertClarificationHasNullArguments(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO query_history").
		WithArgs("s1", "help me", "unknown", 0.0, "", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Insert(context.Background(), Record{
		SessionID: "s1",
		Query:     "help me",
		Intent:    "unknown",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFailureIsWrapped(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO query_history").
		WillReturnError(assert.AnError)

	err := store.Insert(context.Background(), Record{SessionID: "s1", Query: "q", Intent: "unknown"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeHistoryStoreFailed, apperrors.CodeOf(err))
}

func TestListBySession(t *testing.T) {
	store, mock := newTestStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "session_id", "query", "intent", "confidence", "suggested_tool", "arguments", "created_at",
	}).
		AddRow(int64(2), "s1", "what about 200mm", "die_calculation", 0.33,
			"calculate_die_per_wafer", []byte(`{"wafer_diameter":200}`), now).
		AddRow(int64(1), "s1", "help", "unknown", 0.0, "", nil, now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM query_history").
		WithArgs("s1", 10).
		WillReturnRows(rows)

	got, err := store.ListBySession(context.Background(), "s1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, "calculate_die_per_wafer", got[0].SuggestedTool)
	assert.JSONEq(t, `{"wafer_diameter":200}`, string(got[0].Arguments))

	assert.Equal(t, "unknown", got[1].Intent)
	assert.Empty(t, got[1].SuggestedTool)
	assert.Nil(t, got[1].Arguments)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySessionDefaultLimit(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectQuery("SELECT (.+) FROM query_history").
		WithArgs("s1", defaultListLimit).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "query", "intent", "confidence", "suggested_tool", "arguments", "created_at",
		}))

	got, err := store.ListBySession(context.Background(), "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
