// Package history records every answered query in Postgres so a session
// can review what was asked, how it was understood, and what the engine
// suggested.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	apperrors "eda-copilot/internal/common/errors"
	"eda-copilot/internal/common/logger"
)

// Record is one answered query.
type Record struct {
	ID            int64           `json:"id"`
	SessionID     string          `json:"session_id"`
	Query         string          `json:"query"`
	Intent        string          `json:"intent"`
	Confidence    float64         `json:"confidence"`
	SuggestedTool string          `json:"suggested_tool,omitempty"`
	Arguments     json.RawMessage `json:"arguments,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Store persists query records.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// New builds a store over an established database handle.
func New(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{db: db, log: log}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS query_history (
	id             BIGSERIAL PRIMARY KEY,
	session_id     TEXT NOT NULL,
	query          TEXT NOT NULL,
	intent         TEXT NOT NULL,
	confidence     DOUBLE PRECISION NOT NULL,
	suggested_tool TEXT NOT NULL DEFAULT '',
	arguments      JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_query_history_session
	ON query_history (session_id, created_at DESC)`

// EnsureSchema creates the history table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return apperrors.NewHistoryStoreFailedError(err)
	}
	return nil
}

const insertSQL = `
INSERT INTO query_history (session_id, query, intent, confidence, suggested_tool, arguments)
VALUES ($1, $2, $3, $4, $5, $6)`

// Insert appends one record. ID and CreatedAt are assigned by the
// database and not read back.
func (s *Store) Insert(ctx context.Context, rec Record) error {
	var args interface{}
	if len(rec.Arguments) > 0 {
		args = []byte(rec.Arguments)
	}
	_, err := s.db.ExecContext(ctx, insertSQL,
		rec.SessionID, rec.Query, rec.Intent, rec.Confidence, rec.SuggestedTool, args)
	if err != nil {
		return apperrors.NewHistoryStoreFailedError(err)
	}
	return nil
}

const listSQL = `
SELECT id, session_id, query, intent, confidence, suggested_tool, arguments, created_at
FROM query_history
WHERE session_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`

const defaultListLimit = 50

// ListBySession returns a session's records, newest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, listSQL, sessionID, limit)
	if err != nil {
		return nil, apperrors.NewHistoryStoreFailedError(err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var tool sql.NullString
		var args []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Query, &rec.Intent,
			&rec.Confidence, &tool, &args, &rec.CreatedAt); err != nil {
			return nil, apperrors.NewHistoryStoreFailedError(err)
		}
		rec.SuggestedTool = tool.String
		if len(args) > 0 {
			rec.Arguments = json.RawMessage(args)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewHistoryStoreFailedError(err)
	}
	return out, nil
}
