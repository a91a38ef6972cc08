package study

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when a session ID has no stored row.
var ErrNotFound = errors.New("study: session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	participant_id TEXT NOT NULL,
	mode           TEXT NOT NULL,
	started_at     TIMESTAMP NOT NULL,
	ended_at       TIMESTAMP,
	metrics        TEXT
);

CREATE TABLE IF NOT EXISTS interactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL REFERENCES sessions(id),
	timestamp   TIMESTAMP NOT NULL,
	kind        TEXT NOT NULL,
	observation TEXT,
	response    TEXT,
	display_type TEXT,
	accepted    INTEGER
);

CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);
`

// Store persists study sessions and their interaction logs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the study database at dsn and applies
// the schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open study database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open connection
	// serialises writes and avoids SQLITE_BUSY errors under concurrent load.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SessionRecord is a session row as stored.
type SessionRecord struct {
	ID            string
	ParticipantID string
	Mode          string
	StartedAt     time.Time
	EndedAt       *time.Time
	Metrics       Metrics
}

// Interaction is one logged exchange within a session: either an observation
// with the assistant's response, or a user feedback event.
type Interaction struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        string    `json:"kind"` // observation, feedback
	Observation string    `json:"observation,omitempty"`
	Response    string    `json:"response,omitempty"`
	DisplayType string    `json:"display_type,omitempty"`
	Accepted    *bool     `json:"accepted,omitempty"`
}

// SaveSession upserts a session row.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return errors.New("study: session ID is required")
	}

	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	query := `
		INSERT INTO sessions (id, participant_id, mode, started_at, ended_at, metrics)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participant_id = excluded.participant_id,
			mode = excluded.mode,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			metrics = excluded.metrics
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID,
		rec.ParticipantID,
		rec.Mode,
		rec.StartedAt,
		nullableTime(rec.EndedAt),
		string(metricsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session row by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*SessionRecord, error) {
	if id == "" {
		return nil, errors.New("study: session ID is required")
	}

	var rec SessionRecord
	var endedAt sql.NullTime
	var metricsJSON sql.NullString

	err := s.db.QueryRowContext(ctx,
		"SELECT id, participant_id, mode, started_at, ended_at, metrics FROM sessions WHERE id = ?", id,
	).Scan(&rec.ID, &rec.ParticipantID, &rec.Mode, &rec.StartedAt, &endedAt, &metricsJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if endedAt.Valid {
		t := endedAt.Time
		rec.EndedAt = &t
	}
	if metricsJSON.Valid && metricsJSON.String != "" {
		if err := json.Unmarshal([]byte(metricsJSON.String), &rec.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
		}
	}
	return &rec, nil
}

// AppendInteraction logs one interaction for a session.
func (s *Store) AppendInteraction(ctx context.Context, sessionID string, it Interaction) error {
	if sessionID == "" {
		return errors.New("study: session ID is required")
	}
	if it.Timestamp.IsZero() {
		it.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (session_id, timestamp, kind, observation, response, display_type, accepted)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		it.Timestamp,
		it.Kind,
		nullableString(it.Observation),
		nullableString(it.Response),
		nullableString(it.DisplayType),
		nullableBool(it.Accepted),
	)
	if err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}

// Interactions returns a session's full interaction log in insertion order.
func (s *Store) Interactions(ctx context.Context, sessionID string) ([]Interaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, kind, observation, response, display_type, accepted
		 FROM interactions WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer rows.Close()

	var out []Interaction
	for rows.Next() {
		var it Interaction
		var observation, response, displayType sql.NullString
		var accepted sql.NullBool
		if err := rows.Scan(&it.Timestamp, &it.Kind, &observation, &response, &displayType, &accepted); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		it.Observation = observation.String
		it.Response = response.String
		it.DisplayType = displayType.String
		if accepted.Valid {
			v := accepted.Bool
			it.Accepted = &v
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}
	return out, nil
}

// Close flushes the WAL into the main database file and releases resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Printf("study: WAL checkpoint on close failed (non-fatal): %v", err)
	}
	return s.db.Close()
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
