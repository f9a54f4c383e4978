package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"xuibot/core/logger"
)

// PostgresStore keeps conversation state and panel configs in postgres.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an open sqlx connection.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type stateRow struct {
	UserID int64  `db:"user_id"`
	Step   string `db:"step"`
	Data   []byte `db:"data"`
}

type panelRow struct {
	UserID   int64  `db:"user_id"`
	URL      string `db:"url"`
	Username string `db:"username"`
	Password string `db:"password"`
	Session  string `db:"session"`
}

// State returns the conversation state of a user, or nil when no flow is active.
func (s *PostgresStore) State(ctx context.Context, userID int64) (*ConversationState, error) {
	var row stateRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, step, data FROM conversation_states WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation state: %w", err)
	}

	data := map[string]any{}
	if len(row.Data) > 0 {
		if err := json.Unmarshal(row.Data, &data); err != nil {
			return nil, fmt.Errorf("decode conversation data: %w", err)
		}
	}
	return &ConversationState{Step: row.Step, Data: data}, nil
}

// SetState merges data into the stored record, replaces the step, and returns
// the resulting state. The read-modify-write is not transactional; see the
// Store contract.
func (s *PostgresStore) SetState(ctx context.Context, userID int64, step string, data map[string]any) (*ConversationState, error) {
	current, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}

	var oldData map[string]any
	if current != nil {
		oldData = current.Data
	}
	merged := MergeData(oldData, data)

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode conversation data: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO conversation_states (user_id, step, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id) DO UPDATE SET step = $2, data = $3, updated_at = now()`,
		userID, step, encoded)
	if err != nil {
		return nil, fmt.Errorf("upsert conversation state: %w", err)
	}

	logger.LogEvent(ctx, logger.Store, slog.LevelDebug, "state.set",
		slog.Int64("user_id", userID),
		slog.String("step", step),
	)
	return &ConversationState{Step: step, Data: merged}, nil
}

// ClearState deletes the conversation record. Clearing a missing record is not an error.
func (s *PostgresStore) ClearState(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_states WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear conversation state: %w", err)
	}
	logger.LogEvent(ctx, logger.Store, slog.LevelDebug, "state.clear",
		slog.Int64("user_id", userID),
	)
	return nil
}

// PanelConfig returns the stored panel credentials, or nil when setup never completed.
func (s *PostgresStore) PanelConfig(ctx context.Context, userID int64) (*PanelConfig, error) {
	var row panelRow
	err := s.db.GetContext(ctx, &row,
		`SELECT user_id, url, username, password, session FROM panel_configs WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get panel config: %w", err)
	}
	return &PanelConfig{
		URL:      row.URL,
		Username: row.Username,
		Password: row.Password,
		Session:  row.Session,
	}, nil
}

// SetPanelConfig overwrites the panel credentials of a user.
func (s *PostgresStore) SetPanelConfig(ctx context.Context, userID int64, cfg PanelConfig) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO panel_configs (user_id, url, username, password, session, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (user_id) DO UPDATE
		 SET url = $2, username = $3, password = $4, session = $5, updated_at = now()`,
		userID, cfg.URL, cfg.Username, cfg.Password, cfg.Session)
	if err != nil {
		return fmt.Errorf("upsert panel config: %w", err)
	}
	logger.LogEvent(ctx, logger.Store, slog.LevelInfo, "panel_config.set",
		slog.Int64("user_id", userID),
	)
	return nil
}
