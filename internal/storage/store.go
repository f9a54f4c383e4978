// Package storage persists per-user conversation state and panel credentials.
//
// Two logical records exist per Telegram user: the conversation state (current
// flow step plus accumulated data) and the panel configuration produced by a
// completed setup flow. Writes follow last-write-wins semantics; concurrent
// updates for the same user are an accepted race because Telegram serializes
// updates per chat in practice.
package storage

import "context"

// ConversationState is the per-user dialog position.
// An absent record (nil) or an empty Step means no active flow.
type ConversationState struct {
	Step string
	Data map[string]any
}

// PanelConfig holds the panel credentials of one user. Session is the opaque
// cookie obtained at login; its expiry is only discovered when a panel call
// fails.
type PanelConfig struct {
	URL      string
	Username string
	Password string
	Session  string
}

// Store is the state-store contract consumed by the conversation engine.
//
// SetState shallow-merges Data into the existing record's data (new wins per
// key) and replaces Step. ClearState deletes the record and is idempotent.
// Within one update delivery the engine performs at most one read and one net
// write per entity.
type Store interface {
	State(ctx context.Context, userID int64) (*ConversationState, error)
	SetState(ctx context.Context, userID int64, step string, data map[string]any) (*ConversationState, error)
	ClearState(ctx context.Context, userID int64) error

	PanelConfig(ctx context.Context, userID int64) (*PanelConfig, error)
	SetPanelConfig(ctx context.Context, userID int64, cfg PanelConfig) error
}
