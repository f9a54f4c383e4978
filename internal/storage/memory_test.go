package storage

import (
	"context"
	"testing"
)

func TestMemoryStoreStateLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	st, err := store.State(ctx, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st != nil {
		t.Fatalf("expected no state, got %+v", st)
	}

	if _, err := store.SetState(ctx, 1, "setup_awaiting_username", map[string]any{"url": "https://p.example.com"}); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	st, err = store.State(ctx, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st == nil || st.Step != "setup_awaiting_username" {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.Data["url"] != "https://p.example.com" {
		t.Fatalf("data not stored: %+v", st.Data)
	}
}

func TestMemoryStoreSetStateMergesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.SetState(ctx, 7, "setup_awaiting_username", map[string]any{"url": "https://p.example.com"}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	got, err := store.SetState(ctx, 7, "setup_awaiting_password", map[string]any{"username": "admin"})
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}

	if got.Data["url"] != "https://p.example.com" {
		t.Errorf("earlier field dropped: %+v", got.Data)
	}
	if got.Data["username"] != "admin" {
		t.Errorf("new field missing: %+v", got.Data)
	}
}

func TestMemoryStoreSetStatePreservesStepOnDataOnlyWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.SetState(ctx, 7, "bulk_awaiting_list", map[string]any{"inboundId": int64(3)}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	// Same step written again with extra data: step replaced (by the same
	// value), data merged.
	got, err := store.SetState(ctx, 7, "bulk_awaiting_list", map[string]any{"protocol": "vless"})
	if err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if got.Step != "bulk_awaiting_list" {
		t.Errorf("step = %q", got.Step)
	}
	if got.Data["inboundId"] != int64(3) || got.Data["protocol"] != "vless" {
		t.Errorf("data = %+v", got.Data)
	}
}

func TestMemoryStoreClearIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.SetState(ctx, 2, "client_awaiting_email", nil); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := store.ClearState(ctx, 2); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.ClearState(ctx, 2); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	st, err := store.State(ctx, 2)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st != nil {
		t.Fatalf("state survived clear: %+v", st)
	}
}

func TestMemoryStorePanelConfigRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cfg, err := store.PanelConfig(ctx, 9)
	if err != nil {
		t.Fatalf("PanelConfig: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected no config, got %+v", cfg)
	}

	want := PanelConfig{
		URL:      "https://panel.example.com",
		Username: "admin",
		Password: "secret",
		Session:  "session=abc",
	}
	if err := store.SetPanelConfig(ctx, 9, want); err != nil {
		t.Fatalf("SetPanelConfig: %v", err)
	}
	cfg, err = store.PanelConfig(ctx, 9)
	if err != nil {
		t.Fatalf("PanelConfig: %v", err)
	}
	if cfg == nil || *cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}
