package flow

import (
	"context"
	"strings"
	"testing"

	"xuibot/internal/panel"
)

func testInbounds() []panel.Inbound {
	return []panel.Inbound{
		{ID: 1, Remark: "office", Protocol: "vless"},
		{ID: 4, Remark: "backup", Protocol: "trojan"},
	}
}

func TestStartAddClientRequiresSetup(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})

	r := &fakeResponder{}
	if err := eng.StartAddClient(ctx, 1, r); err != nil {
		t.Fatalf("StartAddClient: %v", err)
	}

	if len(r.sent) != 1 || !strings.Contains(r.sent[0], "/setup") {
		t.Errorf("expected setup guidance, got %v", r.sent)
	}
	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("flow entered a state without config: %+v", st)
	}
}

func TestStartAddClientOffersInbounds(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.StartAddClient(ctx, 1, r); err != nil {
		t.Fatalf("StartAddClient: %v", err)
	}

	if len(r.inlines) != 1 {
		t.Fatalf("inline messages = %d, want 1", len(r.inlines))
	}
	rows := r.inlines[0].rows
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want one per inbound", len(rows))
	}
	first := rows[0][0]
	if first.Text != "office (vless)" || first.Key != CallbackInbound || first.Data != "1" {
		t.Errorf("button = %+v", first)
	}

	// Listing alone must not enter a state; only a button press does.
	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("state entered before selection: %+v", st)
	}
}

func TestStartAddClientNoInbounds(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.StartAddClient(ctx, 1, r); err != nil {
		t.Fatalf("StartAddClient: %v", err)
	}
	if got := r.sentContaining("هیچ inbound فعالی یافت نشد"); len(got) != 1 {
		t.Errorf("missing empty-list message: %v", r.sent)
	}
}

func TestStartAddClientListFailureSuggestsSetup(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{listErr: &panel.APIError{Status: 401, Msg: "panel API request failed: 401 Unauthorized"}})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.StartAddClient(ctx, 1, r); err != nil {
		t.Fatalf("StartAddClient: %v", err)
	}
	got := r.sentContaining("خطا در دریافت لیست inbound ها")
	if len(got) != 1 || !strings.Contains(got[0], "/setup") {
		t.Errorf("expected failure message with setup hint, got %v", r.sent)
	}
}

func TestSelectInboundStoresSelection(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.SelectInbound(ctx, 1, 4, r); err != nil {
		t.Fatalf("SelectInbound: %v", err)
	}

	st, err := store.State(ctx, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st == nil || Step(st.Step) != StepClientAwaitingEmail {
		t.Fatalf("state = %+v", st)
	}
	if id, ok := dataInt64(st.Data, "inboundId"); !ok || id != 4 {
		t.Errorf("inboundId = %v", st.Data["inboundId"])
	}
	if st.Data["protocol"] != "trojan" {
		t.Errorf("protocol = %v", st.Data["protocol"])
	}
	if len(r.edits) != 1 || !strings.Contains(r.edits[0], "backup") {
		t.Errorf("edits = %v", r.edits)
	}
}

func TestSelectInboundUnknownID(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.SelectInbound(ctx, 1, 99, r); err != nil {
		t.Fatalf("SelectInbound: %v", err)
	}
	if len(r.edits) != 1 || !strings.Contains(r.edits[0], "یافت نشد") {
		t.Errorf("edits = %v", r.edits)
	}
	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("state entered for unknown inbound: %+v", st)
	}
}

func TestCreateClientSuccess(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{inbounds: testInbounds()}
	eng, store := testEngine(api)
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.SelectInbound(ctx, 1, 1, r); err != nil {
		t.Fatalf("SelectInbound: %v", err)
	}
	handled, err := eng.HandleText(ctx, 1, "ali@example.com", r)
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !handled {
		t.Fatal("email not handled")
	}

	if len(api.added) != 1 {
		t.Fatalf("added = %d clients", len(api.added))
	}
	added := api.added[0]
	if added.inboundID != 1 {
		t.Errorf("inboundID = %d", added.inboundID)
	}
	if added.rec.Email != "ali@example.com" || !added.rec.Enable {
		t.Errorf("record = %+v", added.rec)
	}
	if !panel.ValidateUUID(added.rec.ID) {
		t.Errorf("generated UUID invalid: %q", added.rec.ID)
	}

	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("state survived completion: %+v", st)
	}

	report := r.lastMenu()
	for _, want := range []string{"ali@example.com", added.rec.ID, "VLESS", "vless://", "/sub/"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCreateClientPanelFailureClearsState(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{
		inbounds: testInbounds(),
		addErr: func(rec panel.ClientRecord) error {
			return &panel.APIError{Msg: "Duplicate email: ali"}
		},
	}
	eng, store := testEngine(api)
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.SelectInbound(ctx, 1, 1, r); err != nil {
		t.Fatalf("SelectInbound: %v", err)
	}
	if _, err := eng.HandleText(ctx, 1, "ali", r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("state survived failure: %+v", st)
	}
	if !strings.Contains(r.lastMenu(), "Duplicate email: ali") {
		t.Errorf("raw panel error not surfaced: %v", r.menus)
	}
}

func TestCreateClientMissingSelectionData(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)

	// State reached the email step without a recorded inbound selection.
	if _, err := store.SetState(ctx, 1, string(StepClientAwaitingEmail), nil); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	r := &fakeResponder{}
	if _, err := eng.HandleText(ctx, 1, "ali", r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := r.sentContaining("خطا در پردازش"); len(got) != 1 {
		t.Errorf("missing state-lost message: %v", r.sent)
	}
}

func TestUnknownStepClearedAndUnhandled(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{})
	if _, err := store.SetState(ctx, 2, "legacy_step", nil); err != nil {
		t.Fatalf("SetState: %v", err)
	}

	r := &fakeResponder{}
	handled, err := eng.HandleText(ctx, 2, "anything", r)
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if handled {
		t.Error("unknown step should not be handled")
	}
	st, _ := store.State(ctx, 2)
	if st != nil {
		t.Errorf("stale state not cleared: %+v", st)
	}
}
