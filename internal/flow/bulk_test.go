package flow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"xuibot/internal/panel"
)

func bulkList(n int) (string, []string) {
	var lines []string
	var emails []string
	for i := 0; i < n; i++ {
		email := fmt.Sprintf("user%02d", i)
		lines = append(lines, panel.GenerateUUID()+" "+email)
		emails = append(emails, email)
	}
	return strings.Join(lines, "\n"), emails
}

func enterBulkStep(t *testing.T, eng *Engine, userID, inboundID int64) {
	t.Helper()
	r := &fakeResponder{}
	if err := eng.SelectBulkInbound(context.Background(), userID, inboundID, r); err != nil {
		t.Fatalf("SelectBulkInbound: %v", err)
	}
}

func TestBulkInboundSelectionStoresState(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)

	r := &fakeResponder{}
	if err := eng.StartBulkImport(ctx, 1, r); err != nil {
		t.Fatalf("StartBulkImport: %v", err)
	}
	if len(r.inlines) != 1 {
		t.Fatalf("inlines = %d", len(r.inlines))
	}
	if btn := r.inlines[0].rows[0][0]; btn.Key != CallbackBulkInbound {
		t.Errorf("button key = %q", btn.Key)
	}

	if err := eng.SelectBulkInbound(ctx, 1, 4, r); err != nil {
		t.Fatalf("SelectBulkInbound: %v", err)
	}
	st, err := store.State(ctx, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st == nil || Step(st.Step) != StepBulkAwaitingList {
		t.Fatalf("state = %+v", st)
	}
}

func TestBulkImportProgressEveryFifthAndLast(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{inbounds: testInbounds()}
	eng, store := testEngine(api)
	configure(store, 1)
	enterBulkStep(t, eng, 1, 1)

	list, _ := bulkList(12)
	r := &fakeResponder{}
	handled, err := eng.HandleText(ctx, 1, list, r)
	if err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if !handled {
		t.Fatal("bulk list not handled")
	}

	progress := r.sentContaining("پیشرفت")
	want := []string{"⏳ پیشرفت: 5/12", "⏳ پیشرفت: 10/12", "⏳ پیشرفت: 12/12"}
	if len(progress) != len(want) {
		t.Fatalf("progress = %v, want %v", progress, want)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %q, want %q", i, progress[i], want[i])
		}
	}

	if len(api.added) != 12 {
		t.Errorf("added = %d, want 12", len(api.added))
	}
	st, _ := store.State(ctx, 1)
	if st != nil {
		t.Errorf("state survived completed batch: %+v", st)
	}
}

func TestBulkImportSequentialAndOrdered(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{inbounds: testInbounds()}
	eng, store := testEngine(api)
	configure(store, 1)
	enterBulkStep(t, eng, 1, 4)

	list, emails := bulkList(7)
	r := &fakeResponder{}
	if _, err := eng.HandleText(ctx, 1, list, r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if len(api.added) != len(emails) {
		t.Fatalf("added = %d, want %d", len(api.added), len(emails))
	}
	for i, a := range api.added {
		if a.rec.Email != emails[i] {
			t.Errorf("added[%d] = %q, want %q (order must match input)", i, a.rec.Email, emails[i])
		}
		if a.inboundID != 4 {
			t.Errorf("added[%d].inboundID = %d", i, a.inboundID)
		}
	}
}

func TestBulkReportCapsErrorsAtTen(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{
		inbounds: testInbounds(),
		addErr: func(rec panel.ClientRecord) error {
			return &panel.APIError{Msg: "rejected"}
		},
	}
	eng, store := testEngine(api)
	configure(store, 1)
	enterBulkStep(t, eng, 1, 1)

	list, _ := bulkList(15)
	r := &fakeResponder{}
	if _, err := eng.HandleText(ctx, 1, list, r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	report := r.lastMenu()
	if !strings.Contains(report, "✅ موفق: 0") || !strings.Contains(report, "❌ ناموفق: 15") {
		t.Errorf("counts wrong:\n%s", report)
	}
	if got := strings.Count(report, "\n- "); got != 10 {
		t.Errorf("error lines = %d, want 10:\n%s", got, report)
	}
	if !strings.Contains(report, "... و 5 خطای دیگر") {
		t.Errorf("overflow note missing:\n%s", report)
	}
}

func TestBulkPartialFailureContinues(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{
		inbounds: testInbounds(),
		addErr: func(rec panel.ClientRecord) error {
			if rec.Email == "user02" {
				return &panel.APIError{Msg: "Duplicate email: user02"}
			}
			return nil
		},
	}
	eng, store := testEngine(api)
	configure(store, 1)
	enterBulkStep(t, eng, 1, 1)

	list, _ := bulkList(5)
	r := &fakeResponder{}
	if _, err := eng.HandleText(ctx, 1, list, r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if len(api.added) != 4 {
		t.Errorf("added = %d, want 4", len(api.added))
	}
	report := r.lastMenu()
	if !strings.Contains(report, "✅ موفق: 4") || !strings.Contains(report, "❌ ناموفق: 1") {
		t.Errorf("counts wrong:\n%s", report)
	}
	if !strings.Contains(report, "user02: Duplicate email: user02") {
		t.Errorf("per-item error missing:\n%s", report)
	}
}

func TestBulkNoValidClientsKeepsState(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)
	enterBulkStep(t, eng, 1, 1)

	r := &fakeResponder{}
	if _, err := eng.HandleText(ctx, 1, "garbage\nstill garbage", r); err != nil {
		t.Fatalf("HandleText: %v", err)
	}

	if got := r.sentContaining("هیچ کلاینت معتبری یافت نشد"); len(got) != 1 {
		t.Errorf("missing no-valid-clients message: %v", r.sent)
	}
	// The user can resend the list without picking the inbound again.
	st, err := store.State(ctx, 1)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st == nil || Step(st.Step) != StepBulkAwaitingList {
		t.Errorf("state = %+v, want bulk step preserved", st)
	}
}

func TestHandleDocumentOnlyInBulkStep(t *testing.T) {
	ctx := context.Background()
	api := &fakePanel{inbounds: testInbounds()}
	eng, store := testEngine(api)
	configure(store, 1)

	r := &fakeResponder{}
	noFetch := func() (string, error) {
		t.Error("document downloaded outside the bulk step")
		return "", nil
	}
	handled, err := eng.HandleDocument(ctx, 1, noFetch, r)
	if err != nil {
		t.Fatalf("HandleDocument: %v", err)
	}
	if handled {
		t.Error("document handled outside the bulk step")
	}

	enterBulkStep(t, eng, 1, 1)
	fetch := func() (string, error) {
		return "f3ab7b0c-a63b-442e-89f1-00759638f75d ali", nil
	}
	handled, err = eng.HandleDocument(ctx, 1, fetch, r)
	if err != nil {
		t.Fatalf("HandleDocument: %v", err)
	}
	if !handled {
		t.Fatal("document not handled in bulk step")
	}
	if len(api.added) != 1 || api.added[0].rec.Email != "ali" {
		t.Errorf("added = %+v", api.added)
	}
}

func TestHandleDocumentFetchFailureReported(t *testing.T) {
	ctx := context.Background()
	eng, store := testEngine(&fakePanel{inbounds: testInbounds()})
	configure(store, 1)
	enterBulkStep(t, eng, 1, 1)

	r := &fakeResponder{}
	fetch := func() (string, error) { return "", fmt.Errorf("file too large: 2097153 bytes") }
	handled, err := eng.HandleDocument(ctx, 1, fetch, r)
	if err != nil {
		t.Fatalf("HandleDocument: %v", err)
	}
	if !handled {
		t.Fatal("failed fetch must still count as handled")
	}
	if got := r.sentContaining("خطا در خواندن فایل"); len(got) != 1 {
		t.Errorf("missing fetch failure message: %v", r.sent)
	}
	// The user keeps the step and can retry the upload.
	st, _ := store.State(ctx, 1)
	if st == nil || Step(st.Step) != StepBulkAwaitingList {
		t.Errorf("state = %+v, want bulk step preserved", st)
	}
}
