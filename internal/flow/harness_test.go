package flow

import (
	"context"
	"strings"

	"xuibot/internal/panel"
	"xuibot/internal/storage"
)

// fakeResponder records everything a flow sends, in order.
type fakeResponder struct {
	sent    []string
	menus   []string
	inlines []inlineMsg
	edits   []string
}

type inlineMsg struct {
	text string
	rows [][]Button
}

func (r *fakeResponder) Send(text string) error {
	r.sent = append(r.sent, text)
	return nil
}

func (r *fakeResponder) SendMenu(text string) error {
	r.menus = append(r.menus, text)
	return nil
}

func (r *fakeResponder) SendInline(text string, rows [][]Button) error {
	r.inlines = append(r.inlines, inlineMsg{text: text, rows: rows})
	return nil
}

func (r *fakeResponder) Edit(text string) error {
	r.edits = append(r.edits, text)
	return nil
}

func (r *fakeResponder) lastMenu() string {
	if len(r.menus) == 0 {
		return ""
	}
	return r.menus[len(r.menus)-1]
}

func (r *fakeResponder) sentContaining(sub string) []string {
	var out []string
	for _, s := range r.sent {
		if strings.Contains(s, sub) {
			out = append(out, s)
		}
	}
	return out
}

type addedClient struct {
	inboundID int64
	rec       panel.ClientRecord
}

// fakePanel answers ListInbounds from a fixed slice and records AddClient
// calls. addErr, when set, decides per record whether the add fails.
type fakePanel struct {
	inbounds []panel.Inbound
	listErr  error
	addErr   func(rec panel.ClientRecord) error
	added    []addedClient
}

func (p *fakePanel) ListInbounds(ctx context.Context) ([]panel.Inbound, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	return p.inbounds, nil
}

func (p *fakePanel) AddClient(ctx context.Context, inboundID int64, rec panel.ClientRecord) error {
	if p.addErr != nil {
		if err := p.addErr(rec); err != nil {
			return err
		}
	}
	p.added = append(p.added, addedClient{inboundID: inboundID, rec: rec})
	return nil
}

// testEngine builds an engine over a fresh memory store with a stubbed login
// and a fixed panel API.
func testEngine(api PanelAPI) (*Engine, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	eng := &Engine{
		Store: store,
		Login: func(ctx context.Context, panelURL, username, password string) (string, error) {
			return "session=test-token", nil
		},
		Dial: func(baseURL, session string) PanelAPI {
			return api
		},
	}
	return eng, store
}

func configure(store storage.Store, userID int64) {
	_ = store.SetPanelConfig(context.Background(), userID, storage.PanelConfig{
		URL:      "https://panel.example.com",
		Username: "admin",
		Password: "secret",
		Session:  "session=stored",
	})
}
