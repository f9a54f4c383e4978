package flow

import (
	"errors"
	"net/url"
	"strings"

	"xuibot/internal/panel"
)

// PendingClient is one validated entry of a bulk import list.
type PendingClient struct {
	UUID  string
	Email string
}

// ParseClientList extracts ordered (uuid, email) pairs from free text, one
// pair per line. Malformed lines are skipped, never fatal: lines with fewer
// than two whitespace-separated tokens and lines whose first token is not a
// canonical UUID are dropped and counted in skipped. Blank lines are ignored
// silently. Tokens past the second are ignored.
func ParseClientList(input string) (clients []PendingClient, skipped int) {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !panel.ValidateUUID(fields[0]) {
			skipped++
			continue
		}
		clients = append(clients, PendingClient{UUID: fields[0], Email: fields[1]})
	}
	return clients, skipped
}

// ValidatePanelURL checks the address entered during setup. The returned error
// text is shown to the user as-is.
func ValidatePanelURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("آدرس پنل نمی‌تواند خالی باشد")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return errors.New("فرمت آدرس اشتباه است")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("آدرس باید با http:// یا https:// شروع شود")
	}
	if parsed.Hostname() == "" {
		return errors.New("آدرس معتبر نیست")
	}
	return nil
}
