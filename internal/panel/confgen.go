package panel

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// canonicalUUID accepts only the hyphenated lowercase-or-uppercase form with a
// RFC 4122 version and variant. google/uuid alone is too lenient: it also
// parses braced and un-hyphenated inputs, which the panel rejects.
var canonicalUUID = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// GenerateUUID returns a random v4 UUID for a new client identity.
func GenerateUUID() string {
	return uuid.NewString()
}

// ValidateUUID reports whether s is a canonical hyphenated RFC 4122 UUID.
func ValidateUUID(s string) bool {
	if !canonicalUUID.MatchString(s) {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ClientConfig carries the shareable connection artifacts for one client.
type ClientConfig struct {
	SubscriptionURL string
	ConfigURL       string
}

// GenerateClientConfig builds the subscription link and a protocol URI for a
// client bound to the panel's host. Unknown protocols fall back to a generic
// scheme://uuid@host:port#email form.
func GenerateClientConfig(protocol, clientUUID, email, panelURL string) (ClientConfig, error) {
	base := strings.TrimRight(panelURL, "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Hostname() == "" {
		return ClientConfig{}, fmt.Errorf("invalid panel URL %q", panelURL)
	}

	domain := parsed.Hostname()
	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	var configURL string
	switch strings.ToLower(protocol) {
	case "vless":
		configURL = fmt.Sprintf("vless://%s@%s:%s?security=tls&type=tcp&headerType=none#%s",
			clientUUID, domain, port, url.QueryEscape(email))
	case "vmess":
		payload, err := json.Marshal(map[string]string{
			"v":    "2",
			"ps":   email,
			"add":  domain,
			"port": port,
			"id":   clientUUID,
			"aid":  "0",
			"net":  "tcp",
			"type": "none",
			"host": "",
			"path": "",
			"tls":  "tls",
		})
		if err != nil {
			return ClientConfig{}, fmt.Errorf("encode vmess config: %w", err)
		}
		configURL = "vmess://" + base64.StdEncoding.EncodeToString(payload)
	case "trojan":
		configURL = fmt.Sprintf("trojan://%s@%s:%s?security=tls&type=tcp#%s",
			clientUUID, domain, port, url.QueryEscape(email))
	default:
		configURL = fmt.Sprintf("%s://%s@%s:%s#%s",
			protocol, clientUUID, domain, port, url.QueryEscape(email))
	}

	return ClientConfig{
		SubscriptionURL: base + "/sub/" + clientUUID,
		ConfigURL:       configURL,
	}, nil
}
