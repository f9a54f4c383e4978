package panel

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
)

func TestGenerateUUIDIsValid(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := GenerateUUID()
		if !ValidateUUID(id) {
			t.Fatalf("generated UUID failed validation: %q", id)
		}
	}
}

func TestValidateUUID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"f3ab7b0c-a63b-442e-89f1-00759638f75d", true},
		{"88b552cc-b1e5-4da9-878c-e718d5594cbe", true},
		{"F3AB7B0C-A63B-442E-89F1-00759638F75D", true},
		{"not-a-uuid", false},
		{"", false},
		{"f3ab7b0ca63b442e89f100759638f75d", false},                // missing hyphens
		{"{f3ab7b0c-a63b-442e-89f1-00759638f75d}", false},          // braced
		{"f3ab7b0c-a63b-042e-89f1-00759638f75d", false},            // version 0
		{"f3ab7b0c-a63b-442e-c9f1-00759638f75d", false},            // bad variant
		{"f3ab7b0c-a63b-442e-89f1-00759638f75d-extra", false},      // trailing junk
		{" f3ab7b0c-a63b-442e-89f1-00759638f75d", false},           // leading space
		{"g3ab7b0c-a63b-442e-89f1-00759638f75d", false},            // non-hex
	}
	for _, tc := range cases {
		if got := ValidateUUID(tc.in); got != tc.want {
			t.Errorf("ValidateUUID(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestGenerateClientConfigVless(t *testing.T) {
	cfg, err := GenerateClientConfig("vless", "f3ab7b0c-a63b-442e-89f1-00759638f75d", "ali", "https://panel.example.com:2053/")
	if err != nil {
		t.Fatalf("GenerateClientConfig: %v", err)
	}
	want := "vless://f3ab7b0c-a63b-442e-89f1-00759638f75d@panel.example.com:2053?security=tls&type=tcp&headerType=none#ali"
	if cfg.ConfigURL != want {
		t.Errorf("ConfigURL = %q, want %q", cfg.ConfigURL, want)
	}
	if cfg.SubscriptionURL != "https://panel.example.com:2053/sub/f3ab7b0c-a63b-442e-89f1-00759638f75d" {
		t.Errorf("SubscriptionURL = %q", cfg.SubscriptionURL)
	}
}

func TestGenerateClientConfigVmess(t *testing.T) {
	cfg, err := GenerateClientConfig("vmess", "88b552cc-b1e5-4da9-878c-e718d5594cbe", "negin", "https://panel.example.com")
	if err != nil {
		t.Fatalf("GenerateClientConfig: %v", err)
	}
	if !strings.HasPrefix(cfg.ConfigURL, "vmess://") {
		t.Fatalf("ConfigURL = %q", cfg.ConfigURL)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(cfg.ConfigURL, "vmess://"))
	if err != nil {
		t.Fatalf("vmess payload not base64: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("vmess payload not JSON: %v", err)
	}
	if payload["id"] != "88b552cc-b1e5-4da9-878c-e718d5594cbe" || payload["ps"] != "negin" {
		t.Errorf("payload = %v", payload)
	}
	if payload["add"] != "panel.example.com" || payload["port"] != "443" {
		t.Errorf("host/port = %v/%v", payload["add"], payload["port"])
	}
}

func TestGenerateClientConfigDefaultScheme(t *testing.T) {
	cfg, err := GenerateClientConfig("shadowsocks", "f3ab7b0c-a63b-442e-89f1-00759638f75d", "user one", "http://panel.example.com")
	if err != nil {
		t.Fatalf("GenerateClientConfig: %v", err)
	}
	want := "shadowsocks://f3ab7b0c-a63b-442e-89f1-00759638f75d@panel.example.com:80#user+one"
	if cfg.ConfigURL != want {
		t.Errorf("ConfigURL = %q, want %q", cfg.ConfigURL, want)
	}
}

func TestGenerateClientConfigRejectsBadURL(t *testing.T) {
	if _, err := GenerateClientConfig("vless", GenerateUUID(), "ali", "not a url"); err == nil {
		t.Fatal("expected error for malformed panel URL")
	}
}
