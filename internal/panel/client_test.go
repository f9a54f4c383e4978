package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginReturnsSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("username") != "admin" || r.PostForm.Get("password") != "secret" {
			t.Errorf("credentials not forwarded: %v", r.PostForm)
		}
		http.SetCookie(w, &http.Cookie{Name: "3x-ui", Value: "tok123"})
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	session, err := Login(context.Background(), srv.Client(), srv.URL+"/", "admin", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session != "3x-ui=tok123" {
		t.Errorf("session = %q", session)
	}
}

func TestLoginLegacySessionCookieName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	session, err := Login(context.Background(), srv.Client(), srv.URL, "admin", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session != "session=abc" {
		t.Errorf("session = %q", session)
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "wrong password"})
	}))
	defer srv.Close()

	_, err := Login(context.Background(), srv.Client(), srv.URL, "admin", "bad")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
	if authErr.Msg != "wrong password" {
		t.Errorf("msg = %q", authErr.Msg)
	}
}

func TestLoginMissingSessionCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	_, err := Login(context.Background(), srv.Client(), srv.URL, "admin", "secret")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want *AuthError", err)
	}
}

func TestListInbounds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/panel/api/inbounds/list" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Cookie"); got != "3x-ui=tok" {
			t.Errorf("cookie = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"obj": []map[string]any{
				{"id": 1, "remark": "office", "protocol": "vless"},
				{"id": 4, "remark": "", "protocol": "trojan"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "3x-ui=tok", srv.Client())
	inbounds, err := client.ListInbounds(context.Background())
	if err != nil {
		t.Fatalf("ListInbounds: %v", err)
	}
	if len(inbounds) != 2 {
		t.Fatalf("len = %d", len(inbounds))
	}
	if inbounds[0].ID != 1 || inbounds[0].Remark != "office" || inbounds[0].Protocol != "vless" {
		t.Errorf("inbounds[0] = %+v", inbounds[0])
	}
}

func TestAddClientStringifiesSettings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/panel/api/inbounds/addClient" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var payload struct {
			ID       int64  `json:"id"`
			Settings string `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.ID != 3 {
			t.Errorf("id = %d", payload.ID)
		}
		var settings struct {
			Clients []ClientRecord `json:"clients"`
		}
		if err := json.Unmarshal([]byte(payload.Settings), &settings); err != nil {
			t.Fatalf("settings is not a JSON string payload: %v", err)
		}
		if len(settings.Clients) != 1 || settings.Clients[0].Email != "ali" || !settings.Clients[0].Enable {
			t.Errorf("clients = %+v", settings.Clients)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "session=tok", srv.Client())
	rec := NewClientRecord("88b552cc-b1e5-4da9-878c-e718d5594cbe", "ali")
	if err := client.AddClient(context.Background(), 3, rec); err != nil {
		t.Fatalf("AddClient: %v", err)
	}
}

func TestAddClientPanelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "msg": "Duplicate email: ali"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "session=tok", srv.Client())
	err := client.AddClient(context.Background(), 3, NewClientRecord(GenerateUUID(), "ali"))
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Msg != "Duplicate email: ali" {
		t.Errorf("msg = %q", apiErr.Msg)
	}
}

func TestRequestNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "session=expired", srv.Client())
	_, err := client.ListInbounds(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.Status)
	}
}
