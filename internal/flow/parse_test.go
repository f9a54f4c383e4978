package flow

import (
	"strings"
	"testing"
)

func TestParseClientListSkipsBadLines(t *testing.T) {
	input := "f3ab7b0c-a63b-442e-89f1-00759638f75d ali\nnot-a-uuid bob\n\n88b552cc-b1e5-4da9-878c-e718d5594cbe  negin"

	got, skipped := ParseClientList(input)

	want := []PendingClient{
		{UUID: "f3ab7b0c-a63b-442e-89f1-00759638f75d", Email: "ali"},
		{UUID: "88b552cc-b1e5-4da9-878c-e718d5594cbe", Email: "negin"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d clients, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("clients[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	// The bad-uuid line counts; the blank line does not.
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestParseClientListIdempotentOnValidSubset(t *testing.T) {
	input := "f3ab7b0c-a63b-442e-89f1-00759638f75d ali\nbroken line without uuid\n88b552cc-b1e5-4da9-878c-e718d5594cbe negin"

	first, _ := ParseClientList(input)

	var lines []string
	for _, c := range first {
		lines = append(lines, c.UUID+" "+c.Email)
	}
	second, skipped := ParseClientList(strings.Join(lines, "\n"))

	if skipped != 0 {
		t.Errorf("reparse skipped %d valid lines", skipped)
	}
	if len(first) != len(second) {
		t.Fatalf("reparse changed count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("reparse changed entry %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestParseClientListSingleTokenLineSkipped(t *testing.T) {
	got, skipped := ParseClientList("f3ab7b0c-a63b-442e-89f1-00759638f75d\n")
	if len(got) != 0 {
		t.Fatalf("got %+v, want empty", got)
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
}

func TestParseClientListExtraTokensIgnored(t *testing.T) {
	got, _ := ParseClientList("f3ab7b0c-a63b-442e-89f1-00759638f75d ali extra tokens here")
	if len(got) != 1 || got[0].Email != "ali" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseClientListHandlesCRLF(t *testing.T) {
	got, _ := ParseClientList("f3ab7b0c-a63b-442e-89f1-00759638f75d ali\r\n88b552cc-b1e5-4da9-878c-e718d5594cbe negin\r\n")
	if len(got) != 2 {
		t.Fatalf("got %+v, want 2 entries", got)
	}
	if got[0].Email != "ali" || got[1].Email != "negin" {
		t.Errorf("emails = %q, %q", got[0].Email, got[1].Email)
	}
}

func TestParseClientListEmptyInput(t *testing.T) {
	if got, skipped := ParseClientList(""); len(got) != 0 || skipped != 0 {
		t.Fatalf("got %+v (skipped %d), want empty", got, skipped)
	}
	if got, skipped := ParseClientList("\n\n  \n"); len(got) != 0 || skipped != 0 {
		t.Fatalf("got %+v (skipped %d), want empty", got, skipped)
	}
}

func TestValidatePanelURL(t *testing.T) {
	valid := []string{
		"https://panel.example.com",
		"http://10.0.0.5:2053",
		"https://panel.example.com:8443/path",
	}
	for _, u := range valid {
		if err := ValidatePanelURL(u); err != nil {
			t.Errorf("ValidatePanelURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"panel.example.com",
		"ftp://panel.example.com",
		"https://",
	}
	for _, u := range invalid {
		if err := ValidatePanelURL(u); err == nil {
			t.Errorf("ValidatePanelURL(%q) = nil, want error", u)
		}
	}
}
