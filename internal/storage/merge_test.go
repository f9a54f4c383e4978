package storage

import "testing"

func TestMergeDataNewWinsPerKey(t *testing.T) {
	oldData := map[string]any{"url": "https://a.example.com", "username": "admin"}
	newData := map[string]any{"username": "root", "password": "secret"}

	merged := MergeData(oldData, newData)

	if merged["url"] != "https://a.example.com" {
		t.Errorf("url = %v, want preserved old value", merged["url"])
	}
	if merged["username"] != "root" {
		t.Errorf("username = %v, want new value", merged["username"])
	}
	if merged["password"] != "secret" {
		t.Errorf("password = %v, want new value", merged["password"])
	}
}

func TestMergeDataDoesNotMutateInputs(t *testing.T) {
	oldData := map[string]any{"url": "https://a.example.com"}
	newData := map[string]any{"username": "admin"}

	_ = MergeData(oldData, newData)

	if len(oldData) != 1 {
		t.Errorf("oldData mutated: %v", oldData)
	}
	if len(newData) != 1 {
		t.Errorf("newData mutated: %v", newData)
	}
}

func TestMergeDataNilInputs(t *testing.T) {
	if got := MergeData(nil, nil); len(got) != 0 {
		t.Errorf("MergeData(nil, nil) = %v, want empty map", got)
	}
	if got := MergeData(nil, map[string]any{"a": 1}); got["a"] != 1 {
		t.Errorf("MergeData(nil, data) = %v", got)
	}
	got := MergeData(map[string]any{"a": 1}, nil)
	if got["a"] != 1 {
		t.Errorf("MergeData(data, nil) = %v", got)
	}
}
