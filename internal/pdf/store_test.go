package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), "http://localhost:8080/")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	return store
}

func TestStore_WriteAndExists(t *testing.T) {
	store := newTestStore(t)
	leadID := "web-1700000000-abcd1234"

	if store.Exists(leadID) {
		t.Fatal("artifact should not exist yet")
	}

	path, err := store.Write(leadID, []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	if filepath.Base(path) != leadID+".pdf" {
		t.Fatalf("unexpected artifact path %q", path)
	}
	if !store.Exists(leadID) {
		t.Fatal("artifact should exist after write")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact back: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected artifact content %q", data)
	}
}

func TestStore_URL(t *testing.T) {
	store := newTestStore(t)
	got := store.URL("web-1700000000-abcd1234")
	want := "http://localhost:8080/pdf/web-1700000000-abcd1234.pdf"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestStore_RejectsUnsafeLeadIDs(t *testing.T) {
	store := newTestStore(t)

	for _, leadID := range []string{"", "../etc/passwd", "a/b", "web_1", "web 1"} {
		if ValidLeadID(leadID) {
			t.Fatalf("lead id %q should be invalid", leadID)
		}
		if _, err := store.Write(leadID, []byte("x")); err == nil {
			t.Fatalf("write should reject lead id %q", leadID)
		}
		if store.Exists(leadID) {
			t.Fatalf("exists should reject lead id %q", leadID)
		}
	}
}

func TestNewStore_RequiresDir(t *testing.T) {
	if _, err := NewStore("", "http://localhost:8080"); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
