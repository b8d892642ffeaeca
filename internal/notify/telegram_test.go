package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cartonq/cartonq-backend/internal/quote"
	"github.com/cartonq/cartonq-backend/pkg/config"
)

func writeArtifact(t *testing.T) quote.Artifact {
	t.Helper()
	path := filepath.Join(t.TempDir(), "web-1700000000-abcd1234.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("writing artifact: %v", err)
	}
	return quote.Artifact{Path: path}
}

func newTestNotifier(t *testing.T, serverURL string) *TelegramNotifier {
	t.Helper()
	notifier, err := NewTelegramNotifier(config.TelegramConfig{
		BotToken:      "token",
		ManagerChatID: "42",
	})
	if err != nil {
		t.Fatalf("creating notifier: %v", err)
	}
	notifier.baseURL = serverURL
	return notifier
}

func TestSend_PostsMultipartDocument(t *testing.T) {
	var (
		gotPath    string
		gotChatID  string
		gotCaption string
		gotName    string
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		gotChatID = r.FormValue("chat_id")
		gotCaption = r.FormValue("caption")

		file, header, err := r.FormFile("document")
		if err != nil {
			t.Errorf("reading document part: %v", err)
		} else {
			defer file.Close()
			gotName = header.Filename
			buf := make([]byte, 16)
			n, _ := file.Read(buf)
			gotBody = string(buf[:n])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	notifier := newTestNotifier(t, server.URL)
	artifact := writeArtifact(t)

	err := notifier.Send(context.Background(), artifact, "Quote web-1700000000-abcd1234 - 0201 300x200x150, 1000 pcs", "web-1700000000-abcd1234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/bottoken/sendDocument" {
		t.Fatalf("unexpected API path %q", gotPath)
	}
	if gotChatID != "42" {
		t.Fatalf("unexpected chat id %q", gotChatID)
	}
	if !strings.Contains(gotCaption, "0201 300x200x150") {
		t.Fatalf("unexpected caption %q", gotCaption)
	}
	if gotName != "web-1700000000-abcd1234.pdf" {
		t.Fatalf("unexpected document name %q", gotName)
	}
	if gotBody != "%PDF-1.4" {
		t.Fatalf("unexpected document body %q", gotBody)
	}
}

func TestSend_APIRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	notifier := newTestNotifier(t, server.URL)
	err := notifier.Send(context.Background(), writeArtifact(t), "caption", "lead")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestSend_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := newTestNotifier(t, server.URL)
	if err := notifier.Send(context.Background(), writeArtifact(t), "caption", "lead"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestSend_MissingArtifact(t *testing.T) {
	notifier := newTestNotifier(t, "http://unused.example")
	err := notifier.Send(context.Background(), quote.Artifact{Path: "/nonexistent/file.pdf"}, "caption", "lead")
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestNewTelegramNotifier_RequiresConfig(t *testing.T) {
	if _, err := NewTelegramNotifier(config.TelegramConfig{}); err == nil {
		t.Fatal("expected error for empty config")
	}
	if _, err := NewTelegramNotifier(config.TelegramConfig{BotToken: "token"}); err == nil {
		t.Fatal("expected error for missing chat id")
	}
}
