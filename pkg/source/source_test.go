package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newWikiServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "TestBot/1.0" {
			http.Error(w, "missing user agent", http.StatusForbidden)
			return
		}
		q := r.URL.Query()
		if q.Get("action") != "query" || q.Get("prop") != "extracts" || q.Get("explaintext") != "1" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("titles") {
		case "Cryptography":
			fmt.Fprint(w, `{"batchcomplete":true,"query":{"pages":[{"pageid":18934432,"ns":0,"title":"Cryptography","extract":"  Cryptography is the practice of secure communication.  "}]}}`)
		case "Nonexistent page":
			fmt.Fprint(w, `{"batchcomplete":true,"query":{"pages":[{"ns":0,"title":"Nonexistent page","missing":true}]}}`)
		case "Broken":
			fmt.Fprint(w, `{"query":`)
		case "Error":
			fmt.Fprint(w, `{"error":{"code":"maxlag","info":"Waiting for a database server"}}`)
		default:
			http.Error(w, "internal", http.StatusInternalServerError)
		}
	}))
}

func TestWikipediaFetch(t *testing.T) {
	srv := newWikiServer(t)
	defer srv.Close()

	wiki := NewWikipedia(WikipediaOptions{Endpoint: srv.URL, UserAgent: "TestBot/1.0"})
	ctx := context.Background()

	testCases := []struct {
		title       string
		exists      bool
		text        string
		wantErr     bool
		description string
	}{
		{"Cryptography", true, "Cryptography is the practice of secure communication.", false, "Existing page trimmed"},
		{"Nonexistent page", false, "", false, "Missing page is not an error"},
		{"Broken", false, "", true, "Truncated JSON"},
		{"Error", false, "", true, "API level error"},
		{"Anything else", false, "", true, "Non-200 status"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			page, err := wiki.Fetch(ctx, tc.title)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Fetch(%q) error = %v, wantErr %v", tc.title, err, tc.wantErr)
			}
			if page.ID != tc.title {
				t.Errorf("page.ID = %q, want %q", page.ID, tc.title)
			}
			if page.Exists != tc.exists || page.Text != tc.text {
				t.Errorf("Fetch(%q) = {%v %q}, want {%v %q}", tc.title, page.Exists, page.Text, tc.exists, tc.text)
			}
		})
	}
}

func TestWikipediaDefaults(t *testing.T) {
	wiki := NewWikipedia(WikipediaOptions{Language: "de"})
	if got := wiki.Endpoint(); got != "https://de.wikipedia.org/w/api.php" {
		t.Errorf("Endpoint() = %q", got)
	}
	if wiki.userAgent != DefaultUserAgent {
		t.Errorf("userAgent = %q, want default", wiki.userAgent)
	}
	if wiki.httpClient.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", wiki.httpClient.Timeout, DefaultTimeout)
	}
}

func TestWikipediaCanceledContext(t *testing.T) {
	srv := newWikiServer(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wiki := NewWikipedia(WikipediaOptions{Endpoint: srv.URL, UserAgent: "TestBot/1.0"})
	if _, err := wiki.Fetch(ctx, "Cryptography"); err == nil {
		t.Errorf("expected error for canceled context")
	}
}

func TestDirFetch(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "Machine learning.txt"), []byte("machine learning text"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "AC-DC.txt"), []byte("rock band"), 0644); err != nil {
		t.Fatal(err)
	}

	dir := NewDir(root)
	ctx := context.Background()

	page, err := dir.Fetch(ctx, "Machine learning")
	if err != nil || !page.Exists || page.Text != "machine learning text" {
		t.Errorf("Fetch(existing) = %+v, %v", page, err)
	}

	page, err = dir.Fetch(ctx, "AC/DC")
	if err != nil || !page.Exists || page.Text != "rock band" {
		t.Errorf("Fetch(sanitized) = %+v, %v", page, err)
	}

	page, err = dir.Fetch(ctx, "Quantum computing")
	if err != nil || page.Exists {
		t.Errorf("Fetch(missing) = %+v, %v", page, err)
	}

	page, err = dir.Fetch(ctx, "   ")
	if err != nil || page.Exists {
		t.Errorf("Fetch(blank) = %+v, %v", page, err)
	}
}

func TestFuncSource(t *testing.T) {
	var src Source = Func(func(ctx context.Context, id string) (Page, error) {
		return Page{ID: id, Exists: true, Text: "stub"}, nil
	})
	page, err := src.Fetch(context.Background(), "x")
	if err != nil || page.Text != "stub" {
		t.Errorf("Func.Fetch = %+v, %v", page, err)
	}
}
