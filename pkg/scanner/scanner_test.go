package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/PentesterFlow/LocalScan/internal/history"
)

// configFor builds a scan config pointing at a test server, with cache and
// history isolated in a temp dir.
func configFor(t *testing.T, srv *httptest.Server) *Config {
	t.Helper()

	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()

	wordlist := filepath.Join(dir, "wordlist.txt")
	if err := os.WriteFile(wordlist, []byte("/\n/admin\n/.env\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c := DefaultConfig()
	c.Host = u.Hostname()
	c.Port = port
	c.AutoContinue = true
	c.WordlistPath = wordlist
	c.CachePath = filepath.Join(dir, "routes.json")
	c.HistoryPath = filepath.Join(dir, "history.db")
	return c
}

// =============================================================================
// Scanner Tests
// =============================================================================

func TestScanner_Run(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/admin":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	config := configFor(t, srv)

	s, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	report := result.Report
	if len(report.Routes) != 2 {
		t.Errorf("routes = %v, want / and /admin", report.Routes)
	}
	if result.ChecksRun == 0 {
		t.Error("no checks ran")
	}

	// The root document sets no security headers, so findings must exist.
	if len(report.Findings) == 0 {
		t.Error("expected security header findings for a bare response")
	}
	for _, f := range report.Findings {
		if f.ID == "" || f.CheckID == "" || f.Risk == "" {
			t.Errorf("finding missing required fields: %+v", f)
		}
	}
}

func TestScanner_RunRecordsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	config := configFor(t, srv)

	s, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	store, err := history.Open(config.HistoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	records, err := store.List("")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("history records = %d, want 1", len(records))
	}
	if records[0].Target != config.BaseURL() {
		t.Errorf("history target = %q, want %q", records[0].Target, config.BaseURL())
	}
}

func TestScanner_UnreachableTargetIsFatal(t *testing.T) {
	config := DefaultConfig()
	config.Host = "127.0.0.1"
	config.Port = 1 // nothing listens here
	config.CachePath = filepath.Join(t.TempDir(), "routes.json")

	s, err := New(config, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("Run() against a dead port must fail fast")
	}
}

func TestScanner_InvalidConfigRejected(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil, nil); err == nil {
		t.Error("New() without a port should fail")
	}
}
