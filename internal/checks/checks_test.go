package checks

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/PentesterFlow/LocalScan/internal/check"
	"github.com/PentesterFlow/LocalScan/internal/discovery"
	"github.com/PentesterFlow/LocalScan/internal/httpclient"
)

// fakeClient serves canned responses per path for check tests.
type fakeClient struct {
	mu        sync.Mutex
	responses map[string]*httpclient.Response
	requests  []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{responses: make(map[string]*httpclient.Response)}
}

func (f *fakeClient) serve(path string, status int, headers map[string]string, body string) {
	h := http.Header{}
	for k, v := range headers {
		h.Set(k, v)
	}
	f.responses[path] = &httpclient.Response{Status: status, Headers: h, Body: []byte(body)}
}

func (f *fakeClient) Request(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*httpclient.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, method+" "+path)
	f.mu.Unlock()

	if resp, ok := f.responses[path]; ok {
		return resp, nil
	}
	return &httpclient.Response{Status: http.StatusNotFound, Headers: http.Header{}}, nil
}

func testContext(client *fakeClient, routes ...string) *check.Context {
	var rs []discovery.Route
	for _, path := range routes {
		rs = append(rs, discovery.Route{Path: path, Method: http.MethodGet})
	}
	return &check.Context{
		Config: check.TargetConfig{
			BaseURL:  "http://localhost:3000",
			SafeMode: true,
		},
		FrontendClient: client,
		Routes:         rs,
	}
}

// =============================================================================
// SecurityHeaders Tests
// =============================================================================

func TestSecurityHeaders_AllMissing(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, nil, "<html></html>")

	findings, err := NewSecurityHeaders().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 4 {
		t.Fatalf("findings = %d, want 4 missing headers", len(findings))
	}
}

func TestSecurityHeaders_AllPresent(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, map[string]string{
		"Content-Security-Policy":   "default-src 'self'",
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"Strict-Transport-Security": "max-age=31536000",
	}, "")

	findings, err := NewSecurityHeaders().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("findings = %d, want none", len(findings))
	}
}

// =============================================================================
// CORS Tests
// =============================================================================

func TestCORS_ReflectedOriginWithCredentials(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, map[string]string{
		"Access-Control-Allow-Origin":      "https://evil.example",
		"Access-Control-Allow-Credentials": "true",
	}, "")

	findings, err := NewCORS().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Risk != check.RiskHigh {
		t.Errorf("risk = %s, want high when credentials are allowed", findings[0].Risk)
	}
}

func TestCORS_ReflectedOriginWithoutCredentials(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, map[string]string{
		"Access-Control-Allow-Origin": "https://evil.example",
	}, "")

	findings, err := NewCORS().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || findings[0].Risk != check.RiskMedium {
		t.Errorf("want one medium finding, got %v", findings)
	}
}

func TestCORS_WildcardWithCredentials(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, map[string]string{
		"Access-Control-Allow-Origin":      "*",
		"Access-Control-Allow-Credentials": "true",
	}, "")

	findings, err := NewCORS().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || findings[0].Risk != check.RiskHigh {
		t.Errorf("want one high finding, got %v", findings)
	}
}

func TestCORS_StrictPolicyClean(t *testing.T) {
	client := newFakeClient()
	client.serve("/", 200, map[string]string{
		"Access-Control-Allow-Origin": "https://app.example.com",
	}, "")

	findings, err := NewCORS().Run(context.Background(), testContext(client))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("strict allowlist flagged: %v", findings)
	}
}

// =============================================================================
// Exposure Tests
// =============================================================================

func TestExposure_ReadableEnvFile(t *testing.T) {
	client := newFakeClient()
	client.serve("/.env", 200, nil, "DB_PASSWORD=hunter2")

	findings, err := NewExposure().Run(context.Background(), testContext(client, "/.env"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Risk != check.RiskCritical {
		t.Errorf("risk = %s, want critical for .env", findings[0].Risk)
	}
}

func TestExposure_ProtectedPathNotFlagged(t *testing.T) {
	client := newFakeClient()
	client.serve("/.env", 403, nil, "forbidden")

	findings, err := NewExposure().Run(context.Background(), testContext(client, "/.env"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Error("a 403 is discovery-existing but not an exposure")
	}
}

func TestExposure_EmptyBodyNotFlagged(t *testing.T) {
	client := newFakeClient()
	client.serve("/backup", 200, nil, "")

	findings, err := NewExposure().Run(context.Background(), testContext(client, "/backup"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Error("an empty 200 body carries no exposed content")
	}
}

func TestExposure_BoringRoutesIgnored(t *testing.T) {
	client := newFakeClient()
	client.serve("/about", 200, nil, "hello")

	findings, err := NewExposure().Run(context.Background(), testContext(client, "/about"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("non-sensitive route flagged: %v", findings)
	}
}

// =============================================================================
// Forms Tests
// =============================================================================

func TestForms_PostWithoutToken(t *testing.T) {
	client := newFakeClient()
	client.serve("/login", 200, map[string]string{"Content-Type": "text/html"},
		`<html><body><form action="/login" method="post">
			<input name="username"><input name="password" type="password">
		</form></body></html>`)

	findings, err := NewForms().Run(context.Background(), testContext(client, "/login"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
}

func TestForms_PostWithTokenClean(t *testing.T) {
	client := newFakeClient()
	client.serve("/login", 200, map[string]string{"Content-Type": "text/html"},
		`<form action="/login" method="POST">
			<input type="hidden" name="csrf_token" value="abc">
			<input name="username">
		</form>`)

	findings, err := NewForms().Run(context.Background(), testContext(client, "/login"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("form with csrf_token flagged: %v", findings)
	}
}

func TestForms_GetFormsIgnored(t *testing.T) {
	client := newFakeClient()
	client.serve("/search", 200, map[string]string{"Content-Type": "text/html"},
		`<form action="/search" method="get"><input name="q"></form>`)

	findings, err := NewForms().Run(context.Background(), testContext(client, "/search"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Error("GET forms do not change state and must not be flagged")
	}
}

func TestForms_PasswordViaGet(t *testing.T) {
	client := newFakeClient()
	client.serve("/login", 200, map[string]string{"Content-Type": "text/html"},
		`<form action="/login" method="get">
			<input name="username"><input name="password" type="password">
		</form>`)

	findings, err := NewForms().Run(context.Background(), testContext(client, "/login"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	if findings[0].Name != "Password submitted via GET" {
		t.Errorf("finding = %q", findings[0].Name)
	}
}

func TestParseForms(t *testing.T) {
	forms := parseForms([]byte(`
		<form action="/a" method="post"><input name="x"><textarea name="y"></textarea></form>
		<form action="/b"><select name="z"></select></form>`))

	if len(forms) != 2 {
		t.Fatalf("parseForms() = %d forms, want 2", len(forms))
	}
	if forms[0].method != "POST" || len(forms[0].inputs) != 2 {
		t.Errorf("form[0] = %+v", forms[0])
	}
	if forms[1].method != "GET" {
		t.Errorf("method defaults to GET, got %s", forms[1].method)
	}
}

// =============================================================================
// Race Tests
// =============================================================================

func TestRace_SkipsInSafeMode(t *testing.T) {
	client := newFakeClient()
	client.serve("/cart/add", 200, nil, "ok")

	sc := testContext(client, "/cart/add")
	findings, err := NewRace().Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 || len(client.requests) != 0 {
		t.Error("safe mode must skip race probing entirely")
	}
}

func TestRace_AllDuplicatesAcceptedFlagged(t *testing.T) {
	client := newFakeClient()
	client.serve("/cart/add", 200, nil, "ok")

	sc := testContext(client, "/cart/add")
	sc.Config.SafeMode = false

	findings, err := NewRace().Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1 when every burst request succeeds", len(findings))
	}
	if findings[0].Risk != check.RiskHigh {
		t.Errorf("risk = %s, want high", findings[0].Risk)
	}
	if len(client.requests) != raceBurst {
		t.Errorf("sent %d requests, want a burst of %d", len(client.requests), raceBurst)
	}
}

func TestRace_RejectedDuplicatesClean(t *testing.T) {
	client := newFakeClient()
	client.serve("/order", 409, nil, "conflict")

	sc := testContext(client, "/order")
	sc.Config.SafeMode = false

	findings, err := NewRace().Run(context.Background(), sc)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Error("conflict responses mean the endpoint guards against duplicates")
	}
}

func TestLooksMutating(t *testing.T) {
	cases := map[string]bool{
		"/cart/add":     true,
		"/api/transfer": true,
		"/about":        false,
		"/static/x.css": false,
	}
	for path, want := range cases {
		if got := looksMutating(path); got != want {
			t.Errorf("looksMutating(%q) = %v, want %v", path, got, want)
		}
	}
}

// =============================================================================
// WebSocket Helper Tests
// =============================================================================

func TestLooksLikeSocket(t *testing.T) {
	cases := map[string]bool{
		"/ws":          true,
		"/api/ws":      true,
		"/websocket":   true,
		"/live":        true,
		"/ws/updates":  true,
		"/wsupport":    false,
		"/about":       false,
	}
	for path, want := range cases {
		if got := looksLikeSocket(path); got != want {
			t.Errorf("looksLikeSocket(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestToWebSocketURL(t *testing.T) {
	if got := toWebSocketURL("http://localhost:3000"); got != "ws://localhost:3000" {
		t.Errorf("toWebSocketURL(http) = %q", got)
	}
	if got := toWebSocketURL("https://localhost:3000"); got != "wss://localhost:3000" {
		t.Errorf("toWebSocketURL(https) = %q", got)
	}
}

// =============================================================================
// Registry Tests
// =============================================================================

func TestDefault_OrderAndUniqueIDs(t *testing.T) {
	list := Default()
	if len(list) == 0 {
		t.Fatal("Default() returned no checks")
	}

	seen := make(map[string]bool)
	for _, c := range list {
		if c.ID() == "" {
			t.Error("check with empty ID")
		}
		if seen[c.ID()] {
			t.Errorf("duplicate check ID %q", c.ID())
		}
		seen[c.ID()] = true
	}

	if list[0].ID() != "security-headers" {
		t.Errorf("first check = %s; passive checks run before invasive ones", list[0].ID())
	}
}
