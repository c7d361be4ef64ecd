package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// socketHints mark routes that look like WebSocket endpoints.
var socketHints = []string{"/ws", "/websocket", "/socket", "/live", "/stream"}

// WebSocketAuth attempts an unauthenticated upgrade on socket-like routes.
// A successful handshake without credentials means the realtime channel is
// open to anyone who can reach the host.
type WebSocketAuth struct {
	dialTimeout time.Duration
}

// NewWebSocketAuth creates the WebSocket authentication check.
func NewWebSocketAuth() *WebSocketAuth {
	return &WebSocketAuth{dialTimeout: 5 * time.Second}
}

// ID implements check.Check.
func (*WebSocketAuth) ID() string { return "websocket-auth" }

// Name implements check.Check.
func (*WebSocketAuth) Name() string { return "Unauthenticated WebSocket upgrade" }

// Description implements check.Check.
func (*WebSocketAuth) Description() string {
	return "Attempts WebSocket handshakes on socket-like routes without credentials."
}

// Run implements check.Check.
func (c *WebSocketAuth) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	var findings []check.Finding

	for _, route := range sc.Routes {
		if !looksLikeSocket(route.Path) {
			continue
		}

		wsURL := toWebSocketURL(sc.Config.BaseURL) + route.Path
		if !c.upgrades(ctx, wsURL) {
			continue
		}

		f := check.NewFinding(c.ID(), "WebSocket accepts unauthenticated connections", route.Path, check.RiskMedium)
		f.Category = "auth"
		f.Description = fmt.Sprintf("The WebSocket endpoint %s completed a handshake without any credentials.", route.Path)
		f.Assumption = "The channel carries user- or application-specific data that should require a session."
		f.Reproduction = fmt.Sprintf("Connect to %s with a plain WebSocket client and no Authorization header.", wsURL)
		f.Fix = "Require a session cookie or token during the upgrade request and close unauthenticated connections."
		findings = append(findings, f)
	}

	return findings, nil
}

// upgrades reports whether a handshake succeeds without credentials.
func (c *WebSocketAuth) upgrades(ctx context.Context, wsURL string) bool {
	dialer := websocket.Dialer{HandshakeTimeout: c.dialTimeout}

	conn, resp, err := dialer.DialContext(ctx, wsURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func looksLikeSocket(path string) bool {
	lower := strings.ToLower(path)
	for _, hint := range socketHints {
		if strings.HasSuffix(lower, hint) || strings.Contains(lower, hint+"/") {
			return true
		}
	}
	return false
}

func toWebSocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return "ws://" + baseURL
	}
}
