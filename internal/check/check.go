// Package check defines the vulnerability check plugin interface and the
// scheduler that runs an ordered list of checks against a shared context,
// isolating each check's failures from the rest of the scan.
package check

import (
	"context"

	"github.com/PentesterFlow/LocalScan/internal/discovery"
	"github.com/PentesterFlow/LocalScan/internal/httpclient"
)

// Check is an independent, pluggable probe. The scheduler depends only on
// this shape.
type Check interface {
	ID() string
	Name() string
	Description() string
	Run(ctx context.Context, sc *Context) ([]Finding, error)
}

// TargetConfig is the scan configuration visible to checks.
type TargetConfig struct {
	BaseURL string
	APIURL  string // empty when the target has no separate API origin
	Token   string

	// SafeMode tells checks to skip destructive or high-volume probes.
	SafeMode bool
}

// Context is assembled once per scan and passed to every check. Routes are
// immutable after discovery completes; checks must treat the whole context
// as read-only.
type Context struct {
	Config         TargetConfig
	FrontendClient httpclient.Requester
	APIClient      httpclient.Requester
	Routes         []discovery.Route
}

// API returns the client for the API origin, falling back to the frontend
// client when the target has no separate API.
func (c *Context) API() httpclient.Requester {
	if c.APIClient != nil {
		return c.APIClient
	}
	return c.FrontendClient
}

// HTMLRoutes filters the discovered routes to those likely to serve HTML.
func (c *Context) HTMLRoutes() []discovery.Route {
	var html []discovery.Route
	for _, r := range c.Routes {
		if !looksLikeAsset(r.Path) {
			html = append(html, r)
		}
	}
	return html
}

func looksLikeAsset(path string) bool {
	for _, ext := range []string{".js", ".css", ".png", ".jpg", ".gif", ".svg", ".ico", ".woff", ".woff2", ".map", ".json", ".xml", ".txt"} {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}
