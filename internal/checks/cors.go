package checks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// probeOrigin is an attacker-controlled origin used to test reflection.
const probeOrigin = "https://evil.example"

// CORS tests whether the target reflects arbitrary origins or combines a
// wildcard origin with credentials.
type CORS struct{}

// NewCORS creates the CORS misconfiguration check.
func NewCORS() *CORS { return &CORS{} }

// ID implements check.Check.
func (*CORS) ID() string { return "cors" }

// Name implements check.Check.
func (*CORS) Name() string { return "CORS misconfiguration" }

// Description implements check.Check.
func (*CORS) Description() string {
	return "Sends a foreign Origin header and inspects the Access-Control-Allow-* response."
}

// Run implements check.Check.
func (c *CORS) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	client := sc.API()

	resp, err := client.Request(ctx, http.MethodGet, "/", nil, map[string]string{
		"Origin": probeOrigin,
	})
	if err != nil {
		return nil, err
	}

	allowOrigin := resp.Headers.Get("Access-Control-Allow-Origin")
	allowCreds := resp.Headers.Get("Access-Control-Allow-Credentials")

	var findings []check.Finding

	switch {
	case allowOrigin == probeOrigin:
		risk := check.RiskMedium
		if allowCreds == "true" {
			risk = check.RiskHigh
		}
		f := check.NewFinding(c.ID(), "Reflected CORS origin", "/", risk)
		f.Category = "cors"
		f.Description = fmt.Sprintf("The server reflects the request Origin (%s) in Access-Control-Allow-Origin.", probeOrigin)
		if allowCreds == "true" {
			f.Description += " Credentials are allowed, so any site can read authenticated responses."
		}
		f.Assumption = "Origin reflection applies to all endpoints, not only the root document."
		f.Reproduction = fmt.Sprintf("curl -sI -H 'Origin: %s' %s/ | grep -i access-control", probeOrigin, sc.Config.BaseURL)
		f.Fix = "Validate the Origin header against an explicit allowlist instead of echoing it back."
		findings = append(findings, f)

	case allowOrigin == "*" && allowCreds == "true":
		f := check.NewFinding(c.ID(), "Wildcard CORS with credentials", "/", check.RiskHigh)
		f.Category = "cors"
		f.Description = "Access-Control-Allow-Origin is * while Access-Control-Allow-Credentials is true."
		f.Assumption = "The header combination is served consistently across endpoints."
		f.Reproduction = fmt.Sprintf("curl -sI -H 'Origin: %s' %s/ | grep -i access-control", probeOrigin, sc.Config.BaseURL)
		f.Fix = "Never combine a wildcard origin with credentials; name allowed origins explicitly."
		findings = append(findings, f)
	}

	return findings, nil
}
