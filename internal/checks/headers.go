package checks

import (
	"context"
	"fmt"
	"net/http"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

// requiredHeaders maps each security header to the risk of omitting it.
var requiredHeaders = []struct {
	header string
	risk   check.Risk
	why    string
	fix    string
}{
	{
		header: "Content-Security-Policy",
		risk:   check.RiskMedium,
		why:    "Without a CSP, injected scripts execute with no restrictions.",
		fix:    "Add a Content-Security-Policy header; start with default-src 'self' and tighten from there.",
	},
	{
		header: "X-Frame-Options",
		risk:   check.RiskMedium,
		why:    "Pages can be framed by other origins, enabling clickjacking.",
		fix:    "Set X-Frame-Options: DENY (or frame-ancestors in CSP).",
	},
	{
		header: "X-Content-Type-Options",
		risk:   check.RiskLow,
		why:    "Browsers may MIME-sniff responses into executable types.",
		fix:    "Set X-Content-Type-Options: nosniff.",
	},
	{
		header: "Strict-Transport-Security",
		risk:   check.RiskLow,
		why:    "Returning clients are not forced onto HTTPS.",
		fix:    "Set Strict-Transport-Security with a max-age of at least six months once HTTPS is in place.",
	},
}

// SecurityHeaders audits the root document for missing security headers.
type SecurityHeaders struct{}

// NewSecurityHeaders creates the security headers check.
func NewSecurityHeaders() *SecurityHeaders { return &SecurityHeaders{} }

// ID implements check.Check.
func (*SecurityHeaders) ID() string { return "security-headers" }

// Name implements check.Check.
func (*SecurityHeaders) Name() string { return "Security response headers" }

// Description implements check.Check.
func (*SecurityHeaders) Description() string {
	return "Checks the root document for missing security response headers."
}

// Run implements check.Check.
func (c *SecurityHeaders) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	resp, err := sc.FrontendClient.Request(ctx, http.MethodGet, "/", nil, nil)
	if err != nil {
		return nil, err
	}

	var findings []check.Finding
	for _, required := range requiredHeaders {
		if resp.Headers.Get(required.header) != "" {
			continue
		}

		f := check.NewFinding(c.ID(), "Missing "+required.header, "/", required.risk)
		f.Category = "headers"
		f.Description = fmt.Sprintf("The response for / does not set %s. %s", required.header, required.why)
		f.Assumption = "The root document is representative of how the application sets response headers."
		f.Reproduction = fmt.Sprintf("curl -sI %s/ | grep -i %s", sc.Config.BaseURL, required.header)
		f.Fix = required.fix
		findings = append(findings, f)
	}

	return findings, nil
}
