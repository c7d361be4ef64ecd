package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PentesterFlow/LocalScan/internal/check"
)

type sensitivePattern struct {
	substring string
	risk      check.Risk
	name      string
}

// sensitivePatterns maps path substrings to the risk of serving them.
// Order matters: the first match wins, so more specific entries come first.
var sensitivePatterns = []sensitivePattern{
	{".env", check.RiskCritical, "Environment file exposed"},
	{".git", check.RiskCritical, "Git repository metadata exposed"},
	{".htpasswd", check.RiskCritical, "Credential file exposed"},
	{"dump.sql", check.RiskCritical, "Database dump exposed"},
	{"database.sql", check.RiskCritical, "Database dump exposed"},
	{"backup", check.RiskHigh, "Backup artifact exposed"},
	{"actuator/env", check.RiskHigh, "Actuator environment endpoint exposed"},
	{"actuator", check.RiskMedium, "Actuator endpoint exposed"},
	{"phpinfo", check.RiskHigh, "phpinfo page exposed"},
	{"server-status", check.RiskMedium, "Server status page exposed"},
	{"docker-compose", check.RiskHigh, "Deployment descriptor exposed"},
	{"config.json", check.RiskMedium, "Configuration file exposed"},
	{"config.yml", check.RiskMedium, "Configuration file exposed"},
}

// Exposure re-fetches discovered routes that look sensitive and reports
// the ones actually served with a 200.
type Exposure struct{}

// NewExposure creates the sensitive file exposure check.
func NewExposure() *Exposure { return &Exposure{} }

// ID implements check.Check.
func (*Exposure) ID() string { return "exposure" }

// Name implements check.Check.
func (*Exposure) Name() string { return "Sensitive path exposure" }

// Description implements check.Check.
func (*Exposure) Description() string {
	return "Verifies that sensitive discovered routes are actually readable."
}

// Run implements check.Check.
func (c *Exposure) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	var findings []check.Finding

	for _, route := range sc.Routes {
		pattern, matched := classify(route.Path)
		if !matched {
			continue
		}

		// Discovery counts 401/403 as existing; only a readable body is
		// an exposure.
		resp, err := sc.FrontendClient.Request(ctx, http.MethodGet, route.Path, nil, nil)
		if err != nil || resp.Status != http.StatusOK || len(resp.Body) == 0 {
			continue
		}

		f := check.NewFinding(c.ID(), pattern.name, route.Path, pattern.risk)
		f.Category = "exposure"
		f.Description = fmt.Sprintf("%s returns HTTP 200 with %d bytes of content.", route.Path, len(resp.Body))
		f.Assumption = "The content at this path is not intentionally public."
		f.Reproduction = fmt.Sprintf("curl -s %s%s", sc.Config.BaseURL, route.Path)
		f.Fix = "Remove the artifact from the web root or block the path at the server level."
		findings = append(findings, f)
	}

	return findings, nil
}

func classify(path string) (sensitivePattern, bool) {
	lower := strings.ToLower(path)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p.substring) {
			return p, true
		}
	}
	return sensitivePattern{}, false
}
