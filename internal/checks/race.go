package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/PentesterFlow/LocalScan/internal/check"
	"github.com/PentesterFlow/LocalScan/internal/httpclient"
)

// raceBurst is how many parallel requests are fired at one endpoint. The
// fan-out is deliberately local to this check; the scheduler never
// coordinates it.
const raceBurst = 10

// mutatingHints mark routes likely to change state when hit.
var mutatingHints = []string{"cart", "order", "checkout", "transfer", "vote", "like", "follow", "coupon", "redeem", "apply"}

// Race fires bursts of parallel requests at state-changing endpoints to
// look for missing atomicity: if every request in a burst succeeds, the
// endpoint likely lacks a uniqueness or balance guard.
type Race struct{}

// NewRace creates the race condition check.
func NewRace() *Race { return &Race{} }

// ID implements check.Check.
func (*Race) ID() string { return "race" }

// Name implements check.Check.
func (*Race) Name() string { return "Race condition probing" }

// Description implements check.Check.
func (*Race) Description() string {
	return "Fires parallel request bursts at mutating endpoints to detect missing atomicity."
}

// Run implements check.Check. High-volume and potentially state-changing,
// so it honors safe mode.
func (c *Race) Run(ctx context.Context, sc *check.Context) ([]check.Finding, error) {
	if sc.Config.SafeMode {
		return nil, nil
	}

	client := sc.API()
	var findings []check.Finding

	for _, route := range sc.Routes {
		if !looksMutating(route.Path) {
			continue
		}

		successes := burst(ctx, client, route.Path, raceBurst)
		if successes < raceBurst {
			continue
		}

		f := check.NewFinding(c.ID(), "Endpoint accepts parallel duplicate requests", route.Path, check.RiskHigh)
		f.Category = "race"
		f.Description = fmt.Sprintf("All %d parallel POST requests to %s succeeded, suggesting the operation is not atomic.", raceBurst, route.Path)
		f.Assumption = "Duplicate acceptance implies the handler lacks a transactional uniqueness guard; manual verification with real payloads is required."
		f.Reproduction = fmt.Sprintf("Send %d concurrent POST requests to %s%s and compare resulting state.", raceBurst, sc.Config.BaseURL, route.Path)
		f.Fix = "Wrap the operation in a transaction with a uniqueness constraint, or serialize it with a per-resource lock."
		findings = append(findings, f)
	}

	return findings, nil
}

func looksMutating(path string) bool {
	lower := strings.ToLower(path)
	for _, hint := range mutatingHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// burst issues n parallel POSTs and counts 2xx responses.
func burst(ctx context.Context, client httpclient.Requester, path string, n int) int {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.Request(ctx, http.MethodPost, path, nil, nil)
			if err != nil {
				return
			}
			if resp.Status >= 200 && resp.Status < 300 {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return successes
}
