package check

import "github.com/google/uuid"

// Risk is the severity of a finding.
type Risk string

// Risk levels.
const (
	RiskLow      Risk = "low"
	RiskMedium   Risk = "medium"
	RiskHigh     Risk = "high"
	RiskCritical Risk = "critical"
)

// Finding is one reported potential issue. Findings are created by checks,
// never mutated after creation, and aggregated in execution order. The
// scanner does not adjudicate true positives; the Assumption field states
// what the check inferred.
type Finding struct {
	ID           string `json:"id"`
	CheckID      string `json:"checkId"`
	Category     string `json:"category,omitempty"`
	Name         string `json:"name"`
	Endpoint     string `json:"endpoint"`
	Risk         Risk   `json:"risk"`
	Description  string `json:"description"`
	Assumption   string `json:"assumption"`
	Reproduction string `json:"reproduction"`
	Fix          string `json:"fix"`
}

// NewFinding creates a finding with a fresh ID.
func NewFinding(checkID, name, endpoint string, risk Risk) Finding {
	return Finding{
		ID:       uuid.NewString(),
		CheckID:  checkID,
		Name:     name,
		Endpoint: endpoint,
		Risk:     risk,
	}
}
