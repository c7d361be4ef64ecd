package httpclient

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// throttleIndicators are substrings that suggest the target is throttling
// or blocking the scanner, checked against the request path and a lowercased
// response body in addition to the 429 status code.
var throttleIndicators = []string{
	"rate-limit",
	"rate_limit",
	"ratelimit",
	"too many requests",
	"request limit",
	"throttle",
	"slow down",
	"temporarily blocked",
	"access denied due to",
	"retry later",
}

// IsThrottled classifies a response as a rate-limiting signal. Detection is
// a pure function so it can be tested without a client or terminal.
func IsThrottled(status int, path, body string) bool {
	if status == 429 {
		return true
	}

	lowerPath := strings.ToLower(path)
	lowerBody := strings.ToLower(body)
	for _, indicator := range throttleIndicators {
		if strings.Contains(lowerPath, indicator) || strings.Contains(lowerBody, indicator) {
			return true
		}
	}
	return false
}

// ThrottleState tracks consecutive detected throttling signals for one
// client instance. It lives for one scan run and is never persisted.
type ThrottleState struct {
	mu        sync.Mutex
	hits      int
	threshold int
	baseDelay time.Duration
	consented bool
}

// NewThrottleState creates throttle state with the given escalation
// threshold and base pause unit.
func NewThrottleState(threshold int, baseDelay time.Duration) *ThrottleState {
	if threshold <= 0 {
		threshold = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return &ThrottleState{threshold: threshold, baseDelay: baseDelay}
}

// RecordHit increments the hit counter and returns the new count.
func (t *ThrottleState) RecordHit() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hits++
	return t.hits
}

// Hits returns the current hit count.
func (t *ThrottleState) Hits() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits
}

// PauseFor returns the pause duration for the given hit count: linear
// growth capped at three times the base unit. The goal is politeness, not
// retry-until-success, so the backoff is deliberately not exponential.
func (t *ThrottleState) PauseFor(hits int) time.Duration {
	max := 3 * t.baseDelay
	pause := time.Duration(hits) * t.baseDelay
	if pause > max {
		pause = max
	}
	return pause
}

// AtThreshold reports whether the hit count has just reached the
// escalation threshold. Beyond the threshold every hit pauses at the
// capped maximum with no further prompts.
func (t *ThrottleState) AtThreshold(hits int) bool {
	return hits == t.threshold
}

// MarkConsented records that the operator already agreed to continue past
// the threshold.
func (t *ThrottleState) MarkConsented() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consented = true
}

// Consented reports whether the operator already agreed to continue.
func (t *ThrottleState) Consented() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consented
}

// ContinuePolicy decides whether scanning continues once the throttle
// threshold is reached. Separating the policy from detection keeps the
// state transition testable without simulating a terminal.
type ContinuePolicy interface {
	// Continue returns false to abort the whole scan.
	Continue(target string, hits int) bool
}

// AutoContinuePolicy always continues without asking.
type AutoContinuePolicy struct{}

// Continue implements ContinuePolicy.
func (AutoContinuePolicy) Continue(string, int) bool { return true }

// PromptPolicy asks the operator on an interactive terminal and defaults
// to continuing when not interactive.
type PromptPolicy struct {
	In  io.Reader
	Out io.Writer

	// Interactive overrides terminal detection in tests.
	Interactive func() bool
}

// Continue implements ContinuePolicy.
func (p *PromptPolicy) Continue(target string, hits int) bool {
	interactive := p.Interactive
	if interactive == nil {
		interactive = func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		}
	}
	if !interactive() {
		return true
	}

	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintf(out, "Target %s has rate limited %d consecutive requests. Continue scanning? [y/N] ", target, hits)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil {
		return true
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
