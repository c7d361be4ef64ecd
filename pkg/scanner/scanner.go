// Package scanner wires discovery, the client factory, and the check
// scheduler into a single scan run against one local target.
package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/cache"
	"github.com/PentesterFlow/LocalScan/internal/check"
	"github.com/PentesterFlow/LocalScan/internal/checks"
	"github.com/PentesterFlow/LocalScan/internal/discovery"
	scanerrors "github.com/PentesterFlow/LocalScan/internal/errors"
	"github.com/PentesterFlow/LocalScan/internal/history"
	"github.com/PentesterFlow/LocalScan/internal/httpclient"
	"github.com/PentesterFlow/LocalScan/internal/logger"
	"github.com/PentesterFlow/LocalScan/internal/metrics"
	"github.com/PentesterFlow/LocalScan/internal/output"
)

// Result is what a completed scan hands back to the caller.
type Result struct {
	Report      *output.Report
	ChecksRun   int
	ChecksError int
}

// Scanner orchestrates one scan: reachability, discovery, checks, report.
type Scanner struct {
	config   *Config
	checks   []check.Check
	reporter check.Reporter
	log      *logger.Logger
	now      func() time.Time
}

// New creates a scanner. Nil checks uses the built-in set; a nil reporter
// discards progress events.
func New(config *Config, checkList []check.Check, reporter check.Reporter, log *logger.Logger) (*Scanner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if checkList == nil {
		checkList = checks.Default()
	}
	if log == nil {
		log = logger.Global().WithComponent("scanner")
	}

	if !config.IsLocal() {
		log.Warnf("Target host %s is not loopback; only scan systems you own", config.Host)
	}

	return &Scanner{
		config:   config,
		checks:   checkList,
		reporter: reporter,
		log:      log,
		now:      time.Now,
	}, nil
}

// countingReporter wraps a reporter to tally outcomes for the report.
type countingReporter struct {
	check.Reporter
	run    int
	failed int
}

func (c *countingReporter) CheckCompleted(id, name string, findings int) {
	c.run++
	c.Reporter.CheckCompleted(id, name, findings)
}

func (c *countingReporter) CheckFailed(id, name string, err error) {
	c.run++
	c.failed++
	c.Reporter.CheckFailed(id, name, err)
}

// Run executes the full scan. An unreachable target is the only fatal
// failure; everything after the reachability probe degrades gracefully.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	started := s.now()
	baseURL := s.config.BaseURL()

	factory := httpclient.NewFactory(httpclient.Config{
		Timeout:           s.config.Timeout,
		UserAgent:         "LocalScan/1.0",
		Token:             s.config.Token,
		RequestsPerSecond: s.config.RequestsPerSecond,
		Burst:             s.config.Burst,
		AutoContinue:      s.config.AutoContinue,
	}, s.log.WithComponent("client"))

	frontend := factory.NewClient(baseURL)
	if err := s.probeReachable(ctx, frontend); err != nil {
		return nil, err
	}

	var apiClient httpclient.Requester
	if apiURL := s.config.APIURL(); apiURL != "" {
		apiClient = factory.NewClient(apiURL)
	}

	routes, err := s.discover(ctx, frontend, baseURL)
	if err != nil {
		return nil, err
	}

	sc := &check.Context{
		Config: check.TargetConfig{
			BaseURL:  baseURL,
			APIURL:   s.config.APIURL(),
			Token:    s.config.Token,
			SafeMode: s.config.SafeMode,
		},
		FrontendClient: frontend,
		APIClient:      apiClient,
		Routes:         routes,
	}

	reporter := s.reporter
	if reporter == nil {
		reporter = check.NopReporter{}
	}
	counting := &countingReporter{Reporter: reporter}

	runner := check.NewRunner(counting, s.log.WithComponent("scheduler"))
	findings := runner.Run(ctx, s.checks, sc)

	duration := s.now().Sub(started)
	report := &output.Report{
		Target:      baseURL,
		StartedAt:   started,
		Duration:    duration.Round(time.Millisecond).String(),
		Routes:      routes,
		Findings:    findings,
		RiskCounts:  output.CountRisks(findings),
		ChecksRun:   counting.run,
		ChecksError: counting.failed,
	}

	s.saveHistory(report, started, duration)

	snap := metrics.Global().Snapshot()
	s.log.Debugf("Scan traffic: %d requests, %d errors, %d throttle hits, avg response %s",
		snap.RequestsTotal, snap.ErrorsTotal, snap.ThrottleHits, snap.AverageResponseTime)

	if s.config.OutputPath != "" {
		if err := output.WriteJSONFile(s.config.OutputPath, report); err != nil {
			s.log.WithError(err).Warn("Failed to write report file")
		} else {
			s.log.Infof("Report written to %s", s.config.OutputPath)
		}
	}

	return &Result{
		Report:      report,
		ChecksRun:   counting.run,
		ChecksError: counting.failed,
	}, nil
}

// probeReachable verifies the target answers at all before any discovery
// traffic is generated. Any HTTP status counts as reachable.
func (s *Scanner) probeReachable(ctx context.Context, client *httpclient.Client) error {
	if _, err := client.Get(ctx, "/"); err != nil {
		return scanerrors.NewUnreachableError(s.config.BaseURL(), err)
	}
	return nil
}

func (s *Scanner) discover(ctx context.Context, client httpclient.Requester, baseURL string) ([]discovery.Route, error) {
	wordlist, err := s.loadWordlist()
	if err != nil {
		return nil, err
	}

	cachePath := s.config.CachePath
	if cachePath == "" {
		cachePath = cache.DefaultPath()
	}
	if s.config.NoCache {
		cachePath = "" // Open on an empty path yields an empty advisory store
	}
	store := cache.Open(cachePath, s.log.WithComponent("cache"))

	engine := discovery.NewEngine(client, store, wordlist, s.log.WithComponent("discovery"))
	return engine.Discover(ctx, baseURL), nil
}

func (s *Scanner) loadWordlist() ([]string, error) {
	if s.config.WordlistPath == "" {
		return nil, nil
	}
	wordlist, err := discovery.LoadWordlist(s.config.WordlistPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load wordlist: %w", err)
	}
	return wordlist, nil
}

// saveHistory appends a run summary, best-effort.
func (s *Scanner) saveHistory(report *output.Report, started time.Time, duration time.Duration) {
	if s.config.HistoryPath == "" {
		return
	}

	store, err := history.Open(s.config.HistoryPath)
	if err != nil {
		s.log.WithError(err).Debug("History store unavailable")
		return
	}
	defer store.Close()

	rec := &history.Record{
		Target:      report.Target,
		StartedAt:   started,
		Duration:    duration,
		Routes:      len(report.Routes),
		Findings:    len(report.Findings),
		RiskCounts:  report.RiskCounts,
		ChecksRun:   report.ChecksRun,
		ChecksError: report.ChecksError,
	}
	if err := store.Append(rec); err != nil {
		s.log.WithError(err).Debug("Failed to append history record")
	}
}
