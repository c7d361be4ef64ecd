// Package metrics provides in-process counters for one scan run.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Collector collects and aggregates scan metrics.
type Collector struct {
	// Counters
	requestsTotal atomic.Int64
	errorsTotal   atomic.Int64
	throttleHits  atomic.Int64
	probesTotal   atomic.Int64
	routesFound   atomic.Int64
	findingsTotal atomic.Int64
	bytesTotal    atomic.Int64

	// Response time tracking
	responseTimesSum atomic.Int64
	responseTimesNum atomic.Int64

	// Status code breakdown
	statusCodes map[int]*atomic.Int64
	statusMu    sync.RWMutex

	startTime time.Time
}

// New creates a new metrics collector.
func New() *Collector {
	return &Collector{
		statusCodes: make(map[int]*atomic.Int64),
		startTime:   time.Now(),
	}
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest() {
	c.requestsTotal.Add(1)
}

// RecordError records a failed request.
func (c *Collector) RecordError() {
	c.errorsTotal.Add(1)
}

// RecordThrottleHit records a detected rate-limit signal.
func (c *Collector) RecordThrottleHit() {
	c.throttleHits.Add(1)
}

// RecordProbe records one discovery probe.
func (c *Collector) RecordProbe() {
	c.probesTotal.Add(1)
}

// RecordRoutes records discovered routes.
func (c *Collector) RecordRoutes(n int64) {
	c.routesFound.Add(n)
}

// RecordFinding records one reported finding.
func (c *Collector) RecordFinding() {
	c.findingsTotal.Add(1)
}

// RecordBytes records transferred response bytes.
func (c *Collector) RecordBytes(n int64) {
	c.bytesTotal.Add(n)
}

// RecordResponseTime records a response time.
func (c *Collector) RecordResponseTime(d time.Duration) {
	c.responseTimesSum.Add(d.Milliseconds())
	c.responseTimesNum.Add(1)
}

// RecordStatusCode records an HTTP status code.
func (c *Collector) RecordStatusCode(code int) {
	c.statusMu.Lock()
	if c.statusCodes[code] == nil {
		c.statusCodes[code] = &atomic.Int64{}
	}
	c.statusCodes[code].Add(1)
	c.statusMu.Unlock()
}

// AverageResponseTime returns the mean response time so far.
func (c *Collector) AverageResponseTime() time.Duration {
	sum := c.responseTimesSum.Load()
	num := c.responseTimesNum.Load()
	if num == 0 {
		return 0
	}
	return time.Duration(sum/num) * time.Millisecond
}

// Snapshot returns a point-in-time view of all metrics.
func (c *Collector) Snapshot() *Snapshot {
	s := &Snapshot{
		Timestamp:           time.Now(),
		Uptime:              time.Since(c.startTime),
		RequestsTotal:       c.requestsTotal.Load(),
		ErrorsTotal:         c.errorsTotal.Load(),
		ThrottleHits:        c.throttleHits.Load(),
		ProbesTotal:         c.probesTotal.Load(),
		RoutesFound:         c.routesFound.Load(),
		FindingsTotal:       c.findingsTotal.Load(),
		BytesTotal:          c.bytesTotal.Load(),
		AverageResponseTime: c.AverageResponseTime(),
		StatusCodes:         make(map[int]int64),
	}

	c.statusMu.RLock()
	for k, v := range c.statusCodes {
		s.StatusCodes[k] = v.Load()
	}
	c.statusMu.RUnlock()

	return s
}

// Reset resets all metrics.
func (c *Collector) Reset() {
	c.requestsTotal.Store(0)
	c.errorsTotal.Store(0)
	c.throttleHits.Store(0)
	c.probesTotal.Store(0)
	c.routesFound.Store(0)
	c.findingsTotal.Store(0)
	c.bytesTotal.Store(0)
	c.responseTimesSum.Store(0)
	c.responseTimesNum.Store(0)

	c.statusMu.Lock()
	c.statusCodes = make(map[int]*atomic.Int64)
	c.statusMu.Unlock()

	c.startTime = time.Now()
}

// Snapshot represents a point-in-time view of metrics.
type Snapshot struct {
	Timestamp           time.Time     `json:"timestamp"`
	Uptime              time.Duration `json:"uptime"`
	RequestsTotal       int64         `json:"requests_total"`
	ErrorsTotal         int64         `json:"errors_total"`
	ThrottleHits        int64         `json:"throttle_hits"`
	ProbesTotal         int64         `json:"probes_total"`
	RoutesFound         int64         `json:"routes_found"`
	FindingsTotal       int64         `json:"findings_total"`
	BytesTotal          int64         `json:"bytes_total"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	StatusCodes         map[int]int64 `json:"status_codes"`
}

// ErrorRate returns the error rate (errors/requests).
func (s *Snapshot) ErrorRate() float64 {
	if s.RequestsTotal == 0 {
		return 0
	}
	return float64(s.ErrorsTotal) / float64(s.RequestsTotal)
}

// Global metrics collector.
var globalCollector = New()

// SetGlobal sets the global metrics collector.
func SetGlobal(c *Collector) {
	globalCollector = c
}

// Global returns the global metrics collector.
func Global() *Collector {
	return globalCollector
}
