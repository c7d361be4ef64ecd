// Package httpclient provides rate-limit-aware HTTP clients for probing a
// target. Every response is intercepted before it is returned: detected
// throttling signals delay the response but never retry the request.
package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/PentesterFlow/LocalScan/internal/logger"
	"github.com/PentesterFlow/LocalScan/internal/metrics"
)

// maxBodySize bounds how much of a response body is read (5MB).
const maxBodySize = 5 * 1024 * 1024

// Response is the result of one request as seen by callers.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// IsHTML reports whether the response served an HTML document.
func (r *Response) IsHTML() bool {
	return strings.Contains(r.Headers.Get("Content-Type"), "text/html")
}

// Requester is the minimal capability a check needs to talk to the target.
// Any HTTP backend, including fakes in tests, can satisfy it.
type Requester interface {
	Request(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*Response, error)
}

// Config holds client factory configuration.
type Config struct {
	Timeout           time.Duration
	UserAgent         string
	Token             string // bearer token added to every request
	RequestsPerSecond float64
	Burst             int
	Threshold         int           // escalation threshold, default 5
	BaseDelay         time.Duration // base pause unit, default 1s
	AutoContinue      bool          // proceed past the threshold without asking
}

// DefaultConfig returns client defaults tuned for a local target.
func DefaultConfig() Config {
	return Config{
		Timeout:           10 * time.Second,
		UserAgent:         "LocalScan/1.0",
		RequestsPerSecond: 50,
		Burst:             10,
		Threshold:         5,
		BaseDelay:         time.Second,
	}
}

// Factory builds rate-limit-aware clients. Each client carries independent
// throttle state, so the frontend and API origins escalate separately.
type Factory struct {
	config Config
	log    *logger.Logger
}

// NewFactory creates a client factory.
func NewFactory(config Config, log *logger.Logger) *Factory {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Global().WithComponent("client")
	}
	return &Factory{config: config, log: log}
}

// NewClient creates a client bound to a base URL.
func (f *Factory) NewClient(baseURL string) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,
	}

	var policy ContinuePolicy
	if f.config.AutoContinue {
		policy = AutoContinuePolicy{}
	} else {
		policy = &PromptPolicy{}
	}

	var limiter *rate.Limiter
	if f.config.RequestsPerSecond > 0 {
		burst := f.config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(f.config.RequestsPerSecond), burst)
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		hc: &http.Client{
			Transport: transport,
			Timeout:   f.config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: f.config.UserAgent,
		token:     f.config.Token,
		limiter:   limiter,
		state:     NewThrottleState(f.config.Threshold, f.config.BaseDelay),
		policy:    policy,
		log:       f.log,
		metrics:   metrics.Global(),
		sleep:     time.Sleep,
		exit:      os.Exit,
	}
}

// Client is an HTTP client bound to one origin. It behaves like a normal
// client to callers; throttling detection happens transparently at the
// response boundary.
type Client struct {
	baseURL   string
	hc        *http.Client
	userAgent string
	token     string
	limiter   *rate.Limiter
	state     *ThrottleState
	policy    ContinuePolicy
	log       *logger.Logger
	metrics   *metrics.Collector

	// injectable for tests
	sleep func(time.Duration)
	exit  func(int)
}

// BaseURL returns the origin this client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// State exposes the throttle state for inspection.
func (c *Client) State() *ThrottleState {
	return c.state
}

// Request performs one HTTP request against the client's origin. The caller
// always receives the original response, merely delayed when throttling is
// detected.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader, headers map[string]string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	c.metrics.RecordRequest()
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.RecordError()
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	resp.Body.Close()
	if err != nil {
		c.metrics.RecordError()
		return nil, err
	}

	c.metrics.RecordResponseTime(time.Since(started))
	c.metrics.RecordStatusCode(resp.StatusCode)
	c.metrics.RecordBytes(int64(len(data)))

	result := &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Body:    data,
	}

	c.intercept(path, result)
	return result, nil
}

// Get is a convenience wrapper for GET requests.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, nil)
}

// intercept applies throttle detection and the escalation state machine
// before the response is handed back to the caller.
func (c *Client) intercept(path string, resp *Response) {
	if !IsThrottled(resp.Status, path, string(resp.Body)) {
		return
	}

	c.metrics.RecordThrottleHit()
	hits := c.state.RecordHit()
	pause := c.state.PauseFor(hits)
	c.log.ThrottleEvent(path, hits, pause)

	if c.state.AtThreshold(hits) && !c.state.Consented() {
		c.log.Warnf("Target has rate limited %d consecutive requests", hits)
		if !c.policy.Continue(c.baseURL, hits) {
			c.log.Info("Aborting scan at operator request")
			c.exit(0)
			return
		}
		c.state.MarkConsented()
	}

	c.sleep(pause)
}
