// Package discovery maps the reachable surface of a target: a fixed
// wordlist is probed in bounded concurrent chunks, previously probed paths
// are served from the route cache, and HTML responses plus robots.txt
// contribute one extra hop of declared routes. Discovery is deliberately
// not a crawler: links found on wordlist pages are recorded but never
// recursed into.
package discovery

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/cache"
	"github.com/PentesterFlow/LocalScan/internal/httpclient"
	"github.com/PentesterFlow/LocalScan/internal/logger"
	"github.com/PentesterFlow/LocalScan/internal/metrics"
)

// chunkSize bounds how many probes are in flight at any instant. Each
// chunk fully completes before the next begins.
const chunkSize = 10

// Engine probes a target's paths and assembles the discovered route set.
type Engine struct {
	client   httpclient.Requester
	cache    *cache.Store
	wordlist []string
	log      *logger.Logger
	now      func() time.Time
}

// NewEngine creates a discovery engine. A nil wordlist uses the default.
func NewEngine(client httpclient.Requester, store *cache.Store, wordlist []string, log *logger.Logger) *Engine {
	if wordlist == nil {
		wordlist = DefaultWordlist()
	}
	if log == nil {
		log = logger.Global().WithComponent("discovery")
	}
	return &Engine{
		client:   client,
		cache:    store,
		wordlist: wordlist,
		log:      log,
		now:      time.Now,
	}
}

// probeOutcome carries one probe's results out of its goroutine. entries
// holds the probed path's cache record plus a trusted record for every
// route the response declared (robots rules, anchors), so declared routes
// survive warm-cache reruns where the declaring page is never re-fetched.
type probeOutcome struct {
	entries []cache.Entry
	routes  []Route
}

// Discover probes the target and returns the deduplicated route set.
// Paths recorded in the cache from any prior run are not re-probed;
// cached existing paths seed the result with zero network cost.
func (e *Engine) Discover(ctx context.Context, baseURL string) []Route {
	var routes []Route

	for _, entry := range e.cache.ExistingEntries(baseURL) {
		routes = append(routes, Route{Path: entry.Path, Method: http.MethodGet})
	}
	e.log.Infof("Seeded %d routes from cache", len(routes))

	cached := e.cache.CachedPaths(baseURL)
	var toSearch []string
	for _, path := range e.wordlist {
		if _, skip := cached[path]; !skip {
			toSearch = append(toSearch, path)
		}
	}

	wordlistSet := make(map[string]struct{}, len(e.wordlist))
	for _, path := range e.wordlist {
		wordlistSet[path] = struct{}{}
	}

	var entries []cache.Entry

	for start := 0; start < len(toSearch); start += chunkSize {
		end := start + chunkSize
		if end > len(toSearch) {
			end = len(toSearch)
		}
		chunk := toSearch[start:end]

		// The barrier always waits for every probe in the chunk, success
		// or failure, before the next chunk begins. Each probe writes its
		// own slot so the collected results keep wordlist order.
		outcomes := make([]probeOutcome, len(chunk))
		var wg sync.WaitGroup
		for i, path := range chunk {
			wg.Add(1)
			go func(i int, path string) {
				defer wg.Done()
				outcomes[i] = e.probe(ctx, path, wordlistSet)
			}(i, path)
		}
		wg.Wait()

		for _, outcome := range outcomes {
			entries = append(entries, outcome.entries...)
			routes = append(routes, outcome.routes...)
		}
	}

	e.cache.Update(baseURL, entries)

	deduped := dedupeRoutes(routes)
	metrics.Global().RecordRoutes(int64(len(deduped)))
	e.log.Infof("Discovery finished: %d routes (%d probed, %d cached)",
		len(deduped), len(toSearch), len(cached))
	return deduped
}

// probe checks a single path. A 404 means the path does not exist; any
// other status counts as existing. Network failures are recorded as
// non-existent and never abort the batch.
func (e *Engine) probe(ctx context.Context, path string, wordlistSet map[string]struct{}) probeOutcome {
	metrics.Global().RecordProbe()
	entry := cache.Entry{Path: path, LastChecked: e.now()}

	resp, err := e.client.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		e.log.WithError(err).Debugf("Probe failed for %s", path)
		return probeOutcome{entries: []cache.Entry{entry}}
	}

	entry.Status = resp.Status
	e.log.ProbeEvent(path, resp.Status, resp.Status != http.StatusNotFound)

	if resp.Status == http.StatusNotFound {
		return probeOutcome{entries: []cache.Entry{entry}}
	}

	entry.Exists = true
	outcome := probeOutcome{
		entries: []cache.Entry{entry},
		routes:  []Route{{Path: path, Method: http.MethodGet}},
	}

	if path == robotsPath && isTextBody(resp) {
		for _, declared := range parseRobots(string(resp.Body)) {
			outcome.addTrusted(declared, e.now())
		}
	}

	if resp.IsHTML() {
		for _, link := range extractLinks(resp.Body) {
			if _, known := wordlistSet[link]; known {
				continue
			}
			outcome.addTrusted(link, e.now())
		}
	}

	return outcome
}

// addTrusted records a declared route and its cache entry. Trusted routes
// carry no status: they were never probed.
func (o *probeOutcome) addTrusted(path string, at time.Time) {
	o.routes = append(o.routes, Route{Path: path, Method: http.MethodGet})
	o.entries = append(o.entries, cache.Entry{Path: path, Exists: true, LastChecked: at})
}

// isTextBody reports whether a response body can be parsed as plain text.
func isTextBody(resp *httpclient.Response) bool {
	ct := resp.Headers.Get("Content-Type")
	return ct == "" || strings.Contains(ct, "text")
}

// dedupeRoutes collapses routes to at most one entry per path, keeping
// the most recently added route for each.
func dedupeRoutes(routes []Route) []Route {
	seen := newDeduplicator(len(routes))
	index := make(map[string]int, len(routes))
	result := make([]Route, 0, len(routes))

	for _, route := range routes {
		if seen.HasSeen(route.Path) {
			result[index[route.Path]] = route
			continue
		}
		seen.Add(route.Path)
		index[route.Path] = len(result)
		result = append(result, route)
	}

	return result
}
