package search

import (
	"sync"
	"time"
)

const DefaultDebounce = 300 * time.Millisecond

type ControllerOptions struct {
	// Debounce is the quiet period before a query is evaluated.
	// Negative disables debouncing (evaluation runs inside SetQuery);
	// zero means DefaultDebounce.
	Debounce time.Duration

	// Limit caps results per evaluation. Zero means DefaultLimit.
	Limit int

	// OnResults, if set, runs after each completed evaluation with the
	// query that produced the results.
	OnResults func(query string, results []Result)
}

// Controller wraps an Index with debounced interactive querying.
//
// Ordering contract: only the last query set within a debounce window
// is evaluated, and a stale evaluation can never overwrite results for
// a newer query. Clearing the query cancels any pending evaluation
// synchronously. Re-submitting the same non-empty query re-debounces
// and re-evaluates; there is no result cache.
type Controller struct {
	index     *Index
	debounce  time.Duration
	limit     int
	onResults func(string, []Result)

	mu          sync.Mutex
	query       string
	results     []Result
	isSearching bool
	hasSearched bool
	timer       *time.Timer
	gen         uint64
	closed      bool
}

func NewController(index *Index, opts ControllerOptions) *Controller {
	debounce := opts.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	if debounce < 0 {
		debounce = 0
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Controller{
		index:     index,
		debounce:  debounce,
		limit:     limit,
		onResults: opts.OnResults,
	}
}

// SetIndex swaps the underlying index (the material list changed).
// Pending evaluations run against the new index.
func (c *Controller) SetIndex(index *Index) {
	c.mu.Lock()
	c.index = index
	c.mu.Unlock()
}

// SetQuery records the query and arms the debounce timer. An empty
// query resets all search state immediately.
func (c *Controller) SetQuery(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if query == "" {
		c.query = ""
		c.results = nil
		c.isSearching = false
		c.hasSearched = false
		c.mu.Unlock()
		return
	}

	c.query = query
	c.isSearching = true
	gen := c.gen

	if c.debounce == 0 {
		c.mu.Unlock()
		c.evaluate(gen, query)
		return
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		c.evaluate(gen, query)
	})
	c.mu.Unlock()
}

// Clear resets the query, results and hasSearched, cancelling any
// pending evaluation.
func (c *Controller) Clear() { c.SetQuery("") }

// Close cancels pending work; the controller ignores further input.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// IsSearching is true from the moment a non-empty query is set until
// its evaluation lands.
func (c *Controller) IsSearching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSearching
}

// HasSearched is true once any non-empty query completed an evaluation;
// clearing the query resets it.
func (c *Controller) HasSearched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSearched
}

func (c *Controller) evaluate(gen uint64, query string) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	index := c.index
	limit := c.limit
	c.mu.Unlock()

	results := index.Query(query, limit)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.results = results
	c.isSearching = false
	c.hasSearched = true
	cb := c.onResults
	c.mu.Unlock()

	if cb != nil {
		cb(query, results)
	}
}
