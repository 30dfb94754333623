package search

import (
	"sync"
	"testing"
	"time"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub"
)

// resultRecorder collects completed evaluations so tests can assert on
// exactly which queries ran.
type resultRecorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *resultRecorder) record(query string, _ []Result) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.mu.Unlock()
}

func (r *resultRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

func testIndex() *Index {
	return NewIndex([]hub.Material{
		mat("1", "Test One", "test one", domain.ToolQuiz),
		mat("2", "Algebra", "algebra quiz", domain.ToolQuiz),
	}, Options{})
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not reached within %v", timeout)
}

func TestControllerInitialState(t *testing.T) {
	c := NewController(testIndex(), ControllerOptions{Debounce: -1})
	defer c.Close()

	if c.Query() != "" {
		t.Fatalf("query: want empty, got %q", c.Query())
	}
	if len(c.Results()) != 0 {
		t.Fatalf("results: want none, got %d", len(c.Results()))
	}
	if c.IsSearching() || c.HasSearched() {
		t.Fatalf("fresh controller must not be searching")
	}
}

func TestControllerSynchronousMode(t *testing.T) {
	c := NewController(testIndex(), ControllerOptions{Debounce: -1})
	defer c.Close()

	c.SetQuery("test")
	if c.Query() != "test" {
		t.Fatalf("query not stored")
	}
	if len(c.Results()) == 0 {
		t.Fatalf("synchronous mode must evaluate inline")
	}
	if c.IsSearching() {
		t.Fatalf("isSearching must drop after evaluation")
	}
	if !c.HasSearched() {
		t.Fatalf("hasSearched must rise after evaluation")
	}
}

func TestControllerDebounces(t *testing.T) {
	c := NewController(testIndex(), ControllerOptions{Debounce: 20 * time.Millisecond})
	defer c.Close()

	c.SetQuery("test")
	if !c.IsSearching() {
		t.Fatalf("isSearching must be true while debouncing")
	}
	if len(c.Results()) != 0 {
		t.Fatalf("results must not land before the debounce fires")
	}

	waitFor(t, time.Second, func() bool { return len(c.Results()) > 0 })
	if c.IsSearching() {
		t.Fatalf("isSearching must drop once results land")
	}
}

func TestControllerLastWriteWins(t *testing.T) {
	rec := &resultRecorder{}
	c := NewController(testIndex(), ControllerOptions{
		Debounce:  20 * time.Millisecond,
		OnResults: rec.record,
	})
	defer c.Close()

	c.SetQuery("a")
	c.SetQuery("ab")
	c.SetQuery("algebra")

	waitFor(t, time.Second, func() bool { return len(rec.recorded()) > 0 })
	time.Sleep(50 * time.Millisecond) // room for any stale timer to misfire

	got := rec.recorded()
	if len(got) != 1 {
		t.Fatalf("want exactly one evaluation, got %v", got)
	}
	if got[0] != "algebra" {
		t.Fatalf("only the last query may evaluate, got %q", got[0])
	}
	if c.Query() != "algebra" {
		t.Fatalf("query: want algebra, got %q", c.Query())
	}
}

func TestControllerClearCancelsPending(t *testing.T) {
	rec := &resultRecorder{}
	c := NewController(testIndex(), ControllerOptions{
		Debounce:  20 * time.Millisecond,
		OnResults: rec.record,
	})
	defer c.Close()

	c.SetQuery("test")
	c.Clear()

	if c.Query() != "" || c.IsSearching() || c.HasSearched() {
		t.Fatalf("clear must reset state synchronously")
	}

	time.Sleep(60 * time.Millisecond)
	if got := rec.recorded(); len(got) != 0 {
		t.Fatalf("cancelled evaluation still ran: %v", got)
	}
	if len(c.Results()) != 0 {
		t.Fatalf("stale results landed after clear")
	}
}

func TestControllerHasSearchedResetsOnClear(t *testing.T) {
	c := NewController(testIndex(), ControllerOptions{Debounce: -1})
	defer c.Close()

	c.SetQuery("test")
	if !c.HasSearched() {
		t.Fatalf("hasSearched must be true after a completed search")
	}
	c.SetQuery("")
	if c.HasSearched() {
		t.Fatalf("hasSearched must reset when the query is cleared")
	}
}

func TestControllerSetIndexAffectsPendingEvaluation(t *testing.T) {
	c := NewController(NewIndex(nil, Options{}), ControllerOptions{Debounce: 20 * time.Millisecond})
	defer c.Close()

	c.SetQuery("test")
	c.SetIndex(testIndex())

	waitFor(t, time.Second, func() bool { return c.HasSearched() })
	if len(c.Results()) == 0 {
		t.Fatalf("pending evaluation must use the swapped-in index")
	}
}

func TestControllerCloseStopsWork(t *testing.T) {
	rec := &resultRecorder{}
	c := NewController(testIndex(), ControllerOptions{
		Debounce:  20 * time.Millisecond,
		OnResults: rec.record,
	})

	c.SetQuery("test")
	c.Close()
	c.SetQuery("ignored")

	time.Sleep(60 * time.Millisecond)
	if got := rec.recorded(); len(got) != 0 {
		t.Fatalf("closed controller still evaluated: %v", got)
	}
}
