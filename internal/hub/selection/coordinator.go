// Package selection tracks a multi-select of material IDs and sequences
// batch mutations against caller-supplied persistence callbacks.
//
// The one property everything else bends around: a selection is cleared
// only by an explicit Clear/SelectAll or a batch action that SUCCEEDED.
// A failed action leaves the selection intact so the user can retry.
package selection

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Action names recorded in LastAction.
const (
	ActionMove      = "move"
	ActionAddTags   = "addTags"
	ActionArchive   = "archive"
	ActionRestore   = "restore"
	ActionDelete    = "delete"
	ActionDuplicate = "duplicate"
)

// ErrActionInFlight is returned when a batch action is invoked while
// another is still running. The selection and pending action are left
// untouched.
var ErrActionInFlight = errors.New("batch action already in flight")

// Callbacks are the persistence collaborators. A nil callback turns the
// corresponding batch method into a no-op rather than an error.
type Callbacks struct {
	OnMove      func(ctx context.Context, ids []string, collectionID *string) error
	OnAddTags   func(ctx context.Context, ids []string, tagIDs []string) error
	OnArchive   func(ctx context.Context, ids []string) error
	OnRestore   func(ctx context.Context, ids []string) error
	OnDelete    func(ctx context.Context, ids []string) error
	OnDuplicate func(ctx context.Context, ids []string) error

	// OnSelectionChange fires synchronously after every selection
	// mutation with the full current ID list.
	OnSelectionChange func(ids []string)
}

type Coordinator struct {
	callbacks Callbacks

	mu         sync.Mutex
	selected   map[string]struct{}
	order      []string
	inFlight   bool
	lastAction string
	err        error
}

func NewCoordinator(callbacks Callbacks) *Coordinator {
	return &Coordinator{
		callbacks: callbacks,
		selected:  make(map[string]struct{}),
	}
}

func (c *Coordinator) Toggle(id string) {
	c.mu.Lock()
	if _, ok := c.selected[id]; ok {
		c.removeLocked(id)
	} else {
		c.addLocked(id)
	}
	c.notifyLocked()
}

func (c *Coordinator) Select(id string) {
	c.mu.Lock()
	c.addLocked(id)
	c.notifyLocked()
}

func (c *Coordinator) Deselect(id string) {
	c.mu.Lock()
	c.removeLocked(id)
	c.notifyLocked()
}

// SelectMany adds to the existing selection.
func (c *Coordinator) SelectMany(ids []string) {
	c.mu.Lock()
	for _, id := range ids {
		c.addLocked(id)
	}
	c.notifyLocked()
}

// SelectAll replaces the selection wholesale.
func (c *Coordinator) SelectAll(ids []string) {
	c.mu.Lock()
	c.selected = make(map[string]struct{}, len(ids))
	c.order = c.order[:0]
	for _, id := range ids {
		c.addLocked(id)
	}
	c.notifyLocked()
}

func (c *Coordinator) Clear() {
	c.mu.Lock()
	c.selected = make(map[string]struct{})
	c.order = nil
	c.notifyLocked()
}

func (c *Coordinator) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selected[id]
	return ok
}

// SelectedIDs returns the selection in insertion order.
func (c *Coordinator) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) SelectedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.selected)
}

func (c *Coordinator) HasSelection() bool { return c.SelectedCount() > 0 }

// IsLoading reports whether a batch action is in flight.
func (c *Coordinator) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastAction is the name of the most recently attempted batch action,
// recorded whether it succeeded or failed.
func (c *Coordinator) LastAction() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAction
}

// Err is the failure of the most recent batch action, cleared when the
// next action starts.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Coordinator) MoveToCollection(ctx context.Context, collectionID *string) error {
	if c.callbacks.OnMove == nil {
		return nil
	}
	return c.run(ctx, ActionMove, func(ctx context.Context, ids []string) error {
		return c.callbacks.OnMove(ctx, ids, collectionID)
	})
}

func (c *Coordinator) AddTags(ctx context.Context, tagIDs []string) error {
	if c.callbacks.OnAddTags == nil {
		return nil
	}
	return c.run(ctx, ActionAddTags, func(ctx context.Context, ids []string) error {
		return c.callbacks.OnAddTags(ctx, ids, tagIDs)
	})
}

func (c *Coordinator) Archive(ctx context.Context) error {
	if c.callbacks.OnArchive == nil {
		return nil
	}
	return c.run(ctx, ActionArchive, c.callbacks.OnArchive)
}

func (c *Coordinator) Restore(ctx context.Context) error {
	if c.callbacks.OnRestore == nil {
		return nil
	}
	return c.run(ctx, ActionRestore, c.callbacks.OnRestore)
}

func (c *Coordinator) Delete(ctx context.Context) error {
	if c.callbacks.OnDelete == nil {
		return nil
	}
	return c.run(ctx, ActionDelete, c.callbacks.OnDelete)
}

func (c *Coordinator) Duplicate(ctx context.Context) error {
	if c.callbacks.OnDuplicate == nil {
		return nil
	}
	return c.run(ctx, ActionDuplicate, c.callbacks.OnDuplicate)
}

// run executes one batch action: snapshot the selection, invoke the
// collaborator, clear on success, preserve on failure. The snapshot is
// taken before the call, so selection edits made while the collaborator
// runs do not change its argument list.
func (c *Coordinator) run(ctx context.Context, action string, fn func(ctx context.Context, ids []string) error) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrActionInFlight
	}
	c.inFlight = true
	c.lastAction = action
	c.err = nil
	ids := c.snapshotLocked()
	c.mu.Unlock()

	err := fn(ctx, ids)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.err = fmt.Errorf("%s failed: %w", action, err)
		c.mu.Unlock()
		return err
	}
	c.selected = make(map[string]struct{})
	c.order = nil
	c.notifyLocked()
	return nil
}

func (c *Coordinator) addLocked(id string) {
	if _, ok := c.selected[id]; ok {
		return
	}
	c.selected[id] = struct{}{}
	c.order = append(c.order, id)
}

func (c *Coordinator) removeLocked(id string) {
	if _, ok := c.selected[id]; !ok {
		return
	}
	delete(c.selected, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Coordinator) snapshotLocked() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// notifyLocked releases the mutex and fires the selection observer.
// Callers must hold the lock and must not touch state afterwards.
func (c *Coordinator) notifyLocked() {
	var ids []string
	cb := c.callbacks.OnSelectionChange
	if cb != nil {
		ids = c.snapshotLocked()
	}
	c.mu.Unlock()
	if cb != nil {
		cb(ids)
	}
}
