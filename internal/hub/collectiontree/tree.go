// Package collectiontree manages the user's folder hierarchy for the
// knowledge hub: nesting, breadcrumbs and folder CRUD with optional
// async persistence collaborators.
package collectiontree

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Collection is one user folder. MaterialCount is denormalized display
// data, owned by whoever loads the folders.
type Collection struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Icon          string    `json:"icon,omitempty"`
	Color         string    `json:"color,omitempty"`
	ParentID      string    `json:"parent_id,omitempty"`
	MaterialCount int       `json:"material_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Node is a collection plus its resolved children, sorted by name.
type Node struct {
	Collection
	Children []*Node `json:"children,omitempty"`
}

// ErrNotFound is returned when an operation names an unknown collection.
var ErrNotFound = errors.New("collection not found")

// Callbacks are the async persistence collaborators; nil callbacks are
// skipped and the in-memory state still changes.
type Callbacks struct {
	OnCreate func(ctx context.Context, c Collection) error
	OnUpdate func(ctx context.Context, c Collection) error
	OnDelete func(ctx context.Context, id string) error
	OnMove   func(ctx context.Context, materialIDs []string, collectionID *string) error
}

// Manager owns a mutable set of collections and derives the tree view
// on demand.
type Manager struct {
	callbacks Callbacks
	newID     func() string
	now       func() time.Time

	mu       sync.Mutex
	items    []Collection
	selected string
	loading  bool
	err      error
}

type Option func(*Manager)

// WithIDGenerator overrides how new collection IDs are minted.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// WithClock overrides the wall clock, for deterministic tests.
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) { m.now = fn }
}

func NewManager(initial []Collection, callbacks Callbacks, opts ...Option) *Manager {
	m := &Manager{
		callbacks: callbacks,
		now:       time.Now,
		items:     append([]Collection(nil), initial...),
	}
	counter := 0
	m.newID = func() string {
		counter++
		return fmt.Sprintf("col-%d-%d", m.now().UnixNano(), counter)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Collections returns the flat list in insertion order.
func (m *Manager) Collections() []Collection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Collection(nil), m.items...)
}

// Get returns the collection with the given ID.
func (m *Manager) Get(id string) (Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, c, ok := m.findLocked(id)
	return c, ok
}

// Tree builds the nested view: roots sorted by name, children under
// their parents, orphans (parent missing from the set) promoted to
// root so no folder ever disappears from the sidebar.
func (m *Manager) Tree() []*Node {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := make(map[string]*Node, len(m.items))
	for _, c := range m.items {
		byID[c.ID] = &Node{Collection: c}
	}
	roots := make([]*Node, 0, len(m.items))
	for _, c := range m.items {
		node := byID[c.ID]
		if c.ParentID == "" {
			roots = append(roots, node)
			continue
		}
		parent, ok := byID[c.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}
	sortNodes(roots)
	return roots
}

// Breadcrumbs returns the path from the root ancestor down to id.
// Unknown IDs yield an empty path; a parent cycle is cut rather than
// looped forever.
func (m *Manager) Breadcrumbs(id string) []Collection {
	m.mu.Lock()
	defer m.mu.Unlock()

	var path []Collection
	seen := make(map[string]bool)
	current := id
	for current != "" && !seen[current] {
		seen[current] = true
		_, c, ok := m.findLocked(current)
		if !ok {
			break
		}
		path = append([]Collection{c}, path...)
		current = c.ParentID
	}
	if len(path) == 0 {
		return nil
	}
	return path
}

// Select marks a collection as the active one; empty deselects.
func (m *Manager) Select(id string) {
	m.mu.Lock()
	m.selected = id
	m.mu.Unlock()
}

// SelectedID returns the active collection ID, empty when none.
func (m *Manager) SelectedID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Create adds a folder (optionally under parentID) and notifies the
// collaborator. On collaborator failure the folder is not added.
func (m *Manager) Create(ctx context.Context, name, parentID string) (Collection, error) {
	now := m.now()
	c := Collection{
		ID:        m.newID(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.setLoading(true)
	defer m.setLoading(false)

	if m.callbacks.OnCreate != nil {
		if err := m.callbacks.OnCreate(ctx, c); err != nil {
			m.setErr(err)
			return Collection{}, err
		}
	}

	m.mu.Lock()
	m.items = append(m.items, c)
	m.err = nil
	m.mu.Unlock()
	return c, nil
}

// Update applies non-zero fields of patch to the collection and bumps
// UpdatedAt.
func (m *Manager) Update(ctx context.Context, id string, patch Collection) (Collection, error) {
	m.mu.Lock()
	idx, c, ok := m.findLocked(id)
	m.mu.Unlock()
	if !ok {
		return Collection{}, ErrNotFound
	}

	if patch.Name != "" {
		c.Name = patch.Name
	}
	if patch.Icon != "" {
		c.Icon = patch.Icon
	}
	if patch.Color != "" {
		c.Color = patch.Color
	}
	c.UpdatedAt = m.now()

	m.setLoading(true)
	defer m.setLoading(false)

	if m.callbacks.OnUpdate != nil {
		if err := m.callbacks.OnUpdate(ctx, c); err != nil {
			m.setErr(err)
			return Collection{}, err
		}
	}

	m.mu.Lock()
	m.items[idx] = c
	m.err = nil
	m.mu.Unlock()
	return c, nil
}

// Delete removes a folder. Its children are reassigned to the deleted
// folder's parent so subtrees survive; selecting state pointing at the
// deleted folder is cleared.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	idx, victim, ok := m.findLocked(id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	m.setLoading(true)
	defer m.setLoading(false)

	if m.callbacks.OnDelete != nil {
		if err := m.callbacks.OnDelete(ctx, id); err != nil {
			m.setErr(err)
			return err
		}
	}

	m.mu.Lock()
	m.items = append(m.items[:idx], m.items[idx+1:]...)
	for i := range m.items {
		if m.items[i].ParentID == id {
			m.items[i].ParentID = victim.ParentID
		}
	}
	if m.selected == id {
		m.selected = ""
	}
	m.err = nil
	m.mu.Unlock()
	return nil
}

// MoveMaterials forwards a material move to the collaborator; a nil
// collectionID means "move to root". Tree state is untouched (material
// membership lives with the materials, not here).
func (m *Manager) MoveMaterials(ctx context.Context, materialIDs []string, collectionID *string) error {
	if m.callbacks.OnMove == nil {
		return nil
	}

	m.setLoading(true)
	defer m.setLoading(false)

	if err := m.callbacks.OnMove(ctx, materialIDs, collectionID); err != nil {
		m.setErr(err)
		return err
	}
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
	return nil
}

func (m *Manager) findLocked(id string) (int, Collection, bool) {
	for i, c := range m.items {
		if c.ID == id {
			return i, c, true
		}
	}
	return -1, Collection{}, false
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
