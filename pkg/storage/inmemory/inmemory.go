// Package inmemory provides a map-backed storage driver for tests and
// throwaway runs.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
)

// Driver implements storage.Driver using in-memory maps.
type Driver struct {
	// mu guards memos, stack, prefs, and the id counter
	mu sync.RWMutex

	memos  map[int64]*memo.Memo
	stack  []int64
	prefs  storage.Prefs
	nextID int64
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		memos: make(map[int64]*memo.Memo),
		prefs: storage.DefaultPrefs(),
	}
}

// InsertMemo stores a new memo and returns its id. Ids count up from 1 and
// are never reused, matching the auto-increment contract.
func (d *Driver) InsertMemo(_ context.Context, title, body string, status memo.Status, createdAt time.Time, delayMinutes *int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	m := &memo.Memo{
		ID:        d.nextID,
		Title:     title,
		Body:      body,
		Status:    status,
		CreatedAt: createdAt,
	}
	if delayMinutes != nil {
		delay := *delayMinutes
		m.DelayMinutes = &delay
	}

	d.memos[m.ID] = m
	return m.ID, nil
}

// UpdateStatus sets a memo's status and completion timestamp.
func (d *Driver) UpdateStatus(_ context.Context, id int64, status memo.Status, completedAt *time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	m, ok := d.memos[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	m.Status = status
	if completedAt != nil {
		completed := *completedAt
		m.CompletedAt = &completed
	} else {
		m.CompletedAt = nil
	}

	return nil
}

// DeleteMemo removes a memo record.
func (d *Driver) DeleteMemo(_ context.Context, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.memos, id)
	return nil
}

// ListMemos returns clones of all memo records so callers never alias the
// driver's state.
func (d *Driver) ListMemos(_ context.Context) ([]*memo.Memo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	memos := make([]*memo.Memo, 0, len(d.memos))
	for _, m := range d.memos {
		memos = append(memos, m.Clone())
	}

	return memos, nil
}

// SaveStack overwrites the stored hot-stack id list.
func (d *Driver) SaveStack(_ context.Context, ids []int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stack = append([]int64(nil), ids...)
	return nil
}

// LoadStack returns the stored hot-stack id list.
func (d *Driver) LoadStack(_ context.Context) ([]int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append([]int64(nil), d.stack...), nil
}

// SavePrefs overwrites the prefs record.
func (d *Driver) SavePrefs(_ context.Context, prefs storage.Prefs) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.prefs = prefs
	return nil
}

// LoadPrefs returns the prefs record.
func (d *Driver) LoadPrefs(_ context.Context) (storage.Prefs, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.prefs, nil
}

// Count returns the number of memo records in the driver.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.memos)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// Ensure Driver implements storage.Driver
var _ storage.Driver = (*Driver)(nil)
