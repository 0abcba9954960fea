// Package stack manages the memo lifecycle and the bounded ordered hot stack.
package stack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/papercomputeco/memostack/pkg/memo"
	"github.com/papercomputeco/memostack/pkg/storage"
)

// DefaultMaxHot is the hot-stack capacity used when none is configured.
const DefaultMaxHot = 7

// Manager owns the in-memory memo set and the ordered hot stack, and keeps
// both persisted through a storage.Driver. The front of the stack (index 0)
// is the most urgent memo. It is not safe for concurrent use; callers
// serialize access the way a single-threaded UI loop does.
type Manager struct {
	driver storage.Driver
	logger *slog.Logger
	maxHot int

	memos map[int64]*memo.Memo
	hot   []int64
}

// NewManager creates a Manager on top of the given driver. A maxHot of zero
// or less falls back to DefaultMaxHot.
func NewManager(driver storage.Driver, logger *slog.Logger, maxHot int) *Manager {
	if maxHot <= 0 {
		maxHot = DefaultMaxHot
	}

	return &Manager{
		driver: driver,
		logger: logger,
		maxHot: maxHot,
		memos:  make(map[int64]*memo.Memo),
	}
}

// Load pulls all memos and the persisted hot-stack order from storage and
// reconciles them: stack entries that reference missing or non-hot memos are
// dropped and duplicates are collapsed. Reconciliation only ever removes
// entries; a hot memo absent from the stack stays off it, since the stack is
// the sole source of hot ordering. When reconciliation changed anything the
// repaired order is written back immediately.
func (m *Manager) Load(ctx context.Context) error {
	memos, err := m.driver.ListMemos(ctx)
	if err != nil {
		return fmt.Errorf("failed to load memos: %w", err)
	}

	m.memos = make(map[int64]*memo.Memo, len(memos))
	for _, mm := range memos {
		m.memos[mm.ID] = mm
	}

	saved, err := m.driver.LoadStack(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stack: %w", err)
	}

	m.hot = m.hot[:0]
	seen := make(map[int64]bool, len(saved))
	dirty := false
	for _, id := range saved {
		mm, ok := m.memos[id]
		if !ok || mm.Status != memo.StatusHot || seen[id] {
			dirty = true
			continue
		}
		seen[id] = true
		m.hot = append(m.hot, id)
	}

	if dirty {
		m.logger.Warn("reconciled hot stack on load", "stack_len", len(m.hot))
		if err := m.driver.SaveStack(ctx, m.hot); err != nil {
			return fmt.Errorf("failed to persist reconciled stack: %w", err)
		}
	}

	return nil
}

// Capture creates a memo from raw input text and a delay field. Text splits
// into title and body on the first newline. A valid non-zero delay creates a
// delayed memo that stays off the stack until it comes due; otherwise the
// memo is hot and pushed onto the front of the stack.
func (m *Manager) Capture(ctx context.Context, text, delayInput string) (*memo.Memo, error) {
	title, body := memo.SplitText(text)
	if title == "" {
		return nil, errors.New("memo title is empty")
	}

	now := time.Now().UTC()
	status := memo.StatusHot
	var delay *int
	if minutes, ok := memo.ParseDelay(delayInput); ok {
		status = memo.StatusDelayed
		delay = &minutes
	}

	id, err := m.driver.InsertMemo(ctx, title, body, status, now, delay)
	if err != nil {
		return nil, fmt.Errorf("failed to insert memo: %w", err)
	}

	mm := &memo.Memo{
		ID:           id,
		Title:        title,
		Body:         body,
		Status:       status,
		CreatedAt:    now,
		DelayMinutes: delay,
	}
	m.memos[id] = mm

	if status == memo.StatusHot {
		if err := m.pushFront(ctx, id); err != nil {
			return mm, err
		}
	}

	m.logger.Debug("captured memo", "id", id, "status", string(status))
	return mm, nil
}

// pushFront puts id at the front of the hot stack. When the push takes the
// stack over capacity the back memo is archived to cold. Eviction never
// cascades: one push displaces at most one memo.
func (m *Manager) pushFront(ctx context.Context, id int64) error {
	m.hot = append([]int64{id}, m.hot...)

	var evictErr error
	if len(m.hot) > m.maxHot {
		back := m.hot[len(m.hot)-1]
		m.hot = m.hot[:len(m.hot)-1]
		evictErr = m.setStatus(ctx, back, memo.StatusCold, nil)
		m.logger.Debug("evicted memo from hot stack", "id", back)
	}

	if err := m.driver.SaveStack(ctx, m.hot); err != nil {
		return errors.Join(evictErr, fmt.Errorf("failed to save stack: %w", err))
	}
	return evictErr
}

// setStatus updates a memo's status in memory and in storage.
func (m *Manager) setStatus(ctx context.Context, id int64, status memo.Status, completedAt *time.Time) error {
	mm, ok := m.memos[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	mm.Status = status
	mm.CompletedAt = completedAt

	if err := m.driver.UpdateStatus(ctx, id, status, completedAt); err != nil {
		return fmt.Errorf("failed to update memo %d: %w", id, err)
	}
	return nil
}

// PromoteToHot makes a memo hot and pushes it onto the front of the stack,
// evicting from the back if the stack is full. Promoting a memo already on
// the stack moves it to the front without growing the stack.
func (m *Manager) PromoteToHot(ctx context.Context, id int64) error {
	mm, ok := m.memos[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	var statusErr error
	if mm.Status != memo.StatusHot {
		statusErr = m.setStatus(ctx, id, memo.StatusHot, nil)
	}

	m.removeFromStack(id)
	if err := m.pushFront(ctx, id); err != nil {
		return errors.Join(statusErr, err)
	}
	return statusErr
}

// Archive moves a memo to cold and takes it off the stack. Archiving a done
// memo clears its completion time so that only done memos carry one.
func (m *Manager) Archive(ctx context.Context, id int64) error {
	if err := m.setStatus(ctx, id, memo.StatusCold, nil); err != nil {
		return err
	}
	return m.dropFromStack(ctx, id)
}

// Complete marks a memo done, stamps its completion time, and takes it off
// the stack.
func (m *Manager) Complete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := m.setStatus(ctx, id, memo.StatusDone, &now); err != nil {
		return err
	}
	return m.dropFromStack(ctx, id)
}

// Delete permanently removes a memo from storage, memory, and the stack.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if _, ok := m.memos[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(m.memos, id)
	if err := m.driver.DeleteMemo(ctx, id); err != nil {
		return fmt.Errorf("failed to delete memo %d: %w", id, err)
	}
	return m.dropFromStack(ctx, id)
}

// Replace returns a memo's text for re-editing and deletes the memo. The
// caller is expected to capture the edited text as a fresh memo.
func (m *Manager) Replace(ctx context.Context, id int64) (string, error) {
	mm, ok := m.memos[id]
	if !ok {
		return "", storage.NotFoundError{ID: id}
	}

	text := mm.Text()
	if err := m.Delete(ctx, id); err != nil {
		return "", err
	}
	return text, nil
}

// ShiftUp moves a memo one position toward the front of the stack. It is a
// no-op when the memo is already at the front or not on the stack.
func (m *Manager) ShiftUp(ctx context.Context, id int64) error {
	idx := slices.Index(m.hot, id)
	if idx <= 0 {
		return nil
	}

	m.hot[idx-1], m.hot[idx] = m.hot[idx], m.hot[idx-1]
	if err := m.driver.SaveStack(ctx, m.hot); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}
	return nil
}

// MoveToFront moves a memo straight to the front of the stack. It is a no-op
// when the memo is already at the front or not on the stack.
func (m *Manager) MoveToFront(ctx context.Context, id int64) error {
	idx := slices.Index(m.hot, id)
	if idx <= 0 {
		return nil
	}

	m.removeFromStack(id)
	m.hot = append([]int64{id}, m.hot...)
	if err := m.driver.SaveStack(ctx, m.hot); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}
	return nil
}

// CheckDelayed promotes every delayed memo whose delay has elapsed as of
// now. Each promotion goes through the normal push, so a burst of due memos
// can evict several back entries one push at a time. Returns the promoted
// memos.
func (m *Manager) CheckDelayed(ctx context.Context, now time.Time) ([]*memo.Memo, error) {
	var due []int64
	for id, mm := range m.memos {
		if mm.Status != memo.StatusDelayed {
			continue
		}
		if ready, ok := mm.ReadyAt(); ok && !now.Before(ready) {
			due = append(due, id)
		}
	}

	if len(due) == 0 {
		return nil, nil
	}
	slices.Sort(due)

	var promoted []*memo.Memo
	var errs []error
	for _, id := range due {
		if err := m.PromoteToHot(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		promoted = append(promoted, m.memos[id])
		m.logger.Debug("promoted delayed memo", "id", id)
	}

	return promoted, errors.Join(errs...)
}

// SetExpanded toggles a memo's expanded display state. The flag is
// session-only and never persisted.
func (m *Manager) SetExpanded(id int64, expanded bool) {
	if mm, ok := m.memos[id]; ok {
		mm.Expanded = expanded
	}
}

// Get returns the memo with the given id, or nil.
func (m *Manager) Get(id int64) *memo.Memo {
	return m.memos[id]
}

// Memos returns every tracked memo in ascending id order.
func (m *Manager) Memos() []*memo.Memo {
	memos := make([]*memo.Memo, 0, len(m.memos))
	for _, mm := range m.memos {
		memos = append(memos, mm)
	}
	sort.Slice(memos, func(i, j int) bool { return memos[i].ID < memos[j].ID })
	return memos
}

// Hot returns the hot-stack memos in order, front first.
func (m *Manager) Hot() []*memo.Memo {
	memos := make([]*memo.Memo, 0, len(m.hot))
	for _, id := range m.hot {
		if mm, ok := m.memos[id]; ok {
			memos = append(memos, mm)
		}
	}
	return memos
}

// HotIDs returns a copy of the hot-stack id order, front first.
func (m *Manager) HotIDs() []int64 {
	return slices.Clone(m.hot)
}

// ColdIDs returns the ids of all cold memos in ascending order.
func (m *Manager) ColdIDs() []int64 {
	var ids []int64
	for id, mm := range m.memos {
		if mm.Status == memo.StatusCold {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of memos tracked across all statuses.
func (m *Manager) Len() int {
	return len(m.memos)
}

// MaxHot returns the configured hot-stack capacity.
func (m *Manager) MaxHot() int {
	return m.maxHot
}

func (m *Manager) removeFromStack(id int64) {
	m.hot = slices.DeleteFunc(m.hot, func(v int64) bool { return v == id })
}

func (m *Manager) dropFromStack(ctx context.Context, id int64) error {
	before := len(m.hot)
	m.removeFromStack(id)
	if len(m.hot) == before {
		return nil
	}

	if err := m.driver.SaveStack(ctx, m.hot); err != nil {
		return fmt.Errorf("failed to save stack: %w", err)
	}
	return nil
}
