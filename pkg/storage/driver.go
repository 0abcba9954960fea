// Package storage
package storage

import (
	"context"
	"time"

	"github.com/papercomputeco/memostack/pkg/memo"
)

// Prefs is the scalar UI-preference record persisted alongside memos. The
// stack core never reads or writes it; it belongs to the presentation layer.
type Prefs struct {
	AlwaysOnTop  bool
	InputText    string
	InputHeight  float64
	WindowWidth  float64
	WindowHeight float64
	WindowX      *float64
	WindowY      *float64
}

// DefaultPrefs returns the prefs record a fresh database starts with.
func DefaultPrefs() Prefs {
	return Prefs{
		InputHeight:  180,
		WindowWidth:  800,
		WindowHeight: 600,
	}
}

// Driver is the persistence contract for memo records, the ordered
// hot-stack id list, and the prefs record. Implementations are stateless
// translation layers; all lifecycle logic lives in pkg/stack.
type Driver interface {
	// InsertMemo stores a new memo and returns its storage-assigned id.
	// Ids are never reused.
	InsertMemo(ctx context.Context, title, body string, status memo.Status, createdAt time.Time, delayMinutes *int) (int64, error)

	// UpdateStatus sets a memo's status tag and completion timestamp.
	// A nil completedAt clears any stored completion time.
	UpdateStatus(ctx context.Context, id int64, status memo.Status, completedAt *time.Time) error

	// DeleteMemo removes a memo record entirely.
	DeleteMemo(ctx context.Context, id int64) error

	// ListMemos returns all memo records. Malformed rows are defaulted,
	// never surfaced as errors: unknown status tags load as hot and
	// unparseable creation timestamps load as now.
	ListMemos(ctx context.Context) ([]*memo.Memo, error)

	// SaveStack overwrites the persisted hot-stack id list.
	SaveStack(ctx context.Context, ids []int64) error

	// LoadStack returns the persisted hot-stack id list.
	LoadStack(ctx context.Context) ([]int64, error)

	// SavePrefs overwrites the prefs record.
	SavePrefs(ctx context.Context, prefs Prefs) error

	// LoadPrefs returns the prefs record.
	LoadPrefs(ctx context.Context) (Prefs, error)

	// Close closes the driver and releases any resources.
	Close() error
}
