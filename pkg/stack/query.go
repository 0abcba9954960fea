package stack

import (
	"sort"

	"github.com/papercomputeco/memostack/pkg/memo"
)

// Query returns memos with the given status whose title or body contains the
// search string, case-insensitively. An empty search matches everything.
//
// Cold and delayed results sort newest created first. Done results sort by
// completion time, newest first, with any memo missing a completion time
// sinking to the end. Hot status is not ordered here; the stack owns that
// order, so hot results come back sorted newest created first as a fallback.
func (m *Manager) Query(status memo.Status, search string) []*memo.Memo {
	var matched []*memo.Memo
	for _, mm := range m.memos {
		if mm.Status == status && mm.Matches(search) {
			matched = append(matched, mm)
		}
	}

	if status == memo.StatusDone {
		sort.Slice(matched, func(i, j int) bool {
			a, b := matched[i], matched[j]
			switch {
			case a.CompletedAt != nil && b.CompletedAt != nil:
				if !a.CompletedAt.Equal(*b.CompletedAt) {
					return a.CompletedAt.After(*b.CompletedAt)
				}
			case a.CompletedAt != nil:
				return true
			case b.CompletedAt != nil:
				return false
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
		return matched
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return matched
}

// FilterHot returns the hot stack in stack order, keeping only memos whose
// title or body matches the search string.
func (m *Manager) FilterHot(search string) []*memo.Memo {
	var matched []*memo.Memo
	for _, mm := range m.Hot() {
		if mm.Matches(search) {
			matched = append(matched, mm)
		}
	}
	return matched
}
