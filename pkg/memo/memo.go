// Package memo defines the memo record and its lifecycle statuses.
package memo

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a memo.
type Status string

const (
	// StatusHot marks a memo living on the bounded hot stack.
	StatusHot Status = "hot"
	// StatusCold marks an archived memo off the stack.
	StatusCold Status = "cold"
	// StatusDone marks a completed memo.
	StatusDone Status = "done"
	// StatusDelayed marks a memo waiting out its delay before going hot.
	StatusDelayed Status = "delayed"
)

// ParseStatus maps a stored status tag back to a Status. Unknown tags
// default to hot so a corrupt row stays visible instead of vanishing.
func ParseStatus(tag string) Status {
	switch Status(tag) {
	case StatusCold, StatusDone, StatusDelayed:
		return Status(tag)
	default:
		return StatusHot
	}
}

// Memo is a single captured note. CompletedAt is set exactly when the memo
// is done. DelayMinutes is set only for memos captured with a delay.
type Memo struct {
	ID           int64
	Title        string
	Body         string
	Status       Status
	CreatedAt    time.Time
	CompletedAt  *time.Time
	DelayMinutes *int
	Expanded     bool
}

// ReadyAt returns when a delayed memo comes due. The second return is false
// when the memo carries no delay.
func (m *Memo) ReadyAt() (time.Time, bool) {
	if m.DelayMinutes == nil {
		return time.Time{}, false
	}
	return m.CreatedAt.Add(time.Duration(*m.DelayMinutes) * time.Minute), true
}

// Text reassembles the raw capture text the memo was split from.
func (m *Memo) Text() string {
	if m.Body == "" {
		return m.Title
	}
	return m.Title + "\n" + m.Body
}

// Matches reports whether the search term appears in the title or body,
// case-insensitively. An empty term matches every memo.
func (m *Memo) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(m.Title), needle) ||
		strings.Contains(strings.ToLower(m.Body), needle)
}

// Clone returns a deep copy so storage snapshots never alias live state.
func (m *Memo) Clone() *Memo {
	clone := *m
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		clone.CompletedAt = &t
	}
	if m.DelayMinutes != nil {
		d := *m.DelayMinutes
		clone.DelayMinutes = &d
	}
	return &clone
}

// SplitText splits raw capture text into a title and body on the first
// newline. The title is whitespace-trimmed; the body keeps its formatting.
func SplitText(text string) (string, string) {
	title, body, found := strings.Cut(text, "\n")
	title = strings.TrimSpace(title)
	if !found {
		return title, ""
	}
	return title, body
}
