package stack

import (
	"math/rand"
	"time"

	"github.com/papercomputeco/memostack/pkg/memo"
)

// Spotlight periodically surfaces one random cold memo so archived notes
// resurface instead of being forgotten. An interval of zero disables it.
type Spotlight struct {
	manager  *Manager
	interval time.Duration
	rng      *rand.Rand

	current    int64
	lastSample time.Time
}

// NewSpotlight creates a Spotlight over the manager's cold memos.
func NewSpotlight(manager *Manager, interval time.Duration) *Spotlight {
	return &Spotlight{
		manager:  manager,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Refresh resamples the spotlight pick when the interval has elapsed as of
// now. Returns true when the pick changed slots, including when the cold set
// emptied and the pick was cleared.
func (s *Spotlight) Refresh(now time.Time) bool {
	if s.interval <= 0 {
		return false
	}
	if !s.lastSample.IsZero() && now.Sub(s.lastSample) < s.interval {
		return false
	}
	s.lastSample = now

	ids := s.manager.ColdIDs()
	if len(ids) == 0 {
		changed := s.current != 0
		s.current = 0
		return changed
	}

	s.current = ids[s.rng.Intn(len(ids))]
	return true
}

// Current returns the spotlighted memo, or nil when there is no pick or the
// pick has since left the cold set. A departed pick stays suppressed until
// the next Refresh resamples.
func (s *Spotlight) Current() *memo.Memo {
	if s.current == 0 {
		return nil
	}

	mm := s.manager.Get(s.current)
	if mm == nil || mm.Status != memo.StatusCold {
		return nil
	}
	return mm
}
