package tasktree

import "time"

// ExpiryPolicy decides whether a tree refreshed at lastRefresh is stale at now.
type ExpiryPolicy interface {
	Expired(lastRefresh, now time.Time) bool
}

// TickPolicy expires the tree after Ticks periods of Tick have elapsed.
type TickPolicy struct {
	Tick  time.Duration
	Ticks int
}

// DefaultExpiry refreshes hourly.
func DefaultExpiry() TickPolicy {
	return TickPolicy{Tick: time.Minute, Ticks: 60}
}

func (p TickPolicy) TTL() time.Duration {
	return p.Tick * time.Duration(p.Ticks)
}

func (p TickPolicy) Expired(lastRefresh, now time.Time) bool {
	if lastRefresh.IsZero() {
		return true
	}
	return now.Sub(lastRefresh) >= p.TTL()
}
