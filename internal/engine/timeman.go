package engine

import (
	"time"
)

// TimeManager decides when iterative deepening should stop starting new
// iterations. The hard limit itself is enforced by the search context.
type TimeManager struct {
	optimumTime time.Duration // Stop starting iterations after this
	maximumTime time.Duration // Hard limit, 0 = none
	startTime   time.Time     // When search started
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init initializes the time manager for a new search.
func (tm *TimeManager) Init(limits SearchLimits) {
	tm.startTime = time.Now()

	if limits.MoveTime <= 0 {
		tm.optimumTime = 0
		tm.maximumTime = 0
		return
	}

	// Each iteration costs several times the previous one, so an
	// iteration started after half the budget rarely finishes.
	tm.maximumTime = limits.MoveTime
	tm.optimumTime = limits.MoveTime / 2
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the target time for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the maximum time allowed.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// PastOptimum returns true if we've exceeded the optimum time.
// Without a time limit it is always false.
func (tm *TimeManager) PastOptimum() bool {
	return tm.maximumTime > 0 && tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability shortens the budget when the best column has not
// changed for several depths.
// stability: number of consecutive depths with same best column
func (tm *TimeManager) AdjustForStability(stability int) {
	if stability >= 4 {
		// Stable: use only 60% of optimum
		tm.optimumTime = tm.optimumTime * 60 / 100
	} else if stability >= 2 {
		// Somewhat stable: use 80% of optimum
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}
