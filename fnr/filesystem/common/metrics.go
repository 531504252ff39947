package common

import (
	"sync"
	"time"
)

// BaseMetrics provides common fields used across different metrics types
type BaseMetrics struct {
	TotalOperations int64
	SuccessfulOps   int64
	FailedOps       int64
	LastOperation   time.Time
	Mu              sync.RWMutex
}

// UpdateBaseMetrics updates common metrics fields
func (bm *BaseMetrics) UpdateBaseMetrics(success bool) {
	bm.Mu.Lock()
	defer bm.Mu.Unlock()

	bm.TotalOperations++
	if success {
		bm.SuccessfulOps++
	} else {
		bm.FailedOps++
	}
	bm.LastOperation = time.Now()
}

// GetBaseMetrics returns the common metrics as a map
func (bm *BaseMetrics) GetBaseMetrics() map[string]interface{} {
	bm.Mu.RLock()
	defer bm.Mu.RUnlock()

	return map[string]interface{}{
		"total_operations": bm.TotalOperations,
		"successful_ops":   bm.SuccessfulOps,
		"failed_ops":       bm.FailedOps,
		"last_operation":   bm.LastOperation,
	}
}

// RenameMetrics tracks the outcome of rename batches
type RenameMetrics struct {
	BaseMetrics
	Skipped   int64
	Conflicts int64
}

// Record counts one entry of a batch. Skipped entries and conflicts are not
// operations in the BaseMetrics sense.
func (rm *RenameMetrics) Record(renamed, skipped, conflict bool) {
	switch {
	case skipped:
		rm.Mu.Lock()
		rm.Skipped++
		rm.Mu.Unlock()
	case conflict:
		rm.Mu.Lock()
		rm.Conflicts++
		rm.Mu.Unlock()
	default:
		rm.UpdateBaseMetrics(renamed)
	}
}

// GetMetrics returns rename metrics as a map
func (rm *RenameMetrics) GetMetrics() map[string]interface{} {
	metrics := rm.GetBaseMetrics()
	rm.Mu.RLock()
	defer rm.Mu.RUnlock()

	metrics["skipped"] = rm.Skipped
	metrics["conflicts"] = rm.Conflicts
	return metrics
}

// TraversalMetrics tracks walk progress for one session
type TraversalMetrics struct {
	Files          int64
	Directories    int64
	Failed         int64
	EnumerateFails int64
	Advances       int64
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration returns the wall time of the walk so far
func (tm *TraversalMetrics) Duration() time.Duration {
	if tm.StartedAt.IsZero() {
		return 0
	}
	if tm.FinishedAt.IsZero() {
		return time.Since(tm.StartedAt)
	}
	return tm.FinishedAt.Sub(tm.StartedAt)
}
