package metrics

import (
	"sync/atomic"
	"time"
)

// Collector counts HTTP traffic and migration intake.
type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64

	employeesMigrated atomic.Uint64
	employeesFailed   atomic.Uint64
	entriesAccepted   atomic.Uint64
	entriesRejected   atomic.Uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	if status >= 500 {
		c.errorRequests.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

func (c *Collector) RecordEmployee(ok bool) {
	if ok {
		c.employeesMigrated.Add(1)
		return
	}
	c.employeesFailed.Add(1)
}

func (c *Collector) RecordEntries(accepted, rejected int) {
	if accepted > 0 {
		c.entriesAccepted.Add(uint64(accepted))
	}
	if rejected > 0 {
		c.entriesRejected.Add(uint64(rejected))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":          total,
		"errorsTotal":            c.errorRequests.Load(),
		"rateLimitedTotal":       c.rateLimited.Load(),
		"avgDurationMs":          avg,
		"totalDurationMs":        totalMs,
		"employeesMigratedTotal": c.employeesMigrated.Load(),
		"employeesFailedTotal":   c.employeesFailed.Load(),
		"entriesAcceptedTotal":   c.entriesAccepted.Load(),
		"entriesRejectedTotal":   c.entriesRejected.Load(),
	}
}
