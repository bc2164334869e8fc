package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu   sync.Mutex
	jobs map[string]*JobCounts
}

type JobCounts struct {
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
}

func New() *Collector {
	return &Collector{jobs: map[string]*JobCounts{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	if c == nil {
		return
	}
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordJob counts background and on-demand job outcomes by type.
func (c *Collector) RecordJob(jobType string, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	counts, ok := c.jobs[jobType]
	if !ok {
		counts = &JobCounts{}
		c.jobs[jobType] = counts
	}
	if failed {
		counts.Failed++
	} else {
		counts.Completed++
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	jobs := make(map[string]JobCounts, len(c.jobs))
	for jobType, counts := range c.jobs {
		jobs[jobType] = *counts
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"jobs":             jobs,
	}
}
