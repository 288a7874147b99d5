package faultstore

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of fault-injection activity across the
// whole registry, returned by value from Registry.Stats and surfaced
// read-only via the control plane's GET /stats endpoint.
type Stats struct {
	TotalRequests     int64
	DelayedRequests   int64
	ErroredRequests   int64
	DroppedRequests   int64
	LastInjectionTime time.Time
	LastMutationTime  time.Time
}

// statCounters holds the live, concurrently-updated counters backing
// Stats. Each counter is an independent atomic.Int64 rather than a field
// guarded by the registry's core sync.RWMutex: RecordRequest fires once
// per client frame on every session (internal/proxysession calls it from
// faultengine.Decide), so sharing the registry's mutation lock here would
// serialize the hot lookup path across all concurrently-connected
// sessions. lastInjectionMu guards only the rarely-written timestamp,
// never the counters.
type statCounters struct {
	totalRequests   atomic.Int64
	delayedRequests atomic.Int64
	erroredRequests atomic.Int64
	droppedRequests atomic.Int64

	lastInjectionMu   sync.Mutex
	lastInjectionTime time.Time
}

// recordRequest is called once per client request observed by a proxy
// session, regardless of whether a fault matched.
func (c *statCounters) recordRequest() {
	c.totalRequests.Add(1)
}

// recordDelay is called when a Delay fault fires.
func (c *statCounters) recordDelay(now time.Time) {
	c.delayedRequests.Add(1)
	c.setLastInjectionTime(now)
}

// recordError is called when an Error fault fires.
func (c *statCounters) recordError(now time.Time) {
	c.erroredRequests.Add(1)
	c.setLastInjectionTime(now)
}

// recordDrop is called when a DropConn fault fires.
func (c *statCounters) recordDrop(now time.Time) {
	c.droppedRequests.Add(1)
	c.setLastInjectionTime(now)
}

func (c *statCounters) setLastInjectionTime(now time.Time) {
	c.lastInjectionMu.Lock()
	c.lastInjectionTime = now
	c.lastInjectionMu.Unlock()
}

func (c *statCounters) lastInjection() time.Time {
	c.lastInjectionMu.Lock()
	defer c.lastInjectionMu.Unlock()
	return c.lastInjectionTime
}

// RecordRequest is called once per client request observed by a proxy
// session, regardless of whether a fault matched.
func (r *Registry) RecordRequest() {
	r.counters.recordRequest()
}

// RecordDelay is called when a Delay fault fires.
func (r *Registry) RecordDelay() {
	r.counters.recordDelay(r.now())
}

// RecordError is called when an Error fault fires.
func (r *Registry) RecordError() {
	r.counters.recordError(r.now())
}

// RecordDrop is called when a DropConn fault fires.
func (r *Registry) RecordDrop() {
	r.counters.recordDrop(r.now())
}

// Stats returns a snapshot of the current counters. The counters are read
// independently of the registry's core mutex and of each other, so a
// snapshot may observe a request counted without yet seeing a fault that
// was decided concurrently with the read; callers needing atomic
// cross-field consistency don't exist in this system (GET /stats is a
// best-effort dashboard read).
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	lastMutation := r.lastMutationTime
	r.mu.RUnlock()

	return Stats{
		TotalRequests:     r.counters.totalRequests.Load(),
		DelayedRequests:   r.counters.delayedRequests.Load(),
		ErroredRequests:   r.counters.erroredRequests.Load(),
		DroppedRequests:   r.counters.droppedRequests.Load(),
		LastInjectionTime: r.counters.lastInjection(),
		LastMutationTime:  lastMutation,
	}
}
