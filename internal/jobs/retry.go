package jobs

import (
	"container/heap"
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fanpulse/fanpulse/internal/domain"
	"github.com/fanpulse/fanpulse/internal/infra/metrics"
)

// ─── Event Retry Queue ──────────────────────────────────────────────────────
// Failed event deliveries are re-queued with exponential backoff. The queue
// is a min-heap on the next retry time.

// RetryConfig configures redelivery.
type RetryConfig struct {
	MaxRetries int           // attempts after the first failure
	BaseDelay  time.Duration // doubles each attempt
	MaxDelay   time.Duration
	Interval   time.Duration // how often Run drains ready entries
}

// DefaultRetryConfig returns production retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
		Interval:   5 * time.Second,
	}
}

type retryEntry struct {
	event     domain.Event
	attempt   int
	nextRetry time.Time
	lastErr   string
}

type retryHeap []retryEntry

func (h retryHeap) Len() int           { return len(h) }
func (h retryHeap) Less(i, j int) bool { return h[i].nextRetry.Before(h[j].nextRetry) }
func (h retryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *retryHeap) Push(x any)        { *h = append(*h, x.(retryEntry)) }
func (h *retryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// RetrySink wraps an EventSink. A failed Publish is queued for redelivery
// and reported as success so the engine's saved state stands.
type RetrySink struct {
	mu    sync.Mutex
	next  domain.EventSink
	cfg   RetryConfig
	queue retryHeap
	now   func() time.Time

	exhausted int64
}

// NewRetrySink wraps next with redelivery.
func NewRetrySink(next domain.EventSink, cfg RetryConfig) *RetrySink {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = cfg.BaseDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	return &RetrySink{next: next, cfg: cfg, now: time.Now}
}

// Publish delivers ev, queueing it on failure.
func (r *RetrySink) Publish(ctx context.Context, ev domain.Event) error {
	if err := r.next.Publish(ctx, ev); err != nil {
		r.schedule(retryEntry{event: ev, lastErr: err.Error()})
	}
	return nil
}

// schedule queues e for another attempt, or drops it past MaxRetries.
func (r *RetrySink) schedule(e retryEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.attempt++
	if e.attempt > r.cfg.MaxRetries {
		r.exhausted++
		metrics.EventRetries.WithLabelValues("exhausted").Inc()
		log.WithFields(log.Fields{
			"event_id": e.event.ID,
			"type":     e.event.Type,
			"attempts": e.attempt - 1,
			"error":    e.lastErr,
		}).Error("Dropping event after retries")
		return
	}

	delay := r.cfg.BaseDelay
	for i := 1; i < e.attempt; i++ {
		delay *= 2
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
			break
		}
	}
	e.nextRetry = r.now().Add(delay)
	heap.Push(&r.queue, e)
	metrics.EventRetries.WithLabelValues("queued").Inc()
}

// ready pops every entry whose retry time has passed.
func (r *RetrySink) ready() []retryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	var out []retryEntry
	for r.queue.Len() > 0 && !r.queue[0].nextRetry.After(now) {
		out = append(out, heap.Pop(&r.queue).(retryEntry))
	}
	return out
}

// Flush retries every ready entry once and returns how many were delivered.
func (r *RetrySink) Flush(ctx context.Context) int {
	delivered := 0
	for _, e := range r.ready() {
		if err := r.next.Publish(ctx, e.event); err != nil {
			e.lastErr = err.Error()
			r.schedule(e)
			continue
		}
		delivered++
		metrics.EventRetries.WithLabelValues("delivered").Inc()
	}
	return delivered
}

// Run drains the queue every Interval until ctx is cancelled.
func (r *RetrySink) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Flush(ctx); n > 0 {
				log.WithField("delivered", n).Debug("Redelivered queued events")
			}
		}
	}
}

// Pending returns the number of queued events.
func (r *RetrySink) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queue.Len()
}

// Exhausted returns how many events were dropped after MaxRetries.
func (r *RetrySink) Exhausted() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exhausted
}
