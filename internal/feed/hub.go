package feed

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	v1 "github.com/tally-lab/island-tally/internal/api/v1"
	"github.com/tally-lab/island-tally/internal/metrics"
)

// Hub fans full-store snapshots out to attached observers.
//
// Every publish is a full republish; there is no delta protocol.
// Delivery must never stall ingest, so each observer gets a buffered channel
// and a full buffer drops the oldest queued snapshot to make room for the
// newest.
type Hub struct {
	mu      sync.Mutex
	subs    map[uuid.UUID]chan v1.Snapshot
	last    v1.Snapshot
	buffer  int
	metrics *metrics.Metrics
}

// Subscription is the handle an observer holds while attached.
type Subscription struct {
	ID uuid.UUID
	C  <-chan v1.Snapshot
}

func NewHub(buffer int, m *metrics.Metrics) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:    make(map[uuid.UUID]chan v1.Snapshot),
		last:    v1.Snapshot{},
		buffer:  buffer,
		metrics: m,
	}
}

// Attach registers an observer and immediately queues the current snapshot
// for it, so a newly connected observer sees state without waiting for the
// next ingest.
func (h *Hub) Attach() Subscription {
	ch := make(chan v1.Snapshot, h.buffer)

	h.mu.Lock()
	id := uuid.New()
	h.subs[id] = ch
	ch <- h.last
	count := len(h.subs)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.FeedObservers.Set(float64(count))
	}
	slog.Info("Observer attached", "subscription_id", id, "observers", count)
	return Subscription{ID: id, C: ch}
}

// Detach removes an observer and closes its channel. Idempotent; detaching a
// failed observer never aborts or delays anyone else.
func (h *Hub) Detach(id uuid.UUID) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	close(ch)
	if h.metrics != nil {
		h.metrics.FeedObservers.Set(float64(count))
	}
	slog.Info("Observer detached", "subscription_id", id, "observers", count)
}

// Publish queues the snapshot for every attached observer. Non-blocking: a
// slow observer loses its oldest queued snapshot, never the ingest path.
func (h *Hub) Publish(snap v1.Snapshot) {
	h.mu.Lock()
	h.last = snap
	for _, ch := range h.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
				if h.metrics != nil {
					h.metrics.SnapshotsDropped.Inc()
				}
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SnapshotsPublished.Inc()
	}
}

// Observers reports the number of attached observers.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
