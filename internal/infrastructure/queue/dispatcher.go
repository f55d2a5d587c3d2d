package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pawtrail/dogwalk-service/internal/core/domain"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
	"github.com/pawtrail/dogwalk-service/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes walk events to a fixed set of workers by request id, so
// the events of one request are persisted in the order they happened.
type Dispatcher struct {
	workers []chan domain.WalkEvent
	repo    ports.EventRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.EventRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.WalkEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.WalkEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands an event to the worker responsible for its request. The call
// blocks only when that worker's buffer is full.
func (d *Dispatcher) Enqueue(event domain.WalkEvent) {
	idx := d.shardIndex(event.RequestID)
	d.workers[idx] <- event
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a request id deterministically to a worker index.
func (d *Dispatcher) shardIndex(requestID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(requestID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.WalkEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	// Writes already dequeued must not be aborted by shutdown.
	writeCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			d.drain(writeCtx, id, ch)
			return
		case event := <-ch:
			d.persist(writeCtx, id, event)
			metrics.EventsQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		}
	}
}

// drain persists whatever is still buffered after shutdown was requested.
func (d *Dispatcher) drain(ctx context.Context, id int, ch <-chan domain.WalkEvent) {
	for {
		select {
		case event := <-ch:
			d.persist(ctx, id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, event domain.WalkEvent) {
	if err := d.repo.InsertEvent(ctx, &event); err != nil {
		metrics.EventsPersistedTotal.WithLabelValues("error").Inc()
		d.log.Error().Err(err).
			Int64("request_id", event.RequestID).
			Str("to_status", string(event.ToStatus)).
			Int("worker_id", id).
			Msg("walk event persistence failed")
		return
	}
	metrics.EventsPersistedTotal.WithLabelValues("ok").Inc()
}
