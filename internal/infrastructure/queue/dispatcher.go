package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/closetshop/closet-api/pkg/metrics"
	"github.com/closetshop/closet-api/internal/core/domain"
	"github.com/closetshop/closet-api/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5
	defaultRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 30 * time.Second
	channelBuffer      = 256
)

// Options tunes a Dispatcher. Zero values fall back to the defaults.
type Options struct {
	Workers     int
	MaxAttempts int
	RetryDelay  time.Duration
}

type job struct {
	orderID string
	attempt int
}

// Dispatcher retries the fulfilment of orders left incomplete. Orders are
// routed to a fixed set of workers by hashing the order id, so two retries of
// the same order never run concurrently.
type Dispatcher struct {
	workers     []chan job
	service     ports.OrderService
	maxAttempts int
	retryDelay  time.Duration
	log         zerolog.Logger
	ctx         context.Context
}

// NewDispatcher creates a Dispatcher with opts.Workers sharded workers.
func NewDispatcher(opts Options, service ports.OrderService, log zerolog.Logger) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	d := &Dispatcher{
		workers:     make([]chan job, opts.Workers),
		service:     service,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		log:         log,
		ctx:         context.Background(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.ctx = ctx
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a fulfilment attempt for orderID. It never blocks; when
// the worker channel is full the order is dropped and picked up again by the
// startup recovery scan.
func (d *Dispatcher) Enqueue(orderID string) {
	d.push(job{orderID: orderID})
}

// EnqueueBatch enqueues multiple orders.
func (d *Dispatcher) EnqueueBatch(orderIDs []string) {
	for _, id := range orderIDs {
		d.Enqueue(id)
	}
}

func (d *Dispatcher) push(j job) {
	idx := d.shardIndex(j.orderID)
	select {
	case d.workers[idx] <- j:
		metrics.FulfillmentQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("order_id", j.orderID).Int("worker_id", idx).Msg("fulfilment queue full, order dropped")
	}
}

// shardIndex maps an order id deterministically to a worker index.
func (d *Dispatcher) shardIndex(orderID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(orderID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

// backoff doubles the delay per attempt, capped at maxRetryDelay.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.retryDelay
	for i := 0; i < attempt && delay < maxRetryDelay; i++ {
		delay *= 2
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	depth := metrics.FulfillmentQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.handle(ctx, id, j)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, workerID int, j job) {
	err := d.service.Fulfill(ctx, j.orderID)
	if err == nil {
		return
	}

	log := d.log.With().
		Str("order_id", j.orderID).
		Int("worker_id", workerID).
		Int("attempt", j.attempt+1).
		Logger()

	switch {
	case errors.Is(err, domain.ErrProductSold), errors.Is(err, domain.ErrOrderNotFound):
		// Compensated or gone; nothing left to retry.
		log.Info().Err(err).Msg("fulfilment retry stopped")
		return
	case j.attempt+1 >= d.maxAttempts:
		metrics.FulfillmentRetriesTotal.WithLabelValues("abandoned").Inc()
		log.Error().Err(err).Msg("fulfilment abandoned after max attempts")
		return
	}

	next := job{orderID: j.orderID, attempt: j.attempt + 1}
	delay := d.backoff(j.attempt)
	log.Warn().Err(err).Dur("retry_in", delay).Msg("fulfilment failed, retrying")
	time.AfterFunc(delay, func() {
		if d.ctx.Err() != nil {
			return
		}
		d.push(next)
	})
}
