package wizard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"CVForgeBot/model"
)

// ErrDispatcherClosed is returned by Submit after Close.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Processor handles one event. *Machine implements it.
type Processor interface {
	Process(ctx context.Context, ev model.Event, sink Sink)
}

// ResponseSink delivers the responses of an event to its chat.
type ResponseSink func(ctx context.Context, ev model.Event, resp model.Response)

// Dispatcher runs one logical worker per user: events of a user are processed
// in submission order, events of different users concurrently. A worker
// goroutine exists only while its user has queued events.
type Dispatcher struct {
	ctx       context.Context
	processor Processor
	sink      ResponseSink
	metrics   *Metrics
	log       zerolog.Logger

	mu        sync.Mutex
	mailboxes map[int64][]model.Event
	closed    bool
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher whose workers run under ctx.
func NewDispatcher(ctx context.Context, processor Processor, sink ResponseSink, metrics *Metrics, logger zerolog.Logger) *Dispatcher {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Dispatcher{
		ctx:       ctx,
		processor: processor,
		sink:      sink,
		metrics:   metrics,
		log:       logger.With().Str("component", "dispatcher").Logger(),
		mailboxes: make(map[int64][]model.Event),
	}
}

// Submit queues ev on its user's mailbox without blocking.
func (d *Dispatcher) Submit(ev model.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	queue, running := d.mailboxes[ev.UserID]
	d.mailboxes[ev.UserID] = append(queue, ev)
	d.metrics.queueDepth.Inc()

	if !running {
		d.wg.Add(1)
		go d.drain(ev.UserID)
	}
	return nil
}

func (d *Dispatcher) drain(userID int64) {
	defer d.wg.Done()

	for {
		ev, ok := d.next(userID)
		if !ok {
			return
		}
		d.run(ev)
	}
}

// next pops the user's oldest event. When the mailbox is empty it is removed
// and the worker stops, all under the lock so Submit sees a consistent state.
func (d *Dispatcher) next(userID int64) (model.Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	queue := d.mailboxes[userID]
	if len(queue) == 0 {
		delete(d.mailboxes, userID)
		return model.Event{}, false
	}
	ev := queue[0]
	d.mailboxes[userID] = queue[1:]
	d.metrics.queueDepth.Dec()
	return ev, true
}

func (d *Dispatcher) run(ev model.Event) {
	defer func() {
		if r := recover(); r != nil {
			// one user's failure must not take down the others
			d.log.Error().Interface("panic", r).Int64("user_id", ev.UserID).Str("event", ev.Kind.String()).Msg("event handler panicked")
		}
	}()

	d.processor.Process(d.ctx, ev, func(resp model.Response) {
		d.sink(d.ctx, ev, resp)
	})
}

// Close stops accepting events and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
