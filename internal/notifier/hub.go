package notifier

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

// DefaultQueueSize is the per-endpoint buffer. Events published while the
// buffer is full are dropped.
const DefaultQueueSize = 64

// Handler receives events published by other endpoints. Calls for one
// endpoint are sequential.
type Handler func(models.Event)

// Hub is an in-process publish/subscribe channel.
type Hub struct {
	mu        sync.RWMutex
	endpoints map[*Endpoint]struct{}
	queueSize int

	logger *logger.Logger
}

// NewHub returns an empty hub with DefaultQueueSize buffers.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		endpoints: make(map[*Endpoint]struct{}),
		queueSize: DefaultQueueSize,
		logger:    log,
	}
}

// Join registers a new endpoint. name becomes the Origin of the events it
// publishes. A nil handler makes a publish-only endpoint.
func (h *Hub) Join(name string, handler Handler) *Endpoint {
	e := &Endpoint{
		hub:     h,
		name:    name,
		handler: handler,
		done:    make(chan struct{}),
	}

	if handler != nil {
		e.queue = make(chan models.Event, h.queueSize)
		e.wg.Add(1)
		go e.deliver()
	}

	h.mu.Lock()
	h.endpoints[e] = struct{}{}
	h.mu.Unlock()

	return e
}

func (h *Hub) broadcast(from *Endpoint, evt models.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for e := range h.endpoints {
		if e == from || e.queue == nil {
			continue
		}

		e.pending.Add(1)
		select {
		case <-e.done:
			e.pending.Add(-1)
		case e.queue <- evt:
		default:
			e.pending.Add(-1)
			h.logger.Debug().Str("func", "Hub.broadcast").
				Str("endpoint", e.name).
				Stringer("event", evt).
				Msg("endpoint queue is full, event dropped")
		}
	}
}

func (h *Hub) leave(e *Endpoint) {
	h.mu.Lock()
	delete(h.endpoints, e)
	h.mu.Unlock()
}

// Endpoint is one subscriber/publisher attached to a Hub.
type Endpoint struct {
	hub     *Hub
	name    string
	handler Handler
	queue   chan models.Event
	pending atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Name returns the endpoint name used as event origin.
func (e *Endpoint) Name() string {
	return e.name
}

// Publish sends evt to every other endpoint of the hub. The event's Origin
// is overwritten with the endpoint name.
func (e *Endpoint) Publish(evt models.Event) error {
	if !evt.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidEvent, evt.Type)
	}

	select {
	case <-e.done:
		return ErrEndpointClosed
	default:
	}

	evt.Origin = e.name
	e.hub.broadcast(e, evt)
	return nil
}

// Close detaches the endpoint and waits for an in-progress handler call.
// Queued events are discarded. Close is idempotent and must not be called
// from the endpoint's own handler.
func (e *Endpoint) Close() {
	e.closeOnce.Do(func() {
		e.hub.leave(e)
		close(e.done)
	})
	e.wg.Wait()
}

// Drain blocks until every queued event was handled or ctx is done.
func (e *Endpoint) Drain(ctx context.Context) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for e.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.done:
			return ErrEndpointClosed
		case <-ticker.C:
		}
	}
	return nil
}

func (e *Endpoint) deliver() {
	defer e.wg.Done()

	for {
		select {
		case <-e.done:
			return
		case evt := <-e.queue:
			e.handle(evt)
			e.pending.Add(-1)
		}
	}
}

func (e *Endpoint) handle(evt models.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.hub.logger.Error().Str("func", "Endpoint.handle").
				Str("endpoint", e.name).
				Any("panic", r).
				Msg("event handler panicked")
		}
	}()

	e.handler(evt)
}
