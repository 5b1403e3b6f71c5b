package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// Retain lists event types that are never dropped for backpressure. With
	// DropIfFull set, emitting one of them waits for buffer space instead.
	Retain []string
}

// Dispatcher forwards audit events to a sink on one background goroutine.
//
// Events missing an EventID or Timestamp are stamped on Emit, so the sink
// observes them in emission order with identifiers assigned.
type Dispatcher struct {
	sink       Sink
	dropIfFull bool
	retain     map[string]struct{}
	queue      chan Event
	done       chan struct{}
	wg         sync.WaitGroup
	closed     atomic.Bool
	stop       sync.Once

	dropped   atomic.Uint64
	droppedMu sync.Mutex
	byType    map[string]uint64
}

func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		dropIfFull: cfg.DropIfFull,
		retain:     make(map[string]struct{}, len(cfg.Retain)),
		queue:      make(chan Event, cfg.BufferSize),
		done:       make(chan struct{}),
		byType:     make(map[string]uint64),
	}
	for _, t := range cfg.Retain {
		d.retain[t] = struct{}{}
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain delivers whatever was queued before Close.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues event. A dropped event is counted under its EventType. Events
// emitted after Close are discarded without being counted.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.EventID == "" {
		event.EventID = NewEventID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if _, keep := d.retain[event.EventType]; d.dropIfFull && !keep {
		select {
		case d.queue <- event:
		case <-d.done:
		default:
			d.drop(event.EventType)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
		d.drop(event.EventType)
	case <-d.done:
	}
}

func (d *Dispatcher) drop(eventType string) {
	d.dropped.Add(1)
	d.droppedMu.Lock()
	d.byType[eventType]++
	d.droppedMu.Unlock()
}

// Close stops accepting events and returns once queued events reached the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.stop.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the total number of dropped events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns a copy of the drop counts keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	out := make(map[string]uint64)
	if d == nil {
		return out
	}
	d.droppedMu.Lock()
	defer d.droppedMu.Unlock()
	for t, n := range d.byType {
		out[t] = n
	}
	return out
}
