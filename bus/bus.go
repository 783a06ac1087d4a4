// Package bus is the in-process publish/subscribe backbone. Delivery is
// synchronous and priority-ordered; a bounded FIFO adds deferred delivery
// for publishers that must not re-enter their listeners.
package bus

import (
	"twist-go/logx"
	"twist-go/x/timex"
)

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// Priority orders listener invocation for one event. Higher tiers run first;
// the gaps leave room for intermediate tiers without renumbering.
type Priority uint8

const (
	PriorityLow      Priority = 0
	PriorityNormal   Priority = 10
	PriorityHigh     Priority = 20
	PriorityCritical Priority = 30
)

// tiers is the dispatch order.
var tiers = [...]Priority{PriorityCritical, PriorityHigh, PriorityNormal, PriorityLow}

// Event is an immutable notification. Source is the originating device id
// (0 = system). TS is Unix milliseconds, stamped by the bus at publish or
// enqueue time; a caller-supplied TS is overwritten.
type Event struct {
	Name     string
	Source   uint16
	Payload  any
	Priority Priority
	TS       int64
}

// Listener receives a dispatched event. Listeners run on the caller's
// goroutine and must return quickly; the bus never runs them concurrently.
type Listener func(Event)

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type subscription struct {
	id       uint16
	name     string
	fn       Listener
	priority Priority
	active   bool
}

// Config sizes the bus. Both tables are allocated once and never grow.
type Config struct {
	Listeners int // subscription slots; default 32
	Queue     int // deferred event ring slots; default 16
	Log       logx.Logger
	Clock     func() int64 // Unix ms; default timex.NowMs
}

const (
	defaultListeners = 32
	defaultQueue     = 16
)

// Bus is a single-threaded publish/subscribe hub with priority-ordered
// synchronous delivery and a bounded FIFO for deferred delivery. It never
// blocks: capacity exhaustion fails the operation and bumps a counter.
type Bus struct {
	subs     []subscription
	subCount int
	nextID   uint16

	queue []Event
	head  int
	tail  int
	size  int

	published uint32
	dropped   uint32

	log logx.Logger
	now func() int64
}

func New(cfg Config) *Bus {
	if cfg.Listeners <= 0 {
		cfg.Listeners = defaultListeners
	}
	if cfg.Queue <= 0 {
		cfg.Queue = defaultQueue
	}
	if cfg.Clock == nil {
		cfg.Clock = timex.NowMs
	}
	return &Bus{
		subs:   make([]subscription, cfg.Listeners),
		nextID: 1,
		queue:  make([]Event, cfg.Queue),
		log:    cfg.Log,
		now:    cfg.Clock,
	}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

// Subscribe registers fn for exact-name matches of name. It returns the
// subscription id, or 0 when name/fn is empty or the table is full.
// Freed slots are reused first-available, so ids are not tied to slot order.
func (b *Bus) Subscribe(name string, fn Listener, priority Priority) uint16 {
	if name == "" || fn == nil {
		logx.Errorf(b.log, "BUS", "subscribe with empty name or nil listener")
		return 0
	}
	if b.subCount >= len(b.subs) {
		logx.Errorf(b.log, "BUS", "listener table full (%d), dropping subscription to %q", len(b.subs), name)
		return 0
	}
	for i := range b.subs {
		if b.subs[i].active {
			continue
		}
		id := b.nextID
		b.nextID++
		if b.nextID == 0 {
			b.nextID = 1
		}
		b.subs[i] = subscription{id: id, name: name, fn: fn, priority: priority, active: true}
		b.subCount++
		logx.Debugf(b.log, "BUS", "subscribed to %q (id %d)", name, id)
		return id
	}
	return 0
}

// Unsubscribe removes the subscription with the given id. Unknown ids are a
// no-op.
func (b *Bus) Unsubscribe(id uint16) {
	if id == 0 {
		return
	}
	for i := range b.subs {
		if b.subs[i].active && b.subs[i].id == id {
			b.subs[i] = subscription{}
			b.subCount--
			return
		}
	}
}

// UnsubscribeAll removes every subscription whose name matches exactly.
func (b *Bus) UnsubscribeAll(name string) {
	if name == "" {
		return
	}
	for i := range b.subs {
		if b.subs[i].active && b.subs[i].name == name {
			b.subs[i] = subscription{}
			b.subCount--
		}
	}
}

// -----------------------------------------------------------------------------
// Publishing
// -----------------------------------------------------------------------------

// Publish delivers ev to every matching listener before returning.
// Listeners run in priority order, Critical first; within a tier, slot order.
func (b *Bus) Publish(ev Event) {
	if ev.Name == "" {
		return
	}
	ev.TS = b.now()
	b.published++
	b.dispatch(ev)
}

// PublishAsync enqueues ev for the next ProcessEvents call, stamping the
// enqueue time. When the ring is full the event is dropped, the drop counter
// is bumped, and false is returned; the bus never blocks the publisher.
func (b *Bus) PublishAsync(ev Event) bool {
	if ev.Name == "" {
		return false
	}
	if b.size >= len(b.queue) {
		b.dropped++
		logx.Warnf(b.log, "BUS", "event queue full, dropping %q", ev.Name)
		return false
	}
	ev.TS = b.now()
	b.queue[b.tail] = ev
	b.tail = (b.tail + 1) % len(b.queue)
	b.size++
	return true
}

// ProcessEvents drains the deferred queue in FIFO order, dispatching each
// event with the same priority-ordered semantics as Publish. It returns the
// number of events dispatched. Events enqueued by listeners during the drain
// are processed in the same call.
func (b *Bus) ProcessEvents() int {
	n := 0
	for b.size > 0 {
		ev := b.queue[b.head]
		b.queue[b.head] = Event{}
		b.head = (b.head + 1) % len(b.queue)
		b.size--

		b.published++
		b.dispatch(ev)
		n++
	}
	return n
}

func (b *Bus) dispatch(ev Event) {
	for _, tier := range tiers {
		for i := range b.subs {
			s := &b.subs[i]
			if s.active && s.priority == tier && s.name == ev.Name {
				s.fn(ev)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Statistics
// -----------------------------------------------------------------------------

// Pending returns the number of queued deferred events.
func (b *Bus) Pending() int { return b.size }

// Published returns the lifetime count of dispatched events.
func (b *Bus) Published() uint32 { return b.published }

// Dropped returns how many deferred events were discarded on a full queue.
func (b *Bus) Dropped() uint32 { return b.dropped }

// Listeners returns the number of active subscriptions.
func (b *Bus) Listeners() int { return b.subCount }
