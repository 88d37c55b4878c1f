package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// queueCapacity bounds each symbol's publish queue. A submission that
// fills this queue faster than the publisher drains it is not expected
// under normal load — matching itself never blocks on this queue.
const queueCapacity = 1024

// subscriberCapacity bounds each subscriber's own channel. When full,
// the oldest-unsent event for that subscriber is dropped to make room;
// the resulting gap in sequence numbers is what tells the subscriber to
// re-snapshot. The fan-out is adapted from 0xtitan6-polymarket-mm's
// internal/api Hub.broadcast (register/unregister/broadcast channels, a
// non-blocking select/default send that drops on a full client buffer)
// translated from raw websocket frames to typed Events on plain Go
// channels — the websocket transport itself stays out of scope here.
const subscriberCapacity = 256

// Subscription is a live handle to one symbol's event stream. Events
// arrives in publish order; Unsubscribe stops delivery and releases the
// channel.
type Subscription struct {
	Events <-chan Event

	bus    *Bus
	symbol string
	ch     chan Event
}

// Unsubscribe removes this subscription from its symbol's fan-out set.
func (s *Subscription) Unsubscribe() {
	s.bus.unsubscribe(s.symbol, s.ch)
}

type symbolHub struct {
	queue       chan Event
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

// Bus is the engine-wide event fan-out: one symbolHub, one publisher
// goroutine, and one subscriber set per symbol. Matching and
// cancellation enqueue onto Publish, which never blocks; a dedicated
// goroutine per symbol (supervised by a tomb.Tomb, the same lifecycle
// primitive the TCP server uses for its worker pool and accept loop)
// drains the queue and fans it out.
type Bus struct {
	mu   sync.Mutex
	hubs map[string]*symbolHub
	t    tomb.Tomb
}

// New returns an empty Bus. Call Shutdown to stop every publisher
// goroutine.
func New() *Bus {
	return &Bus{hubs: make(map[string]*symbolHub)}
}

// Shutdown stops every per-symbol publisher goroutine and waits for
// them to exit.
func (b *Bus) Shutdown() {
	b.t.Kill(nil)
	b.t.Wait()
}

func (b *Bus) hubFor(symbol string) *symbolHub {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, ok := b.hubs[symbol]
	if ok {
		return h
	}
	h = &symbolHub{
		queue:       make(chan Event, queueCapacity),
		subscribers: make(map[chan Event]struct{}),
	}
	b.hubs[symbol] = h
	b.t.Go(func() error {
		return b.publishLoop(symbol, h)
	})
	return h
}

// Publish enqueues ev for symbol's subscribers. Never blocks: if the
// symbol's queue is full, the oldest queued event is dropped to make
// room for ev and the drop is logged — the matching critical section
// must never suspend on event delivery.
func (b *Bus) Publish(symbol string, ev Event) {
	h := b.hubFor(symbol)
	select {
	case h.queue <- ev:
	default:
		select {
		case <-h.queue:
		default:
		}
		select {
		case h.queue <- ev:
		default:
		}
		log.Warn().Str("symbol", symbol).Str("type", string(ev.Type)).
			Msg("event queue full, dropped oldest queued event")
	}
}

func (b *Bus) publishLoop(symbol string, h *symbolHub) error {
	for {
		select {
		case <-b.t.Dying():
			return nil
		case ev := <-h.queue:
			h.mu.Lock()
			for ch := range h.subscribers {
				select {
				case ch <- ev:
				default:
					select {
					case <-ch:
					default:
					}
					select {
					case ch <- ev:
					default:
					}
					log.Warn().Str("symbol", symbol).
						Msg("subscriber too slow, dropped its oldest event")
				}
			}
			h.mu.Unlock()
		}
	}
}

// SubscribeWithSnapshot joins symbol's stream, guaranteeing snapshot is
// the first event the caller ever observes: it is buffered into the
// subscriber channel before that channel is registered for live
// delivery, so no in-flight publish can overtake it.
func (b *Bus) SubscribeWithSnapshot(symbol string, snapshot Event) *Subscription {
	h := b.hubFor(symbol)
	ch := make(chan Event, subscriberCapacity)
	ch <- snapshot

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return &Subscription{Events: ch, bus: b, symbol: symbol, ch: ch}
}

func (b *Bus) unsubscribe(symbol string, ch chan Event) {
	b.mu.Lock()
	h, ok := b.hubs[symbol]
	b.mu.Unlock()
	if !ok {
		return
	}
	h.mu.Lock()
	delete(h.subscribers, ch)
	h.mu.Unlock()
}
