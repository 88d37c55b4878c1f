// Package engine is the matching engine core (C6): order admission,
// price/time-priority matching, cancellation, stop-order triggering,
// and the read-only query surface (C8) over the order book (C5), the
// order registry (C2), and the event bus (C7).
//
// The matching algorithm sweeps the opposite side's best price level
// outward via the book side's Best(), consuming each level's FIFO
// queue, with decimal.Decimal prices and arbitrary symbols throughout.
package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"matchcore/internal/common"
	"matchcore/internal/events"
	"matchcore/internal/idgen"
	"matchcore/internal/matchbook"
	"matchcore/internal/registry"
)

// Engine owns every symbol's book, the shared order registry, the ID
// allocator, and the event bus. Adding a never-seen symbol takes the
// symbols map's write lock; all matching/cancellation against an
// existing symbol takes only that symbol's own book lock — no
// goroutine ever holds two symbol locks at once.
type Engine struct {
	ids      *idgen.Allocator
	registry *registry.Registry
	bus      *events.Bus

	mu      sync.RWMutex
	symbols map[string]*matchbook.Book

	stopsMu sync.Mutex
	stops   map[string][]*common.Order
}

// New returns an Engine with no symbols yet resident; symbols are
// created lazily on first submission.
func New() *Engine {
	return &Engine{
		ids:      idgen.New(),
		registry: registry.New(),
		bus:      events.New(),
		symbols:  make(map[string]*matchbook.Book),
		stops:    make(map[string][]*common.Order),
	}
}

// Shutdown stops the event bus's publisher goroutines.
func (e *Engine) Shutdown() {
	e.bus.Shutdown()
}

// Health reports whether the engine is serving normally. Currently
// always "ok": a degraded state would be wired up by a future resource
// monitor, but nothing in this engine today can put it into that
// state.
func (e *Engine) Health() string {
	return "ok"
}

// bookFor returns the book for symbol, creating an empty one under the
// symbols map's write lock on first use.
func (e *Engine) bookFor(symbol string) *matchbook.Book {
	e.mu.RLock()
	b, ok := e.symbols[symbol]
	e.mu.RUnlock()
	if ok {
		return b
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok = e.symbols[symbol]; ok {
		return b
	}
	b = matchbook.New(symbol)
	e.symbols[symbol] = b
	return b
}

func (e *Engine) peekBook(symbol string) (*matchbook.Book, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	b, ok := e.symbols[symbol]
	return b, ok
}

// breach logs an invariant violation and aborts the process: the book
// is untrusted once an invariant breaks, so this is intentionally
// fatal rather than a returned error.
func breach(format string, args ...any) {
	log.Fatal().Msgf(format, args...)
}

// clock is swapped out in tests that need deterministic timestamps.
var clock = time.Now
