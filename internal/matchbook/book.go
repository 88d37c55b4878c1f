// Package matchbook owns the per-symbol order book (C5): the pair of
// bid/ask price-level sides, the rolling trade log, and the sequence
// counter consumed by the event bus's book-update messages.
package matchbook

import (
	"sync"

	"matchcore/internal/book"
	"matchcore/internal/common"
)

// RecentTradesCapacity bounds the per-symbol trade log retention.
const RecentTradesCapacity = 10_000

// Book is one symbol's order book. Every field is protected by Lock —
// the single exclusive lock this symbol's matching and cancellation
// operations hold; reads take the read side. No goroutine ever holds
// two symbols' locks at once, so there is no cross-symbol deadlock
// surface (and no cross-symbol atomicity).
type Book struct {
	Symbol string
	Bids   *book.Side
	Asks   *book.Side

	Lock sync.RWMutex

	trades *tradeRing
	seq    uint64
}

// New returns an empty book for symbol.
func New(symbol string) *Book {
	return &Book{
		Symbol: symbol,
		Bids:   book.NewBidSide(),
		Asks:   book.NewAskSide(),
		trades: newTradeRing(RecentTradesCapacity),
	}
}

// RecordTrade appends t to the rolling trade log. Callers must hold
// Lock for write.
func (b *Book) RecordTrade(t common.Trade) {
	b.trades.Append(t)
}

// RecentTrades returns up to limit trades, newest first. Callers must
// hold Lock for read (or write).
func (b *Book) RecentTrades(limit int) []common.Trade {
	return b.trades.Recent(limit)
}

// NextSeq increments and returns the book's monotone sequence counter,
// used to let event-bus consumers detect gaps. Callers must hold Lock
// for write.
func (b *Book) NextSeq() uint64 {
	b.seq++
	return b.seq
}

// Seq returns the current sequence value without advancing it.
func (b *Book) Seq() uint64 {
	return b.seq
}
