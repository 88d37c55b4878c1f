// Package registry is the canonical store of every order record (C2):
// lookup by ID, secondary indices by user and symbol, and the mutation
// path the matching engine uses to apply fills and status transitions.
//
// Guarded by a reader-writer lock rather than a plain mutex: registry
// reads (order lookups, per-user listings) vastly outnumber writes.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"matchcore/internal/common"
)

// Registry stores every order ever admitted, keyed by ID, plus
// secondary indices for per-user and per-symbol membership.
type Registry struct {
	mu       sync.RWMutex
	byID     map[int64]*common.Order
	byUser   map[string][]int64
	bySymbol map[string][]int64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		byID:     make(map[int64]*common.Order),
		byUser:   make(map[string][]int64),
		bySymbol: make(map[string][]int64),
	}
}

// Put stores order by ID and updates the secondary indices. Put is
// idempotent when called again with an order already present under the
// same ID: the indices are only appended to on first insertion.
func (r *Registry) Put(o *common.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[o.ID]; exists {
		r.byID[o.ID] = o
		return
	}
	r.byID[o.ID] = o
	r.byUser[o.UserID] = append(r.byUser[o.UserID], o.ID)
	r.bySymbol[o.Symbol] = append(r.bySymbol[o.Symbol], o.ID)
}

// Get returns the order stored under id, if any.
func (r *Registry) Get(id int64) (*common.Order, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.byID[id]
	return o, ok
}

// MutateFill replaces the order's filled quantity with
// newFilledQuantity (the new cumulative total, not an increment), sets
// status, and stamps UpdatedAt. Returns false if id is unknown.
func (r *Registry) MutateFill(id int64, newFilledQuantity decimal.Decimal, status common.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return false
	}
	o.FilledQuantity = newFilledQuantity
	o.Status = status
	o.UpdatedAt = time.Now()
	return true
}

// MutateStatus sets the order's status and UpdatedAt without touching
// its fill quantity — used for cancellation.
func (r *Registry) MutateStatus(id int64, status common.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return false
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return true
}

// ConvertStop changes a STOP order's Kind in place once it has
// triggered, turning it into the LIMIT or MARKET order it resubmits
// as. This is the one field mutation outside MutateFill/MutateStatus,
// reserved for this single one-way transition.
func (r *Registry) ConvertStop(id int64, kind common.OrderKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return false
	}
	o.Kind = kind
	o.UpdatedAt = time.Now()
	return true
}

// ListByUser returns userID's orders, newest (CreatedAt) first,
// optionally filtered to one status.
func (r *Registry) ListByUser(userID string, status *common.Status) []*common.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byUser[userID]
	out := make([]*common.Order, 0, len(ids))
	for _, id := range ids {
		o := r.byID[id]
		if o == nil {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListBySymbol returns the order IDs ever admitted for symbol, in
// admission order.
func (r *Registry) ListBySymbol(symbol string) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, len(r.bySymbol[symbol]))
	copy(out, r.bySymbol[symbol])
	return out
}
