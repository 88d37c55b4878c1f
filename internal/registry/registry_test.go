package registry

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/common"
)

func newOrder(id int64, userID, symbol string) *common.Order {
	now := time.Now()
	return &common.Order{
		ID:        id,
		UserID:    userID,
		Symbol:    symbol,
		Side:      common.Buy,
		Kind:      common.Limit,
		Quantity:  decimal.NewFromInt(1),
		Status:    common.Pending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRegistry_PutGet(t *testing.T) {
	r := New()
	o := newOrder(1, "alice", "BTC-USD")
	r.Put(o)

	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, o, got)

	_, ok = r.Get(2)
	assert.False(t, ok)
}

func TestRegistry_PutIsIdempotentOnIndices(t *testing.T) {
	r := New()
	o := newOrder(1, "alice", "BTC-USD")
	r.Put(o)
	r.Put(o)

	ids := r.ListBySymbol("BTC-USD")
	assert.Len(t, ids, 1, "re-putting an existing ID must not duplicate secondary index entries")
}

func TestRegistry_MutateFill(t *testing.T) {
	r := New()
	o := newOrder(1, "alice", "BTC-USD")
	r.Put(o)

	assert.True(t, r.MutateFill(1, decimal.NewFromInt(1), common.Filled))
	got, _ := r.Get(1)
	assert.True(t, decimal.NewFromInt(1).Equal(got.FilledQuantity))
	assert.Equal(t, common.Filled, got.Status)

	assert.False(t, r.MutateFill(999, decimal.Zero, common.Filled))
}

func TestRegistry_ListByUserFiltersAndOrders(t *testing.T) {
	r := New()
	first := newOrder(1, "alice", "BTC-USD")
	first.CreatedAt = time.Now().Add(-time.Minute)
	second := newOrder(2, "alice", "BTC-USD")
	second.Status = common.Filled
	third := newOrder(3, "bob", "BTC-USD")

	r.Put(first)
	r.Put(second)
	r.Put(third)

	all := r.ListByUser("alice", nil)
	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID, "newest first")

	pending := common.Pending
	filtered := r.ListByUser("alice", &pending)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].ID)
}

func TestRegistry_ConvertStop(t *testing.T) {
	r := New()
	o := newOrder(1, "alice", "BTC-USD")
	o.Kind = common.Stop
	r.Put(o)

	assert.True(t, r.ConvertStop(1, common.Market))
	got, _ := r.Get(1)
	assert.Equal(t, common.Market, got.Kind)
}
