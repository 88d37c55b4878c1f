package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidSide_OrdersHighestFirst(t *testing.T) {
	side := NewBidSide()
	side.GetOrCreate(d("99")).Enqueue(1, d("1"))
	side.GetOrCreate(d("101")).Enqueue(2, d("1"))
	side.GetOrCreate(d("100")).Enqueue(3, d("1"))

	items := side.Items()
	require.Len(t, items, 3)
	assert.True(t, d("101").Equal(items[0].Price))
	assert.True(t, d("100").Equal(items[1].Price))
	assert.True(t, d("99").Equal(items[2].Price))
}

func TestAskSide_OrdersLowestFirst(t *testing.T) {
	side := NewAskSide()
	side.GetOrCreate(d("101")).Enqueue(1, d("1"))
	side.GetOrCreate(d("99")).Enqueue(2, d("1"))
	side.GetOrCreate(d("100")).Enqueue(3, d("1"))

	best, ok := side.Best()
	require.True(t, ok)
	assert.True(t, d("99").Equal(best.Price))
}

func TestSide_RemoveOrderPrunesEmptyLevel(t *testing.T) {
	side := NewBidSide()
	side.GetOrCreate(d("100")).Enqueue(1, d("1"))
	assert.Equal(t, 1, side.Len())

	assert.True(t, side.RemoveOrder(d("100"), 1))
	assert.Equal(t, 0, side.Len(), "an emptied level is pruned from the tree")

	_, ok := side.Get(d("100"))
	assert.False(t, ok)
}

func TestSide_RemoveOrderUnknownPrice(t *testing.T) {
	side := NewBidSide()
	assert.False(t, side.RemoveOrder(d("100"), 1))
}
