package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPriceLevel_EnqueueHeadRemove(t *testing.T) {
	lvl := NewPriceLevel(d("100"))
	assert.True(t, lvl.IsEmpty())

	lvl.Enqueue(1, d("1.5"))
	lvl.Enqueue(2, d("2.5"))

	head, ok := lvl.Head()
	require.True(t, ok)
	assert.Equal(t, int64(1), head, "FIFO: oldest resident first")
	assert.True(t, d("4").Equal(lvl.TotalRemaining()))
	assert.Equal(t, 2, lvl.OrderCount())

	assert.True(t, lvl.Remove(1))
	head, ok = lvl.Head()
	require.True(t, ok)
	assert.Equal(t, int64(2), head)
	assert.True(t, d("2.5").Equal(lvl.TotalRemaining()))

	assert.True(t, lvl.Remove(2))
	assert.True(t, lvl.IsEmpty())
	assert.True(t, decimal.Zero.Equal(lvl.TotalRemaining()))
}

func TestPriceLevel_ApplyFillKeepsTotalConsistent(t *testing.T) {
	lvl := NewPriceLevel(d("100"))
	lvl.Enqueue(1, d("5"))

	lvl.ApplyFill(1, d("2"))
	remaining, ok := lvl.Remaining(1)
	require.True(t, ok)
	assert.True(t, d("3").Equal(remaining))
	assert.True(t, d("3").Equal(lvl.TotalRemaining()), "invariant: total_remaining = sum(qty - filled)")
	assert.Equal(t, 1, lvl.OrderCount(), "ApplyFill never removes; caller removes once fully consumed")
}

func TestPriceLevel_RemoveNonHead(t *testing.T) {
	lvl := NewPriceLevel(d("100"))
	lvl.Enqueue(1, d("1"))
	lvl.Enqueue(2, d("1"))
	lvl.Enqueue(3, d("1"))

	assert.True(t, lvl.Remove(2))
	assert.Equal(t, []int64{1, 3}, lvl.Orders)
	assert.True(t, d("2").Equal(lvl.TotalRemaining()))
}
