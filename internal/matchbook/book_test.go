package matchbook

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/common"
)

func TestBook_SeqIsMonotoneAndStartsAtZero(t *testing.T) {
	b := New("BTC-USD")
	assert.Equal(t, uint64(0), b.Seq())
	assert.Equal(t, uint64(1), b.NextSeq())
	assert.Equal(t, uint64(2), b.NextSeq())
	assert.Equal(t, uint64(2), b.Seq())
}

func TestBook_RecentTradesNewestFirst(t *testing.T) {
	b := New("BTC-USD")
	for i := int64(1); i <= 3; i++ {
		b.RecordTrade(common.Trade{
			ID:         i,
			Symbol:     "BTC-USD",
			Quantity:   decimal.NewFromInt(1),
			Price:      decimal.NewFromInt(100 + i),
			ExecutedAt: time.Now(),
		})
	}
	recent := b.RecentTrades(10)
	require.Len(t, recent, 3)
	assert.Equal(t, int64(3), recent[0].ID)
	assert.Equal(t, int64(2), recent[1].ID)
	assert.Equal(t, int64(1), recent[2].ID)
}

func TestBook_RecentTradesRespectsLimit(t *testing.T) {
	b := New("BTC-USD")
	for i := int64(1); i <= 5; i++ {
		b.RecordTrade(common.Trade{ID: i, Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)})
	}
	assert.Len(t, b.RecentTrades(2), 2)
	assert.Len(t, b.RecentTrades(100), 5)
}
