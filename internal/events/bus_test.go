package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeWithSnapshotArrivesFirst(t *testing.T) {
	b := New()
	defer b.Shutdown()

	snapshot := Event{Type: TypeSnapshot, Seq: 1}
	sub := b.SubscribeWithSnapshot("BTC-USD", snapshot)
	defer sub.Unsubscribe()

	b.Publish("BTC-USD", Event{Type: TypeTrade, Seq: 2})

	first := recv(t, sub)
	assert.Equal(t, TypeSnapshot, first.Type)

	second := recv(t, sub)
	assert.Equal(t, TypeTrade, second.Type)
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Shutdown()

	sub := b.SubscribeWithSnapshot("BTC-USD", Event{Type: TypeSnapshot})
	recv(t, sub) // drain the snapshot
	sub.Unsubscribe()

	b.Publish("BTC-USD", Event{Type: TypeTrade})

	select {
	case ev, ok := <-sub.Events:
		t.Fatalf("expected no further delivery after unsubscribe, got %+v (ok=%v)", ev, ok)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishToUnknownSymbolDoesNotPanic(t *testing.T) {
	b := New()
	defer b.Shutdown()
	assert.NotPanics(t, func() {
		b.Publish("NOBODY-HOME", Event{Type: TypeTrade})
	})
}

func recv(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev := <-sub.Events:
		return ev
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for event")
		return Event{}
	}
}
