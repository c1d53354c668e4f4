package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/latticefi/spotdex/x/dex/types"
)

// newTestClient builds a Client with no real connection, directly
// wired into hub's subscriber bookkeeping, for exercising
// broadcast/Subscribe without a network round trip.
func newTestClient(hub *Hub) *Client {
	c := &Client{hub: hub, send: make(chan []byte, sendBufferSize)}
	hub.addClient(c)
	return c
}

func TestHubBroadcastOnlyReachesSubscribers(t *testing.T) {
	hub := NewHub()
	subscribed := newTestClient(hub)
	unsubscribed := newTestClient(hub)
	hub.Subscribe(subscribed, ChannelTrades)

	hub.EmitTradeExecuted(types.TradeExecutedEvent{Trade: types.Trade{
		Price:      3 * types.PriceFactor,
		BaseAmount: types.NewQFromUint64(5),
	}})

	select {
	case msg := <-subscribed.send:
		var decoded wireMessage
		if err := json.Unmarshal(msg, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded.Channel != ChannelTrades || decoded.Type != "trade_executed" {
			t.Fatalf("decoded = %+v, want channel=%s type=trade_executed", decoded, ChannelTrades)
		}
	default:
		t.Fatalf("subscribed client received nothing")
	}

	select {
	case msg := <-unsubscribed.send:
		t.Fatalf("unsubscribed client received %s, want nothing", msg)
	default:
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub)
	hub.Subscribe(c, ChannelOrders)
	hub.Unsubscribe(c, ChannelOrders)

	hub.EmitOrderCreated(types.OrderCreatedEvent{})

	select {
	case msg := <-c.send:
		t.Fatalf("unsubscribed client received %s, want nothing", msg)
	default:
	}
}

func TestHubRemoveClientClosesSendChannel(t *testing.T) {
	hub := NewHub()
	c := newTestClient(hub)
	hub.Subscribe(c, ChannelTrades)

	hub.removeClient(c)

	select {
	case _, ok := <-c.send:
		if ok {
			t.Fatalf("send channel still open after removeClient")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel was never closed")
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0", hub.ClientCount())
	}
}
