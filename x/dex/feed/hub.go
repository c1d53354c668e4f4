// Package feed is the read-only market-data broadcaster of §4.11: a
// WebSocket hub that rebroadcasts OrderCreated and TradeExecuted
// events from the dispatch shell to subscribed clients. It never
// accepts order entry — that transport stays out of scope per §1.
package feed

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/latticefi/spotdex/x/dex/types"
)

// Channel names clients may subscribe to.
const (
	ChannelOrders = "orders"
	ChannelTrades = "trades"
)

// Hub maintains the set of connected clients and their channel
// subscriptions, and implements types.EventSink so the dispatch shell
// can publish directly into it.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]bool
	channels map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
}

var _ types.EventSink = (*Hub)(nil)

// NewHub returns a Hub with no connected clients. Run must be called
// once (typically in its own goroutine) to process register and
// unregister requests.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		channels:   make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registration until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case <-stop:
			return
		}
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for _, subs := range h.channels {
		delete(subs, c)
	}
	close(c.send)
}

// Subscribe adds c to channel's subscriber set.
func (h *Hub) Subscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.channels[channel]
	if !ok {
		subs = make(map[*Client]bool)
		h.channels[channel] = subs
	}
	subs[c] = true
}

// Unsubscribe removes c from channel's subscriber set.
func (h *Hub) Unsubscribe(c *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.channels[channel], c)
}

// ClientCount returns the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// wireMessage is the envelope every broadcast is wrapped in.
type wireMessage struct {
	Channel   string      `json:"channel"`
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

func (h *Hub) broadcast(channel, msgType string, data interface{}, now int64) {
	h.mu.RLock()
	subs := h.channels[channel]
	clients := make([]*Client, 0, len(subs))
	for c := range subs {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(wireMessage{Channel: channel, Type: msgType, Data: data, Timestamp: now})
	if err != nil {
		return
	}
	for _, c := range clients {
		c.Send(payload)
	}
}

// orderWireEvent mirrors types.OrderCreatedEvent with hash fields
// rendered as hex, since H/A/P/Q have no JSON marshaling of their own.
type orderWireEvent struct {
	Owner      string `json:"owner"`
	Base       string `json:"base"`
	Quote      string `json:"quote"`
	OrderHash  string `json:"order_hash"`
	Price      uint64 `json:"price"`
	SellAmount string `json:"sell_amount"`
}

type tradeWireEvent struct {
	Hash        string `json:"hash"`
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	Buyer       string `json:"buyer"`
	Seller      string `json:"seller"`
	Price       uint64 `json:"price"`
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
}

// EmitTradePairCreated is a no-op: trade pair creation has no
// read-only feed channel of its own.
func (h *Hub) EmitTradePairCreated(types.TradePairCreatedEvent) {}

// EmitOrderCreated rebroadcasts ev to every ChannelOrders subscriber.
func (h *Hub) EmitOrderCreated(ev types.OrderCreatedEvent) {
	h.broadcast(ChannelOrders, "order_created", orderWireEvent{
		Owner:      string(ev.Owner),
		Base:       ev.Base.String(),
		Quote:      ev.Quote.String(),
		OrderHash:  ev.OrderHash.String(),
		Price:      uint64(ev.Price),
		SellAmount: ev.SellAmount.String(),
	}, time.Now().UnixMilli())
}

// EmitTradeExecuted rebroadcasts ev to every ChannelTrades subscriber.
func (h *Hub) EmitTradeExecuted(ev types.TradeExecutedEvent) {
	h.broadcast(ChannelTrades, "trade_executed", tradeWireEvent{
		Hash:        ev.Trade.Hash.String(),
		Base:        ev.Trade.Base.String(),
		Quote:       ev.Trade.Quote.String(),
		Buyer:       string(ev.Trade.Buyer),
		Seller:      string(ev.Trade.Seller),
		Price:       uint64(ev.Trade.Price),
		BaseAmount:  ev.Trade.BaseAmount.String(),
		QuoteAmount: ev.Trade.QuoteAmount.String(),
	}, time.Now().UnixMilli())
}
