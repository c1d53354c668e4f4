package types

// Events mirror the dispatch surface's emitted events (§6), plus a
// TradeExecuted event that supplements spec.md for the market-data
// feed — a pure observability addition, not a new trading feature.
type (
	TradePairCreatedEvent struct {
		Creator A
		Pair    TradePair
	}

	OrderCreatedEvent struct {
		Owner      A
		Base       H
		Quote      H
		OrderHash  H
		Price      P
		SellAmount Q
	}

	TradeExecutedEvent struct {
		Trade Trade
	}
)

// EventSink receives dispatch-shell events. x/dex/feed implements this
// to rebroadcast to subscribed WebSocket clients.
type EventSink interface {
	EmitTradePairCreated(TradePairCreatedEvent)
	EmitOrderCreated(OrderCreatedEvent)
	EmitTradeExecuted(TradeExecutedEvent)
}

// NopEventSink discards every event. Used where no feed is attached.
type NopEventSink struct{}

func (NopEventSink) EmitTradePairCreated(TradePairCreatedEvent) {}
func (NopEventSink) EmitOrderCreated(OrderCreatedEvent)         {}
func (NopEventSink) EmitTradeExecuted(TradeExecutedEvent)       {}
