package mango

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mangobot/gomango/pkg/config"
	"github.com/mangobot/gomango/pkg/solana"
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderKind distinguishes synthesized market orders from plain limit orders.
// The underlying protocol only supports limit-style placement; market orders
// are priced by walking the book and padding the depth-exhausting level.
type OrderKind string

const (
	KindMarket OrderKind = "market"
	KindLimit  OrderKind = "limit"
)

// TimeInForce selects the protocol-level order behavior for limit orders.
type TimeInForce string

const (
	TIFLimit             TimeInForce = "limit"
	TIFImmediateOrCancel TimeInForce = "ioc"
	TIFPostOnly          TimeInForce = "postOnly"
)

// RestingOrder is one order decoded from a market's book accounts. It is an
// immutable snapshot; the book may have changed by the next read.
type RestingOrder struct {
	Price    decimal.Decimal
	Size     decimal.Decimal
	Side     Side
	Owner    solana.PublicKey // open-orders account that owns the slot
	ClientID uint64
}

// Ticker is the freshest known price for a symbol, derived from the most
// recent one-minute bar. Time is epoch milliseconds.
type Ticker struct {
	Symbol string
	Price  decimal.Decimal
	Time   int64
}

// Bar is one OHLCV candle. Time is epoch seconds.
type Bar struct {
	Time   int64
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
}

// Fill is one trade record from the fills-indexing service, tagged with the
// queried symbol after ownership filtering.
type Fill struct {
	Market                 string          `json:"market,omitempty"`
	Side                   string          `json:"side"`
	Price                  decimal.Decimal `json:"price"`
	Size                   decimal.Decimal `json:"size"`
	NativeQuantityReleased decimal.Decimal `json:"nativeQuantityReleased"`
	NativeQuantityPaid     decimal.Decimal `json:"nativeQuantityPaid"`
	OpenOrders             string          `json:"openOrders"`
	OrderID                string          `json:"orderId,omitempty"`
	LoadTimestamp          string          `json:"loadTimestamp,omitempty"`
}

// AccountFetcher reads raw on-chain account data. The RPC client in
// pkg/solana satisfies it; tests inject fakes.
type AccountFetcher interface {
	FetchAccount(ctx context.Context, key solana.PublicKey) ([]byte, error)
}

// BookDecoder turns one side's raw account buffer into resting orders. The
// wire layout belongs to the protocol SDK, not to this module.
type BookDecoder interface {
	DecodeSide(data []byte, market config.Market, side Side) ([]RestingOrder, error)
}

// PlaceRequest carries everything a submitter needs to build, sign and send
// a placement transaction.
type PlaceRequest struct {
	Market      config.Market
	Side        Side
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	TimeInForce TimeInForce
	ClientID    uint64
}

// TradeSubmitter signs and submits protocol transactions and resolves the
// caller's per-market open-orders accounts. Submission cannot be aborted
// once started; both methods return the transaction signature.
type TradeSubmitter interface {
	PlaceOrder(ctx context.Context, req PlaceRequest) (string, error)
	CancelOrder(ctx context.Context, market config.Market, order RestingOrder) (string, error)
	OpenOrdersAddress(market config.Market) (solana.PublicKey, bool)
}
