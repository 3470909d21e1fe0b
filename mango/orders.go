package mango

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Slippage guards applied to the depth-exhausting level when synthesizing a
// market order: pay up to 5% above it on a buy, accept down to 5% below on
// a sell.
var (
	marketBuyPad  = decimal.NewFromFloat(1.05)
	marketSellPad = decimal.NewFromFloat(0.95)
)

// PlaceOrderParams describes one order. Price is ignored for market orders.
type PlaceOrderParams struct {
	Symbol      string
	Kind        OrderKind
	Side        Side
	Quantity    float64
	Price       float64
	TimeInForce TimeInForce // limit orders only; unset means TIFLimit
}

// PlaceOrder validates the request, prices it, and submits it through the
// external trading client. It returns the client order identifier, derived
// from the current timestamp, for later correlation. No local state is kept;
// the new resting order lives on-chain only.
func (c *Client) PlaceOrder(ctx context.Context, params PlaceOrderParams) (string, error) {
	if strings.TrimSpace(params.Symbol) == "" {
		return "", invalidOrderf("symbol must not be blank")
	}
	if !isFinitePositive(params.Quantity) {
		return "", invalidOrderf("quantity must be a positive finite number, got %v", params.Quantity)
	}
	if params.Kind != KindMarket && !isFinitePositive(params.Price) {
		return "", invalidOrderf("limit price must be a positive finite number, got %v", params.Price)
	}

	mkt, err := c.resolveMarket(params.Symbol)
	if err != nil {
		return "", err
	}

	quantity := decimal.NewFromFloat(params.Quantity)
	var price decimal.Decimal
	if params.Kind == KindMarket {
		price, err = c.marketPrice(ctx, params.Symbol, params.Side, quantity)
		if err != nil {
			return "", err
		}
	} else {
		price = decimal.NewFromFloat(params.Price)
	}

	tif := params.TimeInForce
	if tif == "" {
		tif = TIFLimit
	}

	clientID := uint64(time.Now().UnixMilli())
	signature, err := c.submitter.PlaceOrder(ctx, PlaceRequest{
		Market:      mkt,
		Side:        params.Side,
		Price:       price,
		Quantity:    quantity,
		TimeInForce: tif,
		ClientID:    clientID,
	})
	if err != nil {
		return "", err
	}

	c.log.WithField("market", params.Symbol).Infof(
		"placed %s %s %s @ %s clientID=%d sig=%s",
		params.Kind, params.Side, quantity, price, clientID, signature)
	return strconv.FormatUint(clientID, 10), nil
}

// marketPrice walks the combined book, accumulating sizes until the running
// total covers the requested quantity; the last order inspected sets the
// level, padded by the slippage guard. An empty book has no discoverable
// price.
func (c *Client) marketPrice(ctx context.Context, symbol string, side Side, quantity decimal.Decimal) (decimal.Decimal, error) {
	book, err := c.OrderBook(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if len(book) == 0 {
		return decimal.Zero, ErrEmptyBook
	}

	selected := book[0]
	cumulative := decimal.Zero
	for _, order := range book {
		selected = order
		cumulative = cumulative.Add(order.Size)
		if cumulative.GreaterThanOrEqual(quantity) {
			break
		}
	}

	if side == SideBuy {
		return selected.Price.Mul(marketBuyPad), nil
	}
	return selected.Price.Mul(marketSellPad), nil
}

// CancelOrdersParams selects which orders to cancel. An empty Symbol means
// every configured market; a non-empty ClientID restricts cancellation to
// orders carrying that client identifier.
type CancelOrdersParams struct {
	Symbol   string
	ClientID string
}

// CancelOrders cancels the caller's resting orders. Within a market the
// cancel submissions run concurrently and are awaited as one batch; with no
// symbol given, every market's batch is launched concurrently and the call
// returns once all complete, the first error failing the whole sweep. Some
// cancellations may already have been submitted on-chain when an error
// surfaces.
//
// A ClientID that matches none of the caller's resting orders yields an
// empty cancel set and a nil error.
func (c *Client) CancelOrders(ctx context.Context, params CancelOrdersParams) error {
	sweep := uuid.NewString()

	if params.Symbol != "" {
		return c.cancelMarket(ctx, sweep, params.Symbol, params.ClientID)
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, symbol := range c.cfg.Symbols() {
		symbol := symbol
		group.Go(func() error {
			return c.cancelMarket(ctx, sweep, symbol, params.ClientID)
		})
	}
	return group.Wait()
}

func (c *Client) cancelMarket(ctx context.Context, sweep, symbol, clientID string) error {
	mkt, err := c.resolveMarket(symbol)
	if err != nil {
		return err
	}
	open, err := c.OpenOrders(ctx, symbol)
	if err != nil {
		return err
	}
	if clientID != "" {
		filtered := open[:0]
		for _, order := range open {
			if strconv.FormatUint(order.ClientID, 10) == clientID {
				filtered = append(filtered, order)
			}
		}
		open = filtered
	}
	if len(open) == 0 {
		return nil
	}

	log := c.log.WithFields(logrus.Fields{"market": symbol, "sweep": sweep})
	group, ctx := errgroup.WithContext(ctx)
	for _, order := range open {
		order := order
		group.Go(func() error {
			signature, err := c.submitter.CancelOrder(ctx, mkt, order)
			if err != nil {
				return err
			}
			log.Infof("cancelled %s %s @ %s clientID=%d sig=%s",
				order.Side, order.Size, order.Price, order.ClientID, signature)
			return nil
		})
	}
	return group.Wait()
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
