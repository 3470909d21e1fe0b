package mango

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mangobot/gomango/pkg/config"
	"github.com/mangobot/gomango/pkg/solana"
)

// OrderBook returns the full resting state of a market, bids first then
// asks, decoded from the two book accounts. A book account with no data
// contributes zero orders.
func (c *Client) OrderBook(ctx context.Context, symbol string) ([]RestingOrder, error) {
	mkt, err := c.resolveMarket(symbol)
	if err != nil {
		return nil, err
	}

	bids, err := c.bookSide(ctx, mkt, mkt.Bids, SideBuy)
	if err != nil {
		return nil, err
	}
	asks, err := c.bookSide(ctx, mkt, mkt.Asks, SideSell)
	if err != nil {
		return nil, err
	}
	return append(bids, asks...), nil
}

// OpenOrders returns the caller's resting orders for a market: the combined
// book filtered to entries owned by the caller's open-orders account. A
// caller with no open-orders account for the market has no open orders;
// that is not an error.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]RestingOrder, error) {
	mkt, err := c.resolveMarket(symbol)
	if err != nil {
		return nil, err
	}
	owner, ok := c.submitter.OpenOrdersAddress(mkt)
	if !ok {
		return nil, nil
	}

	book, err := c.OrderBook(ctx, symbol)
	if err != nil {
		return nil, err
	}
	var mine []RestingOrder
	for _, order := range book {
		if order.Owner.Equals(owner) {
			mine = append(mine, order)
		}
	}
	return mine, nil
}

func (c *Client) bookSide(ctx context.Context, mkt config.Market, address string, side Side) ([]RestingOrder, error) {
	if address == "" {
		// Book key not present in the registry entry; nothing to read.
		return nil, nil
	}
	key, err := solana.ParsePublicKey(address)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s account", mkt.Symbol, side)
	}
	data, err := c.accounts.FetchAccount(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch %s %s account", mkt.Symbol, side)
	}
	if len(data) == 0 {
		return nil, nil
	}
	orders, err := c.decoder.DecodeSide(data, mkt, side)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s %s account", mkt.Symbol, side)
	}
	return orders, nil
}
