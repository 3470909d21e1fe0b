package mango

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// tickerLookback bounds how far back the ticker looks for a one-minute bar.
// Twenty minutes tolerates gaps in the historical-data service.
const tickerLookback = 20 * time.Minute

// Markets lists the configured trading-pair symbols. No network call.
func (c *Client) Markets() []string {
	return c.cfg.Symbols()
}

// Tickers derives a ticker per symbol (all configured symbols when none are
// given) from the most recent one-minute bar inside the lookback window.
func (c *Client) Tickers(ctx context.Context, symbols ...string) ([]Ticker, error) {
	if len(symbols) == 0 {
		symbols = c.cfg.Symbols()
	}
	to := time.Now()
	from := to.Add(-tickerLookback)

	tickers := make([]Ticker, 0, len(symbols))
	for _, symbol := range symbols {
		bars, err := c.ohlcvRange(ctx, symbol, "1", from.Unix(), to.Unix())
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			return nil, errors.Errorf("no bars for %s within the last %s", symbol, tickerLookback)
		}
		last := bars[len(bars)-1]
		tickers = append(tickers, Ticker{
			Symbol: symbol,
			Price:  last.Close,
			Time:   last.Time * 1000,
		})
	}
	return tickers, nil
}

// Ohlcv proxies the historical-bars service, returning bars in ascending
// time order as delivered. The epoch-millisecond bounds mirror the public
// API; the service itself speaks epoch seconds.
func (c *Client) Ohlcv(ctx context.Context, symbol, resolution string, fromMs, toMs int64) ([]Bar, error) {
	return c.ohlcvRange(ctx, symbol, resolution, fromMs/1000, toMs/1000)
}

// tvHistory is the parallel-array bar format of the bars service.
type tvHistory struct {
	Status string            `json:"s"`
	Time   []int64           `json:"t"`
	Open   []decimal.Decimal `json:"o"`
	High   []decimal.Decimal `json:"h"`
	Low    []decimal.Decimal `json:"l"`
	Close  []decimal.Decimal `json:"c"`
	Volume []decimal.Decimal `json:"v"`
}

func (c *Client) ohlcvRange(ctx context.Context, symbol, resolution string, from, to int64) ([]Bar, error) {
	var history tvHistory
	err := c.bars.GetJSON(ctx, "/tv/history", map[string]string{
		"symbol":     symbol,
		"resolution": resolution,
		"from":       strconv.FormatInt(from, 10),
		"to":         strconv.FormatInt(to, 10),
	}, &history)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch bars for %s", symbol)
	}

	n := len(history.Time)
	if len(history.Open) != n || len(history.High) != n || len(history.Low) != n ||
		len(history.Close) != n || len(history.Volume) != n {
		return nil, errors.Errorf("bars for %s: ragged parallel arrays", symbol)
	}
	bars := make([]Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, Bar{
			Time:   history.Time[i],
			Open:   history.Open[i],
			High:   history.High[i],
			Low:    history.Low[i],
			Close:  history.Close[i],
			Volume: history.Volume[i],
		})
	}
	return bars, nil
}

// fillsEnvelope is the fills-indexing service response wrapper.
type fillsEnvelope struct {
	Data []Fill `json:"data"`
}

// TradeHistory returns the caller's fills for a market, keyed by the
// per-market open-orders account. No open-orders account means no history
// and no HTTP call. Fills whose reported open-orders address does not match
// are dropped; the rest are tagged with the symbol.
func (c *Client) TradeHistory(ctx context.Context, symbol string) ([]Fill, error) {
	mkt, err := c.resolveMarket(symbol)
	if err != nil {
		return nil, err
	}
	owner, ok := c.submitter.OpenOrdersAddress(mkt)
	if !ok {
		return []Fill{}, nil
	}

	var envelope fillsEnvelope
	if err := c.fills.GetJSON(ctx, "/trades/open_orders/"+owner.String(), nil, &envelope); err != nil {
		return nil, errors.Wrapf(err, "fetch trade history for %s", symbol)
	}

	fills := make([]Fill, 0, len(envelope.Data))
	for _, fill := range envelope.Data {
		if fill.OpenOrders != owner.String() {
			continue
		}
		fill.Market = symbol
		fills = append(fills, fill)
	}
	return fills, nil
}
