// mango-cli runs the ad-hoc demonstration sequence: list markets, tickers,
// fetch OHLCV, place an order, list open orders, cancel. Order submission
// runs against a dry-run submitter that logs instead of signing; wiring a
// real protocol SDK submitter is deployment work, not something this binary
// decides. Not a supported interface.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/mangobot/gomango/mango"
	"github.com/mangobot/gomango/pkg/config"
	"github.com/mangobot/gomango/pkg/logger"
	"github.com/mangobot/gomango/pkg/solana"
)

// dryRunSubmitter logs placements and cancellations instead of submitting.
type dryRunSubmitter struct{}

func (dryRunSubmitter) PlaceOrder(ctx context.Context, req mango.PlaceRequest) (string, error) {
	log.Printf("[dry-run] place %s %s %s @ %s clientID=%d",
		req.Market.Symbol, req.Side, req.Quantity, req.Price, req.ClientID)
	return "dry-run", nil
}

func (dryRunSubmitter) CancelOrder(ctx context.Context, mkt config.Market, order mango.RestingOrder) (string, error) {
	log.Printf("[dry-run] cancel %s %s %s @ %s", mkt.Symbol, order.Side, order.Size, order.Price)
	return "dry-run", nil
}

func (dryRunSubmitter) OpenOrdersAddress(mkt config.Market) (solana.PublicKey, bool) {
	return solana.PublicKey{}, false
}

// nopDecoder treats every book account as empty.
type nopDecoder struct{}

func (nopDecoder) DecodeSide(data []byte, mkt config.Market, side mango.Side) ([]mango.RestingOrder, error) {
	return nil, nil
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "demo" {
		log.Fatalf("usage: %s demo", os.Args[0])
	}
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}
	if err := logger.Init(logger.Config{Level: getenv("LOG_LEVEL", "info")}); err != nil {
		log.Fatalf("init logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	keypair, err := solana.LoadKeypair()
	if err != nil {
		log.Fatalf("resolve keypair: %v", err)
	}

	client, err := mango.NewClient(mango.Options{
		Config:    cfg,
		Keypair:   keypair,
		Decoder:   nopDecoder{},
		Submitter: dryRunSubmitter{},
	})
	if err != nil {
		log.Fatalf("build client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	symbols := client.Markets()
	logger.Infof("markets: %v", symbols)
	if len(symbols) == 0 {
		return
	}
	symbol := symbols[0]

	tickers, err := client.Tickers(ctx, symbol)
	if err != nil {
		logger.Warnf("tickers: %v", err)
	} else {
		for _, ticker := range tickers {
			logger.Infof("ticker %s: %s @ %d", ticker.Symbol, ticker.Price, ticker.Time)
		}
	}

	now := time.Now()
	bars, err := client.Ohlcv(ctx, symbol, "1", now.Add(-time.Hour).UnixMilli(), now.UnixMilli())
	if err != nil {
		logger.Warnf("ohlcv: %v", err)
	} else {
		logger.Infof("fetched %d bars for %s", len(bars), symbol)
	}

	price := decimal.NewFromInt(1)
	if len(bars) > 0 {
		price = bars[len(bars)-1].Close
	}
	limitPrice, _ := price.Float64()
	clientID, err := client.PlaceOrder(ctx, mango.PlaceOrderParams{
		Symbol:   symbol,
		Kind:     mango.KindLimit,
		Side:     mango.SideBuy,
		Quantity: 0.01,
		Price:    limitPrice,
	})
	if err != nil {
		logger.Warnf("place order: %v", err)
	} else {
		logger.Infof("placed order clientID=%s", clientID)
	}

	open, err := client.OpenOrders(ctx, symbol)
	if err != nil {
		logger.Warnf("open orders: %v", err)
	} else {
		logger.Infof("%d open orders on %s", len(open), symbol)
	}

	if err := client.CancelOrders(ctx, mango.CancelOrdersParams{Symbol: symbol}); err != nil {
		logger.Warnf("cancel orders: %v", err)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
