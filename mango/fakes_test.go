package mango

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mangobot/gomango/pkg/config"
	"github.com/mangobot/gomango/pkg/solana"
)

// fakeFetcher serves canned account buffers and tracks calls, in the spirit
// of the usual call-count + error-injection test doubles.
type fakeFetcher struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey][]byte
	calls    int
	err      error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{accounts: make(map[solana.PublicKey][]byte)}
}

func (f *fakeFetcher) set(key solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[key] = data
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) FetchAccount(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[key], nil
}

// fakeDecoder maps buffer contents to pre-built order slices; the real wire
// layout belongs to the protocol SDK and is out of scope here.
type fakeDecoder struct {
	books map[string][]RestingOrder
	err   error
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{books: make(map[string][]RestingOrder)}
}

func (d *fakeDecoder) DecodeSide(data []byte, market config.Market, side Side) ([]RestingOrder, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.books[string(data)], nil
}

// fakeSubmitter records placements and cancellations.
type fakeSubmitter struct {
	mu         sync.Mutex
	placed     []PlaceRequest
	cancelled  []RestingOrder
	openOrders map[string]solana.PublicKey // symbol -> open-orders address
	placeErr   error
	cancelErr  error
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{openOrders: make(map[string]solana.PublicKey)}
}

func (s *fakeSubmitter) PlaceOrder(ctx context.Context, req PlaceRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.placeErr != nil {
		return "", s.placeErr
	}
	s.placed = append(s.placed, req)
	return "fake-signature", nil
}

func (s *fakeSubmitter) CancelOrder(ctx context.Context, market config.Market, order RestingOrder) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelErr != nil {
		return "", s.cancelErr
	}
	s.cancelled = append(s.cancelled, order)
	return "fake-signature", nil
}

func (s *fakeSubmitter) OpenOrdersAddress(market config.Market) (solana.PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key, ok := s.openOrders[market.Symbol]
	return key, ok
}

func (s *fakeSubmitter) placedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.placed)
}

func (s *fakeSubmitter) cancelledCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cancelled)
}

func mustKey(t *testing.T, address string) solana.PublicKey {
	t.Helper()
	key, err := solana.ParsePublicKey(address)
	require.NoError(t, err)
	return key
}

func testKey(t *testing.T) solana.PublicKey {
	t.Helper()
	kp, err := solana.GenerateKeypair()
	require.NoError(t, err)
	return kp.PublicKey()
}

// testMarket wires a market whose book accounts resolve to tagged buffers
// so the fake decoder can find them.
func testMarket(t *testing.T, symbol string, fetcher *fakeFetcher) config.Market {
	t.Helper()
	bids := testKey(t)
	asks := testKey(t)
	fetcher.set(bids, []byte(symbol+":bids"))
	fetcher.set(asks, []byte(symbol+":asks"))
	return config.Market{
		Symbol:  symbol,
		Address: testKey(t).String(),
		Bids:    bids.String(),
		Asks:    asks.String(),
	}
}

func testConfig(markets ...config.Market) *config.Config {
	return &config.Config{
		Cluster:  config.Cluster{Name: "testnet", URL: "http://127.0.0.1:8899"},
		Group:    config.Group{Name: "testnet.0", Markets: markets},
		BarsURL:  "http://127.0.0.1:1",
		FillsURL: "http://127.0.0.1:1",
	}
}

func newTestClient(t *testing.T, cfg *config.Config, fetcher AccountFetcher, decoder BookDecoder, submitter TradeSubmitter) *Client {
	t.Helper()
	kp, err := solana.GenerateKeypair()
	require.NoError(t, err)
	client, err := NewClient(Options{
		Config:    cfg,
		Keypair:   kp,
		Accounts:  fetcher,
		Decoder:   decoder,
		Submitter: submitter,
	})
	require.NoError(t, err)
	return client
}
