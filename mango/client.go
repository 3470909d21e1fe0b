package mango

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mangobot/gomango/pkg/config"
	"github.com/mangobot/gomango/pkg/httpx"
	"github.com/mangobot/gomango/pkg/solana"
)

// Client is the exchange-style convenience surface over one trading group.
// Everything it holds is resolved once at construction and read-only
// afterwards; calls share no mutable state.
type Client struct {
	cfg       *config.Config
	signer    *solana.Keypair
	accounts  AccountFetcher
	decoder   BookDecoder
	submitter TradeSubmitter
	bars      *httpx.Client
	fills     *httpx.Client
	log       *logrus.Entry
}

// Options configures client construction. Decoder and Submitter are the
// external protocol collaborators and must be supplied; the rest defaults
// from the resolved configuration.
type Options struct {
	Config    *config.Config // nil: config.Load()
	Keypair   *solana.Keypair
	Accounts  AccountFetcher // nil: JSON-RPC fetcher against the cluster URL
	Decoder   BookDecoder
	Submitter TradeSubmitter
	Bars      *httpx.Client // nil: built from Config.BarsURL
	Fills     *httpx.Client // nil: built from Config.FillsURL
}

// NewClient builds a client. Missing key material is fatal here, per the
// session contract: nothing downstream re-checks the signer.
func NewClient(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, errors.Wrap(err, "load configuration")
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer := opts.Keypair
	if signer == nil {
		loaded, err := solana.LoadKeypair()
		if err != nil {
			return nil, errors.Wrap(err, "resolve signer keypair")
		}
		signer = loaded
	}

	if opts.Decoder == nil {
		return nil, errors.New("a book decoder is required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("a trade submitter is required")
	}

	accounts := opts.Accounts
	if accounts == nil {
		accounts = solana.NewRPCClient(cfg.Cluster.URL)
	}
	bars := opts.Bars
	if bars == nil {
		bars = httpx.NewClient(cfg.BarsURL)
	}
	fills := opts.Fills
	if fills == nil {
		fills = httpx.NewClient(cfg.FillsURL)
	}

	return &Client{
		cfg:       cfg,
		signer:    signer,
		accounts:  accounts,
		decoder:   opts.Decoder,
		submitter: opts.Submitter,
		bars:      bars,
		fills:     fills,
		log: logrus.WithFields(logrus.Fields{
			"component": "mango",
			"group":     cfg.Group.Name,
		}),
	}, nil
}

// Identity returns the signer's address.
func (c *Client) Identity() solana.PublicKey {
	return c.signer.PublicKey()
}

// resolveMarket maps a symbol to its registry entry.
func (c *Client) resolveMarket(symbol string) (config.Market, error) {
	mkt, ok := c.cfg.FindMarket(symbol)
	if !ok {
		return config.Market{}, errors.Wrapf(ErrMarketNotFound, "%q", symbol)
	}
	return mkt, nil
}
