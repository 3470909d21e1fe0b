package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Market identifies one tradable pair and the on-chain accounts backing its
// order book. Addresses stay base58 strings here; they are parsed where used
// so an unused registry entry never costs anything.
type Market struct {
	Symbol        string `yaml:"symbol"` // "BASE/QUOTE"
	Address       string `yaml:"address"`
	Bids          string `yaml:"bids"`
	Asks          string `yaml:"asks"`
	EventsQueue   string `yaml:"events_queue"`
	BaseDecimals  int    `yaml:"base_decimals"`
	QuoteDecimals int    `yaml:"quote_decimals"`
}

// Group is one deployment of the trading program within a cluster.
type Group struct {
	Name      string   `yaml:"name"`
	PublicKey string   `yaml:"public_key"`
	Markets   []Market `yaml:"markets"`
}

// Cluster is a network endpoint plus its known deployments.
type Cluster struct {
	Name   string  `yaml:"name"`
	URL    string  `yaml:"url"`
	Groups []Group `yaml:"groups"`
}

// Config is the resolved, immutable configuration a client is built from.
// It is an explicit value handed to the session context, never ambient
// global state, so tests can point it at alternate clusters.
type Config struct {
	Cluster  Cluster
	Group    Group
	BarsURL  string
	FillsURL string
}

// Registry holds every known cluster, keyed by name.
type Registry struct {
	Clusters []Cluster `yaml:"clusters"`
}

const (
	defaultCluster  = "mainnet"
	defaultGroup    = "mainnet.0"
	defaultBarsURL  = "https://serum-history.herokuapp.com"
	defaultFillsURL = "https://event-history-api.herokuapp.com"
)

// builtinRegistry mirrors the static ids registry the deployment ships with.
// Book-side account keys are deployment data and normally arrive via a
// registry file; the builtin entries cover symbol resolution and the data
// facades.
func builtinRegistry() Registry {
	return Registry{
		Clusters: []Cluster{
			{
				Name: "mainnet",
				URL:  "https://solana-api.projectserum.com",
				Groups: []Group{
					{
						Name:      "mainnet.0",
						PublicKey: "98pjRuQjK3qA6gXts96PqZT4Ze5QmnCmt3QYjhbUSPue",
						Markets: []Market{
							{Symbol: "BTC/USDC", Address: "A8YFbxQYFVqKZaoYJLLUVcQiWP7G2MeEgW5wsAQgMvFw", BaseDecimals: 6, QuoteDecimals: 6},
							{Symbol: "ETH/USDC", Address: "4tSvZvnbyzHXLMTiFonMyxZoHmFqau1XArcRCVHLZ5gX", BaseDecimals: 6, QuoteDecimals: 6},
							{Symbol: "SOL/USDC", Address: "9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT", BaseDecimals: 9, QuoteDecimals: 6},
						},
					},
				},
			},
		},
	}
}

// Load resolves the configuration from the builtin registry, an optional
// registry file, and the environment, in that order of increasing
// precedence. Environment keys: MANGO_CLUSTER, MANGO_GROUP, BARS_URL,
// FILLS_URL, MANGO_REGISTRY (registry file path).
func Load() (*Config, error) {
	return LoadFile(os.Getenv("MANGO_REGISTRY"))
}

// LoadFile resolves the configuration, overlaying the registry from the
// given YAML file when path is non-empty.
func LoadFile(path string) (*Config, error) {
	registry := builtinRegistry()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read registry %s", path)
		}
		var fileRegistry Registry
		if err := yaml.Unmarshal(data, &fileRegistry); err != nil {
			return nil, errors.Wrapf(err, "parse registry %s", path)
		}
		registry = mergeRegistries(registry, fileRegistry)
	}
	return Resolve(registry, getenv("MANGO_CLUSTER", defaultCluster), getenv("MANGO_GROUP", defaultGroup))
}

// Resolve picks one cluster and group out of a registry and attaches the
// data-service endpoints.
func Resolve(registry Registry, clusterName, groupName string) (*Config, error) {
	cluster, ok := findCluster(registry, clusterName)
	if !ok {
		return nil, errors.Errorf("unknown cluster %q", clusterName)
	}
	group, ok := findGroup(cluster, groupName)
	if !ok {
		return nil, errors.Errorf("unknown group %q in cluster %q", groupName, clusterName)
	}
	cfg := &Config{
		Cluster:  cluster,
		Group:    group,
		BarsURL:  getenv("BARS_URL", defaultBarsURL),
		FillsURL: getenv("FILLS_URL", defaultFillsURL),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the invariants every client construction relies on.
func (c *Config) Validate() error {
	if c.Cluster.URL == "" {
		return errors.Errorf("cluster %q has no URL", c.Cluster.Name)
	}
	if len(c.Group.Markets) == 0 {
		return errors.Errorf("group %q has no markets", c.Group.Name)
	}
	seen := make(map[string]struct{}, len(c.Group.Markets))
	for _, mkt := range c.Group.Markets {
		symbol := strings.TrimSpace(mkt.Symbol)
		if symbol == "" {
			return errors.Errorf("group %q has a market with a blank symbol", c.Group.Name)
		}
		if _, dup := seen[symbol]; dup {
			return errors.Errorf("group %q lists %q twice", c.Group.Name, symbol)
		}
		seen[symbol] = struct{}{}
	}
	return nil
}

// FindMarket resolves a trading-pair symbol within the configured group.
func (c *Config) FindMarket(symbol string) (Market, bool) {
	for _, mkt := range c.Group.Markets {
		if mkt.Symbol == symbol {
			return mkt, true
		}
	}
	return Market{}, false
}

// Symbols lists the configured market symbols in registry order.
func (c *Config) Symbols() []string {
	out := make([]string, 0, len(c.Group.Markets))
	for _, mkt := range c.Group.Markets {
		out = append(out, mkt.Symbol)
	}
	return out
}

// mergeRegistries overlays file entries on the builtin set. A file cluster
// replaces the builtin cluster of the same name wholesale; that keeps the
// merge semantics predictable.
func mergeRegistries(base, overlay Registry) Registry {
	merged := Registry{Clusters: append([]Cluster(nil), base.Clusters...)}
	for _, cluster := range overlay.Clusters {
		replaced := false
		for i := range merged.Clusters {
			if merged.Clusters[i].Name == cluster.Name {
				merged.Clusters[i] = cluster
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Clusters = append(merged.Clusters, cluster)
		}
	}
	return merged
}

func findCluster(registry Registry, name string) (Cluster, bool) {
	for _, cluster := range registry.Clusters {
		if cluster.Name == name {
			return cluster, true
		}
	}
	return Cluster{}, false
}

func findGroup(cluster Cluster, name string) (Group, bool) {
	for _, group := range cluster.Groups {
		if group.Name == name {
			return group, true
		}
	}
	return Group{}, false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
