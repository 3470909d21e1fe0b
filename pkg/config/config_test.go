package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBuiltinMainnet(t *testing.T) {
	cfg, err := Resolve(builtinRegistry(), "mainnet", "mainnet.0")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Cluster.Name)
	assert.Equal(t, "mainnet.0", cfg.Group.Name)
	assert.NotEmpty(t, cfg.Cluster.URL)
	assert.NotEmpty(t, cfg.BarsURL)
	assert.NotEmpty(t, cfg.FillsURL)

	symbols := cfg.Symbols()
	require.NotEmpty(t, symbols)
	for _, symbol := range symbols {
		_, ok := cfg.FindMarket(symbol)
		assert.True(t, ok, "symbol %s must resolve", symbol)
	}
}

func TestResolveUnknownClusterOrGroup(t *testing.T) {
	_, err := Resolve(builtinRegistry(), "moonnet", "mainnet.0")
	require.Error(t, err)

	_, err = Resolve(builtinRegistry(), "mainnet", "mainnet.42")
	require.Error(t, err)
}

func TestValidateRejectsDuplicateSymbols(t *testing.T) {
	cfg := &Config{
		Cluster: Cluster{Name: "testnet", URL: "http://127.0.0.1:8899"},
		Group: Group{
			Name: "testnet.0",
			Markets: []Market{
				{Symbol: "BTC/USDC"},
				{Symbol: "BTC/USDC"},
			},
		},
	}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBlankSymbol(t *testing.T) {
	cfg := &Config{
		Cluster: Cluster{Name: "testnet", URL: "http://127.0.0.1:8899"},
		Group:   Group{Name: "testnet.0", Markets: []Market{{Symbol: "   "}}},
	}
	require.Error(t, cfg.Validate())
}

func TestLoadFileOverlaysRegistry(t *testing.T) {
	registryYAML := `
clusters:
  - name: devnet
    url: http://127.0.0.1:8899
    groups:
      - name: devnet.0
        public_key: "11111111111111111111111111111111"
        markets:
          - symbol: BTC/USDC
            address: "11111111111111111111111111111111"
            bids: "11111111111111111111111111111111"
            asks: "11111111111111111111111111111111"
`
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0644))

	t.Setenv("MANGO_CLUSTER", "devnet")
	t.Setenv("MANGO_GROUP", "devnet.0")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "devnet", cfg.Cluster.Name)

	mkt, ok := cfg.FindMarket("BTC/USDC")
	require.True(t, ok)
	assert.Equal(t, "11111111111111111111111111111111", mkt.Bids)
}

func TestLoadFileKeepsBuiltinClusters(t *testing.T) {
	registryYAML := `
clusters:
  - name: devnet
    url: http://127.0.0.1:8899
    groups:
      - name: devnet.0
        markets:
          - symbol: SOL/USDC
`
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(registryYAML), 0644))

	t.Setenv("MANGO_CLUSTER", "mainnet")
	t.Setenv("MANGO_GROUP", "mainnet.0")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.Cluster.Name)
	assert.NotEmpty(t, cfg.Symbols())
}

func TestEnvOverridesServiceURLs(t *testing.T) {
	t.Setenv("BARS_URL", "http://bars.test")
	t.Setenv("FILLS_URL", "http://fills.test")
	t.Setenv("MANGO_CLUSTER", "")
	t.Setenv("MANGO_GROUP", "")

	cfg, err := Resolve(builtinRegistry(), "mainnet", "mainnet.0")
	require.NoError(t, err)
	assert.Equal(t, "http://bars.test", cfg.BarsURL)
	assert.Equal(t, "http://fills.test", cfg.FillsURL)
}
