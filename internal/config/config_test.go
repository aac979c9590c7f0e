// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		RPCList:       []string{"https://api.mainnet-beta.solana.com"},
		WebSocketURL:  "wss://api.mainnet-beta.solana.com",
		Workers:       3,
		TokenSymbol:   "MCAT",
		SpendLimit:    1.0,
		MinBuy:        0.1,
		MaxBuy:        0.5,
		TradeInterval: 10 * time.Second,
		BuySlippage:   0.15,
		SellSlippage:  0.25,
		Priority:      "medium",
		SolPriceUSD:   150,
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc_list:
  - https://api.mainnet-beta.solana.com
websocket_url: wss://api.mainnet-beta.solana.com
token_symbol: MCAT
spend_limit: 1.0
min_buy: 0.1
max_buy: 0.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, "pump.fun", cfg.Venue)
	assert.Equal(t, DefaultTradeInterval, cfg.TradeInterval)
	assert.Equal(t, DefaultBuySlippage, cfg.BuySlippage)
	assert.Equal(t, DefaultSellSlippage, cfg.SellSlippage)
	assert.Equal(t, "medium", cfg.Priority)
	assert.Equal(t, DefaultSolPriceUSD, cfg.SolPriceUSD)
	assert.Equal(t, "wallets.csv", cfg.WalletsFile)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rpc_list:
  - https://api.mainnet-beta.solana.com
websocket_url: wss://api.mainnet-beta.solana.com
spend_limit: 1.0
min_buy: 0.5
max_buy: 0.1
token_symbol: MCAT
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_buy")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty rpc list", func(c *Config) { c.RPCList = nil }},
		{"non-http rpc", func(c *Config) { c.RPCList = []string{"ftp://example.com"} }},
		{"missing websocket", func(c *Config) { c.WebSocketURL = "" }},
		{"non-ws websocket", func(c *Config) { c.WebSocketURL = "https://example.com" }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"zero spend limit", func(c *Config) { c.SpendLimit = 0 }},
		{"inverted buy range", func(c *Config) { c.MinBuy, c.MaxBuy = 0.5, 0.1 }},
		{"zero buy slippage", func(c *Config) { c.BuySlippage = 0 }},
		{"excessive sell slippage", func(c *Config) { c.SellSlippage = 5.0 }},
		{"unknown priority", func(c *Config) { c.Priority = "turbo" }},
		{"zero trade interval", func(c *Config) { c.TradeInterval = 0 }},
		{"negative mcap threshold", func(c *Config) { c.McapThreshold = -1 }},
		{"zero sol price", func(c *Config) { c.SolPriceUSD = 0 }},
		{"no token selector", func(c *Config) { c.Mint, c.TokenName, c.TokenSymbol = "", "", "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPatch(t *testing.T) {
	cfg := validConfig()

	require.NoError(t, cfg.Patch("mcap_threshold", "50000"))
	assert.Equal(t, 50_000.0, cfg.McapThreshold)

	require.NoError(t, cfg.Patch("buy_slippage", "0.3"))
	assert.Equal(t, 0.3, cfg.BuySlippage)

	require.NoError(t, cfg.Patch("priority", "high"))
	assert.Equal(t, "high", cfg.Priority)

	require.NoError(t, cfg.Patch("trade_interval", "5s"))
	assert.Equal(t, 5*time.Second, cfg.TradeInterval)

	require.NoError(t, cfg.Patch("sol_price_usd", "200"))
	assert.Equal(t, 200.0, cfg.SolPriceUSD)
}

func TestPatchRejects(t *testing.T) {
	cfg := validConfig()

	for _, tc := range [][2]string{
		{"mcap_threshold", "-5"},
		{"buy_slippage", "6"},
		{"buy_slippage", "nope"},
		{"sell_slippage", "0"},
		{"priority", "turbo"},
		{"trade_interval", "-1s"},
		{"sol_price_usd", "0"},
		{"spend_limit", "2.0"}, // not patchable mid-run
	} {
		assert.Error(t, cfg.Patch(tc[0], tc[1]), "key=%s value=%s", tc[0], tc[1])
	}

	// Rejected patches leave values untouched.
	assert.Equal(t, 0.15, cfg.BuySlippage)
	assert.Equal(t, 1.0, cfg.SpendLimit)
}

func TestStoreSnapshotIsIndependentCopy(t *testing.T) {
	store := NewStore(validConfig())
	snap := store.Snapshot()

	require.NoError(t, store.Patch("mcap_threshold", "99999"))
	assert.Zero(t, snap.McapThreshold)

	snap.RPCList[0] = "mutated"
	assert.Equal(t, "https://api.mainnet-beta.solana.com", store.Snapshot().RPCList[0])
	assert.Equal(t, 99_999.0, store.Snapshot().McapThreshold)
}
