// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/Deezzir/SolanaBot-sub000/internal/chain"
	"github.com/Deezzir/SolanaBot-sub000/internal/curve"
)

// Config is the full bot configuration, a plain value. Shared live access
// goes through Store; workers hold their own copies.
type Config struct {
	RPCList       []string `mapstructure:"rpc_list"`
	WebSocketURL  string   `mapstructure:"websocket_url"`
	RelayEndpoint string   `mapstructure:"relay_endpoint"`
	WalletsFile   string   `mapstructure:"wallets_file"`

	Venue       string `mapstructure:"venue"`
	Workers     int    `mapstructure:"workers"`
	Mint        string `mapstructure:"mint"`
	TokenName   string `mapstructure:"token_name"`
	TokenSymbol string `mapstructure:"token_symbol"`

	// SOL-denominated sizing.
	SpendLimit float64 `mapstructure:"spend_limit"`
	MinBuy     float64 `mapstructure:"min_buy"`
	MaxBuy     float64 `mapstructure:"max_buy"`
	BuyOnce    bool    `mapstructure:"buy_once"`

	TradeInterval time.Duration `mapstructure:"trade_interval"`
	MonitorDelay  time.Duration `mapstructure:"monitor_delay"`

	BuySlippage  float64 `mapstructure:"buy_slippage"`
	SellSlippage float64 `mapstructure:"sell_slippage"`
	Priority     string  `mapstructure:"priority"`
	ProtectionTip uint64 `mapstructure:"protection_tip"`

	// McapThreshold is the USD market cap at which workers flip to selling.
	McapThreshold float64 `mapstructure:"mcap_threshold"`
	SolPriceUSD   float64 `mapstructure:"sol_price_usd"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

const (
	DefaultWorkers       = 5
	DefaultTradeInterval = 10 * time.Second
	DefaultMonitorDelay  = 500 * time.Millisecond
	DefaultBuySlippage   = 0.15
	DefaultSellSlippage  = 0.25
	DefaultSolPriceUSD   = 150.0
)

// Load reads configuration from the given file, layering environment
// variables with the SNIPE_ prefix on top.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"workers":        DefaultWorkers,
		"venue":          "pump.fun",
		"trade_interval": DefaultTradeInterval,
		"monitor_delay":  DefaultMonitorDelay,
		"buy_slippage":   DefaultBuySlippage,
		"sell_slippage":  DefaultSellSlippage,
		"priority":       string(chain.PriorityMedium),
		"sol_price_usd":  DefaultSolPriceUSD,
		"wallets_file":   "wallets.csv",
		"log_file":       "snipe.log",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SNIPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, cfg.Validate()
}

// Validate checks the invariants every run depends on.
func (c *Config) Validate() error {
	if len(c.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range c.RPCList {
		if err := validateURL(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid rpc url %q: %w", rpcURL, err)
		}
	}
	if c.WebSocketURL == "" {
		return errors.New("websocket_url is required")
	}
	if err := validateURL(c.WebSocketURL, "ws"); err != nil {
		return fmt.Errorf("invalid websocket url: %w", err)
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.SpendLimit <= 0 {
		return errors.New("spend_limit must be positive")
	}
	if c.MinBuy <= 0 || c.MaxBuy <= 0 || c.MinBuy > c.MaxBuy {
		return errors.New("buy range requires 0 < min_buy <= max_buy")
	}
	if c.BuySlippage <= 0 || c.BuySlippage >= curve.MaxSlippage {
		return fmt.Errorf("buy_slippage must be in (0, %v)", curve.MaxSlippage)
	}
	if c.SellSlippage <= 0 || c.SellSlippage >= curve.MaxSlippage {
		return fmt.Errorf("sell_slippage must be in (0, %v)", curve.MaxSlippage)
	}
	if !chain.ValidPriority(chain.PriorityLevel(c.Priority)) {
		return fmt.Errorf("unknown priority %q", c.Priority)
	}
	if c.TradeInterval <= 0 {
		return errors.New("trade_interval must be positive")
	}
	if c.McapThreshold < 0 {
		return errors.New("mcap_threshold cannot be negative")
	}
	if c.SolPriceUSD <= 0 {
		return errors.New("sol_price_usd must be positive")
	}
	if c.Mint == "" && c.TokenName == "" && c.TokenSymbol == "" {
		return errors.New("one of mint, token_name or token_symbol must be set")
	}
	return nil
}

func validateURL(rawURL, scheme string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("malformed URL")
	}
	if !strings.HasPrefix(parsed.Scheme, scheme) {
		return fmt.Errorf("scheme must start with %q", scheme)
	}
	return nil
}

// clone returns an independent copy: slice fields are not shared.
func (c *Config) clone() Config {
	out := *c
	out.RPCList = append([]string(nil), c.RPCList...)
	return out
}

// Store shares one Config between the command loop and concurrent readers.
// Only the Store carries a lock; the Config values it hands out are plain.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore wraps a loaded config for shared live access.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg.clone()}
}

// Snapshot returns a consistent independent copy.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.clone()
}

// Patch applies a live change under the store lock.
func (s *Store) Patch(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Patch(key, value)
}

// Patch applies a live config change from the command loop. Only the keys
// that are safe to change mid-run are accepted.
func (c *Config) Patch(key, value string) error {
	switch key {
	case "mcap_threshold":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid mcap_threshold %q", value)
		}
		c.McapThreshold = f
	case "buy_slippage":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f >= curve.MaxSlippage {
			return fmt.Errorf("invalid buy_slippage %q", value)
		}
		c.BuySlippage = f
	case "sell_slippage":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 || f >= curve.MaxSlippage {
			return fmt.Errorf("invalid sell_slippage %q", value)
		}
		c.SellSlippage = f
	case "priority":
		if !chain.ValidPriority(chain.PriorityLevel(value)) {
			return fmt.Errorf("unknown priority %q", value)
		}
		c.Priority = value
	case "trade_interval":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid trade_interval %q", value)
		}
		c.TradeInterval = d
	case "sol_price_usd":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid sol_price_usd %q", value)
		}
		c.SolPriceUSD = f
	default:
		return fmt.Errorf("config key %q is not patchable", key)
	}
	return nil
}
