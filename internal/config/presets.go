// internal/config/presets.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named sizing profile that overlays the base config. Zero-valued
// fields leave the base value alone.
type Preset struct {
	SpendLimit   float64 `yaml:"spend_limit"`
	MinBuy       float64 `yaml:"min_buy"`
	MaxBuy       float64 `yaml:"max_buy"`
	BuySlippage  float64 `yaml:"buy_slippage"`
	SellSlippage float64 `yaml:"sell_slippage"`
	Priority     string  `yaml:"priority"`
}

// LoadPresets reads a YAML file of named presets:
//
//	aggressive:
//	  spend_limit: 5.0
//	  max_buy: 1.0
//	  priority: high
func LoadPresets(path string) (map[string]Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	presets := make(map[string]Preset)
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets file: %w", err)
	}
	return presets, nil
}

// ApplyPreset overlays the named preset onto the config and revalidates.
func (c *Config) ApplyPreset(presets map[string]Preset, name string) error {
	preset, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}

	if preset.SpendLimit > 0 {
		c.SpendLimit = preset.SpendLimit
	}
	if preset.MinBuy > 0 {
		c.MinBuy = preset.MinBuy
	}
	if preset.MaxBuy > 0 {
		c.MaxBuy = preset.MaxBuy
	}
	if preset.BuySlippage > 0 {
		c.BuySlippage = preset.BuySlippage
	}
	if preset.SellSlippage > 0 {
		c.SellSlippage = preset.SellSlippage
	}
	if preset.Priority != "" {
		c.Priority = preset.Priority
	}
	return c.Validate()
}
