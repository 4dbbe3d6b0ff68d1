package strategy

import (
	"fmt"
	"sort"

	"sessionTrader/internal/ports"
	"sessionTrader/internal/risk"
	"sessionTrader/internal/session"
)

// Built-in variant names.
const (
	PresetSMACrossover = "sma_crossover"
	PresetNYEReversion = "nye_reversion"
	PresetNYSESession  = "nyse_session"
)

var defaultSizing = risk.SizerConfig{RiskFraction: 0.02, StopATRMultiplier: 2}

// Presets returns fresh copies of the built-in variants keyed by name.
func Presets() map[string]Config {
	return map[string]Config{
		PresetSMACrossover: {
			Name:          PresetSMACrossover,
			Rule:          RuleCrossover,
			FastWindow:    20,
			SlowWindow:    50,
			RSIPeriod:     14,
			RSIOversold:   30,
			RSIOverbought: 70,
			ATRPeriod:     14,
			SizerConfig:   defaultSizing,
		},
		PresetNYEReversion: {
			Name:            PresetNYEReversion,
			Rule:            RuleOversoldReversion,
			FastWindow:      20,
			SlowWindow:      50,
			RSIPeriod:       14,
			RSIOversold:     30,
			RSIOverbought:   70,
			VolumeWindow:    20,
			VolumeThreshold: 0.7,
			ATRPeriod:       14,
			SizerConfig:     defaultSizing,
			Seasonal:        &session.SeasonalConfig{Start: "12-26", End: "12-31"},
			ExitOnGateClose: true,
		},
		PresetNYSESession: {
			Name:          PresetNYSESession,
			Rule:          RuleCrossover,
			FastWindow:    20,
			SlowWindow:    50,
			RSIPeriod:     14,
			RSIOversold:   30,
			RSIOverbought: 70,
			ATRPeriod:     14,
			SizerConfig:   defaultSizing,
			Session: &session.Config{
				Calendar: session.CalendarNYSE,
				Timezone: session.NYSETimezone,
				Open:     "09:30",
				Close:    "16:00",
			},
		},
	}
}

// Preset returns the built-in variant with the given name.
func Preset(name string) (Config, error) {
	cfg, ok := Presets()[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown strategy preset %q (have %v): %w", name, PresetNames(), ports.ErrNotFound)
	}
	return cfg, nil
}

// PresetNames lists the built-in variants in sorted order.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
