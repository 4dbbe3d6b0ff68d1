package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"sessionTrader/internal/ports"
	"sessionTrader/internal/risk"
	"sessionTrader/internal/session"
)

// Rule selects the entry and indicator-exit conditions of a variant.
type Rule string

const (
	// RuleCrossover enters when the fast SMA crosses above the slow SMA and exits on the opposite cross.
	RuleCrossover Rule = "crossover"
	// RuleOversoldReversion enters when RSI is oversold on low volume and exits when RSI is overbought.
	RuleOversoldReversion Rule = "oversold_reversion"
)

// Config holds parameters for one strategy variant.
// Every variant is an instance of this struct; none needs its own code path.
type Config struct {
	Name string `yaml:"name" validate:"required"`
	Rule Rule   `yaml:"rule" validate:"required,oneof=crossover oversold_reversion"`

	// Fast and slow SMA windows, e.g. 20 and 50.
	FastWindow int `yaml:"fast_window" validate:"gt=0"`
	SlowWindow int `yaml:"slow_window" validate:"gt=0"`

	// RSI period and bands, e.g. 14, 30 and 70.
	RSIPeriod     int     `yaml:"rsi_period" validate:"gt=0"`
	RSIOversold   float64 `yaml:"rsi_oversold" validate:"gt=0,lt=100"`
	RSIOverbought float64 `yaml:"rsi_overbought" validate:"gt=0,lt=100"`

	// Optional volume filter: entry requires volume < SMA(volume, VolumeWindow) * VolumeThreshold.
	VolumeWindow    int     `yaml:"volume_window,omitempty" validate:"gte=0"`
	VolumeThreshold float64 `yaml:"volume_threshold,omitempty" validate:"gte=0"`

	ATRPeriod int `yaml:"atr_period" validate:"gt=0"`

	risk.SizerConfig `yaml:",inline"`

	Session  *session.Config         `yaml:"session,omitempty"`
	Seasonal *session.SeasonalConfig `yaml:"seasonal,omitempty"`

	// ExitOnGateClose closes an open position as soon as the gate reports closed.
	// Otherwise the position is held, untouched, until the gate reopens.
	ExitOnGateClose bool `yaml:"exit_on_gate_close"`
}

var validate = validator.New()

// Validate checks field ranges and cross-field constraints, reporting every violation at once.
// The returned error wraps ports.ErrConfigurationInvalid.
func (c Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed '%s' (value %v)", fe.Namespace(), fe.ActualTag(), fe.Value()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if c.FastWindow > 0 && c.SlowWindow > 0 && c.FastWindow >= c.SlowWindow {
		errs = append(errs, fmt.Sprintf("fast_window (%d) must be less than slow_window (%d)", c.FastWindow, c.SlowWindow))
	}
	if c.RSIOversold >= c.RSIOverbought {
		errs = append(errs, fmt.Sprintf("rsi_oversold (%v) must be less than rsi_overbought (%v)", c.RSIOversold, c.RSIOverbought))
	}
	if c.VolumeWindow > 0 && c.VolumeThreshold <= 0 {
		errs = append(errs, "volume_threshold must be positive when volume_window is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("strategy %q: %s: %w", c.Name, strings.Join(errs, "; "), ports.ErrConfigurationInvalid)
	}
	return nil
}

// Lookback is the number of trailing bars needed for every indicator the rule reads
// to be defined at the current bar and, where a crossover is tested, the bar before it.
// ATR gets one extra bar so that every true range in its window has a previous close.
func (c Config) Lookback() int {
	n := c.ATRPeriod + 1
	switch c.Rule {
	case RuleCrossover:
		n = max(n, c.SlowWindow+1)
	case RuleOversoldReversion:
		n = max(n, c.RSIPeriod+1)
	}
	if c.VolumeWindow > 0 {
		n = max(n, c.VolumeWindow)
	}
	return n
}
