package session

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"sessionTrader/internal/ports"
)

// Calendar names accepted in Config.
const (
	CalendarAlways   = "always"
	CalendarWeekdays = "weekdays"
	CalendarNYSE     = "nyse"
)

// Config describes a session gate.
// Open and Close may both be empty, in which case the whole trading day is open.
type Config struct {
	Calendar string `yaml:"calendar" validate:"required,oneof=always weekdays nyse"`
	Timezone string `yaml:"timezone,omitempty"`
	Open     string `yaml:"open,omitempty" validate:"omitempty,datetime=15:04"`
	Close    string `yaml:"close,omitempty" validate:"omitempty,datetime=15:04"`
}

// SeasonalConfig describes a yearly window applied on top of the session gate.
type SeasonalConfig struct {
	Start string `yaml:"start" validate:"required"`
	End   string `yaml:"end" validate:"required"`
}

var validate = validator.New()

// Build constructs the gate described by cfg, optionally narrowed by seasonal.
// A nil cfg means always open.
func Build(cfg *Config, seasonal *SeasonalConfig) (Gate, error) {
	gate, err := buildBase(cfg)
	if err != nil {
		return nil, err
	}
	if seasonal == nil {
		return gate, nil
	}
	if err := validate.Struct(seasonal); err != nil {
		return nil, fmt.Errorf("seasonal window: %v: %w", err, ports.ErrConfigurationInvalid)
	}
	return NewSeasonal(gate, seasonal.Start, seasonal.End)
}

func buildBase(cfg *Config) (Gate, error) {
	if cfg == nil {
		return Always{}, nil
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("session: %v: %w", err, ports.ErrConfigurationInvalid)
	}
	if (cfg.Open == "") != (cfg.Close == "") {
		return nil, fmt.Errorf("session: open and close must be set together: %w", ports.ErrConfigurationInvalid)
	}

	var cal *Calendar
	switch cfg.Calendar {
	case CalendarAlways:
		return Always{}, nil
	case CalendarNYSE:
		c, err := NYSE()
		if err != nil {
			return nil, err
		}
		if cfg.Timezone != "" && cfg.Timezone != NYSETimezone {
			return nil, fmt.Errorf("session: nyse calendar runs in %s, got %s: %w", NYSETimezone, cfg.Timezone, ports.ErrConfigurationInvalid)
		}
		cal = c
	case CalendarWeekdays:
		loc := time.UTC
		if cfg.Timezone != "" {
			l, err := time.LoadLocation(cfg.Timezone)
			if err != nil {
				return nil, fmt.Errorf("session: unknown timezone %q: %w", cfg.Timezone, ports.ErrConfigurationInvalid)
			}
			loc = l
		}
		cal = Weekdays(loc)
	}

	if cfg.Open == "" && cfg.Close == "" {
		return cal, nil
	}
	return NewExchange(cal, cfg.Open, cfg.Close)
}
