// Package polygonfeed serves bars from Polygon.io aggregates.
package polygonfeed

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

// maxLimit is the largest page the aggregates endpoint serves.
const maxLimit = 50000

// AggsIterator is the subset of the client-go iterator used here.
type AggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// AggsAPI lists aggregates; satisfied by the REST client and by test doubles.
type AggsAPI interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, opts ...models.RequestOption) AggsIterator
}

type restAPI struct {
	client *polygon.Client
}

func (r restAPI) ListAggs(ctx context.Context, params *models.ListAggsParams, opts ...models.RequestOption) AggsIterator {
	return r.client.ListAggs(ctx, params, opts...)
}

// Client implements ports.BarProvider on Polygon aggregates.
type Client struct {
	api    AggsAPI
	logger ports.Logger
}

var _ ports.BarProvider = (*Client)(nil)

// New creates a client authenticated with apiKey.
func New(apiKey string, logger ports.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("polygon api key is required: %w", ports.ErrConfigurationInvalid)
	}
	return NewWithAPI(restAPI{client: polygon.New(apiKey)}, logger)
}

// NewWithAPI creates a client on top of an existing aggregates API.
func NewWithAPI(api AggsAPI, logger ports.Logger) (*Client, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Polygon client: %w", ports.ErrConfigurationInvalid)
	}
	return &Client{api: api, logger: logger}, nil
}

// ParseInterval splits an interval such as "5m", "1h" or "1d" into a Polygon multiplier and timespan.
func ParseInterval(interval string) (int, models.Timespan, error) {
	if len(interval) < 2 {
		return 0, "", fmt.Errorf("interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	n, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil || n <= 0 {
		return 0, "", fmt.Errorf("interval %q: %w", interval, ports.ErrInvalidRequest)
	}
	switch interval[len(interval)-1] {
	case 's':
		return n, models.Second, nil
	case 'm':
		return n, models.Minute, nil
	case 'h':
		return n, models.Hour, nil
	case 'd':
		return n, models.Day, nil
	case 'w':
		return n, models.Week, nil
	case 'M':
		return n, models.Month, nil
	default:
		return 0, "", fmt.Errorf("interval %q: unknown unit: %w", interval, ports.ErrInvalidRequest)
	}
}

// FetchBars lists aggregates for symbol with start <= timestamp < end.
func (c *Client) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must be before end %s: %w", start, end, ports.ErrInvalidRequest)
	}
	multiplier, timespan, err := ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(maxLimit)

	iter := c.api.ListAggs(ctx, params)

	var bars []*domain.Bar
	for iter.Next() {
		agg := iter.Item()
		ts := time.Time(agg.Timestamp).UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		bars = append(bars, &domain.Bar{
			Time:     ts,
			Symbol:   symbol,
			Interval: interval,
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			Volume:   agg.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, c.handleError(ctx, err, symbol)
	}

	bars = domain.SortAndDedupe(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("polygon aggregates %s %s: %w", symbol, interval, ports.ErrNoData)
	}

	c.logger.Info(ctx, "Fetched aggregates", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(bars),
	})
	return bars, nil
}

func (c *Client) handleError(ctx context.Context, err error, symbol string) error {
	var mapped error
	switch {
	case errors.Is(err, context.Canceled):
		mapped = ports.ErrContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		mapped = ports.ErrTimeout
	default:
		mapped = ports.ErrDataSourceUnavailable
	}
	c.logger.Error(ctx, err, "Polygon aggregates request failed", map[string]interface{}{"symbol": symbol})
	return fmt.Errorf("polygon aggregates %s: %w: %w", symbol, mapped, err)
}
