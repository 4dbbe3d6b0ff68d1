package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// maxLimit is the largest page the klines endpoint serves.
	maxLimit = 1500
)

// Client implements the ports.BarProvider interface using the go-binance futures klines endpoint.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	pageLimit     int
}

var _ ports.BarProvider = (*Client)(nil)

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
	// BaseURL overrides the production/testnet endpoint, e.g. for a proxy.
	BaseURL string
	// PageLimit is the number of klines requested per call; defaults to the endpoint maximum.
	PageLimit int
	// RequestTimeout bounds each HTTP call; zero keeps the library default.
	RequestTimeout time.Duration
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client: %w", ports.ErrConfigurationInvalid)
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		// Klines are public; keys only raise the rate limit.
		cfg.Logger.Debug(context.Background(), "APIKey or SecretKey is empty, using public endpoints only")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	switch {
	case cfg.BaseURL != "":
		client.BaseURL = cfg.BaseURL
	case cfg.UseTestnet:
		client.BaseURL = baseURLTestnet
	default:
		client.BaseURL = baseURLProduction
	}
	if cfg.RequestTimeout > 0 {
		client.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	cfg.Logger.Debug(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 || pageLimit > maxLimit {
		pageLimit = maxLimit
	}

	return &Client{
		futuresClient: client,
		logger:        cfg.Logger,
		pageLimit:     pageLimit,
	}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1007, -1021: // Backend timeout, or timestamp outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature or API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1120, -1121, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return finalErr
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if errors.Is(err, ports.ErrMalformedBar) {
		finalErr = fmt.Errorf("%s failed: %w", operation, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// FetchBars fetches every kline for symbol/interval with start <= open time < end, paging
// forward until the range is exhausted.
func (c *Client) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	op := "FetchBars"
	if !start.Before(end) {
		return nil, fmt.Errorf("%s: start %s must be before end %s: %w", op, start, end, ports.ErrInvalidRequest)
	}

	var bars []*domain.Bar
	from := start
	for {
		if err := ctx.Err(); err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		klines, err := c.futuresClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(from.UnixMilli()).
			EndTime(end.UnixMilli() - 1).
			Limit(c.pageLimit).
			Do(ctx)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		if len(klines) == 0 {
			break
		}

		for _, bk := range klines {
			bar, err := translateBinanceKline(bk, symbol, interval)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
			}
			if bar.Time.Before(start) || !bar.Time.Before(end) {
				continue
			}
			bars = append(bars, bar)
		}

		next := time.UnixMilli(klines[len(klines)-1].OpenTime + 1)
		if len(klines) < c.pageLimit || !next.Before(end) || !next.After(from) {
			break
		}
		from = next
	}

	bars = domain.SortAndDedupe(bars)
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s %s %s: %w", op, symbol, interval, ports.ErrNoData)
	}
	c.logger.Info(ctx, "Fetched klines", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"count":    len(bars),
		"first":    bars[0].Time,
		"last":     bars[len(bars)-1].Time,
	})
	return bars, nil
}

func translateBinanceKline(bk *futures.Kline, symbol, interval string) (*domain.Bar, error) {
	if bk == nil {
		return nil, fmt.Errorf("received nil historical kline: %w", ports.ErrMalformedBar)
	}
	fields := []struct {
		name string
		raw  string
	}{
		{"open price", bk.Open},
		{"high price", bk.High},
		{"low price", bk.Low},
		{"close price", bk.Close},
		{"volume", bk.Volume},
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s '%s': %v: %w", f.name, f.raw, err, ports.ErrMalformedBar)
		}
		values[i] = d.InexactFloat64()
	}

	return &domain.Bar{
		Time:     time.UnixMilli(bk.OpenTime).UTC(),
		Symbol:   symbol,
		Interval: interval,
		Open:     values[0],
		High:     values[1],
		Low:      values[2],
		Close:    values[3],
		Volume:   values[4],
	}, nil
}
