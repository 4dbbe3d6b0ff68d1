package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrUnknown              = errors.New("unknown error occurred")
	ErrInvalidRequest       = errors.New("invalid request parameters or format")
	ErrNotFound             = errors.New("resource not found")
	ErrTimeout              = errors.New("operation timed out")
	ErrContextCanceled      = errors.New("operation canceled via context")
	ErrConfigurationInvalid = errors.New("invalid or missing configuration")

	// Decision Engine Errors
	// These never abort bar processing; the engine degrades them to a no-action intent.
	ErrInsufficientHistory = errors.New("insufficient history for indicator window")
	ErrInvalidStopDistance = errors.New("stop distance must be positive")
	ErrUnresolvableSession = errors.New("timestamp cannot be classified by the session calendar")
	ErrInvalidEquity       = errors.New("equity must be positive")

	// Market Data Errors
	ErrDataSourceUnavailable = errors.New("market data source is unavailable")
	ErrConnectionFailed      = errors.New("failed to connect to the market data source")
	ErrRateLimited           = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed  = errors.New("market data authentication failed (check API keys)")
	ErrNoData                = errors.New("no bars returned for the requested range")
	ErrMalformedBar          = errors.New("malformed bar record")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
)
