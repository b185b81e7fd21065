package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter       ErrorCode = 100
	ErrCodeInvalidConfiguration   ErrorCode = 101
	ErrCodeInvalidOrder           ErrorCode = 102
	ErrCodeInvalidTick            ErrorCode = 103
	ErrCodeNonMonotonicTimestamp  ErrorCode = 104
	ErrCodeMissingParameter       ErrorCode = 105
	ErrCodeInvalidVersion         ErrorCode = 106
	ErrCodeOrderTimestampInPast   ErrorCode = 107
	ErrCodeInvalidStrategyOptions ErrorCode = 108

	// Data/Resource errors (200-299)
	ErrCodeFeedUnavailable ErrorCode = 200
	ErrCodeUnknownSymbol   ErrorCode = 201
	ErrCodeQueryFailed     ErrorCode = 202
	ErrCodeNoDataFound     ErrorCode = 203

	// Statistic errors (300-399)
	ErrCodeDegenerateStatistic ErrorCode = 300
	ErrCodeInsufficientData    ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyNotLoaded    ErrorCode = 400
	ErrCodeStrategyConfigError  ErrorCode = 401
	ErrCodeStrategyRuntimeError ErrorCode = 402
	ErrCodeUnsupportedStrategy  ErrorCode = 403
	ErrCodeVersionMismatch      ErrorCode = 404

	// Trading errors (500-599)
	ErrCodeOrderFailed        ErrorCode = 500
	ErrCodeOrderAlreadyFilled ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 600
	ErrCodeBacktestConfigError  ErrorCode = 601
	ErrCodeBacktestNoFeed       ErrorCode = 602
	ErrCodeBacktestNoStrategy   ErrorCode = 603
	ErrCodeBacktestWriteResults ErrorCode = 604

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
