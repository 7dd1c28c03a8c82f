package helpers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"market-dashboard/src/logger"

	"github.com/cenkalti/backoff/v4"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds for errors.As checks
type ConfigurationError struct{ DashboardError }
type ProviderError struct{ DashboardError }
type StorageError struct{ DashboardError }
type EmptySnapshotError struct{ DashboardError }

// SchemaError reports an expected column that the snapshot does not carry.
type SchemaError struct {
	DashboardError
	Column string
}

// DataTypeError reports a value that cannot be coerced to the column's numeric type.
type DataTypeError struct {
	DashboardError
	Column string
	Symbol string
	Value  interface{}
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewSchemaError(column string) *SchemaError {
	return &SchemaError{
		DashboardError: DashboardError{Message: fmt.Sprintf("missing column %q", column)},
		Column:         column,
	}
}

func NewDataTypeError(column, symbol string, value interface{}) *DataTypeError {
	return &DataTypeError{
		DashboardError: DashboardError{
			Message: fmt.Sprintf("column %q: value %v (%T) for symbol %q is not numeric", column, value, value, symbol),
		},
		Column: column,
		Symbol: symbol,
		Value:  value,
	}
}

func NewEmptySnapshotError(assetClass string) *EmptySnapshotError {
	return &EmptySnapshotError{DashboardError{Message: fmt.Sprintf("snapshot for %q has no rows", assetClass)}}
}

func NewProviderError(source string, cause error) *ProviderError {
	return &ProviderError{DashboardError{Message: fmt.Sprintf("provider %s failed", source), Cause: cause}}
}

func NewConfigurationError(message string, cause error) *ConfigurationError {
	return &ConfigurationError{DashboardError{Message: message, Cause: cause}}
}

func NewStorageError(operation string, cause error) *StorageError {
	return &StorageError{DashboardError{Message: fmt.Sprintf("%s failed", operation), Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff runs fn up to maxRetries+1 times with exponential backoff
// starting at baseDelay. It stops early when ctx is done.
func RetryWithBackoff[T any](ctx context.Context, operation string, maxRetries int, baseDelay time.Duration, log *logger.Logger, fn func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.MaxElapsedTime = 0

	var b backoff.BackOff = policy
	if maxRetries >= 0 {
		b = backoff.WithMaxRetries(policy, uint64(maxRetries))
	}
	b = backoff.WithContext(b, ctx)

	attempt := 0
	var result T
	err := backoff.RetryNotify(func() error {
		attempt++
		res, err := fn()
		if err != nil {
			return err
		}
		result = res
		return nil
	}, b, func(err error, delay time.Duration) {
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt, maxRetries+1, operation, err, delay)
		}
	})

	return result, err
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs failures and counts them; safe for concurrent use.
type ErrorHandler struct {
	Logger     *logger.Logger
	errorCount atomic.Int64
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	if log == nil {
		log = logger.NewNop("ErrorHandler")
	}
	return &ErrorHandler{Logger: log}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ErrorCount() int64 {
	return e.errorCount.Load()
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.errorCount.Store(0)
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.errorCount.Add(1)
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
