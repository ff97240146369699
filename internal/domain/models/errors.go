package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData means a detector was given fewer candles than its
	// minimum lookback requires. Treated as "no signal", never fatal.
	ErrInsufficientData = errors.New("insufficient candle data")

	// ErrInvalidStop means entry and stop-loss coincide; sizing would divide
	// by zero.
	ErrInvalidStop = errors.New("stop loss equals entry price")

	// ErrCapacityExceeded means RegisterTrade was called while an admission
	// gate was shut. This is a caller contract violation.
	ErrCapacityExceeded = errors.New("risk capacity exceeded")

	// ErrUnknownTrade means a close referenced a trade id not in the open ledger.
	ErrUnknownTrade = errors.New("trade not found in open ledger")
)

// DataUnavailableError wraps a transport/exchange fault on a data fetch.
// The orchestrator skips the affected timeframe for the tick and carries on.
type DataUnavailableError struct {
	Source string // "market", "news"
	Err    error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s data unavailable: %v", e.Source, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// RejectedError is a venue-side order rejection. Never retried.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Reason)
}
