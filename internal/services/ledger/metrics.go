package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricsCollector receives operational signals from the ledger. Optional;
// pass nil to NewService for the no-op collector.
type MetricsCollector interface {
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordBalanceChange(vendorID uint, oldBalance, newBalance decimal.Decimal)
	RecordRetry(operation string, attempt int)
	RecordError(operation, code string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordOperationDuration(string, time.Duration)              {}
func (n *NoopMetricsCollector) RecordOperationResult(string, string)                       {}
func (n *NoopMetricsCollector) RecordBalanceChange(uint, decimal.Decimal, decimal.Decimal) {}
func (n *NoopMetricsCollector) RecordRetry(string, int)                                    {}
func (n *NoopMetricsCollector) RecordError(string, string)                                 {}
