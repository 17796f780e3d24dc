package metrics

import (
	"context"
	"time"
)

// NoopCollector discards all metrics. Useful in tests and when metrics
// collection is disabled.
type NoopCollector struct{}

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (n *NoopCollector) RecordOperation(ctx context.Context, operation string, status string, duration time.Duration) {
}

func (n *NoopCollector) RecordError(ctx context.Context, operation string, errorType string) {}

func (n *NoopCollector) SetStorageCount(ctx context.Context, storageType string, count int64) {}

func (n *NoopCollector) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
}
