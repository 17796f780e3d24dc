package metrics

import (
	"context"
	"time"
)

// Collector is the interface for metrics collection.
type Collector interface {
	// RecordOperation records the completion of an engine operation with its status.
	RecordOperation(ctx context.Context, operation string, status string, duration time.Duration)

	// RecordError records an error occurrence for an operation.
	RecordError(ctx context.Context, operation string, errorType string)

	// SetStorageCount sets the current count of stored items for a storage type.
	SetStorageCount(ctx context.Context, storageType string, count int64)

	// RecordHTTPRequest records one served HTTP request.
	RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}
