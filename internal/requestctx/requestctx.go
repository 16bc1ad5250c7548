// Package requestctx carries correlation ids between the migration client and
// the intake server. A request id names one HTTP call; a batch id names one
// migration run and is shared by every call it makes.
package requestctx

import "context"

const (
	RequestIDHeader = "X-Request-ID"
	BatchIDHeader   = "X-Migration-Batch"
)

const maxIDLength = 128

type ctxKey int

const (
	requestIDKey ctxKey = iota
	batchIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

func BatchID(ctx context.Context) string {
	value, _ := ctx.Value(batchIDKey).(string)
	return value
}

// ValidID reports whether a client supplied id can be echoed and logged:
// non-empty, bounded, printable ASCII.
func ValidID(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
