package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"hrmsync/internal/requestctx"
)

const RequestIDHeader = requestctx.RequestIDHeader

// RequestID echoes a well-formed client request id or assigns a new one. A
// migration batch id sent by the client is kept for logging and audit.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if !requestctx.ValidID(reqID) {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		ctx := requestctx.WithRequestID(r.Context(), reqID)
		if batchID := r.Header.Get(requestctx.BatchIDHeader); requestctx.ValidID(batchID) {
			ctx = requestctx.WithBatchID(ctx, batchID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.RequestID(ctx)
}

func GetBatchID(ctx context.Context) string {
	return requestctx.BatchID(ctx)
}
