package middleware

import (
	"log/slog"
	"net/http"

	"github.com/PeHo89/backend-template/pkg/logger"
)

// RequestLogger builds a request-scoped logger carrying correlation_id,
// account_id, and trace/span IDs, and stores it in the context so handlers
// can retrieve it with logger.FromContext. Mount it after RequestLogging,
// which sets the correlation ID.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// The account ID comes from the Auth middleware when it ran
			// first, or from the X-Account-ID header set by a gateway.
			accountID := AccountIDFromContext(ctx)
			if accountID == "" {
				accountID = r.Header.Get("X-Account-ID")
			}
			if accountID != "" {
				ctx = logger.WithAccountID(ctx, accountID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
