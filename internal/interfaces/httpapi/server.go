package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchcenter/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	serviceName string,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	adminToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, swaggerEnabled)
	registerFixtureRoutes(mux, handler)
	registerTeamRoutes(mux, handler)
	registerLiveRoutes(mux, handler)
	registerPreferenceRoutes(mux, handler)
	registerAdminRoutes(mux, handler, adminToken)

	return RequestTracing(serviceName, RequestID(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux)))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
