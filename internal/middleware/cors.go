package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// CORSMiddleware lets the dashboard frontend, served from its own
// origin, call the API. Origins are matched exactly; "*" allows all.
type CORSMiddleware struct {
	allowed map[string]bool
	any     bool
	logger  *zap.Logger
}

// NewCORSMiddleware creates a CORS middleware for the given origins
func NewCORSMiddleware(allowedOrigins []string, logger *zap.Logger) *CORSMiddleware {
	m := &CORSMiddleware{
		allowed: make(map[string]bool, len(allowedOrigins)),
		logger:  logger,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			m.any = true
		}
		m.allowed[origin] = true
	}
	return m
}

// EnableCORS adds CORS headers and answers preflight requests
func (m *CORSMiddleware) EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Same-origin requests carry no Origin header and need nothing.
		if origin != "" {
			switch {
			case m.allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			case m.any:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			default:
				m.logger.Warn("CORS: origin not allowed", zap.String("origin", origin))
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		// Preflight requests stop here.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
