package auth

import (
	"net"
	"net/http"
	"strings"

	"pairlink/pkg/config"
	"pairlink/pkg/logger"
	"pairlink/pkg/utils"
)

// SecConfig mirrors the security-related configuration used to drive
// API authentication and rate limiting behavior.
type SecConfig struct {
	RPS         float64
	Burst       int
	IPWhitelist []string
	BackendKeys map[string]struct{}
}

// Middleware guards the REST surface: IP whitelist, backend API key and
// per-key rate limiting. Health probes, the metrics scrape and the api
// docs pass through unauthenticated. The websocket handshake does its
// own token-based authentication and is not routed through here.
func Middleware(cfg SecConfig) func(http.Handler) http.Handler {
	// rate limiters keyed by api key or remote ip
	limiters := NewLimiterPool(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow unauthenticated health checks for probes
			if (r.URL.Path == "/healthz" || r.URL.Path == "/readyz") && r.Method == http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			// scrapers and the swagger ui carry no backend key
			if r.Method == http.MethodGet &&
				(r.URL.Path == "/metrics" || r.URL.Path == "/openapi.yaml" || strings.HasPrefix(r.URL.Path, "/docs/")) {
				next.ServeHTTP(w, r)
				return
			}
			// websocket handshakes authenticate with connection tokens
			if strings.HasPrefix(r.URL.Path, "/ws/") {
				next.ServeHTTP(w, r)
				return
			}

			// ip whitelist
			if len(cfg.IPWhitelist) > 0 {
				ip := ClientIP(r)
				logger.Debug("ip_check", "ip", ip)
				if !ipWhitelisted(ip, cfg.IPWhitelist) {
					utils.JSONError(w, http.StatusForbidden, "forbidden")
					logger.Warn("request_blocked", "reason", "ip_not_whitelisted", "ip", ip, "path", r.URL.Path)
					return
				}
			}

			key, hasAPIKey := apiKey(r)
			if !hasAPIKey {
				utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
				logger.Warn("request_unauthorized", "path", r.URL.Path, "remote", r.RemoteAddr)
				return
			}
			// a nil key set defers to the runtime config, so keys pushed
			// after startup take effect without rebuilding the chain
			keys := cfg.BackendKeys
			if keys == nil {
				keys = config.GetBackendKeys()
			}
			if _, ok := keys[key]; !ok {
				utils.JSONError(w, http.StatusUnauthorized, "unauthorized")
				logger.Warn("request_unauthorized", "reason", "unknown_key", "path", r.URL.Path)
				return
			}

			// rate limiting
			if !limiters.Allow(key) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				logger.Warn("rate_limited", "path", r.URL.Path)
				return
			}

			logger.Info("request_allowed", "method", r.Method, "path", r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client address from RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ipWhitelisted(ip string, list []string) bool {
	// check if ip is in whitelist
	for _, w := range list {
		if ip == w {
			return true
		}
	}
	return false
}

func apiKey(r *http.Request) (string, bool) {
	// prefer authorization: bearer <key>, fallback to x-api-key
	auth := r.Header.Get("Authorization")
	var key string
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		key = strings.TrimSpace(auth[7:])
	}
	if key == "" {
		key = r.Header.Get("X-API-Key")
	}
	if key == "" {
		return "", false
	}
	return key, true
}
