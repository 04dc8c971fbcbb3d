package session

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pairlink/pkg/auth"
	"pairlink/pkg/config"
	"pairlink/pkg/hub"
	"pairlink/pkg/logger"
	"pairlink/pkg/metrics"
)

// Config carries the handshake and transport settings for the websocket
// endpoint.
type Config struct {
	AllowedOrigins  []string
	TokenSecret     string
	MaxMessageBytes int64
	SendBuffer      int
	HandshakeRPS    float64
	HandshakeBurst  int
}

// createUpgrader creates a WebSocket upgrader with the given allowed origins
func createUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowedMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		allowedMap[origin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedMap) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			return allowedMap[origin]
		},
	}
}

// reject terminates a freshly upgraded connection with the close code
// mapped from the auth failure, so clients can distinguish retry-worthy
// failures (expired) from non-retry-worthy ones.
func reject(conn *websocket.Conn, err error, key string) {
	code := auth.CloseCode(err)
	metrics.AuthRejections.WithLabelValues(err.Error()).Inc()
	logger.Warn("connection_rejected", "conversation", key, "close_code", code, "reason", err)
	msg := websocket.FormatCloseMessage(code, err.Error())
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	_ = conn.Close()
}

// Handler serves GET /ws/chat/{conversationKey}?token=<credential>.
//
// The credential travels as a query parameter because browser websocket
// clients cannot set headers on the handshake. The connection is upgraded
// first so an authentication failure can be reported with a distinct
// close code instead of a generic HTTP error.
func Handler(h *hub.Hub, dir auth.Directory, cfg Config) http.HandlerFunc {
	upgrader := createUpgrader(cfg.AllowedOrigins)
	limiters := auth.NewLimiterPool(auth.SecConfig{RPS: cfg.HandshakeRPS, Burst: cfg.HandshakeBurst})

	return func(w http.ResponseWriter, r *http.Request) {
		key := mux.Vars(r)["conversationKey"]

		if !limiters.Allow(auth.ClientIP(r)) {
			logger.Warn("handshake_rate_limited", "remote", r.RemoteAddr, "conversation", key)
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket_upgrade_failed", "remote", r.RemoteAddr, "error", err)
			return
		}

		// an empty secret in the handler config defers to the runtime
		// config set at startup
		secret := cfg.TokenSecret
		if secret == "" {
			secret = config.GetTokenSecret()
		}
		token := r.URL.Query().Get("token")
		claims, err := auth.VerifyToken(secret, token)
		if err != nil {
			reject(conn, err, key)
			return
		}

		s := newSession(conn, h, key, claims.Email, cfg.SendBuffer)
		s.setState(StateAuthenticated)

		// token freshness does not imply current pairing state; confirm
		// against the directory before admitting the session
		user, err := auth.Authorize(dir, claims, key)
		if err != nil {
			reject(conn, err, key)
			return
		}
		logger.Info("connection_admitted", "conversation", key, "identity", claims.Email, "name", user.Name)

		if cfg.MaxMessageBytes > 0 {
			conn.SetReadLimit(cfg.MaxMessageBytes)
		}

		h.Join(key, s)
		s.setState(StateJoined)

		// replay must finish before the write pump starts so the session
		// never observes a live event ahead of its history
		s.replayHistory()
		s.setState(StateActive)

		go s.writePump()
		s.readLoop()
	}
}
