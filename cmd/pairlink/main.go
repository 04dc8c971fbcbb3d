package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"pairlink/internal/reminders"
	"pairlink/pkg/api"
	"pairlink/pkg/auth"
	"pairlink/pkg/banner"
	"pairlink/pkg/config"
	"pairlink/pkg/hub"
	"pairlink/pkg/logger"
	"pairlink/pkg/metrics"
	"pairlink/pkg/session"
	"pairlink/pkg/shutdown"
	"pairlink/pkg/store"
	"pairlink/pkg/validation"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	// Resolve config path (file flag wins over env)
	cfgPath := config.ResolveConfigPath(cfgVal, setFlags["config"])

	cfg, backendKeys, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		logger.InitWithLevel("")
		shutdown.Abort("failed to load config", err, "")
	}
	logger.InitWithLevel(cfg.Logging.Level)

	// Flags explicitly set win over env/config for addr and dbPath.
	addr := cfg.Addr()
	if setFlags["addr"] {
		addr = addrVal
	}
	dbPath := dbVal
	if !setFlags["db"] && cfg.Server.DBPath != "" {
		dbPath = cfg.Server.DBPath
	}

	if cfg.Security.TokenSecret == "" {
		logger.Warn("no_token_secret_configured")
	}

	validation.SetRules(validation.Rules{MaxContentChars: cfg.Limits.MaxContentChars})

	if err := store.Open(dbPath); err != nil {
		shutdown.Abort("failed to open pebble", err, dbPath)
	}

	runtimeCfg := &config.RuntimeConfig{
		BackendKeys: backendKeys,
		TokenSecret: cfg.Security.TokenSecret,
	}
	config.SetRuntime(runtimeCfg)

	h := hub.New()
	dir := auth.StoreDirectory{}

	ctx, cancel := context.WithCancel(context.Background())
	remCancel, err := reminders.Start(ctx, cfg.Reminders, h)
	if err != nil {
		shutdown.Abort("failed to start reminder poller", err, dbPath)
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("signal_received", "signal", s.String())
		remCancel()
		cancel()
		if err := store.Close(); err != nil {
			logger.Error("store_close_failed", "error", err)
		}
		os.Exit(0)
	}()

	// Determine config sources summary (flags/env/config)
	srcs := []string{}
	if len(setFlags) > 0 {
		srcs = append(srcs, "flags")
	}
	if envUsed {
		srcs = append(srcs, "env")
	}
	if _, err := config.Load(cfgPath); err == nil {
		srcs = append(srcs, "config")
	}
	verStr := version
	if commit != "none" {
		verStr = verStr + " (" + commit + ")"
	}
	if buildDate != "unknown" {
		verStr = verStr + " @ " + buildDate
	}
	banner.Print(cfg, addr, dbPath, strings.Join(srcs, ", "), verStr)

	r := api.Router()
	r.HandleFunc("/ws/chat/{conversationKey}", session.Handler(h, dir, session.Config{
		AllowedOrigins:  cfg.Security.CORS.AllowedOrigins,
		TokenSecret:     cfg.Security.TokenSecret,
		MaxMessageBytes: cfg.Limits.MaxMessageBytes,
		SendBuffer:      cfg.Limits.SendBuffer,
		HandshakeRPS:    cfg.Security.RateLimit.RPS,
		HandshakeBurst:  cfg.Security.RateLimit.Burst,
	})).Methods("GET")

	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.PathPrefix("/docs/").Handler(httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	r.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))

	secCfg := auth.SecConfig{
		RPS:         cfg.Security.RateLimit.RPS,
		Burst:       cfg.Security.RateLimit.Burst,
		IPWhitelist: cfg.Security.IPWhitelist,
		BackendKeys: backendKeys,
	}
	wrapped := auth.Middleware(secCfg)(r)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Security.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS", "PUT"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-API-Key"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           300,
		AllowCredentials: true,
	})
	handler := c.Handler(wrapped)

	logger.Info("server_started", "addr", addr)
	cert := cfg.Server.TLS.CertFile
	key := cfg.Server.TLS.KeyFile
	var errServe error
	if cert != "" && key != "" {
		errServe = http.ListenAndServeTLS(addr, cert, key, handler)
	} else {
		errServe = http.ListenAndServe(addr, handler)
	}
	if errServe != nil {
		shutdown.Abort("http server exited", errServe, dbPath)
	}
}
