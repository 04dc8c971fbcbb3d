package banner

import (
	"fmt"

	"pairlink/pkg/config"
)

const banner = `
██████╗  █████╗ ██╗██████╗ ██╗     ██╗███╗   ██╗██╗  ██╗
██╔══██╗██╔══██╗██║██╔══██╗██║     ██║████╗  ██║██║ ██╔╝
██████╔╝███████║██║██████╔╝██║     ██║██╔██╗ ██║█████╔╝
██╔═══╝ ██╔══██║██║██╔══██╗██║     ██║██║╚██╗██║██╔═██╗
██║     ██║  ██║██║██║  ██║███████╗██║██║ ╚████║██║  ██╗
╚═╝     ╚═╝  ╚═╝╚═╝╚═╝  ╚═╝╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝
`

// Print writes the startup banner and a short config summary.
func Print(cfg *config.Config, addr, dbPath, sources, version string) {
	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("DB Path:  %s\n", dbPath)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	if sources != "" {
		fmt.Printf("Config sources: %s\n", sources)
	}
	fmt.Println("\n== Endpoints ==================================================")
	fmt.Println("WS   /ws/chat/{conversationKey}?token=<jwt> - realtime pair channel")
	fmt.Println("GET  /v1/conversations/{key}/messages?limit=<n> - persisted history")
	fmt.Println("POST /v1/reminders - schedule a reminder")
	fmt.Println("GET  /metrics - Prometheus metrics")
	fmt.Println("\n== Production? =================================================")
	if cfg != nil && cfg.Security.TokenSecret != "" {
		fmt.Println("- Token secret: configured")
	} else {
		fmt.Println("- Token secret: MISSING (connections cannot authenticate)")
	}
	if cfg != nil && len(cfg.Security.APIKeys.Backend) > 0 {
		fmt.Printf("- Backend API keys: OK (%d)\n", len(cfg.Security.APIKeys.Backend))
	} else {
		fmt.Println("- Backend API keys: MISSING (required for the REST surface)")
	}
	if cfg != nil && cfg.Server.TLS.CertFile != "" && cfg.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if cfg != nil && cfg.Reminders.Enabled {
		if cfg.Reminders.Cron != "" {
			fmt.Printf("- Reminder poller: enabled (cron=%s)\n", cfg.Reminders.Cron)
		} else {
			fmt.Println("- Reminder poller: enabled")
		}
	} else {
		fmt.Println("- Reminder poller: disabled")
	}
	fmt.Println("\n== Logs: =================================================")
}
