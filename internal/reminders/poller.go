package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"pairlink/pkg/config"
	"pairlink/pkg/hub"
	"pairlink/pkg/logger"
	"pairlink/pkg/metrics"
	"pairlink/pkg/models"
	"pairlink/pkg/store"
)

// defaultInterval is the poll cadence when neither an interval nor a cron
// expression is configured.
const defaultInterval = 60 * time.Second

// Start starts the reminder poller if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RemindersConfig, h *hub.Hub) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("reminder_poller_disabled")
		return func() {}, nil
	}

	if cfg.Cron != "" {
		if !gronx.IsValid(cfg.Cron) {
			logger.Error("reminder_invalid_cron", "cron", cfg.Cron)
			return nil, fmt.Errorf("invalid reminder cron expression: %s", cfg.Cron)
		}
	}

	interval := cfg.Interval.Std()
	if interval <= 0 {
		interval = defaultInterval
	}

	ctx2, cancel := context.WithCancel(ctx)
	if cfg.Cron != "" {
		logger.Info("reminder_poller_started", "cron", cfg.Cron)
		go runCron(ctx2, cfg.Cron, h)
	} else {
		logger.Info("reminder_poller_started", "interval", interval.String())
		go runInterval(ctx2, interval, h)
	}
	return cancel, nil
}

func runInterval(ctx context.Context, interval time.Duration, h *hub.Hub) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder_poller_stopping")
			return
		case now := <-ticker.C:
			RunTick(now.UTC(), h)
		}
	}
}

// runCron computes the next tick with gronx and sleeps until then. A
// missed tick is skipped, never retried.
func runCron(ctx context.Context, cronExpr string, h *hub.Hub) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("reminder_poller_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("reminder_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("reminder_poller_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
			RunTick(time.Now().UTC(), h)
		case <-ctx.Done():
			logger.Info("reminder_poller_stopping")
			return
		}
	}
}

// RunTick queries reminders due at the given instant (exact date and
// minute match, not completed) and broadcasts one alert per due reminder
// to its conversation. Completion state is never mutated here; a reminder
// whose minute has passed without a tick is simply skipped.
func RunTick(now time.Time, h *hub.Hub) {
	date := now.Format("2006-01-02")
	hhmm := now.Format("15:04")

	due, err := store.DueReminders(date, hhmm)
	if err != nil {
		logger.Error("reminder_scan_failed", "date", date, "time", hhmm, "error", err)
		return
	}
	logger.Debug("reminder_tick", "date", date, "time", hhmm, "due", len(due))

	for _, r := range due {
		if r.ConversationKey == "" {
			continue
		}
		metrics.ReminderAlerts.Inc()
		n := h.Broadcast(r.ConversationKey, models.ReminderAlertEvent{
			Type: "reminder_alert",
			Reminder: models.ReminderBrief{
				Title:       r.Title,
				Description: r.Description,
				Time:        r.Time,
				Priority:    r.Priority,
			},
		})
		logger.Info("reminder_alert_sent", "id", r.ID, "conversation", r.ConversationKey, "delivered", n)
	}
}
