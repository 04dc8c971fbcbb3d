package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"pairlink/pkg/logger"
	"pairlink/pkg/models"
)

func reminderKey(id string) []byte {
	return []byte("reminder:" + id)
}

// SaveReminder inserts or replaces a reminder row.
func SaveReminder(r models.Reminder) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder: %w", err)
	}
	if err := db.Set(reminderKey(r.ID), data, pebble.Sync); err != nil {
		logger.Error("save_reminder_failed", "id", r.ID, "error", err)
		return err
	}
	logger.Info("reminder_saved", "id", r.ID, "conversation", r.ConversationKey, "date", r.Date, "time", r.Time)
	return nil
}

// GetReminder fetches a reminder by id.
func GetReminder(id string) (models.Reminder, bool, error) {
	if db == nil {
		return models.Reminder{}, false, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get(reminderKey(id))
	if err == pebble.ErrNotFound {
		return models.Reminder{}, false, nil
	}
	if err != nil {
		return models.Reminder{}, false, err
	}
	defer closer.Close()
	var r models.Reminder
	if err := json.Unmarshal(v, &r); err != nil {
		return models.Reminder{}, false, fmt.Errorf("invalid reminder row: %w", err)
	}
	return r, true, nil
}

// DeleteReminder removes a reminder row. Deleting an absent id is not an
// error.
func DeleteReminder(id string) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	return db.Delete(reminderKey(id), pebble.Sync)
}

// ListReminders returns all reminders, optionally filtered by conversation
// key when key is non-empty.
func ListReminders(key string) ([]models.Reminder, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte("reminder:")
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []models.Reminder
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var r models.Reminder
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			logger.Warn("list_reminders_bad_row", "key", string(iter.Key()), "error", err)
			continue
		}
		if key != "" && r.ConversationKey != key {
			continue
		}
		out = append(out, r)
	}
	return out, iter.Error()
}

// DueReminders returns reminders that are not completed and whose scheduled
// date and minute-granularity time exactly equal the given values. A
// reminder is never due before or after its minute.
func DueReminders(date, hhmm string) ([]models.Reminder, error) {
	all, err := ListReminders("")
	if err != nil {
		return nil, err
	}
	var due []models.Reminder
	for _, r := range all {
		if r.Completed {
			continue
		}
		if r.Date == date && r.Time == hhmm {
			due = append(due, r)
		}
	}
	return due, nil
}
