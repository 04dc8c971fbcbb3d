package store

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"pairlink/pkg/models"
)

func userKey(email string) []byte {
	return []byte("user:" + email)
}

// SaveUser inserts or replaces a directory record.
func SaveUser(u models.User) error {
	if db == nil {
		return fmt.Errorf("pebble not opened; call store.Open first")
	}
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return db.Set(userKey(u.Email), data, pebble.Sync)
}

// GetUser fetches a directory record by identity.
func GetUser(email string) (models.User, bool, error) {
	if db == nil {
		return models.User{}, false, fmt.Errorf("pebble not opened; call store.Open first")
	}
	v, closer, err := db.Get(userKey(email))
	if err == pebble.ErrNotFound {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	defer closer.Close()
	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		return models.User{}, false, fmt.Errorf("invalid user row: %w", err)
	}
	return u, true, nil
}
