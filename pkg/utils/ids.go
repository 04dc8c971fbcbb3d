package utils

import "github.com/google/uuid"

// GenMessageID returns a new unique message identifier.
func GenMessageID() string {
	return "m-" + uuid.NewString()
}

// GenReminderID returns a new unique reminder identifier.
func GenReminderID() string {
	return "rem-" + uuid.NewString()
}
