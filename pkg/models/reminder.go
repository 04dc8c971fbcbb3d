package models

// Reminder lifecycle is owned by the REST surface; the poller only reads
// due rows and emits alerts.
type Reminder struct {
	ID              string `json:"id"`
	ConversationKey string `json:"conversationKey"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	// Date is "2006-01-02", Time is minute-granularity "15:04"
	Date      string `json:"scheduledDate"`
	Time      string `json:"scheduledTime"`
	Priority  string `json:"priority"`
	Recurring bool   `json:"recurring,omitempty"`
	Completed bool   `json:"completed"`
}

// User is a directory record resolved during connection authorization.
type User struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	PairCode string `json:"pairCode"`
	Paired   bool   `json:"paired"`
}
