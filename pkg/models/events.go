package models

// ClientEvent is the inbound frame from a connected client. A missing or
// unknown Type is treated as "text".
type ClientEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatEvent is a persisted message fanned out to the room. Historical is
// set only during the join-time replay so clients can distinguish replayed
// rows from live delivery.
type ChatEvent struct {
	ID              string `json:"id"`
	ConversationKey string `json:"conversationKey"`
	Sender          string `json:"senderIdentity"`
	Kind            string `json:"type"`
	Content         string `json:"content"`
	Timestamp       string `json:"timestamp"`
	Seen            bool   `json:"seen"`
	Historical      bool   `json:"isHistorical,omitempty"`
}

type SeenUpdateEvent struct {
	Type      string `json:"type"` // always "seen_update"
	MessageID string `json:"messageId"`
	Seen      bool   `json:"seen"`
}

type ReminderAlertEvent struct {
	Type     string        `json:"type"` // always "reminder_alert"
	Reminder ReminderBrief `json:"reminder"`
}

// ReminderBrief is the alert payload; completion state and scheduling
// internals stay server-side.
type ReminderBrief struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
	Priority    string `json:"priority"`
}

// ChatEventFromMessage converts a persisted message into its wire event.
func ChatEventFromMessage(m Message, historical bool) ChatEvent {
	return ChatEvent{
		ID:              m.ID,
		ConversationKey: m.ConversationKey,
		Sender:          m.Sender,
		Kind:            m.Kind,
		Content:         m.Content,
		Timestamp:       m.Timestamp,
		Seen:            m.Seen,
		Historical:      historical,
	}
}
