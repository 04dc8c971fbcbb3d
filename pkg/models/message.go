package models

// MessageKind values accepted on the wire. Anything else is coerced to text.
const (
	KindText     = "text"
	KindMedia    = "media"
	KindMarkSeen = "mark_seen"
)

type Message struct {
	ID              string `json:"id"`
	ConversationKey string `json:"conversationKey"`
	// SenderIdentity is the opaque identity resolved during the handshake
	Sender  string `json:"senderIdentity"`
	Kind    string `json:"type"`
	Content string `json:"content"`
	// Timestamp is RFC3339 UTC
	Timestamp string `json:"timestamp"`
	Seen      bool   `json:"seen"`
}

type Conversation struct {
	ConversationKey string `json:"conversationKey"`
	CreatedAt       string `json:"createdAt,omitempty"`
	LastMessageAt   string `json:"lastMessageAt,omitempty"`
}
