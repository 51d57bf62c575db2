package domain

import (
	"slices"
	"time"
)

// Chat is a two-party conversation. At most one chat exists per unordered
// participant pair. LastMessage mirrors the newest entry of the chat's message log.
type Chat struct {
	UpdatedAt    time.Time `json:"updated_at"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
}

// HasPair reports whether the chat is between a and b, in either order.
func (c *Chat) HasPair(a, b string) bool {
	p := c.Participants
	return (p[0] == a && p[1] == b) || (p[0] == b && p[1] == a)
}

// OtherParticipant returns the participant that is not userID.
func (c *Chat) OtherParticipant(userID string) string {
	if c.Participants[0] == userID {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// Clone returns a deep copy of the chat.
func (c *Chat) Clone() *Chat {
	cp := *c
	if c.LastMessage != nil {
		msg := *c.LastMessage
		cp.LastMessage = &msg
	}
	return &cp
}

// Message is a directed text entry in a chat. Only IsRead changes after creation.
type Message struct {
	Timestamp  time.Time `json:"timestamp"`
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
}

// CloneMessages copies a message log so callers cannot alias store state.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return []Message{}
	}
	return slices.Clone(msgs)
}

// SendMessageInput is the payload for sending a message.
type SendMessageInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}
