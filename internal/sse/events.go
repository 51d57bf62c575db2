// Package sse implements Server-Sent Events for roster change notifications.
package sse

import (
	"time"

	"github.com/rosterapp/roster/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventTagCreated represents a tag creation event.
	EventTagCreated EventType = "tag.created"
	// EventTagUpdated represents a tag update event.
	EventTagUpdated EventType = "tag.updated"
	// EventTagDeleted represents a tag deletion event.
	EventTagDeleted EventType = "tag.deleted"

	// EventMemberCreated represents a member creation event.
	EventMemberCreated EventType = "member.created"
	// EventMemberUpdated represents a member update event.
	EventMemberUpdated EventType = "member.updated"
	// EventMemberDeleted represents a member deletion event.
	EventMemberDeleted EventType = "member.deleted"
	// EventMembersReordered represents a change of display order.
	EventMembersReordered EventType = "members.reordered"

	// EventChatCreated represents a chat creation event.
	EventChatCreated EventType = "chat.created"
	// EventChatDeleted represents a chat deletion event.
	EventChatDeleted EventType = "chat.deleted"
	// EventChatRead represents messages in a chat being marked read.
	EventChatRead EventType = "chat.read"

	// EventMessageCreated represents a new message, sent or auto-replied.
	EventMessageCreated EventType = "message.created"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// TagEventData is the data payload for tag create/update events.
type TagEventData struct {
	Tag domain.Tag `json:"tag"`
}

// TagDeletedEventData is the data payload for tag delete events.
type TagDeletedEventData struct {
	TagID string `json:"tag_id"`
}

// MemberEventData is the data payload for member create/update events.
type MemberEventData struct {
	Member *domain.Member `json:"member"`
}

// MemberDeletedEventData is the data payload for member delete events.
type MemberDeletedEventData struct {
	MemberID string `json:"member_id"`
}

// MembersReorderedEventData carries the full display order after a move.
type MembersReorderedEventData struct {
	MemberIDs []string `json:"member_ids"`
	From      int      `json:"from"`
	To        int      `json:"to"`
}

// ChatEventData is the data payload for chat creation events.
type ChatEventData struct {
	Chat *domain.Chat `json:"chat"`
}

// ChatDeletedEventData is the data payload for chat delete events.
type ChatDeletedEventData struct {
	ChatID string `json:"chat_id"`
}

// ChatReadEventData is the data payload for chat read events.
type ChatReadEventData struct {
	ChatID string `json:"chat_id"`
	Marked int    `json:"marked"`
}

// MessageEventData is the data payload for message events.
type MessageEventData struct {
	Message   domain.Message `json:"message"`
	ChatID    string         `json:"chat_id"`
	AutoReply bool           `json:"auto_reply"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now()}
}

// NewTagCreatedEvent creates a tag.created event.
func NewTagCreatedEvent(tag domain.Tag) Event {
	return newEvent(EventTagCreated, TagEventData{Tag: tag})
}

// NewTagUpdatedEvent creates a tag.updated event.
func NewTagUpdatedEvent(tag domain.Tag) Event {
	return newEvent(EventTagUpdated, TagEventData{Tag: tag})
}

// NewTagDeletedEvent creates a tag.deleted event.
func NewTagDeletedEvent(tagID string) Event {
	return newEvent(EventTagDeleted, TagDeletedEventData{TagID: tagID})
}

// NewMemberCreatedEvent creates a member.created event.
func NewMemberCreatedEvent(m *domain.Member) Event {
	return newEvent(EventMemberCreated, MemberEventData{Member: m})
}

// NewMemberUpdatedEvent creates a member.updated event.
func NewMemberUpdatedEvent(m *domain.Member) Event {
	return newEvent(EventMemberUpdated, MemberEventData{Member: m})
}

// NewMemberDeletedEvent creates a member.deleted event.
func NewMemberDeletedEvent(memberID string) Event {
	return newEvent(EventMemberDeleted, MemberDeletedEventData{MemberID: memberID})
}

// NewMembersReorderedEvent creates a members.reordered event.
func NewMembersReorderedEvent(from, to int, memberIDs []string) Event {
	return newEvent(EventMembersReordered, MembersReorderedEventData{From: from, To: to, MemberIDs: memberIDs})
}

// NewChatCreatedEvent creates a chat.created event.
func NewChatCreatedEvent(c *domain.Chat) Event {
	return newEvent(EventChatCreated, ChatEventData{Chat: c})
}

// NewChatDeletedEvent creates a chat.deleted event.
func NewChatDeletedEvent(chatID string) Event {
	return newEvent(EventChatDeleted, ChatDeletedEventData{ChatID: chatID})
}

// NewChatReadEvent creates a chat.read event.
func NewChatReadEvent(chatID string, marked int) Event {
	return newEvent(EventChatRead, ChatReadEventData{ChatID: chatID, Marked: marked})
}

// NewMessageCreatedEvent creates a message.created event.
func NewMessageCreatedEvent(chatID string, msg domain.Message, autoReply bool) Event {
	return newEvent(EventMessageCreated, MessageEventData{ChatID: chatID, Message: msg, AutoReply: autoReply})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return newEvent(EventHeartbeat, HeartbeatEventData{ServerTime: time.Now()})
}
