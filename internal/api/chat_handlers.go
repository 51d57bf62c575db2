package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChats",
		Method:      http.MethodGet,
		Path:        "/api/v1/chats",
		Summary:     "List chats",
		Description: "Returns every chat with its unread count for the current user",
		Tags:        []string{"Chats"},
	}, s.handleListChats)

	huma.Register(s.api, huma.Operation{
		OperationID: "createChat",
		Method:      http.MethodPost,
		Path:        "/api/v1/chats",
		Summary:     "Open chat",
		Description: "Finds the chat with a participant or creates it. Returns 201 when a chat was created.",
		Tags:        []string{"Chats"},
	}, s.handleCreateChat)

	huma.Register(s.api, huma.Operation{
		OperationID:   "clearChatSelection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/chats/selection",
		Summary:       "Clear chat selection",
		Tags:          []string{"Chats"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleClearChatSelection)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteChat",
		Method:        http.MethodDelete,
		Path:          "/api/v1/chats/{id}",
		Summary:       "Delete chat",
		Description:   "Deletes a chat and its message log",
		Tags:          []string{"Chats"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteChat)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectChat",
		Method:      http.MethodPost,
		Path:        "/api/v1/chats/{id}/select",
		Summary:     "Select chat",
		Description: "Selects a chat and marks its incoming messages as read",
		Tags:        []string{"Chats"},
	}, s.handleSelectChat)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMessages",
		Method:      http.MethodGet,
		Path:        "/api/v1/chats/{id}/messages",
		Summary:     "List messages",
		Description: "Returns a chat's message log oldest first",
		Tags:        []string{"Chats"},
	}, s.handleListMessages)

	huma.Register(s.api, huma.Operation{
		OperationID:   "sendMessage",
		Method:        http.MethodPost,
		Path:          "/api/v1/chats/{id}/messages",
		Summary:       "Send message",
		Description:   "Appends a message from the current user. The other participant replies shortly after.",
		Tags:          []string{"Chats"},
		DefaultStatus: http.StatusCreated,
	}, s.handleSendMessage)
}

// === DTOs ===

// MessageResponse contains message data in API responses.
type MessageResponse struct {
	ID         string    `json:"id" doc:"Message ID"`
	SenderID   string    `json:"sender_id" doc:"Sender user ID"`
	ReceiverID string    `json:"receiver_id" doc:"Receiver user ID"`
	Content    string    `json:"content" doc:"Message text"`
	Timestamp  time.Time `json:"timestamp" doc:"Send time"`
	IsRead     bool      `json:"is_read" doc:"Whether the receiver has read the message"`
}

// ChatResponse contains chat data in API responses.
type ChatResponse struct {
	ID           string           `json:"id" doc:"Chat ID"`
	Participants []string         `json:"participants" doc:"The two participant user IDs"`
	LastMessage  *MessageResponse `json:"last_message,omitempty" doc:"Newest message"`
	UpdatedAt    time.Time        `json:"updated_at" doc:"Time of the last activity"`
	UnreadCount  int              `json:"unread_count" doc:"Unread messages addressed to the current user"`
}

// ChatsResponse contains the chat list.
type ChatsResponse struct {
	Chats         []ChatResponse `json:"chats" doc:"Chats in store order"`
	SelectedID    string         `json:"selected_id,omitempty" doc:"ID of the selected chat"`
	CurrentUserID string         `json:"current_user_id" doc:"ID the server sends messages as"`
}

// ChatsOutput wraps the chat list for Huma.
type ChatsOutput struct {
	Body ChatsResponse
}

// CreateChatRequest is the request body for opening a chat.
type CreateChatRequest struct {
	ParticipantID string `json:"participant_id" doc:"User to chat with"`
}

// CreateChatInput wraps the create chat request for Huma.
type CreateChatInput struct {
	Body CreateChatRequest
}

// CreateChatOutput carries 201 for a new chat and 200 for an existing one.
type CreateChatOutput struct {
	Status int
	Body   ChatResponse
}

// ChatIDInput identifies a chat by path.
type ChatIDInput struct {
	ID string `path:"id" doc:"Chat ID"`
}

// ChatOutput wraps a single chat for Huma.
type ChatOutput struct {
	Body ChatResponse
}

// MessagesResponse contains a chat's message log.
type MessagesResponse struct {
	Messages []MessageResponse `json:"messages" doc:"Messages oldest first"`
}

// MessagesOutput wraps the message log for Huma.
type MessagesOutput struct {
	Body MessagesResponse
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Content string `json:"content" doc:"Message text"`
}

// SendMessageInput wraps the send message request for Huma.
type SendMessageInput struct {
	ID   string `path:"id" doc:"Chat ID"`
	Body SendMessageRequest
}

// MessageOutput wraps a single message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func newMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		IsRead:     m.IsRead,
	}
}

func (s *Server) newChatResponse(c *domain.Chat) ChatResponse {
	resp := ChatResponse{
		ID:           c.ID,
		Participants: []string{c.Participants[0], c.Participants[1]},
		UpdatedAt:    c.UpdatedAt,
		UnreadCount:  s.services.Chat.UnreadCount(c.ID),
	}
	if c.LastMessage != nil {
		last := newMessageResponse(c.LastMessage)
		resp.LastMessage = &last
	}
	return resp
}

// === Handlers ===

func (s *Server) handleListChats(_ context.Context, _ *struct{}) (*ChatsOutput, error) {
	chats := s.services.Chat.Chats()
	resp := ChatsResponse{
		Chats:         make([]ChatResponse, len(chats)),
		CurrentUserID: s.services.Chat.CurrentUserID(),
	}
	for i := range chats {
		resp.Chats[i] = s.newChatResponse(&chats[i])
	}
	if selected := s.services.Chat.Selected(); selected != nil {
		resp.SelectedID = selected.ID
	}

	return &ChatsOutput{Body: resp}, nil
}

func (s *Server) handleCreateChat(ctx context.Context, input *CreateChatInput) (*CreateChatOutput, error) {
	chat, created, err := s.services.Chat.CreateChat(ctx, input.Body.ParticipantID)
	if err != nil {
		return nil, err
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return &CreateChatOutput{Status: status, Body: s.newChatResponse(chat)}, nil
}

func (s *Server) handleClearChatSelection(_ context.Context, _ *struct{}) (*struct{}, error) {
	s.services.Chat.ClearSelection()
	return nil, nil
}

func (s *Server) handleDeleteChat(ctx context.Context, input *ChatIDInput) (*struct{}, error) {
	found, err := s.services.Chat.DeleteChat(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("chat %s not found", input.ID)
	}

	return nil, nil
}

func (s *Server) handleSelectChat(ctx context.Context, input *ChatIDInput) (*ChatOutput, error) {
	chat, err := s.services.Chat.SelectChat(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, domainerrors.NotFoundf("chat %s not found", input.ID)
	}

	return &ChatOutput{Body: s.newChatResponse(chat)}, nil
}

func (s *Server) handleListMessages(_ context.Context, input *ChatIDInput) (*MessagesOutput, error) {
	if _, ok := s.services.Chat.Chat(input.ID); !ok {
		return nil, domainerrors.NotFoundf("chat %s not found", input.ID)
	}

	msgs := s.services.Chat.GetMessages(input.ID)
	resp := MessagesResponse{Messages: make([]MessageResponse, len(msgs))}
	for i := range msgs {
		resp.Messages[i] = newMessageResponse(&msgs[i])
	}

	return &MessagesOutput{Body: resp}, nil
}

func (s *Server) handleSendMessage(ctx context.Context, input *SendMessageInput) (*MessageOutput, error) {
	msg, err := s.services.Chat.SendMessage(ctx, input.ID, input.Body.Content)
	if err != nil {
		return nil, err
	}

	return &MessageOutput{Body: newMessageResponse(msg)}, nil
}
