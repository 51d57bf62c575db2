package service

import (
	"context"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/id"
	"github.com/rosterapp/roster/internal/schedule"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/validation"
)

// DefaultReplyDelay is how long a simulated counterpart takes to answer.
const DefaultReplyDelay = time.Second

// replyPersistTimeout bounds the write of a deferred auto-reply, which runs
// outside any caller's context.
const replyPersistTimeout = 10 * time.Second

// ChatOptions configures the chat simulation.
type ChatOptions struct {
	CurrentUserID string
	ReplyDelay    time.Duration      // Zero means DefaultReplyDelay
	Scheduler     schedule.Scheduler // Defaults to runtime timers
	Pick          func(n int) int    // Chooses a reply index in [0, n); defaults to rand.IntN
}

// ChatService manages conversations between the current user and members.
// Every counterpart is simulated: each sent message schedules one canned reply.
type ChatService struct {
	store         store.Adapter
	emitter       store.EventEmitter
	validator     *validation.Validator
	logger        *slog.Logger
	now           func() time.Time
	scheduler     schedule.Scheduler
	pick          func(n int) int
	replyDelay    time.Duration
	currentUserID string

	mu         sync.RWMutex
	chats      []domain.Chat
	messages   map[string][]domain.Message
	selectedID string
	loaded     bool
	closed     bool

	// Pending auto-replies by chat id, keyed by a per-service sequence number.
	pending map[string]map[uint64]schedule.Task
	seq     uint64
}

// NewChatService creates a new chat service. Call Load before mutating.
func NewChatService(deps Deps, opts ChatOptions) *ChatService {
	deps = deps.withDefaults()
	if opts.CurrentUserID == "" {
		opts.CurrentUserID = "current-user"
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewTimers()
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}

	return &ChatService{
		store:         deps.Store,
		emitter:       deps.Emitter,
		validator:     deps.Validator,
		logger:        deps.Logger,
		now:           deps.Now,
		scheduler:     opts.Scheduler,
		pick:          opts.Pick,
		replyDelay:    opts.ReplyDelay,
		currentUserID: opts.CurrentUserID,
		messages:      make(map[string][]domain.Message),
		pending:       make(map[string]map[uint64]schedule.Task),
	}
}

// Load hydrates chats and message logs. Sample conversations are seeded on
// first run or when either key is unreadable.
func (s *ChatService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chats []domain.Chat
	var messages map[string][]domain.Message
	chatsOK := hydrate(ctx, s.store, s.logger, store.KeyChats, &chats) && chats != nil
	messagesOK := hydrate(ctx, s.store, s.logger, store.KeyChatMessages, &messages) && messages != nil

	if chatsOK && messagesOK {
		s.chats = chats
		s.messages = messages
		s.loaded = true
		s.logger.Info("chats loaded", "chats", len(chats))
		return nil
	}

	chats, messages = seedChats(s.currentUserID, s.now())
	s.chats = chats
	s.messages = messages
	s.loaded = true

	err := persistAll(ctx, s.store, map[string]any{
		store.KeyChats:        chats,
		store.KeyChatMessages: messages,
	})
	if err != nil {
		s.logger.Error("failed to persist seed chats", "error", err)
		return err
	}
	s.logger.Info("seeded sample chats", "chats", len(chats))
	return nil
}

// Loading reports whether Load has not yet completed.
func (s *ChatService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// CurrentUserID returns the id messages are sent as.
func (s *ChatService) CurrentUserID() string {
	return s.currentUserID
}

// Chats returns copies of all chats in creation order.
func (s *ChatService) Chats() []domain.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Chat, len(s.chats))
	for i := range s.chats {
		out[i] = *s.chats[i].Clone()
	}
	return out
}

// Chat returns a copy of the chat with id.
func (s *ChatService) Chat(chatID string) (*domain.Chat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(chatID); i >= 0 {
		return s.chats[i].Clone(), true
	}
	return nil, false
}

// Selected returns the selected chat or nil.
func (s *ChatService) Selected() *domain.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedID == "" {
		return nil
	}
	if i := s.indexOf(s.selectedID); i >= 0 {
		return s.chats[i].Clone()
	}
	return nil
}

// GetMessages returns the chat's messages in chronological order, or an
// empty slice when the chat has no log.
func (s *ChatService) GetMessages(chatID string) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneMessages(s.messages[chatID])
}

// UnreadCount returns how many messages in the chat the current user has not read.
func (s *ChatService) UnreadCount(chatID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, m := range s.messages[chatID] {
		if m.ReceiverID == s.currentUserID && !m.IsRead {
			n++
		}
	}
	return n
}

// SelectChat selects the chat and marks every message addressed to the
// current user as read. The read state is persisted. An unknown id is a no-op
// returning nil.
func (s *ChatService) SelectChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, errLoading("chats")
	}

	i := s.indexOf(chatID)
	if i < 0 {
		return nil, nil
	}

	log := s.messages[chatID]
	marked := 0
	nextLog := domain.CloneMessages(log)
	for j := range nextLog {
		if nextLog[j].ReceiverID == s.currentUserID && !nextLog[j].IsRead {
			nextLog[j].IsRead = true
			marked++
		}
	}

	if marked > 0 {
		nextChats := s.cloneChats()
		if last := nextChats[i].LastMessage; last != nil && last.ReceiverID == s.currentUserID {
			last.IsRead = true
		}
		nextMessages := maps.Clone(s.messages)
		nextMessages[chatID] = nextLog

		err := persistAll(ctx, s.store, map[string]any{
			store.KeyChats:        nextChats,
			store.KeyChatMessages: nextMessages,
		})
		if err != nil {
			return nil, err
		}
		s.chats = nextChats
		s.messages = nextMessages
		s.emitter.Emit(sse.NewChatReadEvent(chatID, marked))
	}

	s.selectedID = chatID
	s.logger.Debug("chat selected", "chat_id", chatID, "marked_read", marked)
	return s.chats[i].Clone(), nil
}

// ClearSelection drops the current chat selection.
func (s *ChatService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
}

// CreateChat finds or creates the chat between the current user and
// participantID and selects it. created reports whether a new chat was made.
func (s *ChatService) CreateChat(ctx context.Context, participantID string) (*domain.Chat, bool, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return nil, false, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"participant_id": "is required"})
	}
	if participantID == s.currentUserID {
		return nil, false, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"participant_id": "must differ from the current user"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false, errLoading("chats")
	}

	for i := range s.chats {
		if s.chats[i].HasPair(s.currentUserID, participantID) {
			s.selectedID = s.chats[i].ID
			return s.chats[i].Clone(), false, nil
		}
	}

	chatID, err := id.Generate(id.PrefixChat)
	if err != nil {
		return nil, false, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate chat id")
	}

	chat := domain.Chat{
		ID:           chatID,
		Participants: [2]string{s.currentUserID, participantID},
		UpdatedAt:    s.now(),
	}
	nextChats := append(s.cloneChats(), chat)
	nextMessages := maps.Clone(s.messages)
	nextMessages[chatID] = []domain.Message{}

	err = persistAll(ctx, s.store, map[string]any{
		store.KeyChats:        nextChats,
		store.KeyChatMessages: nextMessages,
	})
	if err != nil {
		return nil, false, err
	}
	s.chats = nextChats
	s.messages = nextMessages
	s.selectedID = chatID

	s.emitter.Emit(sse.NewChatCreatedEvent(chat.Clone()))
	s.logger.Info("chat created", "chat_id", chatID, "participant_id", participantID)

	return chat.Clone(), true, nil
}

// SendMessage appends a message from the current user to the chat's other
// participant and schedules one auto-reply. Surrounding whitespace is trimmed.
// An unknown chat is NOT_FOUND.
func (s *ChatService) SendMessage(ctx context.Context, chatID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if err := s.validator.Validate(domain.SendMessageInput{Content: content}); err != nil {
		return nil, err
	}

	msgID, err := id.NewMessageID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate message id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, errLoading("chats")
	}
	if s.closed {
		return nil, domainerrors.NotReady("chat service is closed")
	}

	i := s.indexOf(chatID)
	if i < 0 {
		return nil, domainerrors.NotFoundf("chat %s not found", chatID)
	}

	msg := domain.Message{
		ID:         msgID,
		SenderID:   s.currentUserID,
		ReceiverID: s.chats[i].OtherParticipant(s.currentUserID),
		Content:    content,
		Timestamp:  s.after(s.messages[chatID]),
	}

	if err := s.appendAndPersist(ctx, i, msg); err != nil {
		return nil, err
	}

	s.emitter.Emit(sse.NewMessageCreatedEvent(chatID, msg, false))
	s.logger.Debug("message sent", "chat_id", chatID, "message_id", msg.ID)

	s.scheduleReply(chatID, msg)

	out := msg
	return &out, nil
}

// DeleteChat removes the chat and its message log, clears the selection when
// it pointed at the chat, and cancels the chat's pending auto-replies.
// An unknown id is a no-op reporting found=false.
func (s *ChatService) DeleteChat(ctx context.Context, chatID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, errLoading("chats")
	}

	i := s.indexOf(chatID)
	if i < 0 {
		return false, nil
	}

	nextChats := slices.Delete(s.cloneChats(), i, i+1)
	nextMessages := maps.Clone(s.messages)
	delete(nextMessages, chatID)

	err := persistAll(ctx, s.store, map[string]any{
		store.KeyChats:        nextChats,
		store.KeyChatMessages: nextMessages,
	})
	if err != nil {
		return true, err
	}
	s.chats = nextChats
	s.messages = nextMessages
	if s.selectedID == chatID {
		s.selectedID = ""
	}

	cancelled := 0
	for _, task := range s.pending[chatID] {
		if task.Cancel() {
			cancelled++
		}
	}
	delete(s.pending, chatID)

	s.emitter.Emit(sse.NewChatDeletedEvent(chatID))
	s.logger.Info("chat deleted", "chat_id", chatID, "cancelled_replies", cancelled)

	return true, nil
}

// Close cancels every pending auto-reply. Later sends fail with NOT_READY.
func (s *ChatService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for chatID, tasks := range s.pending {
		for _, task := range tasks {
			task.Cancel()
		}
		delete(s.pending, chatID)
	}
	return nil
}

// scheduleReply must be called with mu held.
func (s *ChatService) scheduleReply(chatID string, trigger domain.Message) {
	s.seq++
	seq := s.seq

	task := s.scheduler.After(s.replyDelay, func() {
		s.deliverReply(chatID, seq, trigger)
	})

	if s.pending[chatID] == nil {
		s.pending[chatID] = make(map[uint64]schedule.Task)
	}
	s.pending[chatID][seq] = task
}

// deliverReply appends the counterpart's canned answer to trigger.
// A reply for a chat that no longer exists does nothing.
func (s *ChatService) deliverReply(chatID string, seq uint64, trigger domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending[chatID], seq)
	if len(s.pending[chatID]) == 0 {
		delete(s.pending, chatID)
	}

	if s.closed {
		return
	}
	i := s.indexOf(chatID)
	if i < 0 {
		s.logger.Debug("dropping auto-reply for deleted chat", "chat_id", chatID)
		return
	}
	if _, ok := s.messages[chatID]; !ok {
		return
	}

	msgID, err := id.NewMessageID()
	if err != nil {
		s.logger.Error("failed to generate auto-reply id", "chat_id", chatID, "error", err)
		return
	}

	ts := s.after(s.messages[chatID])
	if !ts.After(trigger.Timestamp) {
		ts = trigger.Timestamp.Add(time.Millisecond)
	}

	reply := domain.Message{
		ID:         msgID,
		SenderID:   trigger.ReceiverID,
		ReceiverID: s.currentUserID,
		Content:    autoReplies[s.pick(len(autoReplies))],
		Timestamp:  ts,
		IsRead:     true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), replyPersistTimeout)
	defer cancel()

	if err := s.appendAndPersist(ctx, i, reply); err != nil {
		s.logger.Error("failed to persist auto-reply, dropping it", "chat_id", chatID, "error", err)
		return
	}

	s.emitter.Emit(sse.NewMessageCreatedEvent(chatID, reply, true))
	s.logger.Debug("auto-reply delivered", "chat_id", chatID, "message_id", reply.ID)
}

// appendAndPersist appends msg to chat i's log, updates LastMessage and
// UpdatedAt, and writes both keys before committing. mu must be held.
func (s *ChatService) appendAndPersist(ctx context.Context, i int, msg domain.Message) error {
	chatID := s.chats[i].ID

	nextChats := s.cloneChats()
	last := msg
	nextChats[i].LastMessage = &last
	nextChats[i].UpdatedAt = msg.Timestamp

	nextMessages := maps.Clone(s.messages)
	log := s.messages[chatID]
	nextLog := make([]domain.Message, len(log), len(log)+1)
	copy(nextLog, log)
	nextMessages[chatID] = append(nextLog, msg)

	err := persistAll(ctx, s.store, map[string]any{
		store.KeyChats:        nextChats,
		store.KeyChatMessages: nextMessages,
	})
	if err != nil {
		return err
	}
	s.chats = nextChats
	s.messages = nextMessages
	return nil
}

// after returns the current time, nudged past the newest logged message so
// chat logs stay strictly chronological even with a coarse clock.
func (s *ChatService) after(log []domain.Message) time.Time {
	ts := s.now()
	if n := len(log); n > 0 && !ts.After(log[n-1].Timestamp) {
		ts = log[n-1].Timestamp.Add(time.Millisecond)
	}
	return ts
}

// cloneChats must be called with mu held.
func (s *ChatService) cloneChats() []domain.Chat {
	out := make([]domain.Chat, len(s.chats), len(s.chats)+1)
	for i := range s.chats {
		out[i] = *s.chats[i].Clone()
	}
	return out
}

// indexOf must be called with mu held.
func (s *ChatService) indexOf(chatID string) int {
	return slices.IndexFunc(s.chats, func(c domain.Chat) bool { return c.ID == chatID })
}
