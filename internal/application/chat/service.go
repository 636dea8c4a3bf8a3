package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ngo-connect-api/internal/domain"
	"github.com/ngo-connect-api/internal/pkg/id"
	"github.com/ngo-connect-api/internal/realtime"
	"github.com/samber/lo"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldLastMessageText = "last_message_text"
	fieldLastMessageAt   = "last_message_at"
	fieldUnreadA         = "unread_a"
	fieldUnreadB         = "unread_b"
	fieldUpdatedAt       = "updated_at"
)

type Service interface {
	// EnsureThread returns the existing thread between the two parties or
	// creates one.
	EnsureThread(ctx context.Context, req domain.CreateChatRequest) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	History(ctx context.Context, chatID, userID string) ([]domain.Message, error)
	Send(ctx context.Context, chatID string, req domain.SendMessageRequest) (*domain.Message, error)
	MarkSeen(ctx context.Context, chatID, userID string) error
}

type chatStore interface {
	Put(ctx context.Context, c *domain.Chat) error
	Get(ctx context.Context, chatID string) (*domain.Chat, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Chat, error)
	Update(ctx context.Context, chatID string, updates map[string]interface{}) error
	UpdateWithAdd(ctx context.Context, chatID string, updates map[string]interface{}, counter string, delta int) error
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListByChat(ctx context.Context, chatID string) ([]domain.Message, error)
}

type nameResolver interface {
	DisplayName(ctx context.Context, userID, model string) (string, error)
}

type service struct {
	chats     chatStore
	messages  messageStore
	names     nameResolver
	broadcast realtime.Publisher
}

func NewService(chats chatStore, messages messageStore, names nameResolver, broadcast realtime.Publisher) Service {
	return &service{chats: chats, messages: messages, names: names, broadcast: broadcast}
}

func (s *service) EnsureThread(ctx context.Context, req domain.CreateChatRequest) (*domain.Chat, error) {
	if req.UserID == req.OtherID {
		return nil, fmt.Errorf("cannot open a chat with yourself: %w", domain.ErrBadRequest)
	}
	existing, err := s.chats.ListByParticipant(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].HasParticipant(req.OtherID) {
			return &existing[i], nil
		}
	}

	nameA, err := s.names.DisplayName(ctx, req.UserID, req.UserModel)
	if err != nil {
		return nil, err
	}
	nameB, err := s.names.DisplayName(ctx, req.OtherID, req.OtherModel)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Chat{
		ChatID:            id.New(),
		ParticipantAID:    req.UserID,
		ParticipantAModel: req.UserModel,
		ParticipantAName:  nameA,
		ParticipantBID:    req.OtherID,
		ParticipantBModel: req.OtherModel,
		ParticipantBName:  nameB,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.chats.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	chats, err := s.chats.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	summaries := lo.Map(chats, func(c domain.Chat, _ int) domain.ChatSummary {
		sum := domain.ChatSummary{
			ChatID:      c.ChatID,
			OtherName:   c.OtherSide(userID),
			UnreadCount: c.UnreadFor(userID),
		}
		if c.LastMessageAt != nil {
			sum.LastMessage = &domain.MessagePreview{Text: c.LastMessageText, CreatedAt: *c.LastMessageAt}
		}
		return sum
	})
	// Most recently active first; threads without messages sink to the end.
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return summaries, nil
}

func (s *service) History(ctx context.Context, chatID, userID string) ([]domain.Message, error) {
	c, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(userID) {
		return nil, fmt.Errorf("not a participant of this chat: %w", domain.ErrForbidden)
	}
	return s.messages.ListByChat(ctx, chatID)
}

func (s *service) Send(ctx context.Context, chatID string, req domain.SendMessageRequest) (*domain.Message, error) {
	c, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.HasParticipant(req.SenderID) {
		return nil, fmt.Errorf("not a participant of this chat: %w", domain.ErrForbidden)
	}

	now := time.Now().UTC()
	m := &domain.Message{
		MessageID:   id.New(),
		ChatID:      chatID,
		Sender:      req.SenderID,
		SenderModel: req.SenderModel,
		Text:        req.Text,
		CreatedAt:   now,
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, err
	}

	// Refresh the thread teaser and bump the receiver's unread counter in
	// one atomic update, so concurrent sends never lose an increment.
	unreadField := fieldUnreadB
	if c.ParticipantBID == req.SenderID {
		unreadField = fieldUnreadA
	}
	updates := map[string]interface{}{
		fieldLastMessageText: req.Text,
		fieldLastMessageAt:   now.Format(time.RFC3339Nano),
		fieldUpdatedAt:       now.Format(time.RFC3339Nano),
	}
	if err := s.chats.UpdateWithAdd(ctx, chatID, updates, unreadField, 1); err != nil {
		return nil, err
	}

	if s.broadcast != nil {
		s.broadcast.PublishRoom(chatID, realtime.EventChatMessage, m)
	}
	return m, nil
}

func (s *service) MarkSeen(ctx context.Context, chatID, userID string) error {
	c, err := s.chats.Get(ctx, chatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(userID) {
		return fmt.Errorf("not a participant of this chat: %w", domain.ErrForbidden)
	}
	field := fieldUnreadA
	if c.ParticipantBID == userID {
		field = fieldUnreadB
	}
	return s.chats.Update(ctx, chatID, map[string]interface{}{
		field:          0,
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
