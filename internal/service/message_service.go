package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mathclub/club-backend/internal/config"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/repository"
	ws "github.com/mathclub/club-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrEmptyMessage = errors.New("message needs text or an image")

// MessageService handles member/admin chat threads and pushes new
// messages to live connections over Redis PubSub.
type MessageService struct {
	messages MessageStore
	users    UserStore
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewMessageService creates a new MessageService. rdb may be nil, which
// disables live push.
func NewMessageService(messages MessageStore, users UserStore, rdb *redis.Client, log zerolog.Logger) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		rdb:      rdb,
		log:      log.With().Str("component", "message_service").Logger(),
	}
}

// Send stores a message in userID's thread written by from.
func (s *MessageService) Send(ctx context.Context, userID int, from model.MessageSender, req model.SendMessageRequest) (*model.Message, error) {
	text := strings.TrimSpace(req.Text)
	image := strings.TrimSpace(req.ImageURL)
	if text == "" && image == "" {
		return nil, ErrEmptyMessage
	}

	if from == model.MessageFromAdmin {
		if _, err := s.users.GetByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
	}

	m := &model.Message{UserID: userID, From: from, Text: text}
	if image != "" {
		m.ImageURL = &image
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}

	s.publish(ctx, m)
	return m, nil
}

// Thread returns userID's thread and marks the other side's messages as
// seen by reader.
func (s *MessageService) Thread(ctx context.Context, userID int, reader model.MessageSender) ([]model.Message, error) {
	if err := s.messages.MarkSeen(ctx, userID, reader); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListThread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}

// MarkSeen flags the other side's messages as read.
func (s *MessageService) MarkSeen(ctx context.Context, userID int, reader model.MessageSender) error {
	return s.messages.MarkSeen(ctx, userID, reader)
}

// Threads lists every member thread with its unread count for the admin.
func (s *MessageService) Threads(ctx context.Context) ([]model.ThreadSummary, error) {
	return s.messages.ListThreads(ctx)
}

// Subscribe opens a PubSub subscription on userID's chat channel.
// The caller must close it.
func (s *MessageService) Subscribe(ctx context.Context, userID int) (*redis.PubSub, error) {
	if s.rdb == nil {
		return nil, errors.New("live chat is not configured")
	}
	sub := s.rdb.Subscribe(ctx, config.CacheKey.UserChatChannel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}
	return sub, nil
}

func (s *MessageService) publish(ctx context.Context, m *model.Message) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(ws.MessageEvent{Event: ws.EventMessage, Message: *m})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.UserChatChannel(m.UserID), payload).Err(); err != nil {
		s.log.Warn().Err(err).Int("user_id", m.UserID).Msg("Failed to publish chat message")
	}
}
