package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
)

// Store persists chat messages. Recent returns at most limit messages in
// ascending id order, with the sender loaded.
type Store interface {
	Append(ctx context.Context, m *Message) error
	Recent(ctx context.Context, key ScopeKey, limit int) ([]Message, error)
}

// Service validates, persists and broadcasts chat messages. A per-scope
// mutex serializes Post so broadcast order matches persistence order
// within a room; disjoint rooms proceed in parallel.
type Service struct {
	store        Store
	registry     *Registry
	historyLimit int
	maxLength    int
	logger       *slog.Logger

	seqMu sync.Mutex
	seq   map[ScopeKey]*sync.Mutex
}

func NewService(store Store, registry *Registry, historyLimit, maxLength int, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		registry:     registry,
		historyLimit: historyLimit,
		maxLength:    maxLength,
		logger:       logger,
		seq:          make(map[ScopeKey]*sync.Mutex),
	}
}

func (s *Service) scopeLock(key ScopeKey) *sync.Mutex {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	mu, ok := s.seq[key]
	if !ok {
		mu = &sync.Mutex{}
		s.seq[key] = mu
	}
	return mu
}

// Post validates the message, appends it to the room's history and
// broadcasts it to current subscribers.
func (s *Service) Post(ctx context.Context, key ScopeKey, sender *auth.User, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return internal.ErrEmptyMessage
	}
	if len([]rune(body)) > s.maxLength {
		return internal.ErrMessageTooLong
	}

	mu := s.scopeLock(key)
	mu.Lock()
	defer mu.Unlock()

	m := &Message{
		Body:         body,
		UserID:       sender.ID,
		CompanyID:    key.CompanyID,
		DepartmentID: key.DepartmentRef(),
	}
	if err := s.store.Append(ctx, m); err != nil {
		s.logger.Error("failed to persist message",
			"error", err,
			"user_id", sender.ID,
			"company_id", key.CompanyID,
			"department_id", key.DepartmentID)
		return err
	}

	frame, err := json.Marshal(OutboundMessage{
		Username: sender.DisplayName(),
		Body:     body,
	})
	if err != nil {
		return err
	}

	s.registry.Broadcast(key, frame)
	return nil
}

// Subscribe joins the subscriber to the room and hands it the backlog.
// It holds the scope's sequence lock for the whole step, the same lock
// Post holds around append and broadcast, so every message is either in
// the history frame or broadcast after the join, never lost between the
// two, and the history frame is the first thing the subscriber receives.
func (s *Service) Subscribe(ctx context.Context, key ScopeKey, sub Subscriber) error {
	mu := s.scopeLock(key)
	mu.Lock()
	defer mu.Unlock()

	history, err := s.History(ctx, key)
	if err != nil {
		return err
	}
	frame, err := encodeHistory(history)
	if err != nil {
		return err
	}

	s.registry.Join(key, sub)
	sub.Enqueue(frame)
	return nil
}

// History returns the room backlog frame: the last messages of the scope
// in ascending order.
func (s *Service) History(ctx context.Context, key ScopeKey) (*HistoryFrame, error) {
	msgs, err := s.store.Recent(ctx, key, s.historyLimit)
	if err != nil {
		return nil, err
	}

	out := make([]OutboundMessage, 0, len(msgs))
	for _, m := range msgs {
		username := ""
		if m.User != nil {
			username = m.User.DisplayName()
		}
		out = append(out, OutboundMessage{Username: username, Body: m.Body})
	}

	return &HistoryFrame{Type: FrameHistory, Messages: out}, nil
}

func encodeHistory(f *HistoryFrame) ([]byte, error) {
	return json.Marshal(f)
}
