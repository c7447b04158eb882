package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/expertconnect/internal/client/client"
	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/client/validation"
	"github.com/dmitrijs2005/expertconnect/internal/logging"
)

type MessagingState struct {
	// CounterpartyID scopes Messages to one conversation; 0 means none loaded.
	CounterpartyID int
	Messages       []models.Message
	Notifications  []models.Notification
	Err            error
}

type MessagingService interface {
	FetchMessages(ctx context.Context, counterpartyID int) error
	// OpenConversation loads the conversation and marks what selfID
	// received from the counterparty as read.
	OpenConversation(ctx context.Context, counterpartyID, selfID int) error
	Send(ctx context.Context, req models.SendMessageRequest) error
	// MarkRead is a no-op when the cached message is already read.
	MarkRead(ctx context.Context, id int) error
	MarkAllRead(ctx context.Context, senderID int) error

	FetchNotifications(ctx context.Context) error
	MarkNotificationRead(ctx context.Context, id int) error
	MarkAllNotificationsRead(ctx context.Context) error

	// Receive merges a message pushed over the realtime socket.
	Receive(msg models.Message)
	UnreadCount(selfID int) int

	State() MessagingState
	Subscribe(fn func(MessagingState)) (cancel func())
}

type messagingService struct {
	api client.MessagingAPI
	log logging.Logger

	mu    sync.Mutex
	state MessagingState
	subs  observers[MessagingState]
}

func NewMessagingService(api client.MessagingAPI, log logging.Logger) MessagingService {
	if log == nil {
		log = logging.Nop()
	}
	return &messagingService{api: api, log: log}
}

func (m *messagingService) State() MessagingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *messagingService) snapshot() MessagingState {
	s := m.state
	s.Messages = append([]models.Message(nil), s.Messages...)
	s.Notifications = append([]models.Notification(nil), s.Notifications...)
	return s
}

func (m *messagingService) Subscribe(fn func(MessagingState)) func() {
	return m.subs.subscribe(fn)
}

func (m *messagingService) set(fn func(s *MessagingState)) {
	m.mu.Lock()
	fn(&m.state)
	snap := m.snapshot()
	m.mu.Unlock()
	m.subs.notify(snap)
}

func (m *messagingService) fail(ctx context.Context, op string, err error) error {
	m.log.Warn(ctx, op+" failed", "error", err)
	m.set(func(s *MessagingState) { s.Err = err })
	return err
}

func (m *messagingService) FetchMessages(ctx context.Context, counterpartyID int) error {
	msgs, err := m.api.Messages(ctx, counterpartyID)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "fetch messages", fmt.Errorf("fetch messages error: %w", err))
	}

	m.set(func(s *MessagingState) {
		s.CounterpartyID = counterpartyID
		s.Messages = msgs
		s.Err = nil
	})
	return nil
}

func (m *messagingService) OpenConversation(ctx context.Context, counterpartyID, selfID int) error {
	if err := m.FetchMessages(ctx, counterpartyID); err != nil {
		return err
	}

	m.mu.Lock()
	unread := false
	for _, msg := range m.state.Messages {
		if msg.Sender == counterpartyID && msg.Receiver == selfID && !msg.IsRead {
			unread = true
			break
		}
	}
	m.mu.Unlock()

	if !unread {
		return nil
	}
	return m.MarkAllRead(ctx, counterpartyID)
}

func (m *messagingService) Send(ctx context.Context, req models.SendMessageRequest) error {
	if err := validation.Struct(req); err != nil {
		return m.fail(ctx, "send message", err)
	}

	if _, err := m.api.Send(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return m.fail(ctx, "send message", fmt.Errorf("send message error: %w", err))
	}

	return m.FetchMessages(ctx, req.Receiver)
}

func (m *messagingService) MarkRead(ctx context.Context, id int) error {
	m.mu.Lock()
	read := false
	for _, msg := range m.state.Messages {
		if msg.ID == id && msg.IsRead {
			read = true
			break
		}
	}
	m.mu.Unlock()
	if read {
		return nil
	}

	err := m.api.MarkRead(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "mark read", fmt.Errorf("mark message %d read error: %w", id, err))
	}

	m.set(func(s *MessagingState) {
		for i := range s.Messages {
			if s.Messages[i].ID == id {
				s.Messages[i].IsRead = true
			}
		}
		s.Err = nil
	})
	return nil
}

func (m *messagingService) MarkAllRead(ctx context.Context, senderID int) error {
	err := m.api.MarkAllRead(ctx, senderID)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "mark all read", fmt.Errorf("mark messages from %d read error: %w", senderID, err))
	}

	m.set(func(s *MessagingState) {
		for i := range s.Messages {
			if s.Messages[i].Sender == senderID {
				s.Messages[i].IsRead = true
			}
		}
		s.Err = nil
	})
	return nil
}

func (m *messagingService) FetchNotifications(ctx context.Context) error {
	list, err := m.api.Notifications(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "fetch notifications", fmt.Errorf("fetch notifications error: %w", err))
	}

	m.set(func(s *MessagingState) {
		s.Notifications = list
		s.Err = nil
	})
	return nil
}

func (m *messagingService) MarkNotificationRead(ctx context.Context, id int) error {
	m.mu.Lock()
	read := false
	for _, n := range m.state.Notifications {
		if n.ID == id && n.IsRead {
			read = true
			break
		}
	}
	m.mu.Unlock()
	if read {
		return nil
	}

	err := m.api.MarkNotificationRead(ctx, id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "mark notification read", fmt.Errorf("mark notification %d read error: %w", id, err))
	}

	m.set(func(s *MessagingState) {
		for i := range s.Notifications {
			if s.Notifications[i].ID == id {
				s.Notifications[i].IsRead = true
			}
		}
		s.Err = nil
	})
	return nil
}

func (m *messagingService) MarkAllNotificationsRead(ctx context.Context) error {
	err := m.api.MarkAllNotificationsRead(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return m.fail(ctx, "mark all notifications read", fmt.Errorf("mark notifications read error: %w", err))
	}

	m.set(func(s *MessagingState) {
		for i := range s.Notifications {
			s.Notifications[i].IsRead = true
		}
		s.Err = nil
	})
	return nil
}

func (m *messagingService) Receive(msg models.Message) {
	m.mu.Lock()
	cp := m.state.CounterpartyID
	if cp == 0 || (msg.Sender != cp && msg.Receiver != cp) {
		m.mu.Unlock()
		return
	}
	for _, existing := range m.state.Messages {
		if existing.ID == msg.ID {
			m.mu.Unlock()
			return
		}
	}
	m.state.Messages = append(m.state.Messages, msg)
	snap := m.snapshot()
	m.mu.Unlock()

	m.subs.notify(snap)
}

func (m *messagingService) UnreadCount(selfID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, note := range m.state.Notifications {
		if !note.IsRead {
			n++
		}
	}
	for _, msg := range m.state.Messages {
		if msg.Receiver == selfID && !msg.IsRead {
			n++
		}
	}
	return n
}
