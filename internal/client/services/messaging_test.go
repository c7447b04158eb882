package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/expertconnect/internal/client/models"
	"github.com/dmitrijs2005/expertconnect/internal/common"
)

func conversation() []models.Message {
	return []models.Message{
		{ID: 1, Sender: 2, Receiver: 1, Content: "hi", IsRead: false},
		{ID: 2, Sender: 1, Receiver: 2, Content: "hello", IsRead: true},
		{ID: 3, Sender: 2, Receiver: 1, Content: "call?", IsRead: true},
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	api := &fakeMessagingAPI{MessagesRet: conversation()}
	svc := NewMessagingService(api, nil)
	ctx := context.Background()
	require.NoError(t, svc.FetchMessages(ctx, 2))

	require.NoError(t, svc.MarkRead(ctx, 1))
	require.NoError(t, svc.MarkRead(ctx, 1))
	require.NoError(t, svc.MarkRead(ctx, 3))

	assert.Equal(t, []int{1}, api.MarkReadCalls, "already-read messages issue no request")
	for _, m := range svc.State().Messages {
		assert.True(t, m.IsRead, "message %d", m.ID)
	}
}

func TestMarkRead_FailureLeavesUnread(t *testing.T) {
	api := &fakeMessagingAPI{MessagesRet: conversation(), MarkErr: common.ErrNetwork}
	svc := NewMessagingService(api, nil)
	require.NoError(t, svc.FetchMessages(context.Background(), 2))

	require.ErrorIs(t, svc.MarkRead(context.Background(), 1), common.ErrNetwork)
	assert.False(t, svc.State().Messages[0].IsRead)
}

func TestOpenConversation_MarksIncomingRead(t *testing.T) {
	api := &fakeMessagingAPI{MessagesRet: conversation()}
	svc := NewMessagingService(api, nil)

	require.NoError(t, svc.OpenConversation(context.Background(), 2, 1))
	assert.Equal(t, 2, api.LastConversation)
	assert.Equal(t, []int{2}, api.MarkAllCalls)
	assert.Zero(t, svc.UnreadCount(1))

	// nothing unread, nothing sent
	api.MessagesRet = svc.State().Messages
	require.NoError(t, svc.OpenConversation(context.Background(), 2, 1))
	assert.Equal(t, []int{2}, api.MarkAllCalls)
}

func TestSend_ValidatesAndRefetches(t *testing.T) {
	api := &fakeMessagingAPI{MessagesRet: conversation()}
	svc := NewMessagingService(api, nil)

	require.ErrorIs(t, svc.Send(context.Background(), models.SendMessageRequest{Receiver: 2}), common.ErrValidation)
	assert.Empty(t, api.SendCalls)

	require.NoError(t, svc.Send(context.Background(), models.SendMessageRequest{Receiver: 2, Content: "see you"}))
	require.Len(t, api.SendCalls, 1)
	assert.Equal(t, 2, api.LastConversation)
	assert.Equal(t, 2, svc.State().CounterpartyID)
}

func TestReceive(t *testing.T) {
	api := &fakeMessagingAPI{MessagesRet: conversation()}
	svc := NewMessagingService(api, nil)

	// no conversation loaded yet
	svc.Receive(models.Message{ID: 9, Sender: 2, Receiver: 1})
	assert.Empty(t, svc.State().Messages)

	require.NoError(t, svc.FetchMessages(context.Background(), 2))

	notified := 0
	cancel := svc.Subscribe(func(MessagingState) { notified++ })
	defer cancel()

	svc.Receive(models.Message{ID: 9, Sender: 2, Receiver: 1, Content: "new"})
	svc.Receive(models.Message{ID: 9, Sender: 2, Receiver: 1, Content: "dup"})
	svc.Receive(models.Message{ID: 10, Sender: 5, Receiver: 1, Content: "other chat"})

	msgs := svc.State().Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, "new", msgs[3].Content)
	assert.Equal(t, 1, notified)
	assert.Equal(t, 2, svc.UnreadCount(1))
}

func TestNotifications(t *testing.T) {
	api := &fakeMessagingAPI{NotesRet: []models.Notification{{ID: 1}, {ID: 2, IsRead: true}, {ID: 3}}}
	svc := NewMessagingService(api, nil)
	ctx := context.Background()

	require.NoError(t, svc.FetchNotifications(ctx))
	assert.Equal(t, 2, svc.UnreadCount(1))

	require.NoError(t, svc.MarkNotificationRead(ctx, 2))
	assert.Empty(t, api.MarkNoteCalls)
	require.NoError(t, svc.MarkNotificationRead(ctx, 1))
	assert.Equal(t, []int{1}, api.MarkNoteCalls)

	require.NoError(t, svc.MarkAllNotificationsRead(ctx))
	assert.Equal(t, 1, api.MarkAllNoteCalls)
	assert.Zero(t, svc.UnreadCount(1))
}
