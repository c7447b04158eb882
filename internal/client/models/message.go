package models

import (
	"net/url"
	"strconv"
	"time"
)

type Message struct {
	ID             int       `json:"id"`
	Sender         int       `json:"sender"`
	SenderName     string    `json:"sender_name"`
	Receiver       int       `json:"receiver"`
	ReceiverName   string    `json:"receiver_name"`
	Content        string    `json:"message_content"`
	IsRead         bool      `json:"is_read"`
	RelatedMeeting *int      `json:"related_meeting"`
	CreatedAt      time.Time `json:"created_at"`
}

// Between reports whether the message was exchanged by a and b, in either
// direction.
func (m Message) Between(a, b int) bool {
	return (m.Sender == a && m.Receiver == b) || (m.Sender == b && m.Receiver == a)
}

type Notification struct {
	ID          int       `json:"id"`
	Type        string    `json:"notification_type"`
	Content     string    `json:"content"`
	IsRead      bool      `json:"is_read"`
	RelatedID   *int      `json:"related_id"`
	RelatedType string    `json:"related_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Receiver       int    `json:"receiver" validate:"required"`
	Content        string `json:"message_content" validate:"required,max=5000"`
	RelatedMeeting *int   `json:"related_meeting,omitempty"`
}

type MarkAllReadRequest struct {
	SenderID int `json:"sender_id"`
}

// ConversationQuery scopes /messages/ to one counterparty.
func ConversationQuery(userID int) url.Values {
	return url.Values{"user_id": {strconv.Itoa(userID)}}
}
