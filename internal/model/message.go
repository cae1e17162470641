package model

import "time"

// MessageSender identifies which side of a thread wrote a message.
type MessageSender string

const (
	MessageFromUser  MessageSender = "user"
	MessageFromAdmin MessageSender = "admin"
)

// Message is one entry in a member's thread with the admin.
type Message struct {
	ID          int64         `json:"id"`
	UserID      int           `json:"user_id"`
	From        MessageSender `json:"from"`
	Text        string        `json:"text"`
	ImageURL    *string       `json:"image_url,omitempty"`
	SeenByUser  bool          `json:"seen_by_user"`
	SeenByAdmin bool          `json:"seen_by_admin"`
	CreatedAt   time.Time     `json:"created_at"`
}

// SendMessageRequest carries text, an image link, or both.
type SendMessageRequest struct {
	Text     string `json:"text" binding:"max=4000"`
	ImageURL string `json:"image_url" binding:"omitempty,url,max=1024"`
}

// ThreadSummary is an admin inbox row.
type ThreadSummary struct {
	UserID        int       `json:"user_id"`
	UserName      string    `json:"user_name"`
	UserEmail     string    `json:"user_email"`
	Unread        int       `json:"unread"`
	LastMessageAt time.Time `json:"last_message_at"`
}
