package websocket

import "github.com/mathclub/club-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionSend Action = "send"
	ActionSeen Action = "seen"
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// SendRequest posts a message into the member's thread.
type SendRequest struct {
	Action   Action `json:"action"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventMessage Event = "message"
	EventSeen    Event = "seen"
	EventPong    Event = "pong"
)

// MessageEvent carries a new thread message. It is also the payload
// published on the member's chat channel.
type MessageEvent struct {
	Event   Event         `json:"event"`
	Message model.Message `json:"message"`
}

// SeenEvent acknowledges that the thread was marked as read.
type SeenEvent struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
