package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/service"
	ws "github.com/mathclub/club-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a member's chat thread over WebSocket.
type WSHandler struct {
	messageService *service.MessageService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(messageService *service.MessageService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		messageService: messageService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ChatStream godoc
// WS /ws/v1/messages
// Pushes new thread messages to the member and accepts sends and read
// receipts from them.
func (h *WSHandler) ChatStream(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.messageService.Subscribe(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int("user_id", userID).Msg("Chat subscribe failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live chat unavailable"})
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", userID).Logger()
	wsLog.Info().Msg("Chat connected")

	// gorilla connections allow one concurrent writer; the pump below owns
	// writes and the read loop hands replies to it.
	replies := make(chan any, 8)
	go h.writePump(ctx, cancel, conn, sub.Channel(), replies, wsLog)

	for {
		var raw json.RawMessage
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.reply(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: "invalid payload"})
			continue
		}

		switch env.Action {
		case ws.ActionSend:
			var req ws.SendRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				h.reply(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: "invalid payload"})
				continue
			}
			// The stored message comes back through the subscription.
			if _, err := h.messageService.Send(ctx, userID, model.MessageFromUser, model.SendMessageRequest{
				Text: req.Text, ImageURL: req.ImageURL,
			}); err != nil {
				wsLog.Warn().Err(err).Msg("Chat send failed")
				h.reply(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: err.Error()})
			}
		case ws.ActionSeen:
			if err := h.messageService.MarkSeen(ctx, userID, model.MessageFromUser); err != nil {
				wsLog.Error().Err(err).Msg("Mark seen failed")
				h.reply(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: "mark seen failed"})
				continue
			}
			h.reply(ctx, replies, ws.SeenEvent{Event: ws.EventSeen})
		case ws.ActionPing:
			h.reply(ctx, replies, ws.PongResponse{Event: ws.EventPong})
		default:
			h.reply(ctx, replies, ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(env.Action)})
		}
	}
}

func (h *WSHandler) reply(ctx context.Context, replies chan<- any, v any) {
	select {
	case replies <- v:
	case <-ctx.Done():
	}
}

func (h *WSHandler) writePump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, published <-chan *redis.Message, replies <-chan any, log zerolog.Logger) {
	defer cancel()
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-published:
			if !ok {
				return
			}
			err = ws.WriteRaw(conn, []byte(msg.Payload))
		case v := <-replies:
			err = ws.WriteTyped(conn, v)
		case <-ping.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			log.Debug().Err(err).Msg("Chat write failed")
			_ = conn.Close()
			return
		}
	}
}
