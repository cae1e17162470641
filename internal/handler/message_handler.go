package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/middleware"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/rs/zerolog"
)

// MessageHandler serves member/admin chat threads over HTTP.
type MessageHandler struct {
	messageService *service.MessageService
	log            zerolog.Logger
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *service.MessageService, log zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		log:            log.With().Str("component", "message_handler").Logger(),
	}
}

// Thread godoc
// GET /api/v1/messages
// Returns the member's thread and marks admin replies as read.
func (h *MessageHandler) Thread(c *gin.Context) {
	h.thread(c, middleware.UserID(c), model.MessageFromUser)
}

// Send godoc
// POST /api/v1/messages
func (h *MessageHandler) Send(c *gin.Context) {
	h.send(c, middleware.UserID(c), model.MessageFromUser)
}

// Threads godoc
// GET /api/v1/admin/messages
// Lists member threads with unread counts.
func (h *MessageHandler) Threads(c *gin.Context) {
	threads, err := h.messageService.Threads(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if threads == nil {
		threads = []model.ThreadSummary{}
	}
	response.Success(c, http.StatusOK, gin.H{"threads": threads})
}

// AdminThread godoc
// GET /api/v1/admin/messages/:user_id
func (h *MessageHandler) AdminThread(c *gin.Context) {
	userID, ok := parseIntParam(c, "user_id")
	if !ok {
		return
	}
	h.thread(c, userID, model.MessageFromAdmin)
}

// AdminSend godoc
// POST /api/v1/admin/messages/:user_id
func (h *MessageHandler) AdminSend(c *gin.Context) {
	userID, ok := parseIntParam(c, "user_id")
	if !ok {
		return
	}
	h.send(c, userID, model.MessageFromAdmin)
}

func (h *MessageHandler) thread(c *gin.Context, userID int, reader model.MessageSender) {
	msgs, err := h.messageService.Thread(c.Request.Context(), userID, reader)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *MessageHandler) send(c *gin.Context, userID int, from model.MessageSender) {
	var req model.SendMessageRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), userID, from, req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}
