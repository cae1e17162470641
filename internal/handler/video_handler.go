package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mathclub/club-backend/internal/model"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/mathclub/club-backend/internal/validator"
	"github.com/rs/zerolog"
)

type VideoHandler struct {
	videoService *service.VideoService
	log          zerolog.Logger
}

func NewVideoHandler(videoService *service.VideoService, log zerolog.Logger) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
		log:          log.With().Str("component", "video_handler").Logger(),
	}
}

// Library godoc
// GET /api/v1/videos
func (h *VideoHandler) Library(c *gin.Context) {
	topics, loose, err := h.videoService.Library(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"topics": topics, "lessons": loose})
}

// CreateTopic godoc
// POST /api/v1/admin/videos/topics
func (h *VideoHandler) CreateTopic(c *gin.Context) {
	var req model.CreateTopicRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	topic, err := h.videoService.CreateTopic(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"topic": topic})
}

// CreateLesson godoc
// POST /api/v1/admin/videos/lessons
func (h *VideoHandler) CreateLesson(c *gin.Context) {
	var req model.CreateLessonRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	lesson, err := h.videoService.CreateLesson(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lesson": lesson})
}
