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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TestHandler serves the test catalog, the solve page and submissions.
type TestHandler struct {
	testService    *service.TestService
	scoringService *service.ScoringService
	adminService   *service.AdminService
	log            zerolog.Logger
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(
	testService *service.TestService,
	scoringService *service.ScoringService,
	adminService *service.AdminService,
	log zerolog.Logger,
) *TestHandler {
	return &TestHandler{
		testService:    testService,
		scoringService: scoringService,
		adminService:   adminService,
		log:            log.With().Str("component", "test_handler").Logger(),
	}
}

// ─── Member ─────────────────────────────────────────────────────────

// List godoc
// GET /api/v1/tests
// Lists tests with the member's best score on each.
func (h *TestHandler) List(c *gin.Context) {
	tests, err := h.testService.ListForUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Open godoc
// GET /api/v1/tests/:id?mode=timed|once
// Returns the solve page data once the attempt gate admits the member.
func (h *TestHandler) Open(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.scoringService.Open(c.Request.Context(), middleware.UserID(c), id, c.Query("mode"))
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Submit godoc
// POST /api/v1/tests/:id/submit
// Grades the submitted answers and records the attempt.
func (h *TestHandler) Submit(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.scoringService.Submit(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// LatestResult godoc
// GET /api/v1/tests/:id/result
func (h *TestHandler) LatestResult(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.testService.LatestResult(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ─── Admin ──────────────────────────────────────────────────────────

// AdminList godoc
// GET /api/v1/admin/tests
func (h *TestHandler) AdminList(c *gin.Context) {
	tests, err := h.testService.ListAll(c.Request.Context())
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	if tests == nil {
		tests = []model.Test{}
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// AdminGet godoc
// GET /api/v1/admin/tests/:id
// Returns a test including its answer key.
func (h *TestHandler) AdminGet(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.testService.Get(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Create godoc
// POST /api/v1/admin/tests
func (h *TestHandler) Create(c *gin.Context) {
	var req model.UpsertTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}

	h.log.Info().Str("test_id", test.ID.String()).Msg("Test created")
	response.Success(c, http.StatusCreated, gin.H{"test": test})
}

// Update godoc
// PUT /api/v1/admin/tests/:id
func (h *TestHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req model.UpsertTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"test": test})
}

// Delete godoc
// DELETE /api/v1/admin/tests/:id
func (h *TestHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), id); err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Export godoc
// GET /api/v1/admin/tests/:id/export
// Downloads every result of a test as an xlsx workbook.
func (h *TestHandler) Export(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	data, filename, err := h.adminService.ExportTestResults(c.Request.Context(), id)
	if err != nil {
		failWith(c, h.log, err)
		return
	}
	response.Attachment(c, filename, xlsxContentType, data)
}
