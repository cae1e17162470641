package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mathclub/club-backend/internal/grading"
	"github.com/mathclub/club-backend/internal/response"
	"github.com/mathclub/club-backend/internal/service"
	"github.com/rs/zerolog"
)

type errMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// serviceErrors maps service sentinels to HTTP responses. Order matters
// only where errors wrap one another.
var serviceErrors = []errMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrInvalidAdminCode, http.StatusUnauthorized, response.ErrInvalidAdminCode},
	{service.ErrSessionInvalidated, http.StatusUnauthorized, response.ErrSessionInvalidated},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},

	{service.ErrUserNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrTestNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrSeasonNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrRewardNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrTopicNotFound, http.StatusNotFound, response.ErrNotFound},

	{service.ErrInvalidMode, http.StatusBadRequest, response.ErrInvalidMode},
	{service.ErrAlreadySolved, http.StatusConflict, response.ErrAlreadySolved},
	{service.ErrOnceNotAllowed, http.StatusForbidden, response.ErrOnceNotAllowed},
	{grading.ErrNotReady, http.StatusConflict, response.ErrTestNotReady},
	{grading.ErrEmptySubmission, http.StatusBadRequest, response.ErrEmptySubmission},
	{grading.ErrStoredDataCorrupt, http.StatusInternalServerError, response.ErrStoredDataCorrupt},

	{service.ErrInsufficientStars, http.StatusConflict, response.ErrInsufficientStars},
	{service.ErrRewardInactive, http.StatusConflict, response.ErrRewardUnavailable},
	{service.ErrWindowStillOpen, http.StatusConflict, response.ErrWindowOpen},
	{service.ErrNotStarTest, http.StatusBadRequest, response.ErrValidation},

	{service.ErrEmptyMessage, http.StatusBadRequest, response.ErrEmptyMessage},
}

// failWith writes the response for a service error. Authoring failures keep
// their own message; unknown errors are logged and reported generically.
func failWith(c *gin.Context, log zerolog.Logger, err error) {
	var verr *grading.ValidationError
	if errors.As(err, &verr) {
		fields := map[string]string{"rule": string(verr.Rule)}
		if verr.Index > 0 {
			fields["index"] = strconv.Itoa(verr.Index)
		}
		if verr.Line != "" {
			fields["line"] = verr.Line
		}
		response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrAuthoringInvalid, verr.Message, fields)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
			}
			response.Fail(c, m.status, m.code)
			return
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func parseIntParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
