package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/prelimplanner/internal/app/models/dto"
	"github.com/yigit/prelimplanner/internal/pkg/apperrors"
	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// HandleAPIError writes the error envelope for err with a status chosen from
// its kind and aborts the request.
func HandleAPIError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("requestId", c.GetString(RequestIDKey)).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

func errorResponse(err error) (int, *dto.ErrorResponse) {
	// Exam type first, it would otherwise classify as a plain validation error.
	if errors.Is(err, apperrors.ErrUnknownExamType) {
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeUnknownExamType, err.Error())
	}
	if errors.Is(err, apperrors.ErrTableNotFound) {
		return http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeTableNotFound, err.Error())
	}

	kind, _ := apperrors.KindOf(err)
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidationFailed, err.Error())
	case apperrors.KindNotFound:
		return http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeResourceNotFound, err.Error())
	case apperrors.KindFetch:
		return http.StatusBadGateway, dto.NewErrorResponse(dto.ErrorCodeFetchFailed, err.Error())
	case apperrors.KindParse:
		body := dto.NewErrorResponse(dto.ErrorCodeParseFailed, err.Error())
		var perr *apperrors.ParseError
		if errors.As(err, &perr) {
			body.WithLine(perr.Line)
		}
		return http.StatusUnprocessableEntity, body
	case apperrors.KindSchema:
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeSchemaError, "Failed to provision exam table")
	case apperrors.KindPersistence:
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeDatabaseError, "Database operation failed")
	}
	return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternalServer, "Internal server error")
}
