package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yigit/studentdir/internal/app/models/dto"
	"github.com/yigit/studentdir/internal/pkg/apperrors"
)

// errorMapping is the HTTP rendering of one error kind
type errorMapping struct {
	status  int
	code    dto.ErrorCode
	message string
}

// errorTable covers every apperrors.Kind. Infrastructure kinds share one opaque message.
var errorTable = map[apperrors.Kind]errorMapping{
	apperrors.KindNotFound:           {http.StatusNotFound, dto.ErrorCodeResourceNotFound, apperrors.ErrNotFound.Error()},
	apperrors.KindUnauthorized:       {http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, apperrors.ErrUnauthorized.Error()},
	apperrors.KindDuplicateUsername:  {http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrDuplicateUsername.Error()},
	apperrors.KindAssignmentConflict: {http.StatusBadRequest, dto.ErrorCodeAssignmentConflict, apperrors.ErrAssignmentConflict.Error()},
	apperrors.KindHashing:            {http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	apperrors.KindStorage:            {http.StatusInternalServerError, dto.ErrorCodeDatabaseError, "Internal server error"},
	apperrors.KindInternal:           {http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
}

// StatusFor returns the HTTP status an error is rendered with
func StatusFor(err error) int {
	return mappingFor(err).status
}

func mappingFor(err error) errorMapping {
	m, ok := errorTable[apperrors.KindOf(err)]
	if !ok {
		return errorTable[apperrors.KindInternal]
	}
	return m
}

// HandleAPIError writes the failure envelope for err.
// Causes of infrastructure errors are logged and never sent to the client.
func HandleAPIError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	m := mappingFor(err)

	if !kind.IsDomain() {
		log.Error().Err(err).
			Str("kind", kind.String()).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}

	_ = c.Error(err)
	c.JSON(m.status, dto.NewFailureResponse(dto.NewErrorDetail(m.code, m.message)))
}

// HandleBindingError writes a 400 failure envelope for a request that could not be bound or validated
func HandleBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewFailureResponse(dto.HandleValidationError(err)))
}

// Recovery converts panics into the 500 failure envelope
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			dto.NewFailureResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	})
}
