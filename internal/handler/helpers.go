package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/pkg/errcode"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/pkg/response"
)

// handleError maps the service error taxonomy onto HTTP. External-service
// failures come back as bad-gateway style codes so callers can tell a retry
// candidate from a bad request.
func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case apperr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case apperr.IsInvalid(err):
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case apperr.IsServiceFailure(err):
		code := errcode.ErrInternal
		switch {
		case errors.Is(err, apperr.ErrEmbeddingService):
			code = errcode.ErrEmbeddingService
		case errors.Is(err, apperr.ErrTranscriptionService):
			code = errcode.ErrTranscriptionService
		case errors.Is(err, apperr.ErrGenerationService):
			code = errcode.ErrGenerationService
		}
		response.Error(c, http.StatusBadGateway, code, "external service failed")
	default:
		response.Error(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
