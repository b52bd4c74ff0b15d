package api

import (
	"net/http"

	"groundslot/internal/apperror"
	"groundslot/internal/logger"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Code  string `json:"code,omitempty" example:"SLOT_LOCKED"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondError maps an error from a service to its HTTP status and body.
func RespondError(c *gin.Context, err error) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case apperror.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: messageOf(err)})
	case apperror.KindConflict:
		c.JSON(http.StatusConflict, ErrorResponse{Error: messageOf(err), Code: apperror.CodeOf(err)})
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func messageOf(err error) string {
	if appErr, ok := err.(*apperror.Error); ok {
		return appErr.Message
	}
	return err.Error()
}
