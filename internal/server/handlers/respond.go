package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kukufarm/kukutrack/internal/domain/models"
)

// respondError translates a typed domain fault into the HTTP answer. Every
// failure body carries a message field, matching the backend contract the
// original UI already knows how to render.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": validationErr.Error(), "fields": validationErr.Fields})
		return
	}

	if errors.Is(err, models.ErrAuthenticationRequired) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		return
	}

	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	}

	var remoteErr *models.RemoteError
	if errors.As(err, &remoteErr) {
		message := remoteErr.Message
		if message == "" {
			message = remoteErr.Error()
		}
		c.JSON(http.StatusBadGateway, gin.H{"message": message})
		return
	}

	var netErr *models.NetworkError
	if errors.As(err, &netErr) {
		c.JSON(http.StatusGatewayTimeout, gin.H{"message": "backend unreachable, try again"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}
