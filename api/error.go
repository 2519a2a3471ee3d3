package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrMissingToken = errors.New("token query parameter is required")
)

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
