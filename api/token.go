package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type issueTokenRequest struct {
	UserID string `json:"userId"`
}

type issueTokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
}

// issueToken hands out a demo session token for the push channel. The real
// product issues tokens from its authentication service; the gateway only
// needs something verifiable to gate /ws.
func (server *Server) issueToken(c *gin.Context) {
	var req issueTokenRequest
	// An empty or unparsable body falls back to the demo user.
	_ = c.ShouldBindJSON(&req)
	if req.UserID == "" {
		req.UserID = "1"
	}

	accessToken, payload, err := server.tokenMaker.CreateToken(req.UserID, server.config.TokenDuration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}

	c.JSON(http.StatusOK, issueTokenResponse{
		Token:     accessToken,
		ExpiresAt: payload.ExpiresAt.String(),
	})
}
