package api

import (
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/event"
	"github.com/NLihtnov/banking-notifications/internal/token"
	"github.com/NLihtnov/banking-notifications/internal/util"
)

// Server is the push-gateway HTTP surface: demo token issuance plus the
// websocket endpoint the channel client connects to.
type Server struct {
	router     *gin.Engine
	config     *util.Config
	tokenMaker token.Maker
	broker     *event.Broker
}

// NewServer creates the gateway server and sets up routing.
func NewServer(config *util.Config, broker *event.Broker) (*Server, error) {
	tokenMaker, err := token.NewJWTMaker(config.TokenSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create token maker: %w", err)
	}
	log.Info().Msg("Token maker created successfully ✅")

	server := &Server{
		config:     config,
		tokenMaker: tokenMaker,
		broker:     broker,
	}

	server.setupRouter()
	return server, nil
}

// setupRouter configures the HTTP server routes.
func (server *Server) setupRouter() {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     server.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	v1 := router.Group("/v1")
	v1.POST("/tokens", server.issueToken)

	router.GET("/ws", server.handleWebSocket)

	server.router = router
}

// Start runs the HTTP server on the given address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

// Handler exposes the router for tests.
func (server *Server) Handler() *gin.Engine {
	return server.router
}
