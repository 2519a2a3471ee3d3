package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/NLihtnov/banking-notifications/internal/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Period between server-issued heartbeat envelopes.
	heartbeatPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024

	clientBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser client connects from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWebSocket verifies the bearer token from the query string, upgrades
// the connection and bridges it to the user's broker topic.
func (server *Server) handleWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, errorResponse(ErrMissingToken))
		return
	}

	payload, err := server.tokenMaker.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(err))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	topic := fmt.Sprintf("user:%s", payload.UserID())
	clientChan := make(chan protocol.Envelope, clientBufferSize)
	server.broker.Subscribe(topic, clientChan)

	go server.writePump(conn, clientChan)
	server.readPump(conn, topic, clientChan)
}

// writePump forwards broker envelopes to the socket and emits periodic
// heartbeats. It owns all writes on the connection.
func (server *Server) writePump(conn *websocket.Conn, clientChan chan protocol.Envelope) {
	ticker := time.NewTicker(heartbeatPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case env, ok := <-clientChan:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "subscription closed"))
				return
			}
			if err := conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			heartbeat, err := protocol.NewEnvelope(protocol.TypeHeartbeat, struct{}{})
			if err != nil {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(heartbeat); err != nil {
				return
			}
		}
	}
}

// readPump consumes client frames: heartbeat replies and mark-read control
// messages. It unsubscribes the client when the connection dies.
func (server *Server) readPump(conn *websocket.Conn, topic string, clientChan chan protocol.Envelope) {
	defer server.broker.Unsubscribe(topic, clientChan)

	conn.SetReadLimit(maxMessageSize)

	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("topic", topic).Msg("websocket read error")
			}
			return
		}

		switch env.Type {
		case protocol.TypeHeartbeat:
			log.Debug().Str("topic", topic).Msg("heartbeat reply received")

		case protocol.TypeNotification:
			var control protocol.MarkReadPayload
			if err := env.ParsePayload(&control); err != nil {
				log.Warn().Err(err).Msg("bad control payload")
				continue
			}
			if control.Action == "mark_read" {
				log.Info().
					Str("topic", topic).
					Str("notification_id", control.NotificationID).
					Msg("notification marked read")
			}

		default:
			log.Debug().Str("type", env.Type).Msg("unrecognized client frame")
		}
	}
}
