package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	jwtsvc "repairdesk/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// Origin checks are delegated to the CORS layer in front; the
	// token is the actual gate here.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated HTTP requests into live
// notification sessions.
type WSHandler struct {
	hub *Hub
	jwt *jwtsvc.Service
	log *logrus.Logger
}

func NewWSHandler(hub *Hub, jwt *jwtsvc.Service, log *logrus.Logger) *WSHandler {
	return &WSHandler{hub: hub, jwt: jwt, log: log}
}

// RegisterRoutes mounts the websocket endpoint. Auth happens via
// ?token=JWT at handshake: browsers cannot set headers on websocket
// connects.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws/notifications", h.Handle)
}

func (h *WSHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.hub.Register(userID, conn)
	h.log.WithField("user_id", userID).Info("websocket connected")

	defer func() {
		h.hub.Unregister(userID, conn)
		h.log.WithField("user_id", userID).Info("websocket disconnected")
	}()

	_ = h.hub.SendToConn(userID, conn, EventSocketReady, gin.H{"user_id": userID})

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	go h.pingLoop(conn)

	h.readLoop(conn, userID)
}

// pingLoop keeps the connection alive; it exits when the first ping
// write fails. WriteControl is safe alongside the hub's data writes,
// so pings need no coordination with fan-out.
func (h *WSHandler) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		deadline := time.Now().Add(10 * time.Second)
		if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
			return
		}
	}
}

// readLoop drains client frames. The channel is server-push only:
// inbound payloads are discarded, but the read pump is what notices
// a closed peer.
func (h *WSHandler) readLoop(conn *websocket.Conn, userID int64) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				h.log.WithError(err).WithField("user_id", userID).Warn("websocket read error")
			}
			return
		}
	}
}
