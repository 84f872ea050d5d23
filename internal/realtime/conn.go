package realtime

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hackhub-dev/hackhub-backend/internal/auth"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer in front.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Conn is one live websocket connection and its channel registrations.
type Conn struct {
	ws         *websocket.Conn
	send       chan Event
	identity   auth.Identity
	subscribed []string
}

// ServeWS authenticates the request, upgrades it, subscribes the connection
// to its identity and organization channels, and starts the pumps.
func ServeWS(hub *Hub, verifier auth.Verifier, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		identity, err := verifier.Verify(r.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, auth.ErrIdentityNotFound) {
				status = http.StatusForbidden
			}
			http.Error(w, err.Error(), status)
			return
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := &Conn{
			ws:       ws,
			send:     make(chan Event, sendBuffer),
			identity: *identity,
		}
		hub.Subscribe(c, UserChannel(identity.UserID), OrgChannel(identity.OrganizationID))
		logger.Info("websocket connected",
			"user_id", identity.UserID, "organization_id", identity.OrganizationID)

		go c.writePump(hub, logger)
		go c.readPump(hub, logger)
	}
}

// bearerToken pulls the credential from the Authorization header or, for
// browser websocket clients that cannot set headers, the token query param.
func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return r.URL.Query().Get("token")
}

// writePump serializes events to the socket and keeps the connection alive
// with pings. Exits when the send channel closes or a write fails.
func (c *Conn) writePump(hub *Hub, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(event); err != nil {
				logger.Debug("websocket write failed", "user_id", c.identity.UserID, "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound frames (the channel is publish-only) and tears
// the connection down when the peer goes away.
func (c *Conn) readPump(hub *Hub, logger *slog.Logger) {
	defer func() {
		hub.remove(c)
		close(c.send)
		c.ws.Close()
		logger.Info("websocket disconnected", "user_id", c.identity.UserID)
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}
