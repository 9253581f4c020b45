package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"bacheliers/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SnapshotFunc returns the current status of an identity, sent once on connect.
// A nil payload sends nothing.
type SnapshotFunc func(c *gin.Context, identity string) interface{}

// UpgradeStatusWS streams payment status changes to the authenticated caller.
// The token travels in the query string since browsers cannot set headers on WebSocket requests.
func UpgradeStatusWS(verifier auth.Verifier, hub *Hub, snapshot SnapshotFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}
		principal, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		// the server's read/write timeouts still apply to the hijacked connection
		conn.SetReadDeadline(time.Time{})
		conn.SetWriteDeadline(time.Time{})

		client := &Client{
			Identity: principal.Identity,
			Send:     make(chan []byte, 16),
		}
		hub.Register(client)
		defer client.Close()

		if snapshot != nil {
			if payload := snapshot(c, principal.Identity); payload != nil {
				if data, err := json.Marshal(payload); err == nil {
					client.trySend(data)
				}
			}
		}
		go writePump(client, conn)
		readPump(conn)
	}
}

// writePump copies messages from client.Send to the connection.
func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
