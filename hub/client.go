package hub

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"amora/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection owned by an authenticated user. A user
// with several tabs open holds several clients.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID string
	send   chan []byte
}

func NewClient(conn *websocket.Conn, h *Hub, userID string) *Client {
	return &Client{
		conn:   conn,
		hub:    h,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// UserID returns the id bound to the connection's token.
func (c *Client) UserID() string {
	return c.userID
}

// Send exposes the outbound channel for tests that run the hub without a
// real websocket connection.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// ServeWS authenticates the connect request, upgrades it and hands the
// connection to the hub. The token travels as a query parameter because
// browsers cannot set headers on websocket handshakes.
func ServeWS(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ParseToken(token)
		if err != nil {
			log.Printf("[hub] websocket connection rejected: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[hub] websocket upgrade failed: %v", err)
			return
		}

		client := NewClient(conn, h, claims.UserID)
		h.Register(client)

		go client.writePump()
		go client.readPump()
	}
}

type sendMessagePayload struct {
	ChatID  string          `json:"chatId"`
	Message json.RawMessage `json:"message"`
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[hub] websocket read error: %v", err)
			}
			break
		}

		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("[hub] bad event from user %s: %v", c.userID, err)
			continue
		}

		c.handleEvent(evt)
	}
}

func (c *Client) handleEvent(evt Event) {
	switch evt.Event {
	case EventJoinChat:
		var chatID string
		if err := json.Unmarshal(evt.Data, &chatID); err != nil || chatID == "" {
			return
		}
		c.hub.JoinRoom(c, chatID)

	case EventSendMessage:
		var payload sendMessagePayload
		if err := json.Unmarshal(evt.Data, &payload); err != nil || payload.ChatID == "" {
			return
		}
		// Relay only: persistence already happened through the REST
		// send-message call. Every room member gets the event, the
		// sender's own sockets included.
		c.hub.BroadcastToRoom(payload.ChatID, EventReceiveMessage, payload)

	case EventPing:
		pong, err := json.Marshal(Event{Event: EventPong, Data: json.RawMessage(`{}`)})
		if err != nil {
			return
		}
		select {
		case c.send <- pong:
		default:
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
