// Package hub implements the in-process real-time relay for chat messages.
// Rooms are keyed by conversation id; a connection may sit in any number of
// rooms at once. Membership changes are serialized through the run loop,
// fan-out iterates a read-locked snapshot of the room.
package hub

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is the JSON envelope carried in both directions on the socket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	EventJoinChat       = "join_chat"
	EventSendMessage    = "send_message"
	EventReceiveMessage = "receive_message"
	EventPing           = "ping"
	EventPong           = "pong"
)

type subscription struct {
	client *Client
	room   string
}

// RoomMessage is a payload addressed to every connection in a room.
type RoomMessage struct {
	Room    string
	Payload []byte
}

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan subscription
	broadcast  chan RoomMessage
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		broadcast:  make(chan RoomMessage),
	}
}

// Run is the hub's event loop. Join/leave are only ever applied here, so
// concurrent connects and disconnects cannot lose updates.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("[hub] client registered (user %s). Total clients: %d", client.userID, total)

		case client := <-h.unregister:
			h.removeClient(client)

		case sub := <-h.join:
			h.mu.Lock()
			if h.clients[sub.client] {
				room := h.rooms[sub.room]
				if room == nil {
					room = make(map[*Client]bool)
					h.rooms[sub.room] = room
				}
				room[sub.client] = true
			}
			h.mu.Unlock()
			log.Printf("[hub] user %s joined chat %s", sub.client.userID, sub.room)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register adds a connection to the hub. No room membership yet.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister drops a connection and removes it from every room.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// JoinRoom subscribes a connection to a conversation's live updates.
func (h *Hub) JoinRoom(c *Client, room string) {
	h.join <- subscription{client: c, room: room}
}

// BroadcastToRoom wraps data in an event envelope and fans it out to every
// connection currently in the room. The sender's own sockets are not
// excluded, so a sender with multiple tabs sees its own message echoed;
// clients dedupe by message id.
func (h *Hub) BroadcastToRoom(room, event string, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("[hub] failed to marshal %s payload: %v", event, err)
		return
	}
	payload, err := json.Marshal(Event{Event: event, Data: raw})
	if err != nil {
		log.Printf("[hub] failed to marshal %s envelope: %v", event, err)
		return
	}
	h.broadcast <- RoomMessage{Room: room, Payload: payload}
}

func (h *Hub) deliver(msg RoomMessage) {
	h.mu.RLock()
	room := h.rooms[msg.Room]
	targets := make([]*Client, 0, len(room))
	for client := range room {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	var failed []*Client
	for _, client := range targets {
		select {
		case client.send <- msg.Payload:
		default:
			// Send buffer full: the connection is stuck, drop it.
			failed = append(failed, client)
		}
	}
	for _, client := range failed {
		h.removeClient(client)
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	for id, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, id)
		}
	}
	total := len(h.clients)
	h.mu.Unlock()

	close(client.send)
	log.Printf("[hub] client unregistered (user %s). Total clients: %d", client.userID, total)
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize reports how many connections are joined to a room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
