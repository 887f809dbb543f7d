package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/game"
	"github.com/gorilla/websocket"
)

// Hub tracks connected players and fans events out to them. It implements
// game.Notifier so the coordinator never touches a socket.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	id   string
	room string // room code the connection currently belongs to
	send chan outboundMessage
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ToPlayer sends an event to one connection. Unknown ids are dropped; the
// player may have disconnected between scheduling and delivery.
func (h *Hub) ToPlayer(playerID, event string, payload any) {
	h.mu.RLock()
	c, ok := h.clients[playerID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	c.deliver(outboundMessage{Type: event, Payload: payload})
}

// ToRoom broadcasts an event to every connection assigned to the room.
func (h *Hub) ToRoom(roomCode, event string, payload any) {
	msg := outboundMessage{Type: event, Payload: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if strings.EqualFold(c.room, roomCode) {
			c.deliver(msg)
		}
	}
}

// deliver is non-blocking: a client that cannot keep up loses the frame
// rather than stalling the broadcast for the whole room.
func (c *client) deliver(msg outboundMessage) {
	select {
	case c.send <- msg:
	default:
		log.Printf("ws client %s send buffer full, dropping %s", c.id, msg.Type)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
}

func (h *Hub) setRoom(id, room string) {
	h.mu.Lock()
	if c, ok := h.clients[id]; ok {
		c.room = room
	}
	h.mu.Unlock()
}

// WSHandler upgrades HTTP requests to websockets and routes inbound player
// actions into the session coordinator.
type WSHandler struct {
	hub      *Hub
	coord    *game.Coordinator
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, coord *game.Coordinator) *WSHandler {
	return &WSHandler{
		hub:   hub,
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type createRoomPayload struct {
	HostName string               `json:"hostName"`
	Settings domain.SettingsPatch `json:"settings"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type updateSettingsPayload struct {
	RoomCode string               `json:"roomCode"`
	Settings domain.SettingsPatch `json:"settings"`
}

type roomActionPayload struct {
	RoomCode string `json:"roomCode"`
}

type submitAnswerPayload struct {
	RoomCode string `json:"roomCode"`
	Answer   string `json:"answer"`
}

// ServeWS runs one player connection: a writer goroutine drains the send
// queue while the read loop dispatches actions until the socket closes.
func (w *WSHandler) ServeWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := w.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := &client{
		id:   newConnID(),
		send: make(chan outboundMessage, 32),
	}
	w.hub.register(c)
	log.Printf("player connected: %s", c.id)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		w.dispatch(r, c, inbound)
	}

	log.Printf("player disconnected: %s", c.id)
	w.hub.unregister(c.id)
	w.coord.Disconnect(c.id)
	close(c.send)
	<-writerDone
}

func (w *WSHandler) dispatch(r *http.Request, c *client, inbound inboundMessage) {
	switch inbound.Type {
	case "createRoom":
		var payload createRoomPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		code, err := w.coord.CreateRoom(c.id, payload.HostName, payload.Settings)
		if err != nil {
			w.sendError(c, err)
			return
		}
		w.hub.setRoom(c.id, code)

	case "joinRoom":
		var payload joinRoomPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		// Assign the room before joining so the joiner sees the playerJoined
		// broadcast too; roll back on rejection.
		code := strings.ToUpper(strings.TrimSpace(payload.RoomCode))
		w.hub.setRoom(c.id, code)
		if err := w.coord.JoinRoom(c.id, code, payload.PlayerName); err != nil {
			w.hub.setRoom(c.id, "")
			w.sendError(c, err)
		}

	case "updateSettings":
		var payload updateSettingsPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		if err := w.coord.UpdateSettings(c.id, payload.RoomCode, payload.Settings); err != nil {
			w.sendError(c, err)
		}

	case "startGame":
		var payload roomActionPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		if err := w.coord.StartGame(r.Context(), c.id, payload.RoomCode); err != nil {
			w.sendError(c, err)
		}

	case "submitAnswer":
		var payload submitAnswerPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		// Duplicate or out-of-state submissions are dropped silently.
		if outcome := w.coord.SubmitAnswer(c.id, payload.RoomCode, payload.Answer); outcome != domain.SubmitAccepted {
			log.Printf("answer from %s dropped: %v", c.id, outcome.Err())
		}

	case "leaveRoom":
		var payload roomActionPayload
		if !w.decode(c, inbound.Payload, &payload) {
			return
		}
		// Detach first so the departure broadcast skips the leaver.
		w.hub.setRoom(c.id, "")
		w.coord.LeaveRoom(c.id, payload.RoomCode)

	default:
		c.deliver(outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
	}
}

func (w *WSHandler) decode(c *client, raw json.RawMessage, into any) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		c.deliver(outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid payload"}})
		return false
	}
	return true
}

func (w *WSHandler) sendError(c *client, err error) {
	c.deliver(outboundMessage{Type: "error", Payload: errorPayload{Message: err.Error()}})
}

func newConnID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic("conn id entropy unavailable: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
