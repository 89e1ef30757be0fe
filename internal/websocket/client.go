package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"whisper-feed/internal/broker"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// ControlFrame is what the peer sends to manage its live queries.
type ControlFrame struct {
	Action string    `json:"action"` // "subscribe" or "unsubscribe"
	Topic  string    `json:"topic"`  // one of the broker topic kinds
	ID     uuid.UUID `json:"id"`     // parent entity the topic hangs off
}

// ErrorFrame reports a rejected control frame back to the peer.
type ErrorFrame struct {
	Error string `json:"error"`
}

// Client is a middleman between the websocket connection and the fan-out
// registry. Each subscribed topic gets its own pump goroutine that funnels
// registry snapshots into the shared Send channel.
type Client struct {
	Hub *Hub

	// The user ID this client represents.
	UserID uuid.UUID

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	mu   sync.Mutex
	subs map[broker.Topic]*broker.Subscription
}

func NewClient(hub *Hub, userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		Hub:    hub,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		subs:   make(map[broker.Topic]*broker.Subscription),
	}
}

// ReadPump pumps control frames from the websocket connection into the
// fan-out registry.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		log.Printf("WebSocket Client ReadPump stopped for User %s", c.UserID)
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket read error for User %s: %v", c.UserID, err)
			}
			break
		}
		c.handleControl(message)
	}
}

func (c *Client) handleControl(message []byte) {
	var frame ControlFrame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.sendError("malformed control frame")
		return
	}

	topic, ok := parseTopic(frame)
	if !ok {
		c.sendError("unknown topic")
		return
	}

	switch frame.Action {
	case "subscribe":
		c.subscribe(topic)
	case "unsubscribe":
		c.unsubscribe(topic)
	default:
		c.sendError("unknown action")
	}
}

func parseTopic(frame ControlFrame) (broker.Topic, bool) {
	if frame.ID == uuid.Nil {
		return broker.Topic{}, false
	}
	switch broker.TopicKind(frame.Topic) {
	case broker.TopicCommunityPosts:
		return broker.PostsOf(frame.ID), true
	case broker.TopicPostComments:
		return broker.CommentsOf(frame.ID), true
	case broker.TopicCommentReplies:
		return broker.RepliesOf(frame.ID), true
	}
	return broker.Topic{}, false
}

func (c *Client) subscribe(topic broker.Topic) {
	c.mu.Lock()
	if _, already := c.subs[topic]; already {
		c.mu.Unlock()
		return
	}
	sub := c.Hub.Registry.Subscribe(topic)
	c.subs[topic] = sub
	c.mu.Unlock()

	go c.pump(sub)
	log.Printf("User %s subscribed to %s/%s", c.UserID, topic.Kind, topic.ID)
}

func (c *Client) unsubscribe(topic broker.Topic) {
	c.mu.Lock()
	sub, ok := c.subs[topic]
	if ok {
		delete(c.subs, topic)
	}
	c.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// closeSubscriptions tears down every live query this connection holds.
// Called by the hub on unregister.
func (c *Client) closeSubscriptions() {
	c.mu.Lock()
	subs := make([]*broker.Subscription, 0, len(c.subs))
	for topic, sub := range c.subs {
		subs = append(subs, sub)
		delete(c.subs, topic)
	}
	c.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
}

// pump forwards registry snapshots for one subscription into the outbound
// channel. Exits when the subscription's stream is closed.
func (c *Client) pump(sub *broker.Subscription) {
	for update := range sub.Updates() {
		payload, err := json.Marshal(update)
		if err != nil {
			log.Printf("Failed to encode update for User %s: %v", c.UserID, err)
			continue
		}
		select {
		case c.Send <- payload:
		default:
			log.Printf("Outbound buffer full for client of User %s, dropping update", c.UserID)
		}
	}
}

func (c *Client) sendError(msg string) {
	payload, err := json.Marshal(ErrorFrame{Error: msg})
	if err != nil {
		return
	}
	select {
	case c.Send <- payload:
	default:
	}
}

// WritePump pumps messages from the registry to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		log.Printf("WebSocket Client WritePump stopped for User %s", c.UserID)
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for User %s: %v", c.UserID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket write error (Ping) for User %s: %v", c.UserID, err)
				return
			}
		}
	}
}
