// Package notify defines the event-stream types services publish
// through the SSE hub: payout requests awaiting review, dispute updates,
// escrow settlements.
package notify

import (
	"encoding/json"
	"time"
)

// Message is one event pushed to connected clients.
type Message struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(event string, data json.RawMessage) *Message {
	return &Message{
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Client is an active stream subscriber.
type Client struct {
	ClientID    string
	UserID      *string
	Groups      []string
	MessageChan chan *Message
}

// NewClient creates a subscriber with a buffered channel; slow consumers
// drop messages rather than block publishers.
func NewClient(clientID string, userID *string, groups []string) *Client {
	return &Client{
		ClientID:    clientID,
		UserID:      userID,
		Groups:      groups,
		MessageChan: make(chan *Message, 100),
	}
}

func (c *Client) Close() {
	close(c.MessageChan)
}

// Hub is the publishing side of the event stream.
type Hub interface {
	BroadcastToUser(userID string, msg *Message)
	BroadcastToGroup(group string, msg *Message)
}

// NopHub discards all messages; used in tests.
type NopHub struct{}

func (NopHub) BroadcastToUser(string, *Message)  {}
func (NopHub) BroadcastToGroup(string, *Message) {}
