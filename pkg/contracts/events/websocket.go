// Package events contains the event contract pushed to WebSocket subscribers
// when the dataset changes.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Connection messages
	MessageTypeConnect MessageType = "connect"

	// Dataset messages
	MessageTypeDatasetLoaded      MessageType = "dataset:loaded"
	MessageTypeDatasetInvalidated MessageType = "dataset:invalidated"
	MessageTypeDatasetUploaded    MessageType = "dataset:uploaded"
	MessageTypeDatasetCleared     MessageType = "dataset:cleared"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// DatasetSnapshot describes the dataset a message refers to. Clients
// refetch their views when they receive one.
type DatasetSnapshot struct {
	Key     string   `json:"key"`
	Status  string   `json:"status,omitempty"`
	Origin  string   `json:"origin,omitempty"`
	Name    string   `json:"name,omitempty"`
	Rows    int      `json:"rows,omitempty"`
	Missing []string `json:"missing,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// ConnectionInfo is the payload of the connect message.
type ConnectionInfo struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// NewMessage stamps a message of type t carrying data.
func NewMessage(t MessageType, data interface{}) WebSocketMessage {
	return WebSocketMessage{
		BaseMessage: BaseMessage{Type: t, Timestamp: time.Now().UTC()},
		Data:        data,
	}
}
