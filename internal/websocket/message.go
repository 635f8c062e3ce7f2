package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
)

type MessageType string

const (
	// Client to Server
	MessageTypePing MessageType = "PING"

	// Server to Client
	MessageTypeConnected     MessageType = "CONNECTED"
	MessageTypePong          MessageType = "PONG"
	MessageTypeAlbumsChanged MessageType = "ALBUMS_CHANGED"
	MessageTypeError         MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		payloadBytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = payloadBytes
	}
	return msg, nil
}

type ConnectedPayload struct {
	UserID string `json:"userId"`
}

// AlbumsChangedPayload tells a client to refetch its collection.
type AlbumsChangedPayload struct {
	Kind    domain.ChangeKind `json:"kind"`
	AlbumID *uuid.UUID        `json:"albumId,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
