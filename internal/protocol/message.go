package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType is the closed enumeration of envelope types shared by the
// encode and decode paths.
type MessageType string

const (
	MsgInput      MessageType = "INPUT"
	MsgSnapshot   MessageType = "SNAPSHOT"
	MsgJoinGame   MessageType = "JOIN_GAME"
	MsgGameJoined MessageType = "GAME_JOINED"
	MsgUnknown    MessageType = "UNKNOWN"
)

// ParseMessageType maps a wire string onto the enum, with an explicit
// unknown fallback rather than silent string comparison at call sites.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case MsgInput, MsgSnapshot, MsgJoinGame, MsgGameJoined:
		return MessageType(s)
	default:
		return MsgUnknown
	}
}

// Envelope is the outer wire record. Payload is itself the JSON encoding
// of the typed record matching MessageType. A receiver must not assume the
// payload is valid without a structured parse; unparseable payloads are
// dropped, not fatal.
type Envelope struct {
	SenderID    string `json:"senderId"`
	MessageType string `json:"messageType"`
	Timestamp   int64  `json:"timestamp"`
	Payload     string `json:"payload"`
}

// Encode builds a framed-ready envelope body: marshals payload, wraps it.
func Encode(senderID string, mt MessageType, payload any) ([]byte, error) {
	inner, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", mt, err)
	}
	env := Envelope{
		SenderID:    senderID,
		MessageType: string(mt),
		Timestamp:   time.Now().UnixMilli(),
		Payload:     string(inner),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope parses the outer envelope only.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}
	return &env, nil
}

// DecodePayload parses the inner typed record of an envelope.
func DecodePayload[T any](env *Envelope) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(env.Payload), &v); err != nil {
		return v, fmt.Errorf("parse %s payload: %w", env.MessageType, err)
	}
	return v, nil
}
