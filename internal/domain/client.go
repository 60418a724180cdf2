package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSessionClosed    = errors.New("session closed")
)

const (
	ClientKeyHeader = "X-Client-Key"
)

type messageType byte

const (
	CommandMessage = messageType(iota)
	SnapshotMessage
	StatusMessage
	CueMessage
	WelcomeMessage
)

var messageTypeNames = [...]string{"command", "snapshot", "status", "cue", "welcome"}

func (t messageType) String() string {
	if int(t) >= len(messageTypeNames) {
		return "unknown"
	}
	return messageTypeNames[t]
}

type Message struct {
	Type    messageType
	Payload any
}

type CommandPayload struct {
	Command Command
}

type StatusPayload struct {
	Text string
}

type WelcomePayload struct {
	SessionId string
	Resumed   bool
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Key() string
	Close()
}
