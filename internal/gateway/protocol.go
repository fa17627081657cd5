// Package gateway is the command/event boundary between the voxd core and
// UI clients, spoken as JSON lines over a unix socket.
package gateway

import "time"

// Request is one UI command.
type Request struct {
	Command string `json:"command"`
	// Path is the artifact reference for transcribe commands.
	Path string `json:"path,omitempty"`
	// Payload is a base64 data-URL for inline transcription.
	Payload string `json:"payload,omitempty"`
}

// Response is the terminal reply for one command. Every command resolves to
// a response, including the error case.
type Response struct {
	OK        bool   `json:"ok"`
	Recording bool   `json:"recording,omitempty"`
	Path      string `json:"path,omitempty"`
	Text      string `json:"text,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}

// EventType identifies one asynchronous notification kind.
type EventType string

const (
	EventTranscriptionStarted   EventType = "transcription.started"
	EventTranscriptionCompleted EventType = "transcription.completed"
	EventTranscriptionError     EventType = "transcription.error"
	EventRecordingStopped       EventType = "recording.stopped"
)

// Event is a fire-and-forget notification pushed to subscribed UI clients.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Path      string    `json:"path,omitempty"`
	Text      string    `json:"text,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Command names accepted by the gateway.
const (
	CommandStart            = "start"
	CommandStop             = "stop"
	CommandStatus           = "status"
	CommandTranscribe       = "transcribe"
	CommandTranscribeInline = "transcribe-inline"
	CommandCleanup          = "cleanup"
	CommandSubscribe        = "subscribe"
)
