package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmarsh/voxd/internal/recorder"
	"github.com/dmarsh/voxd/internal/store"
)

// Transcriber is the gateway-facing subset of the transcription client.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Gateway maps UI commands onto the recording controller and transcription
// client, and pairs every asynchronous outcome with an event so clients
// never poll.
type Gateway struct {
	logger      *slog.Logger
	recorder    *recorder.Controller
	transcriber Transcriber
	store       *store.Store
	broker      *Broker
}

// New wires the gateway boundary.
func New(logger *slog.Logger, ctrl *recorder.Controller, transcriber Transcriber, artifacts *store.Store, broker *Broker) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if broker == nil {
		broker = NewBroker(logger)
	}
	return &Gateway{
		logger:      logger,
		recorder:    ctrl,
		transcriber: transcriber,
		store:       artifacts,
		broker:      broker,
	}
}

// Broker exposes the event fan-out for the serving loop.
func (g *Gateway) Broker() *Broker {
	return g.broker
}

// Handle resolves one command to a response. Failures come back as error
// responses, never as faults.
func (g *Gateway) Handle(ctx context.Context, req Request) Response {
	switch req.Command {
	case CommandStart:
		return g.handleStart(ctx)
	case CommandStop:
		return g.handleStop(ctx)
	case CommandStatus:
		status := g.recorder.Status()
		return Response{OK: true, Recording: status.Recording, Path: status.Path}
	case CommandTranscribe:
		return g.handleTranscribe(ctx, req.Path)
	case CommandTranscribeInline:
		return g.handleTranscribeInline(ctx, req.Payload)
	case CommandCleanup:
		return g.handleCleanup()
	default:
		return Response{OK: false, Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (g *Gateway) handleStart(ctx context.Context) Response {
	path, err := g.recorder.Start(ctx)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true, Path: path}
}

func (g *Gateway) handleStop(ctx context.Context) Response {
	path, err := g.recorder.Stop(ctx)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	g.broker.Emit(Event{Type: EventRecordingStopped, Path: path})
	return Response{OK: true, Path: path}
}

func (g *Gateway) handleTranscribe(ctx context.Context, path string) Response {
	if strings.TrimSpace(path) == "" {
		return Response{OK: false, Error: "transcribe requires a path"}
	}

	g.broker.Emit(Event{Type: EventTranscriptionStarted, Path: path})

	text, err := g.transcriber.Transcribe(ctx, path)
	if err != nil {
		g.broker.Emit(Event{Type: EventTranscriptionError, Path: path, Message: err.Error()})
		return Response{OK: false, Error: err.Error()}
	}

	g.broker.Emit(Event{Type: EventTranscriptionCompleted, Path: path, Text: text})
	return Response{OK: true, Text: text}
}

// handleTranscribeInline decodes a data-URL payload into a temporary
// artifact whose lifetime is bounded by this one call.
func (g *Gateway) handleTranscribeInline(ctx context.Context, payload string) Response {
	data, err := decodeDataURL(payload)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}

	tempPath, err := g.store.CreateTemp(data)
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	defer func() {
		if err := g.store.Remove(tempPath); err != nil {
			g.logger.Warn("remove temp artifact failed", "path", tempPath, "error", err.Error())
		}
	}()

	return g.handleTranscribe(ctx, tempPath)
}

func (g *Gateway) handleCleanup() Response {
	removed, err := g.store.Cleanup()
	if err != nil {
		return Response{OK: false, Error: err.Error()}
	}
	return Response{OK: true, Message: fmt.Sprintf("removed %d recordings", removed)}
}

// decodeDataURL splits off a data-URL scheme prefix and base64-decodes the
// remainder. A bare base64 string decodes as-is.
func decodeDataURL(payload string) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, fmt.Errorf("inline payload is empty")
	}
	encoded := payload
	if comma := strings.IndexByte(payload, ','); comma >= 0 {
		encoded = payload[comma+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode inline payload: %w", err)
	}
	return data, nil
}
