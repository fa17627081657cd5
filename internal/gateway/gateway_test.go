package gateway

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarsh/voxd/internal/capture"
	"github.com/dmarsh/voxd/internal/recorder"
	"github.com/dmarsh/voxd/internal/store"
)

type fakeTranscriber struct {
	text  string
	err   error
	paths []string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.text, f.err
}

func testGateway(t *testing.T, transcriber Transcriber) (*Gateway, *store.Store) {
	t.Helper()
	artifacts, err := store.Open(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := recorder.NewController(logger, artifacts, capture.Synth{}, capture.NewSupervisor(logger))
	return New(logger, ctrl, transcriber, artifacts, NewBroker(logger)), artifacts
}

func drainEvents(ch <-chan Event) []Event {
	var events []Event
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestHandleRecordingLifecycle(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})
	ctx := context.Background()

	_, events := g.Broker().Subscribe(16)

	status := g.Handle(ctx, Request{Command: CommandStatus})
	require.True(t, status.OK)
	require.False(t, status.Recording)
	require.Empty(t, status.Path)

	started := g.Handle(ctx, Request{Command: CommandStart})
	require.True(t, started.OK)
	require.NotEmpty(t, started.Path)

	status = g.Handle(ctx, Request{Command: CommandStatus})
	require.True(t, status.Recording)
	require.Equal(t, started.Path, status.Path)

	stopped := g.Handle(ctx, Request{Command: CommandStop})
	require.True(t, stopped.OK)
	require.Equal(t, started.Path, stopped.Path)

	status = g.Handle(ctx, Request{Command: CommandStatus})
	require.True(t, status.OK)
	require.False(t, status.Recording)
	require.Empty(t, status.Path)

	got := drainEvents(events)
	require.Len(t, got, 1)
	require.Equal(t, EventRecordingStopped, got[0].Type)
	require.Equal(t, started.Path, got[0].Path)
}

func TestHandleDoubleStartRespondsWithError(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})
	ctx := context.Background()

	require.True(t, g.Handle(ctx, Request{Command: CommandStart}).OK)

	second := g.Handle(ctx, Request{Command: CommandStart})
	require.False(t, second.OK)
	require.Contains(t, second.Error, "already in progress")
}

func TestHandleStopWithoutSessionRespondsWithError(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})

	resp := g.Handle(context.Background(), Request{Command: CommandStop})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "no recording")
}

func TestHandleTranscribeEmitsStartAndCompletion(t *testing.T) {
	fake := &fakeTranscriber{text: "hello there"}
	g, _ := testGateway(t, fake)

	_, events := g.Broker().Subscribe(16)

	resp := g.Handle(context.Background(), Request{Command: CommandTranscribe, Path: "rec-a.wav"})
	require.True(t, resp.OK)
	require.Equal(t, "hello there", resp.Text)
	require.Equal(t, []string{"rec-a.wav"}, fake.paths)

	got := drainEvents(events)
	require.Len(t, got, 2)
	require.Equal(t, EventTranscriptionStarted, got[0].Type)
	require.Equal(t, EventTranscriptionCompleted, got[1].Type)
	require.Equal(t, "hello there", got[1].Text)
}

func TestHandleTranscribeFailureEmitsErrorEvent(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("credential rejected")}
	g, _ := testGateway(t, fake)

	_, events := g.Broker().Subscribe(16)

	resp := g.Handle(context.Background(), Request{Command: CommandTranscribe, Path: "rec-a.wav"})
	require.False(t, resp.OK)
	require.Equal(t, "credential rejected", resp.Error)

	got := drainEvents(events)
	require.Len(t, got, 2)
	require.Equal(t, EventTranscriptionStarted, got[0].Type)
	require.Equal(t, EventTranscriptionError, got[1].Type)
	require.Equal(t, "credential rejected", got[1].Message)
}

func TestHandleTranscribeRequiresPath(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})

	resp := g.Handle(context.Background(), Request{Command: CommandTranscribe})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "requires a path")
}

func TestHandleInlinePayloadDecodesAndDeletesTemp(t *testing.T) {
	fake := &fakeTranscriber{text: "inline result"}
	g, artifacts := testGateway(t, fake)

	original := []byte("RIFF fake audio payload")
	payload := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString(original)

	// Capture the temp file content while the transcriber holds it.
	var seen []byte
	interceptor := &interceptingTranscriber{inner: fake, onCall: func(path string) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		seen = data
	}}
	g.transcriber = interceptor

	resp := g.Handle(context.Background(), Request{Command: CommandTranscribeInline, Payload: payload})
	require.True(t, resp.OK)
	require.Equal(t, "inline result", resp.Text)
	require.Equal(t, original, seen)

	requireNoInlineArtifacts(t, artifacts.Dir())
}

func TestHandleInlinePayloadDeletesTempOnFailure(t *testing.T) {
	fake := &fakeTranscriber{err: errors.New("remote unavailable")}
	g, artifacts := testGateway(t, fake)

	payload := "data:audio/wav;base64," + base64.StdEncoding.EncodeToString([]byte("bytes"))
	resp := g.Handle(context.Background(), Request{Command: CommandTranscribeInline, Payload: payload})
	require.False(t, resp.OK)

	requireNoInlineArtifacts(t, artifacts.Dir())
}

func TestHandleInlinePayloadRejectsBadBase64(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})

	resp := g.Handle(context.Background(), Request{Command: CommandTranscribeInline, Payload: "data:audio/wav;base64,!!!not-base64!!!"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "decode inline payload")
}

func TestHandleCleanupReportsRemovedCount(t *testing.T) {
	g, artifacts := testGateway(t, &fakeTranscriber{})
	ctx := context.Background()

	require.True(t, g.Handle(ctx, Request{Command: CommandStart}).OK)
	require.True(t, g.Handle(ctx, Request{Command: CommandStop}).OK)

	resp := g.Handle(ctx, Request{Command: CommandCleanup})
	require.True(t, resp.OK)
	require.Equal(t, "removed 1 recordings", resp.Message)

	entries, err := os.ReadDir(artifacts.Dir())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestHandleUnknownCommand(t *testing.T) {
	g, _ := testGateway(t, &fakeTranscriber{})

	resp := g.Handle(context.Background(), Request{Command: "reboot"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}

func TestDecodeDataURLVariants(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xfe, 0xff}
	encoded := base64.StdEncoding.EncodeToString(raw)

	data, err := decodeDataURL("data:audio/wav;base64," + encoded)
	require.NoError(t, err)
	require.Equal(t, raw, data)

	data, err = decodeDataURL(encoded)
	require.NoError(t, err)
	require.Equal(t, raw, data)

	_, err = decodeDataURL("")
	require.Error(t, err)
}

type interceptingTranscriber struct {
	inner  Transcriber
	onCall func(path string)
}

func (i *interceptingTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	i.onCall(path)
	return i.inner.Transcribe(ctx, path)
}

func requireNoInlineArtifacts(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		require.False(t, strings.HasPrefix(filepath.Base(entry.Name()), "inline-"),
			"temp artifact %q survived the call", entry.Name())
	}
}
