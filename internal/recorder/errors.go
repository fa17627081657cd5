package recorder

import "errors"

var (
	// ErrAlreadyRecording rejects a start while a session is active. New
	// sessions are rejected, never queued.
	ErrAlreadyRecording = errors.New("recording already in progress")
	// ErrNotRecording rejects a stop with no active session.
	ErrNotRecording = errors.New("no recording in progress")
	// ErrArtifactMissing indicates a real-capture session left no artifact
	// behind. The controller still resets to idle.
	ErrArtifactMissing = errors.New("recording artifact missing after stop")
)
