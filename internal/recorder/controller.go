// Package recorder coordinates the single recording session lifecycle.
package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dmarsh/voxd/internal/capture"
	"github.com/dmarsh/voxd/internal/fsm"
	"github.com/dmarsh/voxd/internal/store"
)

// minArtifactBytes is the corruption-warning threshold for finished
// artifacts. Below it the session still succeeds; the artifact is logged
// as suspect.
const minArtifactBytes = 1024

// Status is a point-in-time read of the session state.
type Status struct {
	Recording bool
	Path      string
}

// Controller is the session state machine. At most one session may be in
// recording or stopping state; the state field itself is the mutual
// exclusion, no overlapping session is representable.
type Controller struct {
	logger     *slog.Logger
	store      *store.Store
	strategy   capture.Strategy
	supervisor *capture.Supervisor

	mu           sync.Mutex
	state        fsm.State
	artifactPath string
	handle       *capture.Handle
}

// NewController wires the capture strategy and supervisor into a fresh
// idle controller.
func NewController(logger *slog.Logger, artifacts *store.Store, strategy capture.Strategy, supervisor *capture.Supervisor) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if strategy == nil {
		strategy = capture.Synth{}
	}
	if supervisor == nil {
		supervisor = capture.NewSupervisor(logger)
	}
	return &Controller{
		logger:     logger,
		store:      artifacts,
		strategy:   strategy,
		supervisor: supervisor,
		state:      fsm.StateIdle,
	}
}

// Start begins a new session and returns its artifact path.
func (c *Controller) Start(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, fsm.EventStart)
	if err != nil {
		return "", fmt.Errorf("%w: state %s", ErrAlreadyRecording, c.state)
	}

	path := c.store.NewRecordingPath()
	handle, err := c.strategy.Begin(ctx, path)
	if err != nil {
		c.logger.Error("begin recording failed", "path", path, "error", err.Error())
		return "", err
	}

	c.state = next
	c.artifactPath = path
	c.handle = handle
	c.logger.Info("recording started", "path", path, "supervised", handle != nil)
	return path, nil
}

// Stop terminates the active session and returns the artifact path. The
// controller always returns to idle, even when artifact verification or
// process termination fails.
//
// The mutex is held only for the state transitions, never across the
// termination wait: the stopping state already excludes overlapping
// mutators, and a concurrent Status read must not stall on the flush
// grace period.
func (c *Controller) Stop(_ context.Context) (string, error) {
	c.mu.Lock()
	stopping, err := fsm.Transition(c.state, fsm.EventStop)
	if err != nil {
		state := c.state
		c.mu.Unlock()
		return "", fmt.Errorf("%w: state %s", ErrNotRecording, state)
	}
	c.state = stopping

	path := c.artifactPath
	handle := c.handle
	supervised := handle != nil
	// Release ownership before termination so a concurrent status read
	// never observes a handle being torn down.
	c.handle = nil
	c.mu.Unlock()

	if supervised {
		c.supervisor.Terminate(handle)
	}

	verifyErr := c.verifyArtifact(path, supervised)

	c.mu.Lock()
	idle, err := fsm.Transition(c.state, fsm.EventFinalize)
	if err != nil {
		// Unreachable by construction; reset anyway rather than wedging.
		c.logger.Error("finalize transition failed", "error", err.Error())
		idle = fsm.StateIdle
	}
	c.state = idle
	c.artifactPath = ""
	c.mu.Unlock()

	if verifyErr != nil {
		return "", verifyErr
	}
	c.logger.Info("recording stopped", "path", path)
	return path, nil
}

// Status reads the current state without blocking on session work.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		Recording: c.state != fsm.StateIdle,
		Path:      c.artifactPath,
	}
}

// verifyArtifact confirms the finished artifact persisted. A short file is
// a corruption warning, not a failure; a missing file fails only for
// supervised sessions where the external recorder owned the write.
func (c *Controller) verifyArtifact(path string, supervised bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if supervised {
			c.logger.Error("artifact missing after stop", "path", path)
			return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
		}
		c.logger.Error("synthesized artifact missing after stop", "path", path)
		return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if supervised && info.Size() < minArtifactBytes {
		c.logger.Warn("artifact suspiciously small, possible corruption", "path", path, "bytes", info.Size())
	}
	return nil
}
