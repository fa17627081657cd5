package capture

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// ErrSpawn marks a capture process that could not be started.
var ErrSpawn = errors.New("capture process spawn failed")

// flushGrace is how long the supervisor waits after issuing termination so
// the recorder's buffered writes reach the artifact.
const flushGrace = time.Second

// Handle is exclusive ownership of one supervised capture process.
type Handle struct {
	cmd  *exec.Cmd
	pid  int
	done chan struct{}
}

// PID returns the supervised process identifier.
func (h *Handle) PID() int {
	return h.pid
}

// Supervisor spawns and terminates the external capture process on behalf
// of the recording controller. It owns at most one process at a time.
type Supervisor struct {
	logger *slog.Logger
}

// NewSupervisor constructs a supervisor that forwards process diagnostics
// to the given logger.
func NewSupervisor(logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{logger: logger}
}

// Spawn starts the capture executable and begins forwarding its diagnostic
// stream to the log sink.
func (s *Supervisor) Spawn(binary string, args []string) (*Handle, error) {
	cmd := exec.Command(binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrSpawn, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	handle := &Handle{cmd: cmd, pid: cmd.Process.Pid, done: make(chan struct{})}

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			s.logger.Debug("capture process output", "pid", handle.pid, "line", scanner.Text())
		}
	}()

	go func() {
		// Wait closes the stderr pipe; reap only after the scanner has
		// drained it so trailing diagnostics are not lost.
		<-scanDone
		if err := cmd.Wait(); err != nil {
			s.logger.Debug("capture process exited", "pid", handle.pid, "error", err.Error())
		}
		close(handle.done)
	}()

	s.logger.Info("capture process started", "pid", handle.pid, "binary", binary)
	return handle, nil
}

// Terminate runs the platform termination procedure and then waits out the
// flush grace period. Termination failures are logged, never returned; the
// controller always proceeds to artifact finalization.
func (s *Supervisor) Terminate(handle *Handle) {
	if handle == nil || handle.cmd == nil || handle.cmd.Process == nil {
		return
	}

	terminate := terminators[runtime.GOOS]
	if terminate == nil {
		terminate = terminateGraceful
	}
	terminate(s, handle)

	select {
	case <-handle.done:
	case <-time.After(flushGrace):
	}
	s.logger.Info("capture process terminated", "pid", handle.pid)
}
