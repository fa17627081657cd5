// Package app wires configuration, logging, the capture stack, and the
// gateway into the voxd command-line entrypoint.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/dmarsh/voxd/internal/audio"
	"github.com/dmarsh/voxd/internal/capture"
	"github.com/dmarsh/voxd/internal/cli"
	"github.com/dmarsh/voxd/internal/config"
	"github.com/dmarsh/voxd/internal/doctor"
	"github.com/dmarsh/voxd/internal/gateway"
	"github.com/dmarsh/voxd/internal/logging"
	"github.com/dmarsh/voxd/internal/recorder"
	"github.com/dmarsh/voxd/internal/store"
	"github.com/dmarsh/voxd/internal/transcribe"
	"github.com/dmarsh/voxd/internal/version"
)

// Forward deadlines per command class. The daemon answers a forwarded
// command only after the underlying operation resolves, so each deadline
// must cover that operation's server-side budget: transcription holds the
// connection for up to its 30 s remote round trip, and stop rides out the
// 1 s capture flush grace. Status is answered immediately and doubles as
// the liveness probe.
const (
	statusTimeout     = 220 * time.Millisecond
	commandTimeout    = 5 * time.Second
	transcribeTimeout = 35 * time.Second
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("voxd"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("voxd"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("config warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStart:
		return r.forwardOrFail(ctx, gateway.Request{Command: gateway.CommandStart}, commandTimeout)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, gateway.Request{Command: gateway.CommandStop}, commandTimeout)
	case cli.CommandCleanup:
		return r.forwardOrFail(ctx, gateway.Request{Command: gateway.CommandCleanup}, commandTimeout)
	case cli.CommandTranscribe:
		return r.commandTranscribe(ctx, parsed.Path)
	case cli.CommandSubscribe:
		return r.commandSubscribe(ctx)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.List(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		micMark := " "
		if device.LikelyMicrophone {
			micMark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %s\n", micMark, device.Name)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := gateway.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, gateway.Request{Command: gateway.CommandStatus}, statusTimeout)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.Recording {
			fmt.Fprintf(r.Stdout, "recording %s\n", resp.Path)
		} else {
			fmt.Fprintln(r.Stdout, "idle")
		}
		return 0
	}

	fmt.Fprintln(r.Stdout, "idle")
	return 0
}

// commandTranscribe forwards an artifact path to the daemon and prints the
// transcript text.
func (r Runner) commandTranscribe(ctx context.Context, path string) int {
	return r.forwardOrFail(ctx, gateway.Request{Command: gateway.CommandTranscribe, Path: path}, transcribeTimeout)
}

// commandSubscribe tails the daemon's event stream onto stdout, one JSON
// object per line, until the process is interrupted.
func (r Runner) commandSubscribe(ctx context.Context) int {
	socketPath, err := gateway.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	err = gateway.Stream(ctx, socketPath, func(event gateway.Event) error {
		encoded, err := json.Marshal(event)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(r.Stdout, string(encoded))
		return err
	})
	if err != nil {
		if isSocketMissing(err) || isConnectionRefused(err) {
			fmt.Fprintf(r.Stderr, "error: no active voxd daemon; run \"voxd serve\"\n")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, req gateway.Request, timeout time.Duration) int {
	socketPath, err := gateway.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, req, timeout)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no active voxd daemon; run \"voxd serve\"\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Text != "" {
		fmt.Fprintln(r.Stdout, resp.Text)
	}
	if resp.Path != "" {
		fmt.Fprintln(r.Stdout, resp.Path)
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandServe owns the runtime socket for the life of the process and
// serves gateway commands until ctx is cancelled.
func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := gateway.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := gateway.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	artifacts, err := store.Open(cfg.Store.Dir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	supervisor := capture.NewSupervisor(logger)
	strategy := capture.Select(ctx, cfg.Capture, supervisor, logger)
	controller := recorder.NewController(logger, artifacts, strategy, supervisor)
	client := transcribe.NewClient(cfg.API.Endpoint, cfg.API.Model, cfg, artifacts, logger)
	gw := gateway.New(logger, controller, client, artifacts, gateway.NewBroker(logger))

	logger.Info("daemon listening", "socket", socketPath)
	fmt.Fprintf(r.Stdout, "listening on %s\n", socketPath)

	if err := gateway.Serve(ctx, listener, gw, gw.Broker()); err != nil {
		fmt.Fprintf(r.Stderr, "error: gateway server failed: %v\n", err)
		return 1
	}

	// Leave no half-finished capture process behind on shutdown.
	if _, stopErr := controller.Stop(context.Background()); stopErr != nil && !errors.Is(stopErr, recorder.ErrNotRecording) {
		logger.Warn("shutdown stop failed", "error", stopErr.Error())
	}

	logger.Info("daemon stopped", "socket", socketPath)
	return 0
}

func tryForward(ctx context.Context, socketPath string, req gateway.Request, timeout time.Duration) (gateway.Response, bool, error) {
	resp, err := gateway.Send(ctx, socketPath, req, timeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) {
		return gateway.Response{}, false, nil
	}
	if isConnectionRefused(err) {
		return gateway.Response{}, false, nil
	}

	return gateway.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT)
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
