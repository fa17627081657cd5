package capture

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/dmarsh/voxd/internal/audio"
	"github.com/dmarsh/voxd/internal/config"
)

// Strategy begins producing one session artifact at path. A nil handle
// means no external process is involved in the session.
type Strategy interface {
	Begin(ctx context.Context, path string) (*Handle, error)
}

// Synth is the default strategy: a synthesized, structurally valid artifact.
// The pipeline never stalls for lack of hardware or tooling.
type Synth struct{}

func (Synth) Begin(_ context.Context, path string) (*Handle, error) {
	return nil, Synthesize(path)
}

// Process records real audio through a supervised external process.
type Process struct {
	Supervisor *Supervisor
	Binary     string
	Device     string
}

func (p Process) Begin(_ context.Context, path string) (*Handle, error) {
	args := recordArgs(runtime.GOOS, p.Device, path)
	if args == nil {
		return nil, fmt.Errorf("%w: no record arguments for platform %s", ErrSpawn, runtime.GOOS)
	}
	return p.Supervisor.Spawn(p.Binary, args)
}

// recordArgs is the host-platform strategy table for capture invocations.
func recordArgs(goos string, device string, path string) []string {
	switch goos {
	case "windows":
		return []string{
			"-hide_banner",
			"-f", "dshow",
			"-i", "audio=" + device,
			"-ac", "1", "-ar", "16000",
			"-c:a", "pcm_s16le",
			"-y", path,
		}
	case "darwin":
		return []string{
			"-hide_banner",
			"-f", "avfoundation",
			"-i", ":default",
			"-ac", "1", "-ar", "16000",
			"-y", path,
		}
	case "linux":
		return []string{
			"-hide_banner",
			"-f", "pulse",
			"-i", device,
			"-ac", "1", "-ar", "16000",
			"-y", path,
		}
	default:
		return nil
	}
}

// Select is the single strategy-selection policy point. Real capture stays
// behind capture.enable; everything else routes to the synthesizer, trading
// genuine audio for pipeline reliability.
func Select(ctx context.Context, cfg config.CaptureConfig, sup *Supervisor, logger *slog.Logger) Strategy {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enable {
		return Synth{}
	}

	if _, err := exec.LookPath(cfg.Binary); err != nil {
		logger.Warn("capture binary not found; using synthesized recordings", "binary", cfg.Binary)
		return Synth{}
	}

	device := cfg.Device
	if device == "" || device == "default" {
		devices, err := audio.List(ctx)
		if err != nil {
			logger.Warn("device discovery failed; using synthesized recordings", "error", err.Error())
			return Synth{}
		}
		for _, d := range devices {
			if d.LikelyMicrophone {
				device = d.Name
				break
			}
		}
		if device == "" || device == "default" {
			if runtime.GOOS == "windows" {
				// dshow needs a concrete device label.
				logger.Warn("no microphone discovered; using synthesized recordings")
				return Synth{}
			}
			device = "default"
		}
	}

	logger.Info("real capture enabled", "binary", cfg.Binary, "device", device)
	return Process{Supervisor: sup, Binary: cfg.Binary, Device: device}
}
