// Package doctor runs runtime readiness diagnostics for config, tooling,
// audio discovery, and the transcription endpoint.
package doctor

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/dmarsh/voxd/internal/audio"
	"github.com/dmarsh/voxd/internal/config"
	"github.com/dmarsh/voxd/internal/store"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkCredential(cfg.Config))
	checks = append(checks, checkEndpoint(cfg.Config))
	checks = append(checks, checkCaptureBinary(cfg.Config))
	checks = append(checks, checkArtifactDir(cfg.Config))
	checks = append(checks, checkDiscovery(ctx))

	return Report{Checks: checks}
}

// checkCredential reports whether transcription can authenticate.
func checkCredential(cfg config.Config) Check {
	if cfg.HasCredential() {
		return Check{Name: "api.key", Pass: true, Message: "credential configured"}
	}
	return Check{Name: "api.key", Pass: false, Message: "no API credential; set api.key or VOXD_API_KEY"}
}

// checkEndpoint validates the transcription endpoint URL shape.
func checkEndpoint(cfg config.Config) Check {
	parsed, err := url.Parse(cfg.API.Endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Check{Name: "api.endpoint", Pass: false, Message: fmt.Sprintf("invalid endpoint %q", cfg.API.Endpoint)}
	}
	return Check{Name: "api.endpoint", Pass: true, Message: cfg.API.Endpoint}
}

// checkCaptureBinary looks for the recorder toolchain when real capture is on.
func checkCaptureBinary(cfg config.Config) Check {
	if !cfg.Capture.Enable {
		return Check{Name: "capture.binary", Pass: true, Message: "real capture disabled; synthesized recordings in use"}
	}
	path, err := exec.LookPath(cfg.Capture.Binary)
	if err != nil {
		return Check{Name: "capture.binary", Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", cfg.Capture.Binary)}
	}
	return Check{Name: "capture.binary", Pass: true, Message: fmt.Sprintf("found at %s", path)}
}

// checkArtifactDir confirms the artifact store is writable.
func checkArtifactDir(cfg config.Config) Check {
	s, err := store.Open(cfg.Store.Dir)
	if err != nil {
		return Check{Name: "store.dir", Pass: false, Message: err.Error()}
	}

	probe := s.NewRecordingPath()
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return Check{Name: "store.dir", Pass: false, Message: fmt.Sprintf("not writable: %v", err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "store.dir", Pass: true, Message: s.Dir()}
}

// checkDiscovery runs live device discovery; an empty result is healthy
// degradation, not a failure.
func checkDiscovery(ctx context.Context) Check {
	devices, err := audio.List(ctx)
	if err != nil {
		return Check{Name: "audio.devices", Pass: false, Message: err.Error()}
	}
	if len(devices) == 0 {
		return Check{Name: "audio.devices", Pass: true, Message: "no devices discovered; synthesized recordings still work"}
	}

	mics := 0
	for _, d := range devices {
		if d.LikelyMicrophone {
			mics++
		}
	}
	return Check{Name: "audio.devices", Pass: true, Message: fmt.Sprintf("%d devices (%d likely microphones)", len(devices), mics)}
}
