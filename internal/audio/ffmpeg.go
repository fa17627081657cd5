package audio

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultListBinary = "ffmpeg"

// listTimeout bounds one device-listing invocation.
const listTimeout = 5 * time.Second

// ffmpegListSpec holds one platform's device-list arguments and diagnostic parser.
type ffmpegListSpec struct {
	args  []string
	parse func(output string) []Device
}

// ffmpegListSpecs is the host-platform strategy table for ffmpeg-based discovery.
var ffmpegListSpecs = map[string]ffmpegListSpec{
	"windows": {
		args:  []string{"-hide_banner", "-f", "dshow", "-list_devices", "true", "-i", "dummy"},
		parse: parseDShowDevices,
	},
	"darwin": {
		args:  []string{"-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
		parse: parseAVFoundationDevices,
	},
}

// listFFmpeg runs the toolchain in list-devices mode and parses its diagnostics.
// ffmpeg exits non-zero after listing; only a spawn failure or the timeout
// counts as unavailability.
func listFFmpeg(ctx context.Context, binary string, spec ffmpegListSpec) ([]Device, error) {
	if _, err := exec.LookPath(binary); err != nil {
		return nil, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, spec.args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if runCtx.Err() != nil {
			return nil, fmt.Errorf("%w: list timed out: %v", ErrDiscoveryUnavailable, runCtx.Err())
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %v", ErrDiscoveryUnavailable, err)
		}
		// Expected: the toolchain signals completion on stderr, not exit code.
	}

	return spec.parse(string(output)), nil
}

// parseDShowDevices extracts quoted device names from dshow (audio) marker lines.
func parseDShowDevices(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "(audio)") {
			continue
		}
		name, ok := quotedName(line)
		if !ok {
			continue
		}
		devices = append(devices, Device{Name: name, LikelyMicrophone: likelyMicrophone(name)})
	}
	return devices
}

// parseAVFoundationDevices extracts names from the AVFoundation audio section.
func parseAVFoundationDevices(output string) []Device {
	var devices []Device
	inAudio := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.Contains(line, "AVFoundation audio devices"):
			inAudio = true
			continue
		case strings.Contains(line, "AVFoundation video devices"):
			inAudio = false
			continue
		}
		if !inAudio {
			continue
		}
		name, ok := indexedName(line)
		if !ok {
			continue
		}
		devices = append(devices, Device{Name: name, LikelyMicrophone: likelyMicrophone(name)})
	}
	return devices
}

// quotedName returns the text between the first pair of double quotes.
func quotedName(line string) (string, bool) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", false
	}
	rest := line[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	name := rest[:end]
	if name == "" {
		return "", false
	}
	return name, true
}

// indexedName returns the label after a "[N]" device index marker.
func indexedName(line string) (string, bool) {
	open := strings.LastIndexByte(line, '[')
	if open < 0 {
		return "", false
	}
	closing := strings.IndexByte(line[open:], ']')
	if closing < 0 {
		return "", false
	}
	index := line[open+1 : open+closing]
	if index == "" || strings.ContainsFunc(index, func(r rune) bool { return r < '0' || r > '9' }) {
		return "", false
	}
	name := strings.TrimSpace(line[open+closing+1:])
	if name == "" {
		return "", false
	}
	return name, true
}
