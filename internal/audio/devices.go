// Package audio discovers capture-capable input devices on the host.
package audio

import (
	"context"
	"errors"
	"runtime"
	"strings"
)

// ErrDiscoveryUnavailable marks a discovery attempt that could not complete.
// Callers treat it as non-fatal and proceed with an empty device list.
var ErrDiscoveryUnavailable = errors.New("audio device discovery unavailable")

// Device is one discovered capture endpoint. Devices are transient and
// rediscovered on every List call.
type Device struct {
	Name             string
	LikelyMicrophone bool
}

// micKeywords classifies device names by case-sensitive fragment match.
// Order is the tie-break; first hit wins.
var micKeywords = []string{"Microphone", "Mic", "Audio", "Input", "Headset"}

// likelyMicrophone reports whether a raw device label looks like a microphone.
func likelyMicrophone(name string) bool {
	for _, keyword := range micKeywords {
		if strings.Contains(name, keyword) {
			return true
		}
	}
	return false
}

// List enumerates host input devices through the platform discovery strategy.
// An absent toolchain yields an empty list, not an error.
func List(ctx context.Context) ([]Device, error) {
	return listHost(ctx, runtime.GOOS, defaultListBinary)
}

// listHost dispatches discovery for one host platform tag.
func listHost(ctx context.Context, goos string, binary string) ([]Device, error) {
	if goos == "linux" {
		return listPulse(ctx)
	}

	spec, ok := ffmpegListSpecs[goos]
	if !ok {
		return nil, nil
	}
	return listFFmpeg(ctx, binary, spec)
}
