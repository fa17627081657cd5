package audio

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// listPulse enumerates PulseAudio sources natively. A missing or unreachable
// sound server degrades to an empty list, matching the toolchain-absent
// behavior on the other platforms.
func listPulse(ctx context.Context) ([]Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscoveryUnavailable, err)
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName("voxd"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, nil
	}
	defer client.Close()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("%w: list sources: %v", ErrDiscoveryUnavailable, err)
	}

	devices := make([]Device, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		name := strings.TrimSpace(source.Device)
		if name == "" {
			name = source.SourceName
		}
		if name == "" {
			continue
		}
		devices = append(devices, Device{Name: name, LikelyMicrophone: likelyMicrophone(name)})
	}
	return devices, nil
}
