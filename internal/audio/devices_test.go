package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

const dshowFixture = `[dshow @ 000001a2b3c4] DirectShow video devices (some may be both video and audio devices)
[dshow @ 000001a2b3c4]  "Integrated Camera" (video)
[dshow @ 000001a2b3c4]     Alternative name "@device_pnp_\\?\usb#vid"
[dshow @ 000001a2b3c4] DirectShow audio devices
[dshow @ 000001a2b3c4]  "Microphone Array (Realtek(R) Audio)" (audio)
[dshow @ 000001a2b3c4]  "Headset (WH-1000XM4)" (audio)
[dshow @ 000001a2b3c4]  "Stereo Mix (Realtek(R) Audio)" (audio)
dummy: Immediate exit requested
`

const avfoundationFixture = `[AVFoundation indev @ 0x7fae] AVFoundation video devices:
[AVFoundation indev @ 0x7fae] [0] FaceTime HD Camera
[AVFoundation indev @ 0x7fae] [1] Capture screen 0
[AVFoundation indev @ 0x7fae] AVFoundation audio devices:
[AVFoundation indev @ 0x7fae] [0] MacBook Pro Microphone
[AVFoundation indev @ 0x7fae] [1] External Headset
: Input/output error
`

func TestParseDShowDevicesExtractsQuotedAudioNames(t *testing.T) {
	devices := parseDShowDevices(dshowFixture)
	require.Len(t, devices, 3)
	require.Equal(t, "Microphone Array (Realtek(R) Audio)", devices[0].Name)
	require.True(t, devices[0].LikelyMicrophone)
	require.Equal(t, "Headset (WH-1000XM4)", devices[1].Name)
	require.True(t, devices[1].LikelyMicrophone)
	// "Stereo Mix" still matches via the "Audio" fragment in its label.
	require.True(t, devices[2].LikelyMicrophone)
}

func TestParseDShowDevicesIgnoresVideoAndNoise(t *testing.T) {
	devices := parseDShowDevices(`[dshow] "Integrated Camera" (video)
garbage line without markers
[dshow] unquoted device (audio)
`)
	require.Empty(t, devices)
}

func TestParseAVFoundationDevicesReadsAudioSectionOnly(t *testing.T) {
	devices := parseAVFoundationDevices(avfoundationFixture)
	require.Len(t, devices, 2)
	require.Equal(t, "MacBook Pro Microphone", devices[0].Name)
	require.True(t, devices[0].LikelyMicrophone)
	require.Equal(t, "External Headset", devices[1].Name)
	require.True(t, devices[1].LikelyMicrophone)
}

func TestLikelyMicrophoneIsCaseSensitive(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{name: "Built-in Microphone", want: true},
		{name: "USB Mic", want: true},
		{name: "Realtek Audio", want: true},
		{name: "Line Input", want: true},
		{name: "Gaming Headset", want: true},
		{name: "built-in microphone", want: false},
		{name: "Webcam", want: false},
		{name: "", want: false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, likelyMicrophone(tc.name), "name=%q", tc.name)
	}
}

func TestListHostMissingToolchainYieldsEmptyList(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	devices, err := listHost(context.Background(), "windows", "ffmpeg-definitely-missing")
	require.NoError(t, err)
	require.Empty(t, devices)
}

func TestListHostUnknownPlatformYieldsEmptyList(t *testing.T) {
	devices, err := listHost(context.Background(), "plan9", defaultListBinary)
	require.NoError(t, err)
	require.Empty(t, devices)
}

func TestQuotedName(t *testing.T) {
	name, ok := quotedName(`  "Microphone (USB)" (audio)`)
	require.True(t, ok)
	require.Equal(t, "Microphone (USB)", name)

	_, ok = quotedName(`no quotes here`)
	require.False(t, ok)

	_, ok = quotedName(`"" (audio)`)
	require.False(t, ok)
}

func TestIndexedName(t *testing.T) {
	name, ok := indexedName("[AVFoundation indev @ 0x7fae] [0] MacBook Pro Microphone")
	require.True(t, ok)
	require.Equal(t, "MacBook Pro Microphone", name)

	_, ok = indexedName("[AVFoundation indev @ 0x7fae] AVFoundation audio devices:")
	require.False(t, ok)
}
