// Package capture produces session artifacts, either by supervising an
// external recorder process or by synthesizing a minimal placeholder file.
package capture

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Fixed artifact format: 16kHz mono s16le PCM.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// HeaderSize is the length of a canonical RIFF/WAVE PCM header.
const HeaderSize = 44

// Synthesize writes a structurally valid, zero-payload WAV artifact to path.
// Downstream consumers never fail structural validation on it.
func Synthesize(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create artifact %q: %w", path, err)
	}
	defer file.Close()

	if _, err := file.Write(waveHeader(0)); err != nil {
		return fmt.Errorf("write artifact header: %w", err)
	}
	return nil
}

// waveHeader renders the canonical 44-byte PCM header for a payload length.
func waveHeader(payloadLen int) []byte {
	byteRate := SampleRate * Channels * (BitsPerSample / 8)
	blockAlign := Channels * (BitsPerSample / 8)

	header := make([]byte, HeaderSize)
	copy(header[0:4], []byte("RIFF"))
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+payloadLen))
	copy(header[8:12], []byte("WAVE"))
	copy(header[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], Channels)
	binary.LittleEndian.PutUint32(header[24:28], SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(header[40:44], uint32(payloadLen))
	return header
}
