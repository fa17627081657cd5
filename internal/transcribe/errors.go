package transcribe

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound fails a request before any network traffic when
	// the source artifact is absent.
	ErrArtifactNotFound = errors.New("audio artifact not found")
	// ErrCredentialMissing fails a request before any network traffic when
	// no API credential is configured.
	ErrCredentialMissing = errors.New("transcription API credential not configured")
	// ErrRequestTimeout marks an aborted in-flight request.
	ErrRequestTimeout = errors.New("transcription request timed out")
)

// RemoteError carries the structured or raw failure text returned by the
// transcription endpoint.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("transcription service error (HTTP %d): %s", e.StatusCode, e.Message)
}
