// Package transcribe submits finished audio artifacts to the remote
// speech-to-text endpoint under a bounded time budget.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmarsh/voxd/internal/store"
)

// requestTimeout bounds one transcription round trip; the in-flight
// request is aborted when it elapses.
const requestTimeout = 30 * time.Second

// CredentialProvider is the configuration collaborator consulted before
// every transcription attempt.
type CredentialProvider interface {
	HasCredential() bool
	Credential() string
}

// Client performs single-shot multipart transcription requests.
type Client struct {
	endpoint    string
	model       string
	credentials CredentialProvider
	store       *store.Store
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewClient builds a transcription client for one endpoint/model pair.
func NewClient(endpoint string, model string, credentials CredentialProvider, artifacts *store.Store, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		endpoint:    endpoint,
		model:       model,
		credentials: credentials,
		store:       artifacts,
		httpClient:  &http.Client{},
		logger:      logger,
	}
}

// Transcribe uploads the artifact at path and returns the transcript text
// verbatim. Failures map onto the stable error taxonomy; nothing here
// panics or leaks an open request past the timeout.
func (c *Client) Transcribe(ctx context.Context, path string) (string, error) {
	resolved := c.store.Resolve(path)

	if _, err := os.Stat(resolved); err != nil {
		return "", fmt.Errorf("%w: %s", ErrArtifactNotFound, resolved)
	}

	if c.credentials == nil || !c.credentials.HasCredential() {
		return "", ErrCredentialMissing
	}

	body, contentType, err := c.multipartBody(resolved)
	if err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.credentials.Credential())
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			c.logger.Warn("transcription request aborted", "path", resolved, "timeout", requestTimeout.String())
			return "", ErrRequestTimeout
		}
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return "", ErrRequestTimeout
		}
		return "", fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &RemoteError{StatusCode: resp.StatusCode, Message: remoteMessage(resp, raw)}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode transcription response: %w", err)
	}

	c.logger.Info("transcription complete",
		"path", resolved,
		"latency_ms", time.Since(started).Milliseconds(),
		"transcript_length", len(parsed.Text),
	)
	return parsed.Text, nil
}

// multipartBody renders the model field and raw artifact bytes as one
// multipart form payload.
func (c *Client) multipartBody(path string) (*bytes.Buffer, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", c.model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("copy artifact into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finish multipart body: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

// remoteMessage prefers the endpoint's structured error text and falls back
// to the raw status description.
func remoteMessage(resp *http.Response, raw []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) <= 512 {
		return msg
	}
	return resp.Status
}
