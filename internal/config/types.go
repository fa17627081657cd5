// Package config resolves, parses, validates, and defaults voxd configuration.
package config

// Config is the fully materialized runtime configuration used by voxd.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Capture CaptureConfig `yaml:"capture"`
	Store   StoreConfig   `yaml:"store"`
}

// APIConfig controls the remote transcription endpoint and its credential.
type APIConfig struct {
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// CaptureConfig controls the real-capture strategy and its toolchain.
type CaptureConfig struct {
	// Enable switches sessions from the synthesized artifact to a
	// supervised external capture process. Off until the real-capture
	// path is hardened.
	Enable bool   `yaml:"enable"`
	Binary string `yaml:"binary"`
	Device string `yaml:"device"`
}

// StoreConfig controls where session artifacts are kept.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Message string
}

// HasCredential reports whether a transcription API credential is configured.
func (c Config) HasCredential() bool {
	return c.API.Key != ""
}

// Credential returns the configured transcription API credential.
func (c Config) Credential() string {
	return c.API.Key
}
