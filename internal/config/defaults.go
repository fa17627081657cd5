package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		API: APIConfig{
			Endpoint: "https://api.openai.com/v1/audio/transcriptions",
			Model:    "whisper-1",
		},
		Capture: CaptureConfig{
			Enable: false,
			Binary: "ffmpeg",
			Device: "default",
		},
		Store: StoreConfig{},
	}
}
