package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Transcriber turns voice recordings into text through the audio
// transcription API, so voice messages flow into the same extraction
// pipeline as typed ones.
type Transcriber struct {
	client *openai.Client
	model  string
}

func NewTranscriber(cfg Config) *Transcriber {
	model := cfg.TranscriptionModel
	if model == "" {
		model = openai.Whisper1
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Transcriber{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Transcribe returns the spoken text of the recording. The filename
// only carries the container format hint (e.g. "voice.oga").
func (t *Transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   audio,
	})
	if err != nil {
		slog.Error("transcription request failed", "err", err,
			"latency_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	slog.Debug("transcription completed",
		"chars", len(text),
		"latency_ms", time.Since(start).Milliseconds())
	return text, nil
}
