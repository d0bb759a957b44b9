package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/notemind/notemind/server/service/planner"
)

// Extraction is the structured result pulled from one user message.
type Extraction struct {
	Events        []ExtractedEvent  `json:"events"`
	Tasks         []ExtractedTask   `json:"tasks"`
	HealthMetrics []ExtractedHealth `json:"health_metrics"`
}

// ExtractedEvent is a fixed-time entry with RFC 3339 timestamps as the
// model emits them.
type ExtractedEvent struct {
	Title    string `json:"title"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Location string `json:"location"`
}

// ExtractedTask is a flexible item with free-text duration.
type ExtractedTask struct {
	Title    string `json:"title"`
	Duration string `json:"duration"`
	Deadline string `json:"deadline"`
}

// ExtractedHealth is a single health observation.
type ExtractedHealth struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

// Config holds configuration for the extractor and transcriber.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// TranscriptionModel is the audio model for voice messages.
	// Defaults to whisper-1.
	TranscriptionModel string
}

// Extractor turns free-form user messages into structured scheduling
// items using an LLM with a strict output schema.
type Extractor struct {
	client *openai.Client
	model  string
}

func NewExtractor(cfg Config) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// Extract asks the model to pull events, tasks and health metrics out
// of the message. The current time anchors relative dates like
// "завтра" or "в пятницу".
func (e *Extractor) Extract(ctx context.Context, message string, now time.Time) (*Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildExtractionPrompt(now),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: message,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "schedule_extraction",
				Strict: true,
				Schema: extractionJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		slog.Error("extraction request failed", "err", err, "latency_ms", latency.Milliseconds())
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	extraction, err := parseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("failed to parse extraction response",
			"content", resp.Choices[0].Message.Content, "err", err)
		return nil, fmt.Errorf("parse extraction failed: %w", err)
	}

	slog.Debug("extraction completed",
		"events", len(extraction.Events),
		"tasks", len(extraction.Tasks),
		"health_metrics", len(extraction.HealthMetrics),
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return extraction, nil
}

var codeFenceRegexp = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parseExtraction parses the model's JSON response, tolerating markdown
// code fences some models still wrap around it.
func parseExtraction(content string) (*Extraction, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if matches := codeFenceRegexp.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	extraction := &Extraction{}
	if err := json.Unmarshal([]byte(content), extraction); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}
	return extraction, nil
}

// ToBatch converts the raw extraction into planner drafts, dropping
// items whose timestamps the model failed to produce in RFC 3339.
func (x *Extraction) ToBatch() *planner.Batch {
	batch := &planner.Batch{}

	for _, e := range x.Events {
		start, err := time.Parse(time.RFC3339, e.Start)
		if err != nil {
			slog.Warn("dropping event with unparsable start", "title", e.Title, "start", e.Start)
			continue
		}
		draft := planner.EventDraft{Title: e.Title, Start: start, Location: e.Location}
		if e.End != "" {
			if end, err := time.Parse(time.RFC3339, e.End); err == nil {
				draft.End = &end
			}
		}
		batch.Events = append(batch.Events, draft)
	}

	for _, t := range x.Tasks {
		draft := planner.TaskDraft{Title: t.Title, Duration: t.Duration}
		if t.Deadline != "" {
			if deadline, err := time.Parse(time.RFC3339, t.Deadline); err == nil {
				draft.Deadline = &deadline
			}
		}
		batch.Tasks = append(batch.Tasks, draft)
	}

	for _, h := range x.HealthMetrics {
		if h.Metric == "" {
			continue
		}
		batch.Health = append(batch.Health, planner.HealthDraft{Metric: h.Metric, Value: h.Value})
	}

	return batch
}
