package ai

import (
	"encoding/json"
	"fmt"
	"time"
)

const extractionSystemPrompt = `You are the scheduling assistant of a personal calendar bot.
Extract from the user's message:
- events: entries with a fixed date and time ("созвон завтра в 10", "dentist Friday 15:00")
- tasks: work without a fixed time, with an optional duration and deadline ("сделать лабу за 3 часа до пятницы")
- health_metrics: health observations ("спал 7 часов", "вес 72")

Rules:
- Timestamps must be RFC 3339 with the user's local offset.
- Resolve relative dates ("завтра", "в пятницу") against the current time given below.
- Leave "end" empty when the user named no end time.
- Keep the "duration" text exactly as the user phrased it.
- Put a place into "location" only when the user named a physical place to go to.
- Return empty arrays when the message contains nothing to schedule.`

// buildExtractionPrompt anchors relative dates by appending the current
// moment and weekday to the system prompt.
func buildExtractionPrompt(now time.Time) string {
	return fmt.Sprintf("%s\n\nCurrent time: %s (%s)",
		extractionSystemPrompt, now.Format(time.RFC3339), now.Weekday())
}

// extractionJSONSchema constrains the model output. Every property is
// required; optional values are expressed as empty strings because
// strict mode forbids missing keys.
var extractionJSONSchema = &jsonSchema{
	Type: "object",
	Properties: map[string]*jsonSchema{
		"events": {
			Type: "array",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"title":    {Type: "string", Description: "Short event title"},
					"start":    {Type: "string", Description: "RFC 3339 start time"},
					"end":      {Type: "string", Description: "RFC 3339 end time, empty if unknown"},
					"location": {Type: "string", Description: "Physical destination, empty if none"},
				},
				Required: []string{"title", "start", "end", "location"},
			},
		},
		"tasks": {
			Type: "array",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"title":    {Type: "string", Description: "Short task title"},
					"duration": {Type: "string", Description: "Duration as the user phrased it, empty if absent"},
					"deadline": {Type: "string", Description: "RFC 3339 deadline, empty if absent"},
				},
				Required: []string{"title", "duration", "deadline"},
			},
		},
		"health_metrics": {
			Type: "array",
			Items: &jsonSchema{
				Type: "object",
				Properties: map[string]*jsonSchema{
					"metric": {Type: "string", Description: "Metric name, e.g. sleep, weight"},
					"value":  {Type: "string", Description: "Observed value with unit"},
				},
				Required: []string{"metric", "value"},
			},
		},
	},
	Required:             []string{"events", "tasks", "health_metrics"},
	AdditionalProperties: false,
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Items                *jsonSchema            `json:"items,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Description          string                 `json:"description,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}
