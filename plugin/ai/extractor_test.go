package ai

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	content := `{
		"events": [
			{"title": "стоматолог", "start": "2026-03-06T15:00:00+03:00", "end": "", "location": "ул. Ленина 5"}
		],
		"tasks": [
			{"title": "лаба", "duration": "3 часа", "deadline": "2026-03-06T00:00:00+03:00"}
		],
		"health_metrics": [
			{"metric": "sleep", "value": "7h"}
		]
	}`

	extraction, err := parseExtraction(content)
	require.NoError(t, err)
	require.Len(t, extraction.Events, 1)
	assert.Equal(t, "стоматолог", extraction.Events[0].Title)
	assert.Equal(t, "ул. Ленина 5", extraction.Events[0].Location)
	require.Len(t, extraction.Tasks, 1)
	assert.Equal(t, "3 часа", extraction.Tasks[0].Duration)
	require.Len(t, extraction.HealthMetrics, 1)
}

func TestParseExtractionStripsCodeFence(t *testing.T) {
	content := "```json\n{\"events\": [], \"tasks\": [], \"health_metrics\": []}\n```"

	extraction, err := parseExtraction(content)
	require.NoError(t, err)
	assert.Empty(t, extraction.Events)
	assert.Empty(t, extraction.Tasks)
}

func TestParseExtractionRejectsGarbage(t *testing.T) {
	_, err := parseExtraction("sorry, I cannot help with that")
	assert.Error(t, err)
}

func TestToBatch(t *testing.T) {
	extraction := &Extraction{
		Events: []ExtractedEvent{
			{Title: "созвон", Start: "2026-03-06T10:00:00Z", End: "2026-03-06T11:00:00Z"},
			{Title: "broken", Start: "tomorrow-ish"},
		},
		Tasks: []ExtractedTask{
			{Title: "отчёт", Duration: "2 часа", Deadline: "2026-03-07T00:00:00Z"},
			{Title: "no deadline", Duration: ""},
		},
		HealthMetrics: []ExtractedHealth{
			{Metric: "weight", Value: "72kg"},
			{Metric: "", Value: "orphan"},
		},
	}

	batch := extraction.ToBatch()
	// The unparsable event is dropped, the rest survive.
	require.Len(t, batch.Events, 1)
	assert.Equal(t, time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC), batch.Events[0].Start.UTC())
	require.NotNil(t, batch.Events[0].End)

	require.Len(t, batch.Tasks, 2)
	require.NotNil(t, batch.Tasks[0].Deadline)
	assert.Nil(t, batch.Tasks[1].Deadline)

	require.Len(t, batch.Health, 1)
	assert.Equal(t, "weight", batch.Health[0].Metric)
}

func TestExtractionSchemaMarshals(t *testing.T) {
	raw, err := json.Marshal(extractionJSONSchema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "object", decoded["type"])
	assert.Contains(t, decoded["properties"], "events")
	assert.Equal(t, false, decoded["additionalProperties"])
}
