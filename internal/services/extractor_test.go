package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/recruiter/internal/models"
)

func testCandidate() *models.ParsedCandidate {
	return &models.ParsedCandidate{
		Name:    "Jane Doe",
		Contact: models.Contact{Email: "jane.doe@example.com"},
		Skills:  []models.Skill{{Name: "Go", Level: "expert"}},
	}
}

const validResume = "```json\n" + `{
  "name": "Jane Doe",
  "label": "Backend Engineer",
  "contact": {"email": " jane.doe@example.com ", "phone": null, "links": [{"label": "GitHub", "url": "https://github.com/jane"}]},
  "experience": [{
    "title": "Engineer", "company": "Acme", "start_date": "2021-03", "end_date": "PRESENT",
    "achievements": ["Cut p99 latency by 40%"], "confidence": 0.8
  }],
  "skills": [{"name": "Go", "level": "expert", "years": 5}],
  "updated_at": "2025-01-10"
}` + "\n```"

func TestCandidateExtractor_Extract(t *testing.T) {
	llm := &fakeLLM{response: validResume}
	extractor, err := NewCandidateExtractor(llm, 1)
	require.NoError(t, err)

	c, err := extractor.Extract(context.Background(), "Jane Doe\njane.doe@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "jane.doe@example.com", c.Contact.Email)
	require.Len(t, c.Experience, 1)
	assert.Equal(t, "PRESENT", c.Experience[0].EndDate)
	require.NotNil(t, c.Experience[0].Confidence)
	assert.Equal(t, 0.8, *c.Experience[0].Confidence)
	require.Len(t, c.Skills, 1)
	require.NotNil(t, c.Skills[0].Years)
	assert.Equal(t, 5.0, *c.Skills[0].Years)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "jane.doe@example.com")
	assert.Contains(t, llm.prompts[0], `Normalize dates to YYYY-MM or "PRESENT"`)
}

func TestCandidateExtractor_Decode_Rejects(t *testing.T) {
	extractor, err := NewCandidateExtractor(&fakeLLM{}, 1)
	require.NoError(t, err)

	tests := []struct {
		name       string
		response   string
		wantSchema bool
	}{
		{"not json", "Sorry, I cannot parse this resume.", false},
		{"truncated json", `{"name": "Jane", "contact": {`, false},
		{"missing name", `{"contact": {"email": "a@b.co"}}`, true},
		{"missing contact", `{"name": "Jane"}`, true},
		{"bad date", `{"name": "Jane", "contact": {"email": "a@b.co"}, "experience": [{"start_date": "March 2020"}]}`, true},
		{"confidence above one", `{"name": "Jane", "contact": {"email": "a@b.co", "confidence": 1.5}}`, true},
		{"negative years", `{"name": "Jane", "contact": {"email": "a@b.co"}, "skills": [{"name": "Go", "years": -1}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := extractor.Decode(tt.response)
			require.Error(t, err)
			assert.Nil(t, c)

			var se *SchemaError
			assert.Equal(t, tt.wantSchema, errors.As(err, &se))
		})
	}
}

func TestCandidateExtractor_NullEmailDecodesEmpty(t *testing.T) {
	extractor, err := NewCandidateExtractor(&fakeLLM{}, 1)
	require.NoError(t, err)

	c, err := extractor.Decode(`{"name": "Jane", "contact": {"email": null}}`)
	require.NoError(t, err)
	assert.Empty(t, c.Contact.Email)
}

func TestCandidateExtractor_ModelError(t *testing.T) {
	extractor, err := NewCandidateExtractor(&fakeLLM{err: errors.New("quota exceeded")}, 1)
	require.NoError(t, err)

	_, err = extractor.Extract(context.Background(), "text")
	assert.ErrorContains(t, err, "quota exceeded")
}
