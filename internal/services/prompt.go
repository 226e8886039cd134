package services

import (
	"fmt"
	"strings"
)

// Reference document types stored in the vector collection.
const (
	DocTypeJobDescription = "job_description"
	DocTypeHiringRubric   = "hiring_rubric"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeParsePrompt asks the model to convert resume text into the
// parsed candidate JSON shape.
func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	return fmt.Sprintf(`You are a strict parser. Convert the following resume text into JSON matching the "Standard schema" shown below. Output ONLY valid JSON. Do not include explanations or markdown.

Standard schema:
{
  "id": "uuid",
  "name": "string",
  "label": "string (job title/role)",
  "contact": {
    "email": "string",
    "phone": "string",
    "city": "string",
    "region": "string",
    "country": "string",
    "links": [{"label": "GitHub", "url": "string"}, {"label": "LinkedIn", "url": "string"}]
  },
  "summary": "string",
  "experience": [{
    "id": "uuid", "title": "string", "company": "string", "location": "string",
    "start_date": "YYYY-MM", "end_date": "YYYY-MM or PRESENT",
    "employment_type": "Full-time/Part-time/Contract/Internship",
    "achievements": ["string"],
    "metrics": [{"metric": "revenue/efficiency/etc", "value": "string"}],
    "keywords": ["string"]
  }],
  "education": [{
    "id": "uuid", "degree": "string", "field": "string", "school": "string",
    "start_date": "YYYY-MM", "end_date": "YYYY-MM", "gpa": "string", "honors": "string"
  }],
  "projects": [{
    "id": "uuid", "title": "string", "description": "string", "technologies": ["string"],
    "link": "string", "start_date": "YYYY-MM", "end_date": "YYYY-MM"
  }],
  "skills": [{"name": "string", "level": "beginner|intermediate|advanced|expert", "years": number}],
  "certifications": [{"name": "string", "issuer": "string", "date": "YYYY-MM"}],
  "languages": [{"language": "string", "proficiency": "basic|conversational|fluent|native"}],
  "volunteer": [{"role": "string", "organization": "string", "start_date": "YYYY-MM", "end_date": "YYYY-MM", "description": "string"}],
  "updated_at": "YYYY-MM-DD"
}

Resume text:
---
%s
---

Rules:
- Normalize dates to YYYY-MM or "PRESENT".
- Extract contact emails, phones and links into contact and contact.links.
- For each experience, include at least 1 bullet in achievements; if none exist, copy a summarized sentence to achievements.
- If uncertain, omit the field and include a "confidence" property with a value 0.0-1.0 for that object.`,
		strings.TrimSpace(resumeText))
}

// BuildCandidateEvaluationPrompt asks for a 0-10 score and a short
// justification. referenceContext holds retrieved rubric excerpts and may be
// empty.
func (pb *PromptBuilder) BuildCandidateEvaluationPrompt(candidateJSON, jobDescription, referenceContext string) string {
	if strings.TrimSpace(referenceContext) == "" {
		referenceContext = "No additional hiring guidelines."
	}

	return fmt.Sprintf(`You are an experienced hiring manager. Evaluate the candidate strictly against the provided job requirements.

JOB REQUIREMENTS:
%s

HIRING GUIDELINES:
%s

CANDIDATE RESUME (structured JSON):
%s

TASK:
1. Analyze how well the candidate meets the job requirements.
2. Provide a single numeric score from 0.0 to 10.0 (higher = better fit).
3. Provide a concise justification (maximum 2 sentences) summarizing the key strengths and gaps relevant to the role.
4. Base your evaluation ONLY on the information explicitly present in the resume.

OUTPUT FORMAT (valid JSON only, no commentary outside the JSON block):
{
  "score": <number between 0 and 10>,
  "justification": "<max 2 sentences>"
}`,
		jobDescription, referenceContext, candidateJSON)
}

// BuildRetrievalQuery creates the query text used to search reference
// documents of docType.
func (pb *PromptBuilder) BuildRetrievalQuery(docType, jobDescription string) string {
	switch docType {
	case DocTypeJobDescription:
		return fmt.Sprintf("Job requirements and qualifications for %s", jobDescription)
	case DocTypeHiringRubric:
		return fmt.Sprintf("Candidate screening criteria and scoring guidelines for %s", jobDescription)
	default:
		return jobDescription
	}
}

// FormatRAGContext renders search hits as numbered context blocks.
func FormatRAGContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (%s, score %.2f) ---\n%s",
			i+1, result.DocType, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
