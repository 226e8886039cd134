package models

// ParsedCandidate is the structured resume produced by extraction. Dates are
// normalized to YYYY-MM or the literal PRESENT. Confidence is only set when the
// extractor was unsure about an object and ranges over [0, 1].
type ParsedCandidate struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	Label          string          `json:"label,omitempty"`
	Contact        Contact         `json:"contact"`
	Summary        string          `json:"summary,omitempty"`
	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
	Skills         []Skill         `json:"skills,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Volunteer      []Volunteer     `json:"volunteer,omitempty"`
	UpdatedAt      string          `json:"updated_at,omitempty"`
	Confidence     *float64        `json:"confidence,omitempty"`
}

type Contact struct {
	Email      string   `json:"email"`
	Phone      string   `json:"phone,omitempty"`
	City       string   `json:"city,omitempty"`
	Region     string   `json:"region,omitempty"`
	Country    string   `json:"country,omitempty"`
	Links      []Link   `json:"links,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type Metric struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

type Experience struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location,omitempty"`
	StartDate      string   `json:"start_date,omitempty"`
	EndDate        string   `json:"end_date,omitempty"`
	EmploymentType string   `json:"employment_type,omitempty"`
	Achievements   []string `json:"achievements,omitempty"`
	Metrics        []Metric `json:"metrics,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	Confidence     *float64 `json:"confidence,omitempty"`
}

type Education struct {
	ID         string   `json:"id,omitempty"`
	Degree     string   `json:"degree"`
	Field      string   `json:"field,omitempty"`
	School     string   `json:"school"`
	StartDate  string   `json:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty"`
	GPA        string   `json:"gpa,omitempty"`
	Honors     string   `json:"honors,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Project struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Link         string   `json:"link,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

type Skill struct {
	Name       string   `json:"name"`
	Level      string   `json:"level,omitempty"`
	Years      *float64 `json:"years,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Certification struct {
	Name       string   `json:"name"`
	Issuer     string   `json:"issuer,omitempty"`
	Date       string   `json:"date,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type Language struct {
	Language    string   `json:"language"`
	Proficiency string   `json:"proficiency,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

type Volunteer struct {
	Role         string   `json:"role"`
	Organization string   `json:"organization"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Description  string   `json:"description,omitempty"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

// Evaluation is the scoring collaborator's verdict. Score ranges over [0, 10].
type Evaluation struct {
	Score         float64 `json:"score"`
	Justification string  `json:"justification"`
}

// MeetingInfo describes a scheduled interview slot.
type MeetingInfo struct {
	CandidateEmail string `json:"candidate_email"`
	CandidateName  string `json:"candidate_name,omitempty"`
	MeetingID      string `json:"meeting_id"`
	MeetingLink    string `json:"meeting_link"`
	MeetingTime    string `json:"meeting_time"`
}
