package models

// ChatResponse carries the interviewer's next question.
type ChatResponse struct {
	NextQuestion string `json:"next_question"`
}

// EndInterviewResponse carries the end-of-session scoring result.
type EndInterviewResponse struct {
	Score      int                `json:"score"`
	Summary    string             `json:"summary"`
	JSONReport []QuestionFeedback `json:"json_report"`
}

// TailorResponse carries the rewritten resume sections.
type TailorResponse struct {
	ProfessionalSummary string            `json:"professional_summary"`
	ExperienceBullets   []ExperienceGroup `json:"experience_bullets"`
	SkillsToHighlight   []string          `json:"skills_to_highlight"`
	CoverLetterSnippet  string            `json:"cover_letter_snippet"`
}

// ExperienceGroup is one role's rewritten bullet points.
type ExperienceGroup struct {
	Company string   `json:"company"`
	Role    string   `json:"role"`
	Bullets []string `json:"bullets"`
}

// RoastResponse carries the roast verdict.
type RoastResponse struct {
	RoastSummary string   `json:"roast_summary"`
	BurnScore    int      `json:"burn_score"`
	WeakPoints   []string `json:"weak_points"`
}

// JobSearchResponse carries ranked job listings.
type JobSearchResponse struct {
	Jobs []Job `json:"jobs"`
}

// ParseResumeResponse carries text extracted from an uploaded resume.
type ParseResumeResponse struct {
	Text string `json:"text"`
}

// uniform error responses
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Code + ": " + e.Message
}
