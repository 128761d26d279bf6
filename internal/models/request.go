package models

import (
	"strings"
)

// StartSentinel is the placeholder answer the client sends on the very first
// chat call, before the candidate has said anything.
const StartSentinel = "START_INTERVIEW"

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ResumeText    string `json:"resume_text"`
	JobRole       string `json:"job_role"`
	History       []Turn `json:"history"`
	CurrentAnswer string `json:"current_answer"`
}

// implements the Validator interface
func (r *ChatRequest) Validate() error {
	if strings.TrimSpace(r.JobRole) == "" {
		return &ErrorResponse{
			Code:    "missing_job_role",
			Message: "job_role field is required",
		}
	}
	if strings.TrimSpace(r.CurrentAnswer) == "" {
		return &ErrorResponse{
			Code:    "missing_answer",
			Message: "current_answer field is required (use " + StartSentinel + " to begin)",
		}
	}
	for _, t := range r.History {
		if t.Role != RoleInterviewer && t.Role != RoleCandidate {
			return &ErrorResponse{
				Code:    "invalid_history_role",
				Message: "history roles must be one of: model, user",
			}
		}
	}
	return nil
}

// EndInterviewRequest is the body of POST /api/end-interview.
type EndInterviewRequest struct {
	History    []Turn `json:"history"`
	JobRole    string `json:"job_role"`
	ResumeText string `json:"resume_text"`
}

func (r *EndInterviewRequest) Validate() error {
	if strings.TrimSpace(r.JobRole) == "" {
		return &ErrorResponse{
			Code:    "missing_job_role",
			Message: "job_role field is required",
		}
	}
	if len(r.History) == 0 {
		return &ErrorResponse{
			Code:    "empty_history",
			Message: "history must contain at least one turn",
		}
	}
	return nil
}

// SaveInterviewRequest persists a finished session record.
type SaveInterviewRequest struct {
	Transcript []Turn             `json:"transcript"`
	JobRole    string             `json:"job_role"`
	Score      int                `json:"score"`
	Summary    string             `json:"summary"`
	JSONReport []QuestionFeedback `json:"json_report"`
}

func (r *SaveInterviewRequest) Validate() error {
	if strings.TrimSpace(r.JobRole) == "" {
		return &ErrorResponse{
			Code:    "missing_job_role",
			Message: "job_role field is required",
		}
	}
	if len(r.Transcript) == 0 {
		return &ErrorResponse{
			Code:    "empty_transcript",
			Message: "transcript must contain at least one turn",
		}
	}
	return nil
}

// UpdateProfileRequest updates the caller's profile.
type UpdateProfileRequest struct {
	FullName   string `json:"fullName"`
	Headline   string `json:"headline"`
	TargetRole string `json:"targetRole"`
	ResumeText string `json:"resumeText"`
}

func (r *UpdateProfileRequest) Validate() error {
	if len(r.ResumeText) > 200_000 {
		return &ErrorResponse{
			Code:    "resume_too_large",
			Message: "resumeText exceeds the maximum stored size",
		}
	}
	return nil
}

// AddSkillRequest adds a skill tag to the caller's profile.
type AddSkillRequest struct {
	Name string `json:"name"`
}

func (r *AddSkillRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return &ErrorResponse{
			Code:    "missing_name",
			Message: "name field is required",
		}
	}
	return nil
}

// JobSearchRequest searches the jobs catalog. Query is a comma separated
// skill list; a single term works too.
type JobSearchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
}

func (r *JobSearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return &ErrorResponse{
			Code:    "missing_query",
			Message: "query field is required",
		}
	}
	if r.Limit <= 0 || r.Limit > 50 {
		r.Limit = 15
	}
	return nil
}

// TailorRequest rewrites a resume toward a job description.
type TailorRequest struct {
	ResumeText     string `json:"resume_text"`
	JobTitle       string `json:"job_title"`
	JobDescription string `json:"job_description"`
}

func (r *TailorRequest) Validate() error {
	if strings.TrimSpace(r.ResumeText) == "" {
		return &ErrorResponse{
			Code:    "missing_resume",
			Message: "resume_text field is required",
		}
	}
	if strings.TrimSpace(r.JobTitle) == "" && strings.TrimSpace(r.JobDescription) == "" {
		return &ErrorResponse{
			Code:    "missing_job",
			Message: "job_title or job_description is required",
		}
	}
	return nil
}

// RoastRequest asks for brutally honest resume feedback.
type RoastRequest struct {
	ResumeText string `json:"resume_text"`
}

func (r *RoastRequest) Validate() error {
	if strings.TrimSpace(r.ResumeText) == "" {
		return &ErrorResponse{
			Code:    "missing_resume",
			Message: "resume_text field is required",
		}
	}
	return nil
}
