package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Turn roles on the wire. The interviewer speaks as "model" and the
// candidate as "user", matching the chat endpoint contract.
const (
	RoleInterviewer = "model"
	RoleCandidate   = "user"
)

// Turn is one exchange unit in the session history. Immutable once appended.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuestionFeedback is the per-question breakdown in the structured report.
type QuestionFeedback struct {
	Question    string `json:"question"`
	UserAnswer  string `json:"user_answer"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	IdealAnswer string `json:"ideal_answer"`
}

// Interview is a completed session record. Created exactly once at session
// end and never updated afterward.
type Interview struct {
	gorm.Model
	UserID     uint   `gorm:"not null;index" json:"userId"`
	JobRole    string `gorm:"not null" json:"jobRole"`
	Transcript string `gorm:"type:text" json:"-"`
	Score      int    `json:"score"`
	Summary    string `gorm:"type:text" json:"summary"`
	JSONReport string `gorm:"type:text" json:"-"`
}

// SetTranscript serializes the turn history into the record.
func (i *Interview) SetTranscript(turns []Turn) error {
	data, err := json.Marshal(turns)
	if err != nil {
		return err
	}
	i.Transcript = string(data)
	return nil
}

// Turns deserializes the stored transcript.
func (i *Interview) Turns() ([]Turn, error) {
	if i.Transcript == "" {
		return []Turn{}, nil
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(i.Transcript), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

// SetReport serializes the structured report into the record.
func (i *Interview) SetReport(report []QuestionFeedback) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	i.JSONReport = string(data)
	return nil
}

// Report deserializes the stored structured report.
func (i *Interview) Report() ([]QuestionFeedback, error) {
	if i.JSONReport == "" {
		return []QuestionFeedback{}, nil
	}
	var report []QuestionFeedback
	if err := json.Unmarshal([]byte(i.JSONReport), &report); err != nil {
		return nil, err
	}
	return report, nil
}
