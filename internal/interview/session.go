package interview

import (
	"sync"

	"github.com/google/uuid"

	"liquidhire/internal/models"
)

// Session is the ephemeral per-interview state: resume text, target role and
// the append-only turn history. It is discarded after the one persistence
// write at session end.
type Session struct {
	mu         sync.RWMutex
	id         string
	userID     uint
	resumeText string
	jobRole    string
	history    []models.Turn
}

func NewSession(userID uint, resumeText, jobRole string) *Session {
	return &Session{
		id:         uuid.New().String(),
		userID:     userID,
		resumeText: resumeText,
		jobRole:    jobRole,
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) UserID() uint       { return s.userID }
func (s *Session) ResumeText() string { return s.resumeText }
func (s *Session) JobRole() string    { return s.jobRole }

// AppendCandidate records a candidate answer. Turns are never rewritten,
// only appended.
func (s *Session) AppendCandidate(text string) {
	s.append(models.Turn{Role: models.RoleCandidate, Content: text})
}

// AppendInterviewer records an interviewer question.
func (s *Session) AppendInterviewer(text string) {
	s.append(models.Turn{Role: models.RoleInterviewer, Content: text})
}

func (s *Session) append(turn models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, turn)
}

// History returns a copy of the turn history in append order.
func (s *Session) History() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}
