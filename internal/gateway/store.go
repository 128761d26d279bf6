package gateway

import (
	"context"

	"liquidhire/internal/interview"
	"liquidhire/internal/models"
	"liquidhire/internal/repositories"
)

type interviewStore struct {
	repo *repositories.InterviewRepository
}

// NewInterviewStore adapts the gorm repository to the session
// controller's store interface.
func NewInterviewStore(repo *repositories.InterviewRepository) interview.RecordStore {
	return &interviewStore{repo: repo}
}

func (s *interviewStore) SaveInterview(_ context.Context, rec *models.Interview) error {
	return s.repo.Create(rec)
}
