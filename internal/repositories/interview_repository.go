package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"liquidhire/internal/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

type InterviewRepository struct {
	DB *gorm.DB
}

// Create inserts a finished session record. Records are insert-only: the
// session controller writes exactly one per session and nothing updates
// them afterwards.
func (r *InterviewRepository) Create(interview *models.Interview) error {
	return r.DB.Create(interview).Error
}

func (r *InterviewRepository) GetByID(userID uint, id uint) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.First(&interview, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInterviewNotFound
	}
	return &interview, err
}

func (r *InterviewRepository) ListByUser(userID uint) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&interviews).Error
	return interviews, err
}

// PurgeDeleted hard-deletes soft-deleted records past the retention
// window. Returns the number of rows removed.
func (r *InterviewRepository) PurgeDeleted(olderThan time.Time) (int64, error) {
	res := r.DB.Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", olderThan).
		Delete(&models.Interview{})
	return res.RowsAffected, res.Error
}
