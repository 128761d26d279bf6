package repositories

import (
	"errors"

	"gorm.io/gorm"

	"liquidhire/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository struct {
	DB *gorm.DB
}

func (r *ProfileRepository) GetByUserID(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.DB.First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return &profile, err
}

// Upsert creates the profile on first write and updates it afterwards.
func (r *ProfileRepository) Upsert(userID uint, updates *models.Profile) (*models.Profile, error) {
	var profile models.Profile
	err := r.DB.First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		updates.UserID = userID
		if err := r.DB.Create(updates).Error; err != nil {
			return nil, err
		}
		return updates, nil
	}
	if err != nil {
		return nil, err
	}

	profile.FullName = updates.FullName
	profile.Headline = updates.Headline
	profile.TargetRole = updates.TargetRole
	profile.ResumeText = updates.ResumeText
	if err := r.DB.Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) ListSkills(userID uint) ([]models.Skill, error) {
	var skills []models.Skill
	err := r.DB.Where("user_id = ?", userID).Order("name").Find(&skills).Error
	return skills, err
}

func (r *ProfileRepository) AddSkill(userID uint, name string) (*models.Skill, error) {
	skill := &models.Skill{UserID: userID, Name: name}
	if err := r.DB.Create(skill).Error; err != nil {
		return nil, err
	}
	return skill, nil
}

func (r *ProfileRepository) RemoveSkill(userID uint, skillID uint) error {
	result := r.DB.Where("user_id = ?", userID).Delete(&models.Skill{}, skillID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
