package models

import (
	"gorm.io/gorm"
)

// Profile holds the candidate-facing data used to drive interviews and
// resume tailoring. One per user.
type Profile struct {
	gorm.Model
	UserID     uint   `gorm:"not null;uniqueIndex" json:"userId"`
	FullName   string `json:"fullName"`
	Headline   string `json:"headline"`
	TargetRole string `json:"targetRole"`
	ResumeText string `gorm:"type:text" json:"resumeText"`
}

// Skill is a single skill tag on a profile.
type Skill struct {
	gorm.Model
	UserID uint   `gorm:"not null;index:idx_user_skill,unique" json:"userId"`
	Name   string `gorm:"not null;index:idx_user_skill,unique" json:"name"`
}
