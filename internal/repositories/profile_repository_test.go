package repositories

import (
	"errors"
	"testing"

	"liquidhire/internal/models"
)

func profileUpdate(fullName, headline, targetRole, resumeText string) *models.Profile {
	return &models.Profile{
		FullName:   fullName,
		Headline:   headline,
		TargetRole: targetRole,
		ResumeText: resumeText,
	}
}

func TestProfileUpsertCreatesThenUpdates(t *testing.T) {
	repo := &ProfileRepository{DB: setupTestDB(t)}

	if _, err := repo.GetByUserID(1); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("missing profile error = %v, want ErrProfileNotFound", err)
	}

	created, err := repo.Upsert(1, profileUpdate("Ada Lovelace", "Engineer", "Backend Engineer", "resume v1"))
	if err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	if created.FullName != "Ada Lovelace" {
		t.Errorf("created = %+v", created)
	}

	updated, err := repo.Upsert(1, profileUpdate("Ada Lovelace", "Staff Engineer", "Backend Engineer", "resume v2"))
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.Headline != "Staff Engineer" || updated.ResumeText != "resume v2" {
		t.Errorf("updated = %+v", updated)
	}

	got, err := repo.GetByUserID(1)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.ResumeText != "resume v2" {
		t.Errorf("persisted resume = %q", got.ResumeText)
	}
}

func TestSkillsAddListRemove(t *testing.T) {
	repo := &ProfileRepository{DB: setupTestDB(t)}

	skill, err := repo.AddSkill(1, "Go")
	if err != nil {
		t.Fatalf("AddSkill: %v", err)
	}
	if _, err := repo.AddSkill(1, "Kubernetes"); err != nil {
		t.Fatalf("AddSkill: %v", err)
	}

	skills, err := repo.ListSkills(1)
	if err != nil {
		t.Fatalf("ListSkills: %v", err)
	}
	if len(skills) != 2 {
		t.Fatalf("skills = %d, want 2", len(skills))
	}

	if err := repo.RemoveSkill(1, skill.ID); err != nil {
		t.Fatalf("RemoveSkill: %v", err)
	}
	skills, err = repo.ListSkills(1)
	if err != nil {
		t.Fatalf("ListSkills: %v", err)
	}
	if len(skills) != 1 || skills[0].Name != "Kubernetes" {
		t.Errorf("skills = %+v", skills)
	}
}
