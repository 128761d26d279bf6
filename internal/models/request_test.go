package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatRequestValidate(t *testing.T) {
	req := &ChatRequest{JobRole: "Backend Engineer", CurrentAnswer: StartSentinel}
	assert.NoError(t, req.Validate())

	req = &ChatRequest{CurrentAnswer: "hello"}
	err := req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "missing_job_role", err.(*ErrorResponse).Code)
	}

	req = &ChatRequest{JobRole: "SRE", CurrentAnswer: "   "}
	err = req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "missing_answer", err.(*ErrorResponse).Code)
	}

	req = &ChatRequest{
		JobRole:       "SRE",
		CurrentAnswer: "an answer",
		History:       []Turn{{Role: "assistant", Content: "hi"}},
	}
	err = req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "invalid_history_role", err.(*ErrorResponse).Code)
	}
}

func TestEndInterviewRequestValidate(t *testing.T) {
	req := &EndInterviewRequest{
		JobRole: "SRE",
		History: []Turn{{Role: RoleInterviewer, Content: "Q"}},
	}
	assert.NoError(t, req.Validate())

	req = &EndInterviewRequest{JobRole: "SRE"}
	err := req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "empty_history", err.(*ErrorResponse).Code)
	}
}

func TestJobSearchRequestValidate(t *testing.T) {
	req := &JobSearchRequest{Query: "go, kubernetes"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, 15, req.Limit, "limit should default")

	req = &JobSearchRequest{Query: "go", Limit: 500}
	assert.NoError(t, req.Validate())
	assert.Equal(t, 15, req.Limit, "oversized limit should reset to the default")

	req = &JobSearchRequest{Query: "go", Limit: 5}
	assert.NoError(t, req.Validate())
	assert.Equal(t, 5, req.Limit)

	req = &JobSearchRequest{Query: "  "}
	err := req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "missing_query", err.(*ErrorResponse).Code)
	}
}

func TestAddSkillRequestTrimsName(t *testing.T) {
	req := &AddSkillRequest{Name: "  Go  "}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "Go", req.Name)

	req = &AddSkillRequest{Name: "   "}
	assert.Error(t, req.Validate())
}

func TestTailorRequestValidate(t *testing.T) {
	req := &TailorRequest{ResumeText: "my resume", JobTitle: "SRE"}
	assert.NoError(t, req.Validate())

	req = &TailorRequest{ResumeText: "my resume", JobDescription: "run things"}
	assert.NoError(t, req.Validate())

	req = &TailorRequest{JobTitle: "SRE"}
	err := req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "missing_resume", err.(*ErrorResponse).Code)
	}

	req = &TailorRequest{ResumeText: "my resume"}
	err = req.Validate()
	if assert.Error(t, err) {
		assert.Equal(t, "missing_job", err.(*ErrorResponse).Code)
	}
}

func TestRoastRequestValidate(t *testing.T) {
	assert.NoError(t, (&RoastRequest{ResumeText: "text"}).Validate())
	assert.Error(t, (&RoastRequest{}).Validate())
}
