package handlers

import (
	"math"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"liquidhire/internal/middleware"
	"liquidhire/internal/models"
	"liquidhire/internal/repositories"
	"liquidhire/internal/utils"
)

// earlyCareerKeywords mark listings worth a small ranking bonus for this
// product's audience.
var earlyCareerKeywords = []string{
	"intern", "internship", "co-op", "coop", "trainee", "apprentice",
	"entry level", "junior", "graduate", "student", "summer intern",
}

// JobHandler serves the jobs catalog with skill-based relevance ranking.
type JobHandler struct {
	repo   repositories.JobRepository
	logger *zap.Logger
}

func NewJobHandler(repo repositories.JobRepository, logger *zap.Logger) *JobHandler {
	return &JobHandler{repo: repo, logger: logger}
}

// Search handles POST /api/jobs. The query is a comma separated skill
// list; results come back ranked by RankJobs.
func (h *JobHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Code: "jobs_unavailable", Message: "jobs catalog is not configured"})
		return
	}
	req := middleware.GetValidatedRequest[*models.JobSearchRequest](r)

	skills := splitSkills(req.Query)
	if len(skills) == 0 {
		skills = []string{"software engineer"}
	}

	jobs, err := h.repo.Search(r.Context(), skills, int64(req.Limit))
	if err != nil {
		h.logger.Error("job search failed", zap.Strings("skills", skills), zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{Code: "search_error", Message: "failed to search jobs"})
		return
	}

	if req.Location != "" {
		jobs = filterByLocation(jobs, req.Location)
	}
	RankJobs(jobs, skills)

	utils.JSON(w, http.StatusOK, models.JobSearchResponse{Jobs: jobs})
}

// RankJobs scores each job against the user's skills and sorts the slice
// best first. Per skill: one base point scaled by coverage for a match
// anywhere in the listing, a full bonus point for a title match, plus a
// half point for early-career titles. Scores cap at 10.
func RankJobs(jobs []models.Job, skills []string) {
	for i := range jobs {
		jobs[i].Relevance = relevanceScore(&jobs[i], skills)
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].Relevance > jobs[b].Relevance
	})
}

func relevanceScore(job *models.Job, skills []string) float64 {
	if len(skills) == 0 {
		return 0
	}
	title := strings.ToLower(job.Title)
	text := title + " " + strings.ToLower(job.Description) + " " + strings.ToLower(job.Company)

	matches := 0
	titleBonus := 0.0
	for _, skill := range skills {
		s := strings.ToLower(skill)
		if strings.Contains(text, s) {
			matches++
		}
		if strings.Contains(title, s) {
			titleBonus++
		}
	}
	base := float64(matches) / float64(len(skills)) * 10

	careerBonus := 0.0
	for _, kw := range earlyCareerKeywords {
		if strings.Contains(title, kw) {
			careerBonus = 0.5
			break
		}
	}

	score := math.Min(10.0, base+titleBonus+careerBonus)
	return math.Round(score*100) / 100
}

func splitSkills(query string) []string {
	var skills []string
	for _, part := range strings.Split(query, ",") {
		if s := strings.TrimSpace(part); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func filterByLocation(jobs []models.Job, location string) []models.Job {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" || loc == "remote" {
		return jobs
	}
	filtered := jobs[:0]
	for _, job := range jobs {
		jl := strings.ToLower(job.Location)
		if strings.Contains(jl, loc) || strings.Contains(jl, "remote") {
			filtered = append(filtered, job)
		}
	}
	return filtered
}
