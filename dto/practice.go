package dto

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
)

type SubmitSolutionRequest struct {
	Language string `json:"language" validate:"required,max=32"`
	Code     string `json:"code" validate:"required,max=65536"`
}

// JudgeRequest is what the execution service receives.
type JudgeRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

// JudgeVerdict is the execution service's opaque outcome.
type JudgeVerdict struct {
	Status      model.SubmissionStatus `json:"status"`
	PassedTests int                    `json:"passed_tests"`
	TotalTests  int                    `json:"total_tests"`
}

type SubmissionResponse struct {
	ID          string                 `json:"id"`
	ProblemID   string                 `json:"problem_id"`
	Status      model.SubmissionStatus `json:"status"`
	PassedTests int                    `json:"passed_tests"`
	TotalTests  int                    `json:"total_tests"`
	Language    string                 `json:"language"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

type SubmissionResult struct {
	Submission SubmissionResponse `json:"submission"`
	XPAwarded  int                `json:"xp_awarded"`
	LevelUp    bool               `json:"level_up"`
	FirstSolve bool               `json:"first_solve"`
	NewTotalXP int                `json:"new_total_xp"`
	NewLevel   int                `json:"new_level"`
}

type ProblemStateResponse struct {
	ProblemID  string             `json:"problem_id"`
	State      model.ProblemState `json:"state"`
	Attempts   int64              `json:"attempts"`
	SolvedAt   *time.Time         `json:"solved_at,omitempty"`
	Difficulty model.Difficulty   `json:"difficulty"`
}

type CreateProblemRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Difficulty string `json:"difficulty" validate:"required,difficulty"`
	TestCount  int    `json:"test_count" validate:"min=1"`
}
