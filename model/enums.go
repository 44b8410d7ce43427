package model

import (
	"fmt"
	"strings"
)

type ActionKind string

const (
	ActionCompleteLesson     ActionKind = "COMPLETE_LESSON"
	ActionCompleteSection    ActionKind = "COMPLETE_SECTION"
	ActionCompleteCourse     ActionKind = "COMPLETE_COURSE"
	ActionSolveProblemEasy   ActionKind = "SOLVE_PROBLEM_EASY"
	ActionSolveProblemMedium ActionKind = "SOLVE_PROBLEM_MEDIUM"
	ActionSolveProblemHard   ActionKind = "SOLVE_PROBLEM_HARD"
	ActionDailyLogin         ActionKind = "DAILY_LOGIN"
)

var actionXP = map[ActionKind]int{
	ActionCompleteLesson:     10,
	ActionCompleteSection:    25,
	ActionCompleteCourse:     100,
	ActionSolveProblemEasy:   10,
	ActionSolveProblemMedium: 25,
	ActionSolveProblemHard:   50,
	ActionDailyLogin:         5,
}

// XP returns the fixed reward for the action and whether the action is known.
func (a ActionKind) XP() (int, bool) {
	xp, ok := actionXP[a]
	return xp, ok
}

func (a ActionKind) Valid() bool {
	_, ok := actionXP[a]
	return ok
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// ParseDifficulty accepts only the canonical names, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToUpper(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// ActionForDifficulty maps every difficulty onto its solve reward tier.
func ActionForDifficulty(d Difficulty) (ActionKind, error) {
	switch d {
	case DifficultyEasy:
		return ActionSolveProblemEasy, nil
	case DifficultyMedium:
		return ActionSolveProblemMedium, nil
	case DifficultyHard:
		return ActionSolveProblemHard, nil
	default:
		return "", fmt.Errorf("no reward tier for difficulty %q", d)
	}
}

type SubmissionStatus string

const (
	SubmissionPassed  SubmissionStatus = "PASSED"
	SubmissionFailed  SubmissionStatus = "FAILED"
	SubmissionPartial SubmissionStatus = "PARTIAL"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPassed, SubmissionFailed, SubmissionPartial:
		return true
	}
	return false
}

type ProblemState string

const (
	ProblemUnattempted ProblemState = "UNATTEMPTED"
	ProblemAttempted   ProblemState = "ATTEMPTED"
	ProblemSolved      ProblemState = "SOLVED"
)

type ActivityKind string

const (
	ActivityContentView      ActivityKind = "CONTENT_VIEW"
	ActivitySubmission       ActivityKind = "SUBMISSION"
	ActivityLessonCompletion ActivityKind = "LESSON_COMPLETION"
	ActivityDailyLogin       ActivityKind = "DAILY_LOGIN"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case ActivityContentView, ActivitySubmission, ActivityLessonCompletion, ActivityDailyLogin:
		return true
	}
	return false
}
