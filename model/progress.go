package model

import "time"

// LessonProgress moves from not completed to completed once and never back.
type LessonProgress struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson,priority:1;index:idx_lesson_progress_user_course,priority:1"`
	LessonID    string     `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson,priority:2"`
	CourseID    string     `json:"course_id" gorm:"not null;index:idx_lesson_progress_user_course,priority:2"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type CourseEnrollment struct {
	ID              string     `json:"id" gorm:"primaryKey"`
	UserID          string     `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:1"`
	CourseID        string     `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course,priority:2"`
	Progress        int        `json:"progress" gorm:"not null;default:0"`
	CurrentLessonID *string    `json:"current_lesson_id"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// PracticeSubmission is immutable once written; every attempt is kept.
type PracticeSubmission struct {
	ID            string           `json:"id" gorm:"primaryKey"`
	UserID        string           `json:"user_id" gorm:"not null;index:idx_submission_user_problem,priority:1"`
	ProblemID     string           `json:"problem_id" gorm:"not null;index:idx_submission_user_problem,priority:2"`
	Status        SubmissionStatus `json:"status" gorm:"type:varchar(16);not null"`
	PassedTests   int              `json:"passed_tests"`
	TotalTests    int              `json:"total_tests"`
	Language      string           `json:"language"`
	CodeSize      int              `json:"code_size"`
	CodeObjectKey string           `json:"code_object_key,omitempty"`
	SubmittedAt   time.Time        `json:"submitted_at" gorm:"index"`
}
