package dto

import "time"

type EnrollmentResponse struct {
	CourseID        string     `json:"course_id"`
	Progress        int        `json:"progress"`
	CurrentLessonID *string    `json:"current_lesson_id,omitempty"`
	EnrolledAt      time.Time  `json:"enrolled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type CompleteLessonResult struct {
	CourseID         string `json:"course_id"`
	LessonID         string `json:"lesson_id"`
	Progress         int    `json:"progress"`
	XPAwarded        int    `json:"xp_awarded"`
	LevelUp          bool   `json:"level_up"`
	SectionCompleted bool   `json:"section_completed"`
	CourseCompleted  bool   `json:"course_completed"`
	AlreadyCompleted bool   `json:"already_completed"`
	NewTotalXP       int    `json:"new_total_xp"`
	NewLevel         int    `json:"new_level"`
}

type LessonStatus struct {
	LessonID    string     `json:"lesson_id"`
	SectionID   string     `json:"section_id"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CourseProgressResponse struct {
	EnrollmentResponse
	CompletedLessons int            `json:"completed_lessons"`
	TotalLessons     int            `json:"total_lessons"`
	Lessons          []LessonStatus `json:"lessons"`
}
