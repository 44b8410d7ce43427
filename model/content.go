package model

import "time"

// Course is a published sequence of sections.
type Course struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsPublished bool      `json:"is_published" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Section groups lessons inside a course.
type Section struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"course_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Order     int       `json:"order" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lesson belongs to exactly one section of one course.
type Lesson struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	CourseID  string    `json:"course_id" gorm:"index;not null"`
	SectionID string    `json:"section_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Order     int       `json:"order" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PracticeProblem is judged by the external execution service.
type PracticeProblem struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Slug       string     `json:"slug" gorm:"uniqueIndex;not null"`
	Title      string     `json:"title" gorm:"not null"`
	Difficulty Difficulty `json:"difficulty" gorm:"type:varchar(16);not null"`
	TestCount  int        `json:"test_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
