package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},

		&Course{},
		&Section{},
		&Lesson{},
		&PracticeProblem{},

		&UserXPLedger{},
		&XPAward{},
		&UserStreak{},

		&LessonProgress{},
		&CourseEnrollment{},
		&PracticeSubmission{},

		&ActivityEvent{},
	}
}
