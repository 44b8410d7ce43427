package shared

const (
	UserID = "user_id"

	DateLayout = "2006-01-02"

	EndpointLessonComplete = "lesson_complete"
	EndpointSubmission     = "submission"
	EndpointCheckIn        = "check_in"
	EndpointGeneral        = "api_general"

	LeaderboardAllTime = "all_time"
	LeaderboardWeekly  = "weekly"
	LeaderboardMonthly = "monthly"
)
