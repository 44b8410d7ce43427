package dto

type DailyActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type CalendarDay struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Intensity int    `json:"intensity"`
}

type ActivityCalendarResponse struct {
	Year          int           `json:"year"`
	TotalEvents   int           `json:"total_events"`
	ActiveDays    int           `json:"active_days"`
	LongestStreak int           `json:"longest_streak"`
	Days          []CalendarDay `json:"days"`
}

type RecordViewRequest struct {
	EntityID string `json:"entity_id" validate:"required,max=64"`
}
