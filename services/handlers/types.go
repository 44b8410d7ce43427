package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
)

type AuthMiddlewareInterface interface {
	RequiredAuth() fiber.Handler
	OptionalAuth() fiber.Handler
}

type RateLimiterInterface interface {
	Limit(endpointType string) fiber.Handler
}

type ProgressServiceInterface interface {
	Enroll(ctx context.Context, userID, courseID string) (*dto.EnrollmentResponse, error)
	CompleteLesson(ctx context.Context, userID, courseID, lessonID string) (*dto.CompleteLessonResult, error)
	GetCourseProgress(ctx context.Context, userID, courseID string) (*dto.CourseProgressResponse, error)
}

type PracticeServiceInterface interface {
	SubmitSolution(ctx context.Context, userID, problemID, language, code string) (*dto.SubmissionResult, error)
	GetProblemState(ctx context.Context, userID, problemID string) (*dto.ProblemStateResponse, error)
	ListSubmissions(ctx context.Context, userID, problemID string, limit int) ([]dto.SubmissionResponse, error)
}

type ActivityServiceInterface interface {
	RecordView(ctx context.Context, userID, entityID string) (*model.ActivityEvent, error)
	GetYearlyActivity(ctx context.Context, userID string, year int) ([]dto.DailyActivity, error)
	GetDailyActivity(ctx context.Context, userID string, from, to time.Time) ([]dto.DailyActivity, error)
	GetCalendar(ctx context.Context, userID string, year int) (*dto.ActivityCalendarResponse, error)
}

type XPServiceInterface interface {
	CheckIn(ctx context.Context, userID string) (*dto.CheckInResponse, error)
}

type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	DeleteAccount(ctx context.Context, userID string) error
}

type LeaderboardServiceInterface interface {
	Leaderboard(ctx context.Context, period string, limit int, userID string) (*dto.LeaderboardResponse, error)
}
