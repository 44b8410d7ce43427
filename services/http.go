package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/learnhub/services/handlers"
	"github.com/lac-hong-legacy/learnhub/shared"
)

// Ids of the middleware services, which live in a package that imports this one.
const (
	AUTH_MIDDLEWARE_SVC       = "auth"
	RATE_LIMIT_MIDDLEWARE_SVC = "rate_limit"
)

type HttpService struct {
	context.DefaultService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

// Handlers groups everything the router needs so the app can be built in tests
// without the service container.
type Handlers struct {
	Auth        handlers.AuthMiddlewareInterface
	RateLimiter handlers.RateLimiterInterface
	Monitoring  *MonitoringService

	Progress    *handlers.ProgressHandler
	Practice    *handlers.PracticeHandler
	Activity    *handlers.ActivityHandler
	User        *handlers.UserHandler
	Leaderboard *handlers.LeaderboardHandler
}

func (svc *HttpService) Start() error {
	h := Handlers{
		Auth:        svc.Service(AUTH_MIDDLEWARE_SVC).(handlers.AuthMiddlewareInterface),
		Progress:    handlers.NewProgressHandler(svc.Service(PROGRESS_SVC).(*ProgressService)),
		Practice:    handlers.NewPracticeHandler(svc.Service(PRACTICE_SVC).(*PracticeService)),
		Activity:    handlers.NewActivityHandler(svc.Service(ACTIVITY_SVC).(*ActivityService)),
		User:        handlers.NewUserHandler(svc.Service(USER_SVC).(*UserService), svc.Service(XP_SVC).(*XPService)),
		Leaderboard: handlers.NewLeaderboardHandler(svc.Service(LEADERBOARD_SVC).(*LeaderboardService)),
	}
	if rl, ok := svc.Service(RATE_LIMIT_MIDDLEWARE_SVC).(handlers.RateLimiterInterface); ok {
		h.RateLimiter = rl
	}
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		h.Monitoring = m
	}

	svc.server = NewApp(h)

	log.WithField("port", svc.port).Info("HTTP server listening")
	return svc.server.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.ShutdownWithTimeout(10 * time.Second)
	}
}

// NewApp builds the fiber app with every route registered.
func NewApp(h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		JSONEncoder:  shared.JSON().Marshal,
		JSONDecoder:  shared.JSON().Unmarshal,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(MonitoringMiddleware(h.Monitoring))

	//Validation endpoints
	app.Get("/ping", ping)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", ping)

	limit := func(endpointType string) fiber.Handler {
		if h.RateLimiter == nil {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		return h.RateLimiter.Limit(endpointType)
	}

	v1.Get("/leaderboard", h.Auth.OptionalAuth(), limit(shared.EndpointGeneral), h.Leaderboard.GetLeaderboard)

	authed := v1.Group("", h.Auth.RequiredAuth(), limit(shared.EndpointGeneral))

	courses := authed.Group("/courses/:courseId")
	courses.Post("/enroll", h.Progress.Enroll)
	courses.Get("/progress", h.Progress.GetCourseProgress)
	courses.Post("/lessons/:lessonId/complete", limit(shared.EndpointLessonComplete), h.Progress.CompleteLesson)

	problems := authed.Group("/problems/:problemId")
	problems.Post("/submissions", limit(shared.EndpointSubmission), h.Practice.SubmitSolution)
	problems.Get("/submissions", h.Practice.ListSubmissions)
	problems.Get("/state", h.Practice.GetProblemState)

	me := authed.Group("/me")
	me.Get("/profile", h.User.GetProfile)
	me.Post("/check-in", limit(shared.EndpointCheckIn), h.User.CheckIn)
	me.Delete("", h.User.DeleteAccount)
	me.Get("/activity/yearly", h.Activity.GetYearlyActivity)
	me.Get("/activity/daily", h.Activity.GetDailyActivity)
	me.Get("/activity/calendar", h.Activity.GetCalendar)
	me.Post("/activity/views", h.Activity.RecordView)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	return app
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func errorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("Request failed")
		}
		return shared.ResponseError(c, appErr)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return shared.ResponseJSON(c, fe.Code, fe.Message, nil)
	}

	log.WithError(err).WithField("path", c.Path()).Error("Unhandled error")
	return shared.ResponseInternalError(c)
}
