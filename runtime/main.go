package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"

	"github.com/lac-hong-legacy/learnhub/middleware"
	"github.com/lac-hong-legacy/learnhub/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	configureLogging(os.Getenv("LOG_LEVEL"))

	ctx, err := context.NewCtx(
		databaseService(os.Getenv("DB_DRIVER")),
		&services.RedisService{},
		&services.MinIOService{},
		&services.MonitoringService{},

		&services.JWTService{},
		&services.JudgeService{},

		&services.StreakService{},
		&services.ActivityService{},
		&services.XPService{},
		&services.ProgressService{},
		&services.PracticeService{},
		&services.LeaderboardService{},
		&services.UserService{},
		&services.SchedulerService{},

		&middleware.AuthMiddleware{},
		&middleware.RateLimitMiddleware{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service context stopped")
		return
	}
}

func databaseService(driver string) context.Service {
	switch driver {
	case "sqlite":
		return &services.SqliteService{}
	case "", "postgres":
		return &services.PostgresService{}
	default:
		log.Fatal().Str("driver", driver).Msg("Unsupported DB_DRIVER")
		return nil
	}
}

func configureLogging(level string) {
	zlevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zlevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zlevel)

	llevel, err := logrus.ParseLevel(level)
	if err != nil {
		llevel = logrus.InfoLevel
	}
	logrus.SetLevel(llevel)
	logrus.SetFormatter(&logrus.JSONFormatter{})
}
