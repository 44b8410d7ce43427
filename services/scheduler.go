package services

import (
	"context"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

const (
	defaultStreakSweepCron = "5 0 * * *"
	leaderboardWarmEvery   = 50 * time.Second
	jobTimeout             = 2 * time.Minute
)

// SchedulerService runs background maintenance: the nightly streak sweep and
// leaderboard cache warm-up.
type SchedulerService struct {
	appContext.DefaultService

	streakSvc      *StreakService
	leaderboardSvc *LeaderboardService

	sweepCron string
	sched     gocron.Scheduler
}

const SCHEDULER_SVC = "scheduler_svc"

func (svc SchedulerService) Id() string {
	return SCHEDULER_SVC
}

func (svc *SchedulerService) Configure(ctx *appContext.Context) error {
	svc.sweepCron = os.Getenv("STREAK_SWEEP_CRON")
	if svc.sweepCron == "" {
		svc.sweepCron = defaultStreakSweepCron
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *SchedulerService) Start() error {
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	if l, ok := svc.Service(LEADERBOARD_SVC).(*LeaderboardService); ok {
		svc.leaderboardSvc = l
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return err
	}
	svc.sched = sched

	// Every night: zero streaks that were not extended yesterday
	_, err = sched.NewJob(
		gocron.CronJob(svc.sweepCron, false),
		gocron.NewTask(svc.sweepStreaks),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	if svc.leaderboardSvc != nil && svc.leaderboardSvc.cache != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(leaderboardWarmEvery),
			gocron.NewTask(svc.warmLeaderboards),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return err
		}
	}

	sched.Start()
	log.WithField("streak_sweep_cron", svc.sweepCron).Info("Scheduler started")
	return nil
}

func (svc *SchedulerService) Shutdown() {
	if svc.sched != nil {
		if err := svc.sched.Shutdown(); err != nil {
			log.WithError(err).Warn("Scheduler shutdown failed")
		}
	}
}

func (svc *SchedulerService) sweepStreaks() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := svc.streakSvc.ExpireStale(ctx, time.Now()); err != nil {
		log.WithError(err).Error("[Scheduler] Streak sweep failed")
	}
}

func (svc *SchedulerService) warmLeaderboards() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := svc.leaderboardSvc.Warm(ctx); err != nil {
		log.WithError(err).Warn("[Scheduler] Leaderboard warm-up failed")
	}
}
