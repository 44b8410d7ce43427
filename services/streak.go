package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StreakService is the only writer of user_streaks. Days are UTC calendar days.
type StreakService struct {
	appContext.DefaultService

	db  Database
	now func() time.Time
}

const STREAK_SVC = "streak_svc"

func (svc StreakService) Id() string {
	return STREAK_SVC
}

func (svc *StreakService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *StreakService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	return nil
}

// RecordActivity applies one qualifying activity in its own transaction.
func (svc *StreakService) RecordActivity(ctx context.Context, userID string, at time.Time) (*model.UserStreak, error) {
	var streak *model.UserStreak
	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		streak, err = svc.RecordActivityTx(tx, userID, at)
		return err
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	return streak, nil
}

// RecordActivityTx applies the activity inside the caller's transaction.
// Repeated calls for the same day have no further effect.
func (svc *StreakService) RecordActivityTx(tx *gorm.DB, userID string, at time.Time) (*model.UserStreak, error) {
	repo := repositories.NewStreakRepository(tx)
	if err := repo.EnsureStreak(userID); err != nil {
		return nil, err
	}

	streak, err := repo.LockStreak(userID)
	if err != nil {
		return nil, err
	}

	if !advanceStreak(streak, at) {
		return streak, nil
	}
	if err := repo.SaveStreak(streak); err != nil {
		return nil, err
	}
	return streak, nil
}

// advanceStreak applies the day transition rules and reports whether anything changed.
// Activity dated on or before the last active day is ignored.
func advanceStreak(streak *model.UserStreak, at time.Time) bool {
	day := shared.DayOf(at)

	if streak.LastActiveDate == nil {
		streak.CurrentStreak = 1
	} else {
		switch gap := shared.DaysBetween(*streak.LastActiveDate, day); {
		case gap <= 0:
			return false
		case gap == 1:
			streak.CurrentStreak++
		default:
			streak.CurrentStreak = 1
		}
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActiveDate = &day
	return true
}

// GetStreak reports the streak as of now. A streak whose last active day is
// before yesterday is shown as broken even if the sweep has not run yet.
func (svc *StreakService) GetStreak(ctx context.Context, userID string) (*dto.StreakResponse, error) {
	streak, err := repositories.NewStreakRepository(svc.db.Db().WithContext(ctx)).FindStreak(userID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	return streakView(streak, svc.now()), nil
}

func streakView(streak *model.UserStreak, now time.Time) *dto.StreakResponse {
	resp := &dto.StreakResponse{
		CurrentStreak: streak.CurrentStreak,
		LongestStreak: streak.LongestStreak,
	}
	if !streak.UpdatedAt.IsZero() {
		updated := streak.UpdatedAt
		resp.UpdatedAt = &updated
	}
	if streak.LastActiveDate == nil {
		resp.CurrentStreak = 0
		return resp
	}

	last := shared.DayKey(*streak.LastActiveDate)
	resp.LastActiveDate = &last

	gap := shared.DaysBetween(*streak.LastActiveDate, now)
	resp.ActiveToday = gap == 0
	if gap > 1 {
		resp.CurrentStreak = 0
	}
	return resp
}

// ExpireStale zeroes current streaks that were not extended yesterday or today.
func (svc *StreakService) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	cutoff := shared.DayOf(now).AddDate(0, 0, -1)

	expired, err := repositories.NewStreakRepository(svc.db.Db().WithContext(ctx)).ExpireBefore(cutoff)
	if err != nil {
		return 0, svc.db.HandleError(err)
	}

	log.WithFields(log.Fields{
		"cutoff":  shared.DayKey(cutoff),
		"expired": expired,
	}).Info("Expired stale streaks")
	return expired, nil
}
