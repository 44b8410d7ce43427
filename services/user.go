package services

import (
	"context"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const profileRecentAwards = 10

type UserService struct {
	appContext.DefaultService

	db          Database
	xpSvc       *XPService
	streakSvc   *StreakService
	activitySvc *ActivityService
	archive     CodeArchive
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	svc.xpSvc = svc.Service(XP_SVC).(*XPService)
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	svc.activitySvc = svc.Service(ACTIVITY_SVC).(*ActivityService)
	if m, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && m.Enabled() {
		svc.archive = m
	}
	return nil
}

// GetProfile gathers the user's gamification summary. The independent reads
// run concurrently.
func (svc *UserService) GetProfile(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	user, err := repositories.NewUserRepository(svc.db.Db().WithContext(ctx)).GetUser(userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, shared.NewNotFoundError(err, "User not found")
		}
		return nil, svc.db.HandleError(err)
	}

	resp := &dto.ProfileResponse{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		JoinedAt:    user.CreatedAt,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ledger, err := svc.xpSvc.GetLedger(gctx, userID)
		if err != nil {
			return err
		}
		resp.Ledger = *ledger
		return nil
	})
	g.Go(func() error {
		streak, err := svc.streakSvc.GetStreak(gctx, userID)
		if err != nil {
			return err
		}
		resp.Streak = *streak
		return nil
	})
	g.Go(func() error {
		awards, err := svc.xpSvc.ListAwards(gctx, userID, profileRecentAwards)
		if err != nil {
			return err
		}
		resp.RecentAwards = awards
		return nil
	})
	g.Go(func() error {
		solved, err := repositories.NewSubmissionRepository(svc.db.Db().WithContext(gctx)).CountSolvedProblems(userID)
		if err != nil {
			return svc.db.HandleError(err)
		}
		resp.SolvedCount = solved
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAccount removes the user and everything they own in one transaction.
// Archived source objects are removed after commit on a best-effort basis.
func (svc *UserService) DeleteAccount(ctx context.Context, userID string) error {
	var codeKeys []string
	var activeYears []time.Time

	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		codeKeys, err = repositories.NewSubmissionRepository(tx).ListCodeKeys(userID)
		if err != nil {
			return err
		}

		years, err := repositories.NewActivityRepository(tx).ActiveYears(userID)
		if err != nil {
			return err
		}
		for _, y := range years {
			activeYears = append(activeYears, time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC))
		}

		if err := repositories.NewUserRepository(tx).DeleteUserCascade(userID); err != nil {
			if repositories.IsNotFound(err) {
				return shared.NewNotFoundError(err, "User not found")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return svc.db.HandleError(err)
	}

	svc.activitySvc.Invalidate(ctx, userID, activeYears...)
	if svc.archive != nil && len(codeKeys) > 0 {
		if err := svc.archive.DeleteObjects(ctx, codeKeys...); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Some archived submissions were not removed")
		}
	}

	log.WithFields(log.Fields{
		"user_id":      userID,
		"code_objects": len(codeKeys),
		"active_years": len(activeYears),
	}).Info("User account deleted")
	return nil
}
