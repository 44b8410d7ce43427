package services

import (
	"context"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// XPService is the only writer of the XP ledger.
type XPService struct {
	appContext.DefaultService

	db          Database
	streakSvc   *StreakService
	activitySvc *ActivityService
	monitoring  *MonitoringService

	levels *LevelTable
	now    func() time.Time
}

const XP_SVC = "xp_svc"

func (svc XPService) Id() string {
	return XP_SVC
}

func (svc *XPService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	svc.levels = DefaultLevelTable()

	if raw := os.Getenv("LEVEL_THRESHOLDS"); raw != "" {
		thresholds, err := ParseLevelThresholds(raw)
		if err != nil {
			return err
		}
		if svc.levels, err = NewLevelTable(thresholds, DefaultLevelStep); err != nil {
			return err
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *XPService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	svc.streakSvc = svc.Service(STREAK_SVC).(*StreakService)
	svc.activitySvc = svc.Service(ACTIVITY_SVC).(*ActivityService)
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = m
	}
	return nil
}

func (svc *XPService) Levels() *LevelTable {
	return svc.levels
}

// AwardXP grants the fixed reward for kind on targetID at most once per user.
// Unknown users and unknown actions produce a zero result, not an error.
func (svc *XPService) AwardXP(ctx context.Context, userID string, kind model.ActionKind, targetID, description string) (*dto.AwardResult, error) {
	var result *dto.AwardResult
	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = svc.AwardXPTx(tx, userID, kind, targetID, description)
		return err
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	svc.Observe(result)
	return result, nil
}

// AwardXPTx runs the award inside the caller's transaction so it commits or
// rolls back together with whatever triggered it. Callers report the result
// with Observe after commit.
func (svc *XPService) AwardXPTx(tx *gorm.DB, userID string, kind model.ActionKind, targetID, description string) (*dto.AwardResult, error) {
	result := &dto.AwardResult{ActionKind: kind, TargetID: targetID}

	if targetID == "" {
		return nil, shared.NewBadRequestError(nil, "Award target is required")
	}

	amount, ok := kind.XP()
	if !ok {
		result.Reason = dto.AwardReasonUnknownAction
		return result, nil
	}

	exists, err := repositories.NewUserRepository(tx).UserExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		result.Reason = dto.AwardReasonUnknownUser
		return result, nil
	}

	now := svc.now().UTC()
	ledgerRepo := repositories.NewLedgerRepository(tx)

	created, err := ledgerRepo.InsertAward(&model.XPAward{
		UserID:      userID,
		ActionKind:  kind,
		TargetID:    targetID,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		ledger, err := ledgerRepo.FindLedger(userID)
		if err != nil {
			return nil, err
		}
		result.Reason = dto.AwardReasonAlreadyAwarded
		result.NewTotalXP = ledger.TotalXP
		result.NewLevel = ledger.Level
		return result, nil
	}

	if err := ledgerRepo.EnsureLedger(userID); err != nil {
		return nil, err
	}
	if err := ledgerRepo.AddXP(userID, amount); err != nil {
		return nil, err
	}
	ledger, err := ledgerRepo.GetLedger(userID)
	if err != nil {
		return nil, err
	}

	newLevel := svc.levels.LevelFor(ledger.TotalXP)
	if newLevel < ledger.Level {
		newLevel = ledger.Level
	}
	if newLevel > ledger.Level {
		if err := ledgerRepo.RaiseLevel(userID, newLevel); err != nil {
			return nil, err
		}
	}

	if _, err := svc.streakSvc.RecordActivityTx(tx, userID, now); err != nil {
		return nil, err
	}

	result.XPAwarded = amount
	result.LevelUp = newLevel > ledger.Level
	result.NewTotalXP = ledger.TotalXP
	result.NewLevel = newLevel
	return result, nil
}

// Observe reports committed awards to logs and metrics.
func (svc *XPService) Observe(results ...*dto.AwardResult) {
	for _, r := range results {
		if !r.Awarded() {
			continue
		}
		svc.monitoring.RecordAward(string(r.ActionKind), r.XPAwarded, r.LevelUp)

		entry := log.WithFields(log.Fields{
			"action":    r.ActionKind,
			"target_id": r.TargetID,
			"xp":        r.XPAwarded,
			"total_xp":  r.NewTotalXP,
			"level":     r.NewLevel,
		})
		if r.LevelUp {
			entry.Info("XP awarded with level up")
		} else {
			entry.Debug("XP awarded")
		}
	}
}

func (svc *XPService) GetLedger(ctx context.Context, userID string) (*dto.LedgerResponse, error) {
	ledger, err := repositories.NewLedgerRepository(svc.db.Db().WithContext(ctx)).FindLedger(userID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	return svc.ledgerView(ledger), nil
}

func (svc *XPService) ledgerView(ledger *model.UserXPLedger) *dto.LedgerResponse {
	return &dto.LedgerResponse{
		UserID:        ledger.UserID,
		TotalXP:       ledger.TotalXP,
		Level:         ledger.Level,
		XPToNextLevel: svc.levels.ThresholdFor(ledger.Level+1) - ledger.TotalXP,
	}
}

func (svc *XPService) ListAwards(ctx context.Context, userID string, limit int) ([]dto.XPAwardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	awards, err := repositories.NewLedgerRepository(svc.db.Db().WithContext(ctx)).ListAwards(userID, limit)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	out := make([]dto.XPAwardResponse, 0, len(awards))
	for _, a := range awards {
		out = append(out, dto.XPAwardResponse{
			ActionKind:  a.ActionKind,
			TargetID:    a.TargetID,
			Amount:      a.Amount,
			Description: a.Description,
			AwardedAt:   a.CreatedAt,
		})
	}
	return out, nil
}

// CheckIn grants the daily login reward once per UTC day and counts as activity.
func (svc *XPService) CheckIn(ctx context.Context, userID string) (*dto.CheckInResponse, error) {
	now := svc.now().UTC()
	day := shared.DayKey(now)

	var result *dto.AwardResult
	var streak *model.UserStreak
	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = svc.AwardXPTx(tx, userID, model.ActionDailyLogin, day, "Daily check-in "+day)
		if err != nil {
			return err
		}
		if result.Reason == dto.AwardReasonUnknownUser {
			return shared.NewNotFoundError(nil, "User not found")
		}

		if result.Awarded() {
			if _, err := svc.activitySvc.RecordEventTx(tx, userID, model.ActivityDailyLogin, day, now); err != nil {
				return err
			}
		}

		streak, err = repositories.NewStreakRepository(tx).FindStreak(userID)
		return err
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	svc.Observe(result)
	if result.Awarded() {
		svc.activitySvc.Invalidate(ctx, userID, now)
	}

	return &dto.CheckInResponse{
		Date:       day,
		XPAwarded:  result.XPAwarded,
		LevelUp:    result.LevelUp,
		NewTotalXP: result.NewTotalXP,
		NewLevel:   result.NewLevel,
		Streak:     streakView(streak, now).CurrentStreak,
	}, nil
}
