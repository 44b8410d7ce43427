package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minActivityYear = 2000
	maxActivityYear = 2200

	activityCacheTTL = 10 * time.Minute
)

// ActivityService records activity events and aggregates them per UTC day.
type ActivityService struct {
	appContext.DefaultService

	db    Database
	cache Cache
	now   func() time.Time
}

const ACTIVITY_SVC = "activity_svc"

func (svc ActivityService) Id() string {
	return ACTIVITY_SVC
}

func (svc *ActivityService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ActivityService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	if r, ok := svc.Service(REDIS_SVC).(*RedisService); ok && r.Enabled() {
		svc.cache = r
	}
	return nil
}

// IntensityLevel buckets a day's event count for heatmap display.
func IntensityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}

func (svc *ActivityService) RecordEvent(ctx context.Context, userID string, kind model.ActivityKind, entityID string, at time.Time) (*model.ActivityEvent, error) {
	var event *model.ActivityEvent
	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = svc.RecordEventTx(tx, userID, kind, entityID, at)
		return err
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	svc.Invalidate(ctx, userID, at)
	return event, nil
}

// RecordEventTx writes the event in the caller's transaction. The caller
// invalidates cached aggregates once the transaction commits.
func (svc *ActivityService) RecordEventTx(tx *gorm.DB, userID string, kind model.ActivityKind, entityID string, at time.Time) (*model.ActivityEvent, error) {
	if !kind.Valid() {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Unknown activity kind %q", kind))
	}
	return repositories.NewActivityRepository(tx).CreateEvent(userID, kind, entityID, at)
}

// RecordView records a content view for the current user.
func (svc *ActivityService) RecordView(ctx context.Context, userID, entityID string) (*model.ActivityEvent, error) {
	return svc.RecordEvent(ctx, userID, model.ActivityContentView, entityID, svc.now())
}

func activityCacheKey(userID string, year int) string {
	return fmt.Sprintf("activity:%s:%d", userID, year)
}

// Invalidate drops cached aggregates for the years containing the given times.
func (svc *ActivityService) Invalidate(ctx context.Context, userID string, at ...time.Time) {
	if svc.cache == nil {
		return
	}
	keys := make([]string, 0, len(at))
	for _, t := range at {
		keys = append(keys, activityCacheKey(userID, t.UTC().Year()))
	}
	if err := svc.cache.Delete(ctx, keys...); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate activity cache")
	}
}

// GetYearlyActivity returns one entry per day of year with at least one event,
// ascending by date.
func (svc *ActivityService) GetYearlyActivity(ctx context.Context, userID string, year int) ([]dto.DailyActivity, error) {
	if year < minActivityYear || year > maxActivityYear {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Year must be between %d and %d", minActivityYear, maxActivityYear))
	}

	key := activityCacheKey(userID, year)
	if svc.cache != nil {
		var cached []dto.DailyActivity
		found, err := svc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Activity cache read failed")
		} else if found {
			return cached, nil
		}
	}

	from, to := shared.YearBounds(year)
	days, err := svc.countByDay(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	if svc.cache != nil {
		if err := svc.cache.SetJSON(ctx, key, days, activityCacheTTL); err != nil {
			log.WithError(err).WithField("key", key).Warn("Activity cache write failed")
		}
	}
	return days, nil
}

// GetDailyActivity aggregates events between from and to, both inclusive UTC days.
func (svc *ActivityService) GetDailyActivity(ctx context.Context, userID string, from, to time.Time) ([]dto.DailyActivity, error) {
	if shared.DayOf(to).Before(shared.DayOf(from)) {
		return nil, shared.NewBadRequestError(nil, "Range start must not be after range end")
	}
	return svc.countByDay(ctx, userID, from, to)
}

func (svc *ActivityService) countByDay(ctx context.Context, userID string, from, to time.Time) ([]dto.DailyActivity, error) {
	rows, err := repositories.NewActivityRepository(svc.db.Db().WithContext(ctx)).CountByDay(userID, from, to)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	days := make([]dto.DailyActivity, 0, len(rows))
	for _, r := range rows {
		days = append(days, dto.DailyActivity{Date: r.Day, Count: r.Count})
	}
	return days, nil
}

// GetCalendar expands the yearly aggregate into every day of the year.
func (svc *ActivityService) GetCalendar(ctx context.Context, userID string, year int) (*dto.ActivityCalendarResponse, error) {
	days, err := svc.GetYearlyActivity(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	return buildCalendar(year, days), nil
}

func buildCalendar(year int, days []dto.DailyActivity) *dto.ActivityCalendarResponse {
	counts := make(map[string]int, len(days))
	for _, d := range days {
		counts[d.Date] = d.Count
	}

	first, last := shared.YearBounds(year)
	resp := &dto.ActivityCalendarResponse{
		Year: year,
		Days: make([]dto.CalendarDay, 0, 366),
	}

	run := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := shared.DayKey(day)
		count := counts[key]

		resp.Days = append(resp.Days, dto.CalendarDay{
			Date:      key,
			Count:     count,
			Intensity: IntensityLevel(count),
		})
		resp.TotalEvents += count

		if count > 0 {
			resp.ActiveDays++
			run++
			if run > resp.LongestStreak {
				resp.LongestStreak = run
			}
		} else {
			run = 0
		}
	}
	return resp
}
