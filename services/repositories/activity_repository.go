package repositories

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	BaseRepository
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *ActivityRepository) CreateEvent(userID string, kind model.ActivityKind, entityID string, at time.Time) (*model.ActivityEvent, error) {
	event := &model.ActivityEvent{
		ID:           newID(),
		UserID:       userID,
		Kind:         kind,
		EntityID:     entityID,
		ActivityDate: shared.DayKey(at),
		OccurredAt:   at.UTC(),
	}
	if err := ds.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// DayCount is one aggregated calendar day.
type DayCount struct {
	Day   string
	Count int
}

// CountByDay aggregates a user's events per UTC day between from and to inclusive
// in one grouped query. Days without events are absent.
func (ds *ActivityRepository) CountByDay(userID string, from, to time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := ds.db.Model(&model.ActivityEvent{}).
		Select("activity_date AS day, COUNT(*) AS count").
		Where("user_id = ? AND activity_date >= ? AND activity_date <= ?", userID, shared.DayKey(from), shared.DayKey(to)).
		Group("activity_date").
		Order("activity_date ASC").
		Scan(&rows).Error
	return rows, err
}

// ActiveYears lists the distinct years in which the user has any event.
func (ds *ActivityRepository) ActiveYears(userID string) ([]int, error) {
	var keys []string
	err := ds.db.Model(&model.ActivityEvent{}).
		Where("user_id = ?", userID).
		Distinct().
		Pluck("activity_date", &keys).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var years []int
	for _, k := range keys {
		day, err := shared.ParseDay(k)
		if err != nil || seen[day.Year()] {
			continue
		}
		seen[day.Year()] = true
		years = append(years, day.Year())
	}
	return years, nil
}

func (ds *ActivityRepository) DeleteForUser(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.ActivityEvent{}).Error
}
