package repositories

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StreakRepository struct {
	BaseRepository
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *StreakRepository) EnsureStreak(userID string) error {
	streak := &model.UserStreak{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
	return ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(streak).Error
}

// LockStreak reads the row for update. Callers must be inside a transaction.
func (ds *StreakRepository) LockStreak(userID string) (*model.UserStreak, error) {
	q := ds.db
	if ds.isPostgres() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var streak model.UserStreak
	if err := q.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		return nil, err
	}
	return &streak, nil
}

func (ds *StreakRepository) FindStreak(userID string) (*model.UserStreak, error) {
	var streaks []model.UserStreak
	if err := ds.db.Where("user_id = ?", userID).Limit(1).Find(&streaks).Error; err != nil {
		return nil, err
	}
	if len(streaks) == 0 {
		return &model.UserStreak{UserID: userID}, nil
	}
	return &streaks[0], nil
}

func (ds *StreakRepository) SaveStreak(streak *model.UserStreak) error {
	streak.UpdatedAt = time.Now().UTC()
	return ds.db.Model(&model.UserStreak{}).
		Where("user_id = ?", streak.UserID).
		Updates(map[string]interface{}{
			"current_streak":   streak.CurrentStreak,
			"longest_streak":   streak.LongestStreak,
			"last_active_date": streak.LastActiveDate,
			"updated_at":       streak.UpdatedAt,
		}).Error
}

// ExpireBefore zeroes current streaks whose last active day is earlier than cutoff.
// Longest streaks are left alone.
func (ds *StreakRepository) ExpireBefore(cutoff time.Time) (int64, error) {
	res := ds.db.Model(&model.UserStreak{}).
		Where("current_streak > 0 AND last_active_date < ?", cutoff).
		Updates(map[string]interface{}{
			"current_streak": 0,
			"updated_at":     time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (ds *StreakRepository) DeleteForUser(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.UserStreak{}).Error
}
