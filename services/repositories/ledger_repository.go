package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository owns user_xp_ledgers and xp_awards.
type LedgerRepository struct {
	BaseRepository
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// InsertAward writes the award row unless one already exists for the same
// (user, action, target). It reports whether this call created the row.
func (ds *LedgerRepository) InsertAward(award *model.XPAward) (bool, error) {
	if award.ID == "" {
		id, _ := uuid.NewV7()
		award.ID = id.String()
	}
	if award.CreatedAt.IsZero() {
		award.CreatedAt = time.Now().UTC()
	}

	res := ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(award)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (ds *LedgerRepository) EnsureLedger(userID string) error {
	now := time.Now().UTC()
	ledger := &model.UserXPLedger{
		UserID:    userID,
		TotalXP:   0,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(ledger).Error
}

// AddXP increments the total in a single statement so concurrent awards never lose an update.
func (ds *LedgerRepository) AddXP(userID string, amount int) error {
	return ds.db.Model(&model.UserXPLedger{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_xp":   gorm.Expr("total_xp + ?", amount),
			"updated_at": time.Now().UTC(),
		}).Error
}

// RaiseLevel only ever moves the stored level upwards.
func (ds *LedgerRepository) RaiseLevel(userID string, level int) error {
	return ds.db.Model(&model.UserXPLedger{}).
		Where("user_id = ? AND level < ?", userID, level).
		Update("level", level).Error
}

func (ds *LedgerRepository) GetLedger(userID string) (*model.UserXPLedger, error) {
	var ledger model.UserXPLedger
	if err := ds.db.Where("user_id = ?", userID).First(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

// FindLedger is GetLedger that treats a missing row as an empty ledger.
func (ds *LedgerRepository) FindLedger(userID string) (*model.UserXPLedger, error) {
	var ledgers []model.UserXPLedger
	if err := ds.db.Where("user_id = ?", userID).Limit(1).Find(&ledgers).Error; err != nil {
		return nil, err
	}
	if len(ledgers) == 0 {
		return &model.UserXPLedger{UserID: userID, Level: 1}, nil
	}
	return &ledgers[0], nil
}

func (ds *LedgerRepository) ListAwards(userID string, limit int) ([]model.XPAward, error) {
	var awards []model.XPAward
	err := ds.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&awards).Error
	return awards, err
}

func (ds *LedgerRepository) CountAwards(userID string, kinds ...model.ActionKind) (int64, error) {
	var count int64
	q := ds.db.Model(&model.XPAward{}).Where("user_id = ?", userID)
	if len(kinds) > 0 {
		q = q.Where("action_kind IN ?", kinds)
	}
	err := q.Count(&count).Error
	return count, err
}

// XPTotal is a user's XP within some window, used for ranking.
type XPTotal struct {
	UserID      string
	Username    string
	DisplayName string
	XP          int
	Level       int
}

// TopAllTime ranks users by their ledger total.
func (ds *LedgerRepository) TopAllTime(limit int) ([]XPTotal, error) {
	var rows []XPTotal
	err := ds.db.Table("user_xp_ledgers AS l").
		Select("l.user_id AS user_id, u.username AS username, u.display_name AS display_name, l.total_xp AS xp, l.level AS level").
		Joins("JOIN users u ON u.id = l.user_id").
		Where("l.total_xp > 0").
		Order("l.total_xp DESC, l.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// TopSince ranks users by XP awarded at or after since.
func (ds *LedgerRepository) TopSince(since time.Time, limit int) ([]XPTotal, error) {
	var rows []XPTotal
	err := ds.db.Table("xp_awards AS a").
		Select("a.user_id AS user_id, u.username AS username, u.display_name AS display_name, SUM(a.amount) AS xp, COALESCE(l.level, 1) AS level").
		Joins("JOIN users u ON u.id = a.user_id").
		Joins("LEFT JOIN user_xp_ledgers l ON l.user_id = a.user_id").
		Where("a.created_at >= ?", since).
		Group("a.user_id, u.username, u.display_name, l.level").
		Order("xp DESC, a.user_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

// SumSince returns the XP a user earned at or after since.
func (ds *LedgerRepository) SumSince(userID string, since time.Time) (int, error) {
	var total int
	err := ds.db.Model(&model.XPAward{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&total).Error
	return total, err
}

// RankAllTime is 1 + the number of users strictly ahead on total XP.
func (ds *LedgerRepository) RankAllTime(totalXP int) (int, error) {
	var ahead int64
	err := ds.db.Model(&model.UserXPLedger{}).Where("total_xp > ?", totalXP).Count(&ahead).Error
	return int(ahead) + 1, err
}

// RankSince is 1 + the number of users who earned more than xp since the cutoff.
func (ds *LedgerRepository) RankSince(since time.Time, xp int) (int, error) {
	sub := ds.db.Model(&model.XPAward{}).
		Select("user_id").
		Where("created_at >= ?", since).
		Group("user_id").
		Having("SUM(amount) > ?", xp)

	var ahead int64
	err := ds.db.Table("(?) AS ahead", sub).Count(&ahead).Error
	return int(ahead) + 1, err
}

func (ds *LedgerRepository) DeleteForUser(userID string) error {
	if err := ds.db.Where("user_id = ?", userID).Delete(&model.XPAward{}).Error; err != nil {
		return err
	}
	return ds.db.Where("user_id = ?", userID).Delete(&model.UserXPLedger{}).Error
}
