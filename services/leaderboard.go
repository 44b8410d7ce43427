package services

import (
	"context"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	leaderboardCacheTTL     = time.Minute
)

// LeaderboardService ranks users by total XP or by XP earned over a recent window.
type LeaderboardService struct {
	appContext.DefaultService

	db    Database
	cache Cache
	now   func() time.Time
}

const LEADERBOARD_SVC = "leaderboard_svc"

func (svc LeaderboardService) Id() string {
	return LEADERBOARD_SVC
}

func (svc *LeaderboardService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *LeaderboardService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	if r, ok := svc.Service(REDIS_SVC).(*RedisService); ok && r.Enabled() {
		svc.cache = r
	}
	return nil
}

// periodStart returns the window start for period, or zero time for all time.
func periodStart(period string, now time.Time) (time.Time, error) {
	switch period {
	case "", shared.LeaderboardAllTime:
		return time.Time{}, nil
	case shared.LeaderboardWeekly:
		return shared.DayOf(now).AddDate(0, 0, -6), nil
	case shared.LeaderboardMonthly:
		return shared.DayOf(now).AddDate(0, 0, -29), nil
	default:
		return time.Time{}, shared.NewBadRequestError(nil, fmt.Sprintf("Unknown leaderboard period %q", period))
	}
}

func leaderboardCacheKey(period string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%d", period, limit)
}

// Leaderboard returns the top entries for period. When userID is set the
// caller's own rank is attached even if they are outside the top.
func (svc *LeaderboardService) Leaderboard(ctx context.Context, period string, limit int, userID string) (*dto.LeaderboardResponse, error) {
	if period == "" {
		period = shared.LeaderboardAllTime
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	since, err := periodStart(period, svc.now().UTC())
	if err != nil {
		return nil, err
	}

	resp, err := svc.top(ctx, period, since, limit)
	if err != nil {
		return nil, err
	}

	if userID != "" {
		resp.CurrentUser, err = svc.ownEntry(ctx, resp, since, userID)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func (svc *LeaderboardService) top(ctx context.Context, period string, since time.Time, limit int) (*dto.LeaderboardResponse, error) {
	key := leaderboardCacheKey(period, limit)
	if svc.cache != nil {
		var cached dto.LeaderboardResponse
		found, err := svc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Leaderboard cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	repo := repositories.NewLedgerRepository(svc.db.Db().WithContext(ctx))
	var rows []repositories.XPTotal
	var err error
	if since.IsZero() {
		rows, err = repo.TopAllTime(limit)
	} else {
		rows, err = repo.TopSince(since, limit)
	}
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	resp := &dto.LeaderboardResponse{
		Period:      period,
		Entries:     make([]dto.LeaderboardEntry, 0, len(rows)),
		GeneratedAt: svc.now().UTC(),
	}
	for i, r := range rows {
		rank := i + 1
		// Ties share the rank of the first user with that XP.
		if i > 0 && r.XP == rows[i-1].XP {
			rank = resp.Entries[i-1].Rank
		}
		resp.Entries = append(resp.Entries, dto.LeaderboardEntry{
			Rank:        rank,
			UserID:      r.UserID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			XP:          r.XP,
			Level:       r.Level,
		})
	}

	if svc.cache != nil {
		if err := svc.cache.SetJSON(ctx, key, resp, leaderboardCacheTTL); err != nil {
			log.WithError(err).WithField("key", key).Warn("Leaderboard cache write failed")
		}
	}
	return resp, nil
}

func (svc *LeaderboardService) ownEntry(ctx context.Context, resp *dto.LeaderboardResponse, since time.Time, userID string) (*dto.LeaderboardEntry, error) {
	for i := range resp.Entries {
		if resp.Entries[i].UserID == userID {
			entry := resp.Entries[i]
			return &entry, nil
		}
	}

	db := svc.db.Db().WithContext(ctx)
	user, err := repositories.NewUserRepository(db).GetUser(userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil
		}
		return nil, svc.db.HandleError(err)
	}

	repo := repositories.NewLedgerRepository(db)
	ledger, err := repo.FindLedger(userID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	entry := &dto.LeaderboardEntry{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Level:       ledger.Level,
	}
	if since.IsZero() {
		entry.XP = ledger.TotalXP
		entry.Rank, err = repo.RankAllTime(entry.XP)
	} else {
		if entry.XP, err = repo.SumSince(userID, since); err == nil {
			entry.Rank, err = repo.RankSince(since, entry.XP)
		}
	}
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	return entry, nil
}

// Warm refreshes the cached default boards so the first reader after expiry
// does not pay for the aggregate.
func (svc *LeaderboardService) Warm(ctx context.Context) error {
	if svc.cache == nil {
		return nil
	}
	for _, period := range []string{shared.LeaderboardAllTime, shared.LeaderboardWeekly, shared.LeaderboardMonthly} {
		if err := svc.cache.Delete(ctx, leaderboardCacheKey(period, defaultLeaderboardLimit)); err != nil {
			log.WithError(err).WithField("period", period).Warn("Failed to drop leaderboard cache")
		}
		if _, err := svc.Leaderboard(ctx, period, defaultLeaderboardLimit, ""); err != nil {
			return err
		}
	}
	return nil
}
