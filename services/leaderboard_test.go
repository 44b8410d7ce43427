package services

import (
	"context"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodStart(t *testing.T) {
	now := day(t, "2024-03-10").Add(15 * time.Hour)

	since, err := periodStart(shared.LeaderboardAllTime, now)
	require.NoError(t, err)
	assert.True(t, since.IsZero())

	since, err = periodStart(shared.LeaderboardWeekly, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-04", shared.DayKey(since))

	since, err = periodStart(shared.LeaderboardMonthly, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-10", shared.DayKey(since))

	_, err = periodStart("yearly", now)
	requireAppError(t, err, shared.ErrCodeBadRequest)
}

// seedLeaderboard gives ada an old hard solve, linus two recent ones and
// grace a recent lesson.
func seedLeaderboard(t *testing.T, env *testEnv) (ada, linus, grace *model.User) {
	t.Helper()
	ctx := context.Background()
	ada = env.createUser(t, "ada")
	linus = env.createUser(t, "linus")
	grace = env.createUser(t, "grace")
	env.createUser(t, "idle")

	award := func(u *model.User, d string, kind model.ActionKind, target string) {
		env.clock.Set(d)
		_, err := env.xp.AwardXP(ctx, u.ID, kind, target, "")
		require.NoError(t, err)
	}
	award(ada, "2024-01-15", model.ActionCompleteCourse, "course-1")
	award(ada, "2024-01-15", model.ActionSolveProblemHard, "p-1")
	award(linus, "2024-03-08", model.ActionSolveProblemHard, "p-1")
	award(linus, "2024-03-09", model.ActionSolveProblemMedium, "p-2")
	award(grace, "2024-03-10", model.ActionCompleteLesson, "l-1")

	env.clock.Set("2024-03-10")
	return ada, linus, grace
}

func TestLeaderboard_AllTime(t *testing.T) {
	env := newTestEnv(t)
	ada, linus, grace := seedLeaderboard(t, env)

	resp, err := env.leaderboard.Leaderboard(context.Background(), "", 0, "")
	require.NoError(t, err)
	assert.Equal(t, shared.LeaderboardAllTime, resp.Period)
	require.Len(t, resp.Entries, 3, "users without XP are not ranked")

	assert.Equal(t, ada.ID, resp.Entries[0].UserID)
	assert.Equal(t, 150, resp.Entries[0].XP)
	assert.Equal(t, 2, resp.Entries[0].Level)
	assert.Equal(t, linus.ID, resp.Entries[1].UserID)
	assert.Equal(t, 75, resp.Entries[1].XP)
	assert.Equal(t, grace.ID, resp.Entries[2].UserID)
	assert.Equal(t, 3, resp.Entries[2].Rank)
	assert.Nil(t, resp.CurrentUser)
}

func TestLeaderboard_Weekly(t *testing.T) {
	env := newTestEnv(t)
	_, linus, grace := seedLeaderboard(t, env)

	resp, err := env.leaderboard.Leaderboard(context.Background(), shared.LeaderboardWeekly, 10, grace.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, linus.ID, resp.Entries[0].UserID)
	assert.Equal(t, 75, resp.Entries[0].XP)
	assert.Equal(t, grace.ID, resp.Entries[1].UserID)

	require.NotNil(t, resp.CurrentUser)
	assert.Equal(t, 2, resp.CurrentUser.Rank)
	assert.Equal(t, 10, resp.CurrentUser.XP)
}

func TestLeaderboard_CurrentUserOutsideTop(t *testing.T) {
	env := newTestEnv(t)
	_, _, grace := seedLeaderboard(t, env)
	ctx := context.Background()

	resp, err := env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 1, grace.ID)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	require.NotNil(t, resp.CurrentUser)
	assert.Equal(t, 3, resp.CurrentUser.Rank)
	assert.Equal(t, 10, resp.CurrentUser.XP)
	assert.Equal(t, "grace", resp.CurrentUser.Username)

	resp, err = env.leaderboard.Leaderboard(ctx, shared.LeaderboardMonthly, 1, grace.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.CurrentUser)
	assert.Equal(t, 2, resp.CurrentUser.Rank)

	resp, err = env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 1, "nobody")
	require.NoError(t, err)
	assert.Nil(t, resp.CurrentUser)
}

func TestLeaderboard_TiesShareRank(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.createUser(t, "a")
	b := env.createUser(t, "b")
	c := env.createUser(t, "c")

	for _, u := range []*model.User{a, b} {
		_, err := env.xp.AwardXP(ctx, u.ID, model.ActionSolveProblemMedium, "p", "")
		require.NoError(t, err)
	}
	_, err := env.xp.AwardXP(ctx, c.ID, model.ActionCompleteLesson, "l", "")
	require.NoError(t, err)

	resp, err := env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 10, "")
	require.NoError(t, err)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, 1, resp.Entries[0].Rank)
	assert.Equal(t, 1, resp.Entries[1].Rank)
	assert.Equal(t, 3, resp.Entries[2].Rank)
}

func TestLeaderboard_CacheAndWarm(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, linus, _ := seedLeaderboard(t, env)
	cache := newMemCache()
	env.leaderboard.cache = cache

	first, err := env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 0, "")
	require.NoError(t, err)
	key := leaderboardCacheKey(shared.LeaderboardAllTime, defaultLeaderboardLimit)
	require.True(t, cache.Has(key))

	_, err = env.xp.AwardXP(ctx, linus.ID, model.ActionCompleteCourse, "course-9", "")
	require.NoError(t, err)

	cached, err := env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 0, "")
	require.NoError(t, err)
	assert.Equal(t, first.Entries, cached.Entries)

	require.NoError(t, env.leaderboard.Warm(ctx))
	for _, period := range []string{shared.LeaderboardAllTime, shared.LeaderboardWeekly, shared.LeaderboardMonthly} {
		assert.True(t, cache.Has(leaderboardCacheKey(period, defaultLeaderboardLimit)), period)
	}

	fresh, err := env.leaderboard.Leaderboard(ctx, shared.LeaderboardAllTime, 0, "")
	require.NoError(t, err)
	assert.Equal(t, linus.ID, fresh.Entries[0].UserID)
	assert.Equal(t, 175, fresh.Entries[0].XP)
}

func TestLeaderboard_UnknownPeriod(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.leaderboard.Leaderboard(context.Background(), "daily", 10, "")
	requireAppError(t, err, shared.ErrCodeBadRequest)
}
