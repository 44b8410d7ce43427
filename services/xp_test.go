package services

import (
	"context"
	"sync"
	"testing"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwardXP_GrantsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	first, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "lesson-1", "Completed lesson")
	require.NoError(t, err)
	assert.True(t, first.Awarded())
	assert.Equal(t, 10, first.XPAwarded)
	assert.Equal(t, 10, first.NewTotalXP)
	assert.Equal(t, 1, first.NewLevel)
	assert.False(t, first.LevelUp)

	second, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "lesson-1", "Completed lesson")
	require.NoError(t, err)
	assert.False(t, second.Awarded())
	assert.Equal(t, dto.AwardReasonAlreadyAwarded, second.Reason)
	assert.Equal(t, 10, second.NewTotalXP)

	assert.Equal(t, 10, env.ledger(t, user.ID).TotalXP)
	assert.EqualValues(t, 1, env.awardCount(t, user.ID))
}

func TestAwardXP_SameTargetDifferentAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	_, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteSection, "shared-id", "")
	require.NoError(t, err)
	_, err = env.xp.AwardXP(ctx, user.ID, model.ActionCompleteCourse, "shared-id", "")
	require.NoError(t, err)

	assert.Equal(t, 125, env.ledger(t, user.ID).TotalXP)
}

func TestAwardXP_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	var wg sync.WaitGroup
	results := make([]*dto.AwardResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.xp.AwardXP(ctx, user.ID, model.ActionSolveProblemHard, "problem-1", "Solved")
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].Awarded() {
			granted++
		}
	}
	assert.Equal(t, 1, granted)
	assert.Equal(t, 50, env.ledger(t, user.ID).TotalXP)
	assert.EqualValues(t, 1, env.awardCount(t, user.ID))
}

func TestAwardXP_LevelUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	var last *dto.AwardResult
	for i, target := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"} {
		res, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, target, "")
		require.NoError(t, err)
		assert.False(t, res.LevelUp, "award %d", i)
		last = res
	}
	assert.Equal(t, 90, last.NewTotalXP)
	assert.Equal(t, 1, last.NewLevel)

	res, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "j", "")
	require.NoError(t, err)
	assert.True(t, res.LevelUp)
	assert.Equal(t, 100, res.NewTotalXP)
	assert.Equal(t, 2, res.NewLevel)

	ledger := env.ledger(t, user.ID)
	assert.Equal(t, 2, ledger.Level)
	assert.Equal(t, 150, ledger.XPToNextLevel)
}

func TestAwardXP_MultiLevelJump(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	levels, err := NewLevelTable([]int{0, 20, 40}, 20)
	require.NoError(t, err)
	env.xp.levels = levels

	res, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteCourse, "course-1", "")
	require.NoError(t, err)
	assert.True(t, res.LevelUp)
	assert.Equal(t, 6, res.NewLevel)
}

func TestAwardXP_UnknownInputsAreResults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	res, err := env.xp.AwardXP(ctx, "missing-user", model.ActionCompleteLesson, "lesson-1", "")
	require.NoError(t, err)
	assert.False(t, res.Awarded())
	assert.Equal(t, dto.AwardReasonUnknownUser, res.Reason)

	res, err = env.xp.AwardXP(ctx, user.ID, model.ActionKind("WRITE_BLOG_POST"), "post-1", "")
	require.NoError(t, err)
	assert.False(t, res.Awarded())
	assert.Equal(t, dto.AwardReasonUnknownAction, res.Reason)

	_, err = env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "", "")
	requireAppError(t, err, shared.ErrCodeBadRequest)

	assert.Equal(t, 0, env.ledger(t, user.ID).TotalXP)
}

func TestAwardXP_CountsTowardStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	_, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "lesson-1", "")
	require.NoError(t, err)

	streak, err := env.streak.GetStreak(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.CurrentStreak)
	assert.True(t, streak.ActiveToday)
}

func TestGetLedger_EmptyForNewUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ada")

	ledger := env.ledger(t, user.ID)
	assert.Equal(t, 0, ledger.TotalXP)
	assert.Equal(t, 1, ledger.Level)
	assert.Equal(t, 100, ledger.XPToNextLevel)
}

func TestListAwards_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	env.clock.Set("2024-03-08")
	_, err := env.xp.AwardXP(ctx, user.ID, model.ActionCompleteLesson, "lesson-1", "first")
	require.NoError(t, err)
	env.clock.Set("2024-03-09")
	_, err = env.xp.AwardXP(ctx, user.ID, model.ActionCompleteSection, "section-1", "second")
	require.NoError(t, err)

	awards, err := env.xp.ListAwards(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, awards, 2)
	assert.Equal(t, "second", awards[0].Description)
	assert.Equal(t, 25, awards[0].Amount)
	assert.Equal(t, "first", awards[1].Description)
}

func TestCheckIn_OncePerDay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")

	first, err := env.xp.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, first.XPAwarded)
	assert.Equal(t, "2024-03-10", first.Date)
	assert.Equal(t, 1, first.Streak)

	again, err := env.xp.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.XPAwarded)
	assert.Equal(t, 5, again.NewTotalXP)
	assert.Equal(t, 1, again.Streak)

	env.clock.Set("2024-03-11")
	next, err := env.xp.CheckIn(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, next.XPAwarded)
	assert.Equal(t, 2, next.Streak)
	assert.Equal(t, 10, next.NewTotalXP)

	days, err := env.activity.GetYearlyActivity(ctx, user.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, []dto.DailyActivity{{Date: "2024-03-10", Count: 1}, {Date: "2024-03-11", Count: 1}}, days)
}

func TestCheckIn_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.xp.CheckIn(context.Background(), "nobody")
	requireAppError(t, err, shared.ErrCodeNotFound)
}
