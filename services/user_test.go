package services

import (
	"context"
	"testing"

	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 2)
	problem := env.createProblem(t, "Two Sum", model.DifficultyEasy)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	require.NoError(t, err)

	env.judge.Queue(passed(3))
	_, err = env.practice.SubmitSolution(ctx, user.ID, problem.ID, "go", "package main")
	require.NoError(t, err)

	profile, err := env.users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)
	assert.Equal(t, "Ada", profile.DisplayName)
	assert.Equal(t, 20, profile.Ledger.TotalXP)
	assert.Equal(t, 1, profile.Ledger.Level)
	assert.Equal(t, 1, profile.Streak.CurrentStreak)
	assert.EqualValues(t, 1, profile.SolvedCount)
	assert.Len(t, profile.RecentAwards, 2)

	_, err = env.users.GetProfile(ctx, "nobody")
	requireAppError(t, err, shared.ErrCodeNotFound)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	keep := env.createUser(t, "linus")
	course := env.createCourse(t, "Go Basics", 1)
	problem := env.createProblem(t, "Two Sum", model.DifficultyEasy)
	cache := newMemCache()
	env.activity.cache = cache

	for _, u := range []*model.User{user, keep} {
		_, err := env.progress.Enroll(ctx, u.ID, course.Course.ID)
		require.NoError(t, err)
		_, err = env.progress.CompleteLesson(ctx, u.ID, course.Course.ID, course.Lessons[0][0].ID)
		require.NoError(t, err)
		_, err = env.practice.SubmitSolution(ctx, u.ID, problem.ID, "go", "package main")
		require.NoError(t, err)
	}
	_, err := env.activity.GetYearlyActivity(ctx, user.ID, 2024)
	require.NoError(t, err)
	require.True(t, cache.Has(activityCacheKey(user.ID, 2024)))
	require.Equal(t, 2, env.archive.Len())

	require.NoError(t, env.users.DeleteAccount(ctx, user.ID))

	db := env.db.Db()
	for _, m := range []interface{}{
		&model.XPAward{}, &model.UserXPLedger{}, &model.UserStreak{},
		&model.LessonProgress{}, &model.CourseEnrollment{},
		&model.PracticeSubmission{}, &model.ActivityEvent{},
	} {
		var n int64
		require.NoError(t, db.Model(m).Where("user_id = ?", user.ID).Count(&n).Error)
		assert.Zero(t, n, "%T rows left behind", m)
	}

	_, err = repositories.NewUserRepository(db).GetUser(user.ID)
	assert.True(t, repositories.IsNotFound(err))

	assert.False(t, cache.Has(activityCacheKey(user.ID, 2024)))
	assert.Equal(t, 1, env.archive.Len())

	// the other learner is untouched
	assert.Equal(t, 135, env.ledger(t, keep.ID).TotalXP)

	err = env.users.DeleteAccount(ctx, user.ID)
	requireAppError(t, err, shared.ErrCodeNotFound)
}
