package services

import (
	"context"
	"sync"
	"testing"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseProgress(t *testing.T) {
	cases := []struct {
		completed, total int64
		want             int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{199, 200, 99},
		{999, 1000, 99},
		{3, 3, 100},
		{4, 3, 100},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CourseProgress(c.completed, c.total), "%d/%d", c.completed, c.total)
	}
}

func TestCompleteLesson_CascadingAwards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 2)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	first, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	require.NoError(t, err)
	assert.Equal(t, 10, first.XPAwarded)
	assert.Equal(t, 50, first.Progress)
	assert.False(t, first.SectionCompleted)
	assert.False(t, first.CourseCompleted)

	second, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][1].ID)
	require.NoError(t, err)
	assert.Equal(t, 10+25+100, second.XPAwarded)
	assert.Equal(t, 100, second.Progress)
	assert.True(t, second.SectionCompleted)
	assert.True(t, second.CourseCompleted)
	assert.True(t, second.LevelUp)
	assert.Equal(t, 145, second.NewTotalXP)
	assert.Equal(t, 2, second.NewLevel)

	ledger := env.ledger(t, user.ID)
	assert.Equal(t, 145, ledger.TotalXP)
	assert.EqualValues(t, 4, env.awardCount(t, user.ID))

	progress, err := env.progress.GetCourseProgress(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Progress)
	assert.NotNil(t, progress.CompletedAt)
	assert.Equal(t, 2, progress.CompletedLessons)
	assert.Equal(t, 2, progress.TotalLessons)
}

func TestCompleteLesson_SectionWithoutCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Two Sections", 1, 2)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	res, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	require.NoError(t, err)
	assert.True(t, res.SectionCompleted)
	assert.False(t, res.CourseCompleted)
	assert.Equal(t, 35, res.XPAwarded)
	assert.Equal(t, 33, res.Progress)
}

func TestCompleteLesson_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 3)
	lessonID := course.Lessons[0][0].ID

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, lessonID)
	require.NoError(t, err)

	again, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, lessonID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCompleted)
	assert.Equal(t, 0, again.XPAwarded)
	assert.Equal(t, 33, again.Progress)
	assert.Equal(t, 10, again.NewTotalXP)

	assert.Equal(t, 10, env.ledger(t, user.ID).TotalXP)

	days, err := env.activity.GetYearlyActivity(ctx, user.ID, 2024)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Count)
}

func TestCompleteLesson_ProgressNeverDecreases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Growing", 2)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	require.NoError(t, err)

	// the course grows after the learner made progress
	for i := 0; i < 3; i++ {
		env.addLesson(t, course, 0)
	}

	res, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][1].ID)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Progress, "2/5 would be 40 but progress only moves forward")
	assert.False(t, res.CourseCompleted)
}

func TestCompleteLesson_ConcurrentDuplicates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 3)
	lessonID := course.Lessons[0][0].ID

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*dto.CompleteLessonResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, lessonID)
		}(i)
	}
	wg.Wait()

	granted := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].XPAwarded > 0 {
			granted++
			assert.Equal(t, 10, results[i].XPAwarded)
		} else {
			assert.True(t, results[i].AlreadyCompleted)
		}
	}
	assert.Equal(t, 1, granted)
	assert.Equal(t, 10, env.ledger(t, user.ID).TotalXP)
	assert.EqualValues(t, 1, env.awardCount(t, user.ID))
}

func TestCompleteLesson_ConcurrentFinalLessons(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 2)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	lessons := course.Lessons[0]
	var wg sync.WaitGroup
	results := make([]*dto.CompleteLessonResult, len(lessons))
	errs := make([]error, len(lessons))
	for i, lesson := range lessons {
		wg.Add(1)
		go func(i int, lessonID string) {
			defer wg.Done()
			results[i], errs[i] = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, lessonID)
		}(i, lesson.ID)
	}
	wg.Wait()

	courseCompleted := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i].CourseCompleted {
			courseCompleted++
			assert.Equal(t, 100, results[i].Progress)
		}
	}
	assert.Equal(t, 1, courseCompleted)

	progress, err := env.progress.GetCourseProgress(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.Progress)
	assert.NotNil(t, progress.CompletedAt)
	assert.Equal(t, 145, env.ledger(t, user.ID).TotalXP)
	assert.EqualValues(t, 4, env.awardCount(t, user.ID))
}

func TestAdvanceEnrollment_StaleSnapshotKeepsProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 4)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	db := env.db.Db()
	repo := repositories.NewProgressRepository(db)
	stale, err := repo.GetEnrollment(user.ID, course.Course.ID)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.CourseEnrollment{}).
		Where("id = ?", stale.ID).
		Update("progress", 75).Error)

	require.NoError(t, repo.AdvanceEnrollment(stale, 50, course.Lessons[0][0].ID, nil))

	current, err := repo.GetEnrollment(user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, current.Progress)
}

func TestCompleteLesson_NotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 1)

	_, err := env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	appErr := requireAppError(t, err, shared.ErrCodeNotEnrolled)
	assert.Equal(t, 403, appErr.StatusCode)

	assert.Equal(t, 0, env.ledger(t, user.ID).TotalXP)
}

func TestCompleteLesson_LessonOutsideCourse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 1)
	other := env.createCourse(t, "Rust Basics", 1)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, other.Lessons[0][0].ID)
	requireAppError(t, err, shared.ErrCodeNotFound)

	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, "missing")
	requireAppError(t, err, shared.ErrCodeNotFound)
}

func TestEnroll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 1)

	first, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, first.Progress)
	assert.Nil(t, first.CompletedAt)

	again, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, first.EnrolledAt.Unix(), again.EnrolledAt.Unix())

	_, err = env.progress.Enroll(ctx, user.ID, "missing")
	requireAppError(t, err, shared.ErrCodeNotFound)

	_, err = env.progress.Enroll(ctx, "nobody", course.Course.ID)
	requireAppError(t, err, shared.ErrCodeNotFound)
}

func TestGetCourseProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 2, 1)

	_, err := env.progress.GetCourseProgress(ctx, user.ID, course.Course.ID)
	requireAppError(t, err, shared.ErrCodeNotEnrolled)

	_, err = env.progress.GetCourseProgress(ctx, user.ID, "missing")
	requireAppError(t, err, shared.ErrCodeNotFound)

	_, err = env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[1][0].ID)
	require.NoError(t, err)

	resp, err := env.progress.GetCourseProgress(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)
	assert.Equal(t, 33, resp.Progress)
	assert.Equal(t, 1, resp.CompletedLessons)
	assert.Equal(t, 3, resp.TotalLessons)
	require.Len(t, resp.Lessons, 3)
	require.NotNil(t, resp.CurrentLessonID)
	assert.Equal(t, course.Lessons[1][0].ID, *resp.CurrentLessonID)

	completed := map[string]bool{}
	for _, l := range resp.Lessons {
		completed[l.LessonID] = l.Completed
	}
	assert.Equal(t, map[string]bool{
		course.Lessons[0][0].ID: false,
		course.Lessons[0][1].ID: false,
		course.Lessons[1][0].ID: true,
	}, completed)
}

func TestCompleteLesson_ActivityAndStreak(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "ada")
	course := env.createCourse(t, "Go Basics", 3)

	_, err := env.progress.Enroll(ctx, user.ID, course.Course.ID)
	require.NoError(t, err)

	env.clock.Set("2024-03-10")
	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][0].ID)
	require.NoError(t, err)
	env.clock.Set("2024-03-11")
	_, err = env.progress.CompleteLesson(ctx, user.ID, course.Course.ID, course.Lessons[0][1].ID)
	require.NoError(t, err)

	streak, err := env.streak.GetStreak(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, streak.CurrentStreak)

	days, err := env.activity.GetDailyActivity(ctx, user.ID, day(t, "2024-03-10"), day(t, "2024-03-11"))
	require.NoError(t, err)
	assert.Len(t, days, 2)
}
