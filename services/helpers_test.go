package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(day string) *testClock {
	t, err := shared.ParseDay(day)
	if err != nil {
		panic(err)
	}
	return &testClock{now: t.Add(12 * time.Hour)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(day string) {
	t, err := shared.ParseDay(day)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	c.now = t.Add(12 * time.Hour)
	c.mu.Unlock()
}

// testEnv wires the domain services over a private in-memory sqlite database.
type testEnv struct {
	db    *SqliteService
	clock *testClock

	streak      *StreakService
	activity    *ActivityService
	xp          *XPService
	progress    *ProgressService
	practice    *PracticeService
	users       *UserService
	leaderboard *LeaderboardService

	judge   *fakeJudge
	archive *fakeArchive
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := OpenSqlite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:      &SqliteService{db: gdb},
		clock:   newTestClock("2024-03-10"),
		judge:   &fakeJudge{},
		archive: newFakeArchive(),
	}
	now := env.clock.Now

	env.streak = &StreakService{db: env.db, now: now}
	env.activity = &ActivityService{db: env.db, now: now}
	env.xp = &XPService{
		db:          env.db,
		streakSvc:   env.streak,
		activitySvc: env.activity,
		levels:      DefaultLevelTable(),
		now:         now,
	}
	env.progress = &ProgressService{db: env.db, xpSvc: env.xp, activitySvc: env.activity, now: now}
	env.practice = &PracticeService{
		db:          env.db,
		judge:       env.judge,
		archive:     env.archive,
		xpSvc:       env.xp,
		activitySvc: env.activity,
		now:         now,
	}
	env.users = &UserService{
		db:          env.db,
		xpSvc:       env.xp,
		streakSvc:   env.streak,
		activitySvc: env.activity,
		archive:     env.archive,
	}
	env.leaderboard = &LeaderboardService{db: env.db, now: now}
	return env
}

func (env *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := repositories.NewUserRepository(env.db.Db()).CreateUser(&model.User{
		Username:    username,
		Email:       username + "@example.com",
		DisplayName: strings.ToUpper(username[:1]) + username[1:],
	})
	require.NoError(t, err)
	return user
}

type testCourse struct {
	Course   *model.Course
	Sections []*model.Section
	Lessons  [][]*model.Lesson
}

// createCourse builds a published course with one section per entry in
// lessonsPerSection.
func (env *testEnv) createCourse(t *testing.T, title string, lessonsPerSection ...int) *testCourse {
	t.Helper()
	repo := repositories.NewContentRepository(env.db.Db())

	course, err := repo.CreateCourse(&model.Course{Title: title, IsPublished: true})
	require.NoError(t, err)

	tc := &testCourse{Course: course}
	for i, n := range lessonsPerSection {
		section, err := repo.CreateSection(&model.Section{
			CourseID: course.ID,
			Title:    fmt.Sprintf("%s section %d", title, i+1),
			Order:    i + 1,
		})
		require.NoError(t, err)
		tc.Sections = append(tc.Sections, section)

		var lessons []*model.Lesson
		for j := 0; j < n; j++ {
			lesson, err := repo.CreateLesson(&model.Lesson{
				CourseID:  course.ID,
				SectionID: section.ID,
				Title:     fmt.Sprintf("Lesson %d.%d", i+1, j+1),
				Order:     j + 1,
			})
			require.NoError(t, err)
			lessons = append(lessons, lesson)
		}
		tc.Lessons = append(tc.Lessons, lessons)
	}
	return tc
}

func (env *testEnv) addLesson(t *testing.T, tc *testCourse, section int) *model.Lesson {
	t.Helper()
	lessons := tc.Lessons[section]
	lesson, err := repositories.NewContentRepository(env.db.Db()).CreateLesson(&model.Lesson{
		CourseID:  tc.Course.ID,
		SectionID: tc.Sections[section].ID,
		Title:     fmt.Sprintf("Lesson %d.%d", section+1, len(lessons)+1),
		Order:     len(lessons) + 1,
	})
	require.NoError(t, err)
	tc.Lessons[section] = append(lessons, lesson)
	return lesson
}

func (env *testEnv) createProblem(t *testing.T, title string, difficulty model.Difficulty) *model.PracticeProblem {
	t.Helper()
	problem, err := repositories.NewContentRepository(env.db.Db()).UpsertProblem(&model.PracticeProblem{
		Title:      title,
		Difficulty: difficulty,
		TestCount:  10,
	})
	require.NoError(t, err)
	return problem
}

func (env *testEnv) ledger(t *testing.T, userID string) *dto.LedgerResponse {
	t.Helper()
	ledger, err := env.xp.GetLedger(context.Background(), userID)
	require.NoError(t, err)
	return ledger
}

func (env *testEnv) awardCount(t *testing.T, userID string) int64 {
	t.Helper()
	n, err := repositories.NewLedgerRepository(env.db.Db()).CountAwards(userID)
	require.NoError(t, err)
	return n
}

func requireAppError(t *testing.T, err error, code string) *shared.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := shared.GetAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

// fakeJudge returns queued verdicts in order, then repeats the last one.
type fakeJudge struct {
	mu       sync.Mutex
	verdicts []dto.JudgeVerdict
	err      error
	calls    []dto.JudgeRequest
}

func (j *fakeJudge) Queue(verdicts ...dto.JudgeVerdict) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.verdicts = append(j.verdicts, verdicts...)
}

func (j *fakeJudge) Judge(ctx context.Context, req dto.JudgeRequest) (*dto.JudgeVerdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, req)
	if j.err != nil {
		return nil, j.err
	}
	if len(j.verdicts) == 0 {
		return &dto.JudgeVerdict{Status: model.SubmissionFailed, TotalTests: 1}, nil
	}
	v := j.verdicts[0]
	if len(j.verdicts) > 1 {
		j.verdicts = j.verdicts[1:]
	}
	return &v, nil
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string

	// onStore runs after an object is stored, outside the lock.
	onStore func()
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: make(map[string]string)}
}

func (a *fakeArchive) StoreCode(ctx context.Context, userID, problemID, submissionID, code string) (string, error) {
	a.mu.Lock()
	key := CodeObjectKey(userID, problemID, submissionID)
	a.objects[key] = code
	hook := a.onStore
	a.mu.Unlock()

	if hook != nil {
		hook()
	}
	return key, nil
}

func (a *fakeArchive) DeleteObjects(ctx context.Context, keys ...string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, k := range keys {
		delete(a.objects, k)
		a.deleted = append(a.deleted, k)
	}
	return nil
}

func (a *fakeArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

func passed(total int) dto.JudgeVerdict {
	return dto.JudgeVerdict{Status: model.SubmissionPassed, PassedTests: total, TotalTests: total}
}

func failed(passedTests, total int) dto.JudgeVerdict {
	return dto.JudgeVerdict{Status: model.SubmissionFailed, PassedTests: passedTests, TotalTests: total}
}

// memCache is an in-process Cache that round-trips values through JSON.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (c *memCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, shared.JSON().Unmarshal(data, dest)
}

func (c *memCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := shared.JSON().Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			c.deletes++
		}
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
