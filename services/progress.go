package services

import (
	"context"
	"math"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ProgressService is the only writer of lesson progress and course enrollments.
type ProgressService struct {
	appContext.DefaultService

	db          Database
	xpSvc       *XPService
	activitySvc *ActivityService
	monitoring  *MonitoringService

	now func() time.Time
}

const PROGRESS_SVC = "progress_svc"

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProgressService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	svc.xpSvc = svc.Service(XP_SVC).(*XPService)
	svc.activitySvc = svc.Service(ACTIVITY_SVC).(*ActivityService)
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = m
	}
	return nil
}

// CourseProgress is completed/total as a whole percentage. It only reaches
// 100 when every lesson is complete.
func CourseProgress(completed, total int64) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	pct := int(math.Round(float64(completed) / float64(total) * 100))
	if pct > 99 {
		pct = 99
	}
	return pct
}

// Enroll registers the user for a course. Enrolling twice returns the existing enrollment.
func (svc *ProgressService) Enroll(ctx context.Context, userID, courseID string) (*dto.EnrollmentResponse, error) {
	var enrollment *model.CourseEnrollment
	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repositories.NewUserRepository(tx).UserExists(userID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewNotFoundError(nil, "User not found")
		}

		course, err := repositories.NewContentRepository(tx).GetCourse(courseID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return shared.NewNotFoundError(err, "Course not found")
			}
			return err
		}
		if !course.IsPublished {
			return shared.NewNotFoundError(nil, "Course not found")
		}

		enrollment, err = repositories.NewProgressRepository(tx).CreateEnrollment(userID, courseID)
		return err
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	return enrollmentView(enrollment), nil
}

func enrollmentView(e *model.CourseEnrollment) *dto.EnrollmentResponse {
	return &dto.EnrollmentResponse{
		CourseID:        e.CourseID,
		Progress:        e.Progress,
		CurrentLessonID: e.CurrentLessonID,
		EnrolledAt:      e.EnrolledAt,
		CompletedAt:     e.CompletedAt,
	}
}

// CompleteLesson marks the lesson complete, recomputes section and course
// completion and grants the matching XP, all in one transaction. Completing an
// already completed lesson returns current progress and grants nothing.
func (svc *ProgressService) CompleteLesson(ctx context.Context, userID, courseID, lessonID string) (*dto.CompleteLessonResult, error) {
	now := svc.now().UTC()
	result := &dto.CompleteLessonResult{CourseID: courseID, LessonID: lessonID}
	var awards []*dto.AwardResult

	err := svc.db.Db().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content := repositories.NewContentRepository(tx)
		progressRepo := repositories.NewProgressRepository(tx)

		lesson, err := content.GetLesson(lessonID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return shared.NewNotFoundError(err, "Lesson not found")
			}
			return err
		}
		if lesson.CourseID != courseID {
			return shared.NewNotFoundError(nil, "Lesson not found in course")
		}

		enrollment, err := progressRepo.LockEnrollment(userID, courseID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return shared.NewNotEnrolledError(courseID)
			}
			return err
		}

		if err := progressRepo.EnsureLessonProgress(userID, courseID, lessonID); err != nil {
			return err
		}
		first, err := progressRepo.MarkLessonCompleted(userID, lessonID, now)
		if err != nil {
			return err
		}
		if !first {
			ledger, err := repositories.NewLedgerRepository(tx).FindLedger(userID)
			if err != nil {
				return err
			}
			result.AlreadyCompleted = true
			result.Progress = enrollment.Progress
			result.CourseCompleted = enrollment.CompletedAt != nil
			result.NewTotalXP = ledger.TotalXP
			result.NewLevel = ledger.Level
			return nil
		}

		completed, err := progressRepo.CountCompletedInCourse(userID, courseID)
		if err != nil {
			return err
		}
		total, err := content.CountCourseLessons(courseID)
		if err != nil {
			return err
		}
		sectionDone, err := progressRepo.CountCompletedInSection(userID, lesson.SectionID)
		if err != nil {
			return err
		}
		sectionTotal, err := content.CountSectionLessons(lesson.SectionID)
		if err != nil {
			return err
		}

		result.Progress = CourseProgress(completed, total)
		result.CourseCompleted = total > 0 && completed >= total
		result.SectionCompleted = sectionTotal > 0 && sectionDone >= sectionTotal

		award, err := svc.xpSvc.AwardXPTx(tx, userID, model.ActionCompleteLesson, lessonID, "Completed lesson "+lesson.Title)
		if err != nil {
			return err
		}
		awards = append(awards, award)

		if result.SectionCompleted {
			award, err := svc.xpSvc.AwardXPTx(tx, userID, model.ActionCompleteSection, lesson.SectionID, "Completed section")
			if err != nil {
				return err
			}
			awards = append(awards, award)
		}
		if result.CourseCompleted {
			award, err := svc.xpSvc.AwardXPTx(tx, userID, model.ActionCompleteCourse, courseID, "Completed course")
			if err != nil {
				return err
			}
			awards = append(awards, award)
		}

		var completedAt *time.Time
		if result.CourseCompleted {
			completedAt = &now
		}
		if err := progressRepo.AdvanceEnrollment(enrollment, result.Progress, lessonID, completedAt); err != nil {
			return err
		}
		result.Progress = enrollment.Progress

		if _, err := svc.activitySvc.RecordEventTx(tx, userID, model.ActivityLessonCompletion, lessonID, now); err != nil {
			return err
		}

		for _, a := range awards {
			result.XPAwarded += a.XPAwarded
			result.LevelUp = result.LevelUp || a.LevelUp
			if a.NewTotalXP > result.NewTotalXP {
				result.NewTotalXP = a.NewTotalXP
				result.NewLevel = a.NewLevel
			}
		}
		return nil
	})
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	if !result.AlreadyCompleted {
		svc.xpSvc.Observe(awards...)
		svc.monitoring.RecordLessonCompleted(result.CourseCompleted)
		svc.activitySvc.Invalidate(ctx, userID, now)

		log.WithFields(log.Fields{
			"user_id":           userID,
			"course_id":         courseID,
			"lesson_id":         lessonID,
			"progress":          result.Progress,
			"xp_awarded":        result.XPAwarded,
			"section_completed": result.SectionCompleted,
			"course_completed":  result.CourseCompleted,
		}).Info("Lesson completed")
	}
	return result, nil
}

// GetCourseProgress returns the enrollment with per-lesson completion flags.
func (svc *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID string) (*dto.CourseProgressResponse, error) {
	db := svc.db.Db().WithContext(ctx)

	enrollment, err := repositories.NewProgressRepository(db).GetEnrollment(userID, courseID)
	if err != nil {
		if repositories.IsNotFound(err) {
			if _, cerr := repositories.NewContentRepository(db).GetCourse(courseID); repositories.IsNotFound(cerr) {
				return nil, shared.NewNotFoundError(cerr, "Course not found")
			}
			return nil, shared.NewNotEnrolledError(courseID)
		}
		return nil, svc.db.HandleError(err)
	}

	lessons, err := repositories.NewContentRepository(db).ListCourseLessons(courseID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	rows, err := repositories.NewProgressRepository(db).ListLessonProgress(userID, courseID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	done := make(map[string]model.LessonProgress, len(rows))
	for _, r := range rows {
		if r.Completed {
			done[r.LessonID] = r
		}
	}

	resp := &dto.CourseProgressResponse{
		EnrollmentResponse: *enrollmentView(enrollment),
		TotalLessons:       len(lessons),
		Lessons:            make([]dto.LessonStatus, 0, len(lessons)),
	}
	for _, l := range lessons {
		status := dto.LessonStatus{
			LessonID:  l.ID,
			SectionID: l.SectionID,
			Title:     l.Title,
		}
		if p, ok := done[l.ID]; ok {
			status.Completed = true
			status.CompletedAt = p.CompletedAt
			resp.CompletedLessons++
		}
		resp.Lessons = append(resp.Lessons, status)
	}
	return resp, nil
}
