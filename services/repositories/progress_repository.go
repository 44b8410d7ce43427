package repositories

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository owns lesson_progresses and course_enrollments.
type ProgressRepository struct {
	BaseRepository
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// CreateEnrollment is a no-op when the user is already enrolled.
func (ds *ProgressRepository) CreateEnrollment(userID, courseID string) (*model.CourseEnrollment, error) {
	now := time.Now().UTC()
	enrollment := &model.CourseEnrollment{
		ID:         newID(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: now,
		UpdatedAt:  now,
	}
	if err := ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(enrollment).Error; err != nil {
		return nil, err
	}
	return ds.GetEnrollment(userID, courseID)
}

func (ds *ProgressRepository) GetEnrollment(userID, courseID string) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	if err := ds.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// LockEnrollment reads the enrollment for update, serializing completions
// within one course. Callers must be inside a transaction.
func (ds *ProgressRepository) LockEnrollment(userID, courseID string) (*model.CourseEnrollment, error) {
	q := ds.db
	if ds.isPostgres() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var enrollment model.CourseEnrollment
	if err := q.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error; err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// AdvanceEnrollment writes new progress without ever lowering the stored value.
func (ds *ProgressRepository) AdvanceEnrollment(enrollment *model.CourseEnrollment, progress int, lessonID string, completedAt *time.Time) error {
	if progress < enrollment.Progress {
		progress = enrollment.Progress
	}
	updates := map[string]interface{}{
		"progress":          gorm.Expr("CASE WHEN progress < ? THEN ? ELSE progress END", progress, progress),
		"current_lesson_id": lessonID,
		"updated_at":        time.Now().UTC(),
	}
	if completedAt != nil && enrollment.CompletedAt == nil {
		updates["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", *completedAt)
		enrollment.CompletedAt = completedAt
	}

	err := ds.db.Model(&model.CourseEnrollment{}).
		Where("id = ?", enrollment.ID).
		Updates(updates).Error
	if err != nil {
		return err
	}
	enrollment.Progress = progress
	enrollment.CurrentLessonID = &lessonID
	return nil
}

func (ds *ProgressRepository) EnsureLessonProgress(userID, courseID, lessonID string) error {
	now := time.Now().UTC()
	progress := &model.LessonProgress{
		ID:        newID(),
		UserID:    userID,
		CourseID:  courseID,
		LessonID:  lessonID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return ds.db.Clauses(clause.OnConflict{DoNothing: true}).Create(progress).Error
}

// MarkLessonCompleted flips completed from false to true. Only the caller that
// performs the flip gets true back, so concurrent duplicates see false.
func (ds *ProgressRepository) MarkLessonCompleted(userID, lessonID string, at time.Time) (bool, error) {
	res := ds.db.Model(&model.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ? AND completed = ?", userID, lessonID, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": at,
			"updated_at":   at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CountCompletedInCourse counts completed lessons that still belong to the course.
func (ds *ProgressRepository) CountCompletedInCourse(userID, courseID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lessons.course_id = ? AND lesson_progresses.completed = ?", userID, courseID, true).
		Count(&count).Error
	return count, err
}

func (ds *ProgressRepository) CountCompletedInSection(userID, sectionID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lessons.section_id = ? AND lesson_progresses.completed = ?", userID, sectionID, true).
		Count(&count).Error
	return count, err
}

func (ds *ProgressRepository) ListLessonProgress(userID, courseID string) ([]model.LessonProgress, error) {
	var rows []model.LessonProgress
	err := ds.db.Where("user_id = ? AND course_id = ?", userID, courseID).Find(&rows).Error
	return rows, err
}

func (ds *ProgressRepository) DeleteForUser(userID string) error {
	if err := ds.db.Where("user_id = ?", userID).Delete(&model.LessonProgress{}).Error; err != nil {
		return err
	}
	return ds.db.Where("user_id = ?", userID).Delete(&model.CourseEnrollment{}).Error
}
