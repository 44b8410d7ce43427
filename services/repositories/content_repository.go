package repositories

import (
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository reads and seeds the course and problem catalog.
type ContentRepository struct {
	BaseRepository
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func newID() string {
	id, _ := uuid.NewV7()
	return id.String()
}

func (ds *ContentRepository) CreateCourse(course *model.Course) (*model.Course, error) {
	if course.ID == "" {
		course.ID = newID()
	}
	if course.Slug == "" {
		course.Slug = slug.Make(course.Title)
	}
	course.CreatedAt = time.Now().UTC()
	course.UpdatedAt = course.CreatedAt

	if err := ds.db.Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (ds *ContentRepository) CreateSection(section *model.Section) (*model.Section, error) {
	if section.ID == "" {
		section.ID = newID()
	}
	section.CreatedAt = time.Now().UTC()
	section.UpdatedAt = section.CreatedAt

	if err := ds.db.Create(section).Error; err != nil {
		return nil, err
	}
	return section, nil
}

func (ds *ContentRepository) CreateLesson(lesson *model.Lesson) (*model.Lesson, error) {
	if lesson.ID == "" {
		lesson.ID = newID()
	}
	lesson.CreatedAt = time.Now().UTC()
	lesson.UpdatedAt = lesson.CreatedAt

	if err := ds.db.Create(lesson).Error; err != nil {
		return nil, err
	}
	return lesson, nil
}

// UpsertProblem creates the problem or refreshes title, difficulty and test count by slug.
func (ds *ContentRepository) UpsertProblem(problem *model.PracticeProblem) (*model.PracticeProblem, error) {
	if problem.ID == "" {
		problem.ID = newID()
	}
	if problem.Slug == "" {
		problem.Slug = slug.Make(problem.Title)
	}
	now := time.Now().UTC()
	problem.CreatedAt = now
	problem.UpdatedAt = now

	err := ds.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "difficulty", "test_count", "updated_at"}),
	}).Create(problem).Error
	if err != nil {
		return nil, err
	}
	return ds.GetProblemBySlug(problem.Slug)
}

func (ds *ContentRepository) GetCourse(id string) (*model.Course, error) {
	var course model.Course
	if err := ds.db.Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (ds *ContentRepository) GetCourseBySlug(s string) (*model.Course, error) {
	var course model.Course
	if err := ds.db.Where("slug = ?", s).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (ds *ContentRepository) GetLesson(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := ds.db.Where("id = ?", id).First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListCourseLessons returns lessons in section order, then lesson order.
func (ds *ContentRepository) ListCourseLessons(courseID string) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := ds.db.Model(&model.Lesson{}).
		Select("lessons.*").
		Joins("JOIN sections ON sections.id = lessons.section_id").
		Where("lessons.course_id = ?", courseID).
		Order("sections.\"order\" ASC, lessons.\"order\" ASC").
		Find(&lessons).Error
	return lessons, err
}

func (ds *ContentRepository) CountCourseLessons(courseID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (ds *ContentRepository) CountSectionLessons(sectionID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.Lesson{}).Where("section_id = ?", sectionID).Count(&count).Error
	return count, err
}

func (ds *ContentRepository) GetProblem(id string) (*model.PracticeProblem, error) {
	var problem model.PracticeProblem
	if err := ds.db.Where("id = ?", id).First(&problem).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

func (ds *ContentRepository) GetProblemBySlug(s string) (*model.PracticeProblem, error) {
	var problem model.PracticeProblem
	if err := ds.db.Where("slug = ?", s).First(&problem).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}
