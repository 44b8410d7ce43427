package repositories

import (
	"time"

	"github.com/lac-hong-legacy/learnhub/model"
	"gorm.io/gorm"
)

type SubmissionRepository struct {
	BaseRepository
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

func (ds *SubmissionRepository) CreateSubmission(submission *model.PracticeSubmission) error {
	if submission.ID == "" {
		submission.ID = newID()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	return ds.db.Create(submission).Error
}

func (ds *SubmissionRepository) ListSubmissions(userID, problemID string, limit int) ([]model.PracticeSubmission, error) {
	var submissions []model.PracticeSubmission
	err := ds.db.Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("submitted_at DESC, id DESC").
		Limit(limit).
		Find(&submissions).Error
	return submissions, err
}

func (ds *SubmissionRepository) CountSubmissions(userID, problemID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.PracticeSubmission{}).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Count(&count).Error
	return count, err
}

// FirstPass returns the earliest passing submission, or nil when the problem is unsolved.
func (ds *SubmissionRepository) FirstPass(userID, problemID string) (*model.PracticeSubmission, error) {
	var submissions []model.PracticeSubmission
	err := ds.db.Where("user_id = ? AND problem_id = ? AND status = ?", userID, problemID, model.SubmissionPassed).
		Order("submitted_at ASC, id ASC").
		Limit(1).
		Find(&submissions).Error
	if err != nil || len(submissions) == 0 {
		return nil, err
	}
	return &submissions[0], nil
}

func (ds *SubmissionRepository) CountSolvedProblems(userID string) (int64, error) {
	var count int64
	err := ds.db.Model(&model.PracticeSubmission{}).
		Where("user_id = ? AND status = ?", userID, model.SubmissionPassed).
		Distinct("problem_id").
		Count(&count).Error
	return count, err
}

// ListCodeKeys returns archived source objects so they can be removed with the account.
func (ds *SubmissionRepository) ListCodeKeys(userID string) ([]string, error) {
	var keys []string
	err := ds.db.Model(&model.PracticeSubmission{}).
		Where("user_id = ? AND code_object_key <> ''", userID).
		Pluck("code_object_key", &keys).Error
	return keys, err
}

func (ds *SubmissionRepository) DeleteForUser(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.PracticeSubmission{}).Error
}
