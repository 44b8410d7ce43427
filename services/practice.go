package services

import (
	"context"
	"strings"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultSubmissionLimit = 20
	maxSubmissionLimit     = 100
)

// PracticeService judges solutions and records every attempt. XP is granted
// once per problem, on the first passing submission.
type PracticeService struct {
	appContext.DefaultService

	db          Database
	judge       Judge
	archive     CodeArchive
	xpSvc       *XPService
	activitySvc *ActivityService
	monitoring  *MonitoringService

	now func() time.Time
}

const PRACTICE_SVC = "practice_svc"

func (svc PracticeService) Id() string {
	return PRACTICE_SVC
}

func (svc *PracticeService) Configure(ctx *appContext.Context) error {
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *PracticeService) Start() error {
	svc.db = svc.Service(DATABASE_SVC).(Database)
	svc.judge = svc.Service(JUDGE_SVC).(*JudgeService)
	svc.xpSvc = svc.Service(XP_SVC).(*XPService)
	svc.activitySvc = svc.Service(ACTIVITY_SVC).(*ActivityService)
	if m, ok := svc.Service(MINIO_SVC).(*MinIOService); ok && m.Enabled() {
		svc.archive = m
	}
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoring = m
	}
	return nil
}

func (svc *PracticeService) SubmitSolution(ctx context.Context, userID, problemID, language, code string) (*dto.SubmissionResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewBadRequestError(nil, "Code is required")
	}

	db := svc.db.Db().WithContext(ctx)
	problem, err := repositories.NewContentRepository(db).GetProblem(problemID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, shared.NewNotFoundError(err, "Problem not found")
		}
		return nil, svc.db.HandleError(err)
	}
	action, err := model.ActionForDifficulty(problem.Difficulty)
	if err != nil {
		return nil, shared.NewInternalError(err, "Problem has an invalid difficulty")
	}
	exists, err := repositories.NewUserRepository(db).UserExists(userID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	if !exists {
		return nil, shared.NewNotFoundError(nil, "User not found")
	}

	judgeStart := time.Now()
	verdict, err := svc.judge.Judge(ctx, dto.JudgeRequest{
		ProblemID: problem.ID,
		Language:  language,
		Code:      code,
	})
	judgeTime := time.Since(judgeStart)
	if err != nil {
		return nil, err
	}
	if err := validateVerdict(verdict); err != nil {
		return nil, err
	}

	now := svc.now().UTC()
	submission := &model.PracticeSubmission{
		ID:          uuid.Must(uuid.NewV7()).String(),
		UserID:      userID,
		ProblemID:   problem.ID,
		Status:      verdict.Status,
		PassedTests: verdict.PassedTests,
		TotalTests:  verdict.TotalTests,
		Language:    language,
		CodeSize:    len(code),
		SubmittedAt: now,
	}

	if svc.archive != nil {
		key, err := svc.archive.StoreCode(ctx, userID, problem.ID, submission.ID, code)
		if err != nil {
			log.WithError(err).WithField("submission_id", submission.ID).Warn("Failed to archive submission code")
		} else {
			submission.CodeObjectKey = key
		}
	}

	result := &dto.SubmissionResult{}
	var award *dto.AwardResult
	err = db.Transaction(func(tx *gorm.DB) error {
		exists, err := repositories.NewUserRepository(tx).UserExists(userID)
		if err != nil {
			return err
		}
		if !exists {
			return shared.NewNotFoundError(nil, "User not found")
		}

		if err := repositories.NewSubmissionRepository(tx).CreateSubmission(submission); err != nil {
			return err
		}
		if _, err := svc.activitySvc.RecordEventTx(tx, userID, model.ActivitySubmission, problem.ID, now); err != nil {
			return err
		}

		if verdict.Status == model.SubmissionPassed {
			award, err = svc.xpSvc.AwardXPTx(tx, userID, action, problem.ID, "Solved "+problem.Title)
			if err != nil {
				return err
			}
			result.XPAwarded = award.XPAwarded
			result.LevelUp = award.LevelUp
			result.FirstSolve = award.Awarded()
			result.NewTotalXP = award.NewTotalXP
			result.NewLevel = award.NewLevel
			return nil
		}

		ledger, err := repositories.NewLedgerRepository(tx).FindLedger(userID)
		if err != nil {
			return err
		}
		result.NewTotalXP = ledger.TotalXP
		result.NewLevel = ledger.Level
		return nil
	})
	if err != nil {
		if svc.archive != nil && submission.CodeObjectKey != "" {
			if delErr := svc.archive.DeleteObjects(ctx, submission.CodeObjectKey); delErr != nil {
				log.WithError(delErr).WithField("submission_id", submission.ID).Warn("Failed to remove archived code after rollback")
			}
		}
		return nil, svc.db.HandleError(err)
	}

	if award != nil {
		svc.xpSvc.Observe(award)
	}
	svc.monitoring.RecordSubmission(string(verdict.Status), judgeTime)
	svc.activitySvc.Invalidate(ctx, userID, now)

	log.WithFields(log.Fields{
		"user_id":     userID,
		"problem_id":  problem.ID,
		"status":      verdict.Status,
		"xp_awarded":  result.XPAwarded,
		"first_solve": result.FirstSolve,
	}).Info("Submission judged")

	result.Submission = submissionView(submission)
	return result, nil
}

func submissionView(s *model.PracticeSubmission) dto.SubmissionResponse {
	return dto.SubmissionResponse{
		ID:          s.ID,
		ProblemID:   s.ProblemID,
		Status:      s.Status,
		PassedTests: s.PassedTests,
		TotalTests:  s.TotalTests,
		Language:    s.Language,
		SubmittedAt: s.SubmittedAt,
	}
}

// GetProblemState derives the user's state from their submission history.
func (svc *PracticeService) GetProblemState(ctx context.Context, userID, problemID string) (*dto.ProblemStateResponse, error) {
	db := svc.db.Db().WithContext(ctx)

	problem, err := repositories.NewContentRepository(db).GetProblem(problemID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, shared.NewNotFoundError(err, "Problem not found")
		}
		return nil, svc.db.HandleError(err)
	}

	submissions := repositories.NewSubmissionRepository(db)
	attempts, err := submissions.CountSubmissions(userID, problemID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	resp := &dto.ProblemStateResponse{
		ProblemID:  problem.ID,
		State:      model.ProblemUnattempted,
		Attempts:   attempts,
		Difficulty: problem.Difficulty,
	}
	if attempts == 0 {
		return resp, nil
	}

	resp.State = model.ProblemAttempted
	first, err := submissions.FirstPass(userID, problemID)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}
	if first != nil {
		resp.State = model.ProblemSolved
		solvedAt := first.SubmittedAt
		resp.SolvedAt = &solvedAt
	}
	return resp, nil
}

// ListSubmissions returns the user's attempts at a problem, newest first.
func (svc *PracticeService) ListSubmissions(ctx context.Context, userID, problemID string, limit int) ([]dto.SubmissionResponse, error) {
	if limit <= 0 {
		limit = defaultSubmissionLimit
	}
	if limit > maxSubmissionLimit {
		limit = maxSubmissionLimit
	}

	rows, err := repositories.NewSubmissionRepository(svc.db.Db().WithContext(ctx)).ListSubmissions(userID, problemID, limit)
	if err != nil {
		return nil, svc.db.HandleError(err)
	}

	out := make([]dto.SubmissionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, submissionView(&rows[i]))
	}
	return out, nil
}
