package services

import (
	"context"
	"fmt"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

const defaultJudgeTimeout = 15 * time.Second

// Judge runs a submission against a problem's hidden tests.
type Judge interface {
	Judge(ctx context.Context, req dto.JudgeRequest) (*dto.JudgeVerdict, error)
}

// JudgeService talks to the external code execution service over HTTP.
type JudgeService struct {
	appContext.DefaultService

	url     string
	timeout time.Duration
}

const JUDGE_SVC = "judge_svc"

func (svc JudgeService) Id() string {
	return JUDGE_SVC
}

func (svc *JudgeService) Configure(ctx *appContext.Context) error {
	svc.url = os.Getenv("JUDGE_URL")

	svc.timeout = defaultJudgeTimeout
	if raw := os.Getenv("JUDGE_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid JUDGE_TIMEOUT %q: %w", raw, err)
		}
		svc.timeout = d
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *JudgeService) Start() error {
	if svc.url == "" {
		log.Warn("JUDGE_URL not set, submissions will be rejected")
	}
	return nil
}

func (svc *JudgeService) Judge(ctx context.Context, req dto.JudgeRequest) (*dto.JudgeVerdict, error) {
	if svc.url == "" {
		return nil, shared.NewServiceUnavailableError(nil, "Judge is not configured")
	}

	timeout := svc.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(svc.url).
		JSONEncoder(shared.JSON().Marshal).
		JSONDecoder(shared.JSON().Unmarshal).
		JSON(req).
		Timeout(timeout)

	var verdict dto.JudgeVerdict
	code, body, errs := agent.Struct(&verdict)
	if len(errs) > 0 {
		log.WithError(errs[0]).WithField("problem_id", req.ProblemID).Error("Judge request failed")
		return nil, shared.NewServiceUnavailableError(errs[0], "Judge is unavailable")
	}
	if code != fiber.StatusOK {
		log.WithFields(log.Fields{
			"problem_id": req.ProblemID,
			"status":     code,
			"body":       string(body),
		}).Error("Judge returned an error")
		return nil, shared.NewServiceUnavailableError(nil, fmt.Sprintf("Judge returned status %d", code))
	}

	return &verdict, nil
}

// validateVerdict rejects verdicts whose counts cannot be stored as a submission.
func validateVerdict(v *dto.JudgeVerdict) error {
	if v == nil || !v.Status.Valid() {
		return shared.NewServiceUnavailableError(nil, "Judge returned an unknown status")
	}
	if v.PassedTests < 0 || v.TotalTests < 0 || v.PassedTests > v.TotalTests {
		return shared.NewServiceUnavailableError(nil, "Judge returned inconsistent test counts")
	}
	if v.Status == model.SubmissionPassed && v.PassedTests != v.TotalTests {
		return shared.NewServiceUnavailableError(nil, "Judge passed a submission with failing tests")
	}
	return nil
}
