package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type PracticeHandler struct {
	practiceSvc PracticeServiceInterface
}

func NewPracticeHandler(practiceSvc PracticeServiceInterface) *PracticeHandler {
	return &PracticeHandler{
		practiceSvc: practiceSvc,
	}
}

// @Summary Submit solution
// @Description Judge a solution. The first passing submission for a problem grants XP by difficulty.
// @Tags practice
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param problemId path string true "Problem ID"
// @Param request body dto.SubmitSolutionRequest true "Solution"
// @Success 201 {object} shared.Response{data=dto.SubmissionResult}
// @Router /api/v1/problems/{problemId}/submissions [post]
func (h *PracticeHandler) SubmitSolution(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SubmitSolutionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if errs := dto.Validate(req); errs != nil {
		appErr := shared.NewBadRequestError(nil, "Validation failed")
		appErr.Data = errs
		return appErr
	}

	result, err := h.practiceSvc.SubmitSolution(c.UserContext(), userID, c.Params("problemId"), req.Language, req.Code)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", result)
}

// @Summary List submissions
// @Description List the current user's submissions for a problem, newest first
// @Tags practice
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param problemId path string true "Problem ID"
// @Param limit query int false "Limit results (default 20)"
// @Success 200 {object} shared.Response{data=[]dto.SubmissionResponse}
// @Router /api/v1/problems/{problemId}/submissions [get]
func (h *PracticeHandler) ListSubmissions(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	submissions, err := h.practiceSvc.ListSubmissions(c.UserContext(), userID, c.Params("problemId"), c.QueryInt("limit", 20))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", submissions)
}

// @Summary Get problem state
// @Description Whether the current user has not attempted, attempted or solved a problem
// @Tags practice
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param problemId path string true "Problem ID"
// @Success 200 {object} shared.Response{data=dto.ProblemStateResponse}
// @Router /api/v1/problems/{problemId}/state [get]
func (h *PracticeHandler) GetProblemState(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	state, err := h.practiceSvc.GetProblemState(c.UserContext(), userID, c.Params("problemId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}
