package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type ActivityHandler struct {
	activitySvc ActivityServiceInterface
}

func NewActivityHandler(activitySvc ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{
		activitySvc: activitySvc,
	}
}

func queryYear(c *fiber.Ctx) int {
	return c.QueryInt("year", time.Now().UTC().Year())
}

// @Summary Get yearly activity
// @Description Event counts per day for a year. Days without activity are omitted.
// @Tags activity
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param year query int false "Year (default current year)"
// @Success 200 {object} shared.Response{data=[]dto.DailyActivity}
// @Router /api/v1/me/activity/yearly [get]
func (h *ActivityHandler) GetYearlyActivity(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	days, err := h.activitySvc.GetYearlyActivity(c.UserContext(), userID, queryYear(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", days)
}

// @Summary Get daily activity
// @Description Event counts per day for an inclusive date range
// @Tags activity
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} shared.Response{data=[]dto.DailyActivity}
// @Router /api/v1/me/activity/daily [get]
func (h *ActivityHandler) GetDailyActivity(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	from, err := shared.ParseDay(c.Query("from"))
	if err != nil {
		return shared.NewBadRequestError(err, "from must be a date in YYYY-MM-DD format")
	}
	to, err := shared.ParseDay(c.Query("to"))
	if err != nil {
		return shared.NewBadRequestError(err, "to must be a date in YYYY-MM-DD format")
	}

	days, err := h.activitySvc.GetDailyActivity(c.UserContext(), userID, from, to)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", days)
}

// @Summary Get activity calendar
// @Description Every day of the year with its count and heatmap intensity
// @Tags activity
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param year query int false "Year (default current year)"
// @Success 200 {object} shared.Response{data=dto.ActivityCalendarResponse}
// @Router /api/v1/me/activity/calendar [get]
func (h *ActivityHandler) GetCalendar(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	calendar, err := h.activitySvc.GetCalendar(c.UserContext(), userID, queryYear(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", calendar)
}

// @Summary Record content view
// @Description Record that the current user viewed a piece of content
// @Tags activity
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param request body dto.RecordViewRequest true "Viewed entity"
// @Success 201 {object} shared.Response{data=model.ActivityEvent}
// @Router /api/v1/me/activity/views [post]
func (h *ActivityHandler) RecordView(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.RecordViewRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if errs := dto.Validate(req); errs != nil {
		appErr := shared.NewBadRequestError(nil, "Validation failed")
		appErr.Data = errs
		return appErr
	}

	event, err := h.activitySvc.RecordView(c.UserContext(), userID, req.EntityID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", event)
}
