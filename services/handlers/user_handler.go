package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type UserHandler struct {
	userSvc UserServiceInterface
	xpSvc   XPServiceInterface
}

func NewUserHandler(userSvc UserServiceInterface, xpSvc XPServiceInterface) *UserHandler {
	return &UserHandler{
		userSvc: userSvc,
		xpSvc:   xpSvc,
	}
}

// @Summary Get user profile
// @Description XP, level, streak and recent awards for the current user
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.ProfileResponse}
// @Router /api/v1/me/profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	profile, err := h.userSvc.GetProfile(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", profile)
}

// @Summary Daily check-in
// @Description Grant the daily login reward. Repeat check-ins on the same UTC day grant nothing.
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response{data=dto.CheckInResponse}
// @Router /api/v1/me/check-in [post]
func (h *UserHandler) CheckIn(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	result, err := h.xpSvc.CheckIn(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Delete account
// @Description Delete the current user and all of their progress, XP, streak and activity
// @Tags user
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Success 200 {object} shared.Response
// @Router /api/v1/me [delete]
func (h *UserHandler) DeleteAccount(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.userSvc.DeleteAccount(c.UserContext(), userID); err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", nil)
}
