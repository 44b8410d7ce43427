package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type LeaderboardHandler struct {
	leaderboardSvc LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardSvc LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardSvc: leaderboardSvc,
	}
}

// @Summary Get leaderboard
// @Description Leaderboard rankings by XP. Authenticated callers also get their own rank.
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param period query string false "all_time, weekly or monthly (default all_time)"
// @Param limit query int false "Limit results (default 10, max 100)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetLeaderboard(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)

	// Set by OptionalAuth when a valid token is present.
	userID, _ := c.Locals(shared.UserID).(string)

	leaderboard, err := h.leaderboardSvc.Leaderboard(c.UserContext(), c.Query("period", shared.LeaderboardAllTime), limit, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}
