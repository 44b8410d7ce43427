package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/shared"
)

type ProgressHandler struct {
	progressSvc ProgressServiceInterface
}

func NewProgressHandler(progressSvc ProgressServiceInterface) *ProgressHandler {
	return &ProgressHandler{
		progressSvc: progressSvc,
	}
}

// @Summary Enroll in course
// @Description Enroll the current user in a course. Enrolling twice is a no-op.
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=dto.EnrollmentResponse}
// @Router /api/v1/courses/{courseId}/enroll [post]
func (h *ProgressHandler) Enroll(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	enrollment, err := h.progressSvc.Enroll(c.UserContext(), userID, c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", enrollment)
}

// @Summary Get course progress
// @Description Get enrollment progress and per-lesson completion
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path string true "Course ID"
// @Success 200 {object} shared.Response{data=dto.CourseProgressResponse}
// @Router /api/v1/courses/{courseId}/progress [get]
func (h *ProgressHandler) GetCourseProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	progress, err := h.progressSvc.GetCourseProgress(c.UserContext(), userID, c.Params("courseId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Complete lesson
// @Description Mark a lesson complete. Section and course completion XP is granted when the lesson finishes them.
// @Tags progress
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} shared.Response{data=dto.CompleteLessonResult}
// @Router /api/v1/courses/{courseId}/lessons/{lessonId}/complete [post]
func (h *ProgressHandler) CompleteLesson(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	result, err := h.progressSvc.CompleteLesson(c.UserContext(), userID, c.Params("courseId"), c.Params("lessonId"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}
