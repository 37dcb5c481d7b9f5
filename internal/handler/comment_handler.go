package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/service"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// CommentHandler exposes the report comment drafting endpoint.
type CommentHandler struct {
	comments *service.CommentService
	students *service.StudentService
	grades   *service.GradeService
}

// NewCommentHandler builds a new handler.
func NewCommentHandler(comments *service.CommentService, students *service.StudentService, grades *service.GradeService) *CommentHandler {
	return &CommentHandler{comments: comments, students: students, grades: grades}
}

type draftCommentRequest struct {
	StudentID string `json:"studentId" binding:"required"`
}

// Draft handles POST /comments/draft. The response always carries a
// usable comment; Generated tells whether the AI produced it.
func (h *CommentHandler) Draft(c *gin.Context) {
	var req draftCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "studentId is required"))
		return
	}
	student, err := h.students.Get(c.Request.Context(), req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	grades, err := h.grades.List(c.Request.Context(), student.ID, "")
	if err != nil {
		response.Error(c, err)
		return
	}
	result := h.comments.Draft(c.Request.Context(), student.Name, grades)
	response.JSON(c, http.StatusOK, result)
}
