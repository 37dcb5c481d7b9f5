package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/service"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler builds a new handler.
func NewGradeHandler(service *service.GradeService) *GradeHandler {
	return &GradeHandler{service: service}
}

// List handles GET /grades?studentId=&subject=.
func (h *GradeHandler) List(c *gin.Context) {
	grades, err := h.service.List(c.Request.Context(), c.Query("studentId"), c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades)
}

// Save handles PUT /grades.
func (h *GradeHandler) Save(c *gin.Context) {
	var input service.GradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	grade, err := h.service.Save(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade)
}
