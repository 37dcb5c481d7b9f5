package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/service"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler builds a new handler.
func NewAttendanceHandler(service *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Get handles GET /attendance/:studentId.
func (h *AttendanceHandler) Get(c *gin.Context) {
	record, err := h.service.Find(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Save handles PUT /attendance.
func (h *AttendanceHandler) Save(c *gin.Context) {
	var input service.AttendanceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	record, err := h.service.Save(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}
