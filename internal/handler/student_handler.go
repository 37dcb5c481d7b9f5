package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/internal/service"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// StudentHandler exposes roster endpoints.
type StudentHandler struct {
	service  *service.StudentService
	importer *service.ImportService
}

// NewStudentHandler builds a new handler.
func NewStudentHandler(service *service.StudentService, importer *service.ImportService) *StudentHandler {
	return &StudentHandler{service: service, importer: importer}
}

// List handles GET /students. Teachers only see their own class.
func (h *StudentHandler) List(c *gin.Context) {
	classLevel := scopedClass(c, c.Query("classLevel"))
	students, err := h.service.List(c.Request.Context(), classLevel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students)
}

// Get handles GET /students/:id.
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ensureScope(c, student); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create handles POST /students.
func (h *StudentHandler) Create(c *gin.Context) {
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	input.ClassLevel = scopedClass(c, input.ClassLevel)
	student, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update handles PUT /students/:id.
func (h *StudentHandler) Update(c *gin.Context) {
	existing, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ensureScope(c, existing); err != nil {
		response.Error(c, err)
		return
	}
	var input service.StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	input.ClassLevel = scopedClass(c, input.ClassLevel)
	student, err := h.service.Update(c.Request.Context(), existing.ID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete handles DELETE /students/:id.
func (h *StudentHandler) Delete(c *gin.Context) {
	existing, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ensureScope(c, existing); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), existing.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import handles POST /students/import?classLevel= with a multipart CSV
// file. The CSV carries no class column: every row joins the target
// class, which teachers can only point at their own.
func (h *StudentHandler) Import(c *gin.Context) {
	classLevel := scopedClass(c, c.Query("classLevel"))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unreadable upload"))
		return
	}
	defer file.Close()

	summary, err := h.importer.ImportStudents(c.Request.Context(), classLevel, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

func (h *StudentHandler) ensureScope(c *gin.Context, student models.Student) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin && student.ClassLevel != claims.ClassLevel {
		return appErrors.Clone(appErrors.ErrForbidden, "student outside your class")
	}
	return nil
}
