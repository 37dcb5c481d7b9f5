package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/service"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// ObjectiveHandler exposes learning objective endpoints.
type ObjectiveHandler struct {
	service  *service.ObjectiveService
	importer *service.ImportService
}

// NewObjectiveHandler builds a new handler.
func NewObjectiveHandler(service *service.ObjectiveService, importer *service.ImportService) *ObjectiveHandler {
	return &ObjectiveHandler{service: service, importer: importer}
}

// List handles GET /objectives?classLevel=&subject=.
func (h *ObjectiveHandler) List(c *gin.Context) {
	classLevel := scopedClass(c, c.Query("classLevel"))
	objectives, err := h.service.List(c.Request.Context(), classLevel, c.Query("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, objectives)
}

// Save handles POST /objectives.
func (h *ObjectiveHandler) Save(c *gin.Context) {
	var input service.ObjectiveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	input.ClassLevel = scopedClass(c, input.ClassLevel)
	objective, err := h.service.Save(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, objective)
}

// Delete handles DELETE /objectives/:id.
func (h *ObjectiveHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Import handles POST /objectives/import with a multipart CSV file.
func (h *ObjectiveHandler) Import(c *gin.Context) {
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

	summary, err := h.importer.ImportObjectives(c.Request.Context(), classLevel, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
