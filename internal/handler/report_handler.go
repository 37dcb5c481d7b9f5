package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/internal/service"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// ReportHandler exposes composed report documents and PDF exports.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
}

// NewReportHandler builds a new handler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Document handles GET /reports/students/:id.
func (h *ReportHandler) Document(c *gin.Context) {
	doc, err := h.reports.BuildReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// Cover handles GET /reports/students/:id/cover.
func (h *ReportHandler) Cover(c *gin.Context) {
	doc, err := h.reports.BuildCover(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// ExportReport handles POST /reports/students/:id/export?paper=A4.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	result, err := h.exports.ExportStudentReport(c.Request.Context(), c.Param("id"), paperFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ExportCover handles POST /reports/students/:id/cover/export?paper=A4.
func (h *ReportHandler) ExportCover(c *gin.Context) {
	result, err := h.exports.ExportStudentCover(c.Request.Context(), c.Param("id"), paperFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ExportClass handles POST /reports/classes/:classLevel/export?paper=A4,
// one PDF containing every report sheet of the class.
func (h *ReportHandler) ExportClass(c *gin.Context) {
	result, err := h.exports.ExportClassReports(c.Request.Context(), c.Param("classLevel"), paperFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Download handles GET /exports/download/:token. The token authorizes
// exactly one stored file; no session is required.
func (h *ReportHandler) Download(c *gin.Context) {
	file, relPath, err := h.exports.OpenDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	name := filepath.Base(relPath)
	contentType := "application/pdf"
	if strings.HasSuffix(name, ".csv") {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", contentType)
	http.ServeContent(c.Writer, c.Request, name, fileModTime(file), file)
}

func fileModTime(file *os.File) time.Time {
	info, err := file.Stat()
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}

func paperFromQuery(c *gin.Context) models.PaperSize {
	switch strings.ToUpper(c.Query("paper")) {
	case "F4":
		return models.PaperF4
	case "A4":
		return models.PaperA4
	default:
		return ""
	}
}
