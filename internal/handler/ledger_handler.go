package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erapor-sd-api/internal/service"
	"github.com/noah-isme/erapor-sd-api/pkg/response"
)

// LedgerHandler exposes class standing and ledger export endpoints.
type LedgerHandler struct {
	ledger  *service.LedgerService
	reports *service.ReportService
	exports *service.ExportService
}

// NewLedgerHandler builds a new handler.
func NewLedgerHandler(ledger *service.LedgerService, reports *service.ReportService, exports *service.ExportService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, reports: reports, exports: exports}
}

// Standings handles GET /ledger/:classLevel.
func (h *LedgerHandler) Standings(c *gin.Context) {
	standings, err := h.ledger.ClassStanding(c.Request.Context(), c.Param("classLevel"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, standings)
}

// Document handles GET /ledger/:classLevel/document, the composed ledger
// with display formatting applied.
func (h *LedgerHandler) Document(c *gin.Context) {
	doc, err := h.reports.BuildLedger(c.Request.Context(), c.Param("classLevel"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc)
}

// ExportPDF handles POST /ledger/:classLevel/export/pdf.
func (h *LedgerHandler) ExportPDF(c *gin.Context) {
	result, err := h.exports.ExportLedgerPDF(c.Request.Context(), c.Param("classLevel"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// ExportCSV handles POST /ledger/:classLevel/export/csv.
func (h *LedgerHandler) ExportCSV(c *gin.Context) {
	result, err := h.exports.ExportLedgerCSV(c.Request.Context(), c.Param("classLevel"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
