// Package reports serves downloadable snapshots of the field inventory
package reports

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agro-gps/field-backend/internal/fields"
	"agro-gps/field-backend/internal/reports/export"
)

type Handler struct {
	catalog *fields.Catalog
	logger  *zap.Logger
}

func NewHandler(catalog *fields.Catalog, logger *zap.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) buildReport(c *gin.Context) export.FieldReport {
	areas, products := h.catalog.Snapshot()
	return export.BuildReport(areas, products, c.Query("owner"))
}

func filename(ext string) string {
	return fmt.Sprintf("field-report-%s.%s", time.Now().Format("2006-01-02"), ext)
}

// ExportPDF streams the field report as a PDF download
func (h *Handler) ExportPDF(c *gin.Context) {
	report := h.buildReport(c)

	data, err := export.RenderPDF(report, export.DefaultPDFOptions())
	if err != nil {
		h.logger.Error("pdf export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename("pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportXLSX streams the field report as a workbook download
func (h *Handler) ExportXLSX(c *gin.Context) {
	report := h.buildReport(c)

	data, err := export.RenderXLSX(report)
	if err != nil {
		h.logger.Error("xlsx export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename("xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportCSV streams the product application log as CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	report := h.buildReport(c)

	data, err := export.RenderCSV(report)
	if err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename("csv"))
	c.Data(http.StatusOK, "text/csv", data)
}
