package reports

import "github.com/gin-gonic/gin"

// RegisterRoutes registers report export routes
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	reportsGroup := r.Group("/reports")
	{
		reportsGroup.GET("/fields.pdf", handler.ExportPDF)
		reportsGroup.GET("/fields.xlsx", handler.ExportXLSX)
		reportsGroup.GET("/fields.csv", handler.ExportCSV)
	}
}
