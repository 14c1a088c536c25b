package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func GetDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := models.GetDashboardSummary(c.Request.Context())
		if err != nil {
			respondError(c, "reports.go", "GetDashboard", err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func GetSalesReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := queryDate(c, "from")
		to := queryDate(c, "to")
		if from == nil || to == nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "from and to dates are required"})
			return
		}
		// include the whole "to" day
		end := to.Add(24*time.Hour - time.Nanosecond)
		rows, err := models.GetSalesByDayReport(c.Request.Context(), *from, end)
		if err != nil {
			respondError(c, "reports.go", "GetSalesReport", err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func GetLowStockReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.GetLowStockReport(c.Request.Context())
		if err != nil {
			respondError(c, "reports.go", "GetLowStockReport", err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func GetInventoryReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.GetInventoryReport(c.Request.Context())
		if err != nil {
			respondError(c, "reports.go", "GetInventoryReport", err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func ExportInventoryReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=inventory.xlsx")
		if err := models.ExportInventoryReport(c.Request.Context(), c.Writer); err != nil {
			respondError(c, "reports.go", "ExportInventoryReport", err)
		}
	}
}
