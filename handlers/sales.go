package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func CreateSale() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSale
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		sale, err := models.CreateSale(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "sales.go", "CreateSale", err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func GetSales() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.SaleFilter{
			CustomerId: queryInt(c, "customer_id"),
			From:       queryDate(c, "from"),
			To:         queryDate(c, "to"),
		}
		sales, err := models.GetSales(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "sales.go", "GetSales", err)
			return
		}
		c.JSON(http.StatusOK, sales)
	}
}

func GetSale() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		sale, err := models.GetSale(c.Request.Context(), id)
		if err != nil {
			respondError(c, "sales.go", "GetSale", err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

func DeleteSale() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		sale, err := models.DeleteSale(c.Request.Context(), id)
		if err != nil {
			respondError(c, "sales.go", "DeleteSale", err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}
