package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func CreateStockMovement() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockMovement
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		movement, err := models.CreateStockMovement(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "stockMovements.go", "CreateStockMovement", err)
			return
		}
		c.JSON(http.StatusCreated, movement)
	}
}

func GetStockMovements() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.StockMovementFilter{
			ProductId: queryInt(c, "product_id"),
			From:      queryDate(c, "from"),
			To:        queryDate(c, "to"),
		}
		if reason := c.Query("reason"); reason != "" {
			r := models.MovementReason(reason)
			filter.Reason = &r
		}
		movements, err := models.GetStockMovements(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "stockMovements.go", "GetStockMovements", err)
			return
		}
		c.JSON(http.StatusOK, movements)
	}
}

func GetStockMovement() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		movement, err := models.GetStockMovement(c.Request.Context(), id)
		if err != nil {
			respondError(c, "stockMovements.go", "GetStockMovement", err)
			return
		}
		c.JSON(http.StatusOK, movement)
	}
}

func UpdateStockMovement() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.UpdateStockMovementInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		movement, err := models.UpdateStockMovement(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "stockMovements.go", "UpdateStockMovement", err)
			return
		}
		c.JSON(http.StatusOK, movement)
	}
}

func DeleteStockMovement() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		movement, err := models.DeleteStockMovement(c.Request.Context(), id)
		if err != nil {
			respondError(c, "stockMovements.go", "DeleteStockMovement", err)
			return
		}
		c.JSON(http.StatusOK, movement)
	}
}
