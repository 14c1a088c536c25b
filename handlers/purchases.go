package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func CreatePurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewPurchase
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		purchase, err := models.CreatePurchase(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "purchases.go", "CreatePurchase", err)
			return
		}
		c.JSON(http.StatusCreated, purchase)
	}
}

func GetPurchases() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.PurchaseFilter{
			VendorId: queryInt(c, "vendor_id"),
			From:     queryDate(c, "from"),
			To:       queryDate(c, "to"),
		}
		if status := c.Query("status"); status != "" {
			s := models.PurchaseStatus(status)
			filter.Status = &s
		}
		purchases, err := models.GetPurchases(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "purchases.go", "GetPurchases", err)
			return
		}
		c.JSON(http.StatusOK, purchases)
	}
}

func GetPurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		purchase, err := models.GetPurchase(c.Request.Context(), id)
		if err != nil {
			respondError(c, "purchases.go", "GetPurchase", err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

func UpdatePurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewPurchase
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		purchase, err := models.UpdatePurchase(c.Request.Context(), id, &input)
		if err != nil {
			respondPurchaseError(c, "UpdatePurchase", err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

func ConfirmPurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		purchase, err := models.ConfirmPurchase(c.Request.Context(), id)
		if err != nil {
			respondPurchaseError(c, "ConfirmPurchase", err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

func CancelPurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		purchase, err := models.CancelPurchase(c.Request.Context(), id)
		if err != nil {
			respondPurchaseError(c, "CancelPurchase", err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

func DeletePurchase() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		purchase, err := models.DeletePurchase(c.Request.Context(), id)
		if err != nil {
			respondError(c, "purchases.go", "DeletePurchase", err)
			return
		}
		c.JSON(http.StatusOK, purchase)
	}
}

// respondPurchaseError adds the invalid-transition case on top of the common
// mapping: acting on a purchase that is no longer OPEN is a client error.
func respondPurchaseError(c *gin.Context, fn string, err error) {
	if errors.Is(err, models.ErrPurchaseNotOpen) {
		respondBadRequest(c, err)
		return
	}
	respondError(c, "purchases.go", fn, err)
}
