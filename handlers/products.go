package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func CreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "products.go", "CreateProduct", err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.ProductFilter{
			Name:       nameQuery(c),
			CategoryId: queryInt(c, "category_id"),
			LowStock:   c.Query("low_stock") == "true",
		}
		if sku := c.Query("sku"); sku != "" {
			filter.Sku = &sku
		}
		if barcode := c.Query("barcode"); barcode != "" {
			filter.Barcode = &barcode
		}
		products, err := models.GetProducts(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "products.go", "GetProducts", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, "products.go", "GetProduct", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "products.go", "UpdateProduct", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func ToggleProductActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var req toggleActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "is_active is required"})
			return
		}
		product, err := models.ToggleActiveProduct(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, "products.go", "ToggleProductActive", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, "products.go", "DeleteProduct", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
