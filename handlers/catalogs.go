package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func nameQuery(c *gin.Context) *string {
	name := c.Query("name")
	if name == "" {
		return nil
	}
	return &name
}

func CreateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		category, err := models.CreateProductCategory(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "catalogs.go", "CreateCategory", err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := models.GetProductCategories(c.Request.Context(), nameQuery(c))
		if err != nil {
			respondError(c, "catalogs.go", "GetCategories", err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		category, err := models.GetProductCategory(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "GetCategory", err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		category, err := models.UpdateProductCategory(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "catalogs.go", "UpdateCategory", err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func ToggleCategoryActive() gin.HandlerFunc {
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
		category, err := models.ToggleActiveProductCategory(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, "catalogs.go", "ToggleCategoryActive", err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		category, err := models.DeleteProductCategory(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "DeleteCategory", err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func CreateVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewVendor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		vendor, err := models.CreateVendor(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "catalogs.go", "CreateVendor", err)
			return
		}
		c.JSON(http.StatusCreated, vendor)
	}
}

func GetVendors() gin.HandlerFunc {
	return func(c *gin.Context) {
		vendors, err := models.GetVendors(c.Request.Context(), nameQuery(c))
		if err != nil {
			respondError(c, "catalogs.go", "GetVendors", err)
			return
		}
		c.JSON(http.StatusOK, vendors)
	}
}

func GetVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		vendor, err := models.GetVendor(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "GetVendor", err)
			return
		}
		c.JSON(http.StatusOK, vendor)
	}
}

func UpdateVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewVendor
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		vendor, err := models.UpdateVendor(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "catalogs.go", "UpdateVendor", err)
			return
		}
		c.JSON(http.StatusOK, vendor)
	}
}

func DeleteVendor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		vendor, err := models.DeleteVendor(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "DeleteVendor", err)
			return
		}
		c.JSON(http.StatusOK, vendor)
	}
}

func CreateCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "catalogs.go", "CreateCustomer", err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func GetCustomers() gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := models.GetCustomers(c.Request.Context(), nameQuery(c))
		if err != nil {
			respondError(c, "catalogs.go", "GetCustomers", err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func GetCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "GetCustomer", err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func UpdateCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "catalogs.go", "UpdateCustomer", err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func DeleteCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "DeleteCustomer", err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func CreateBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBranch
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		branch, err := models.CreateBranch(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "catalogs.go", "CreateBranch", err)
			return
		}
		c.JSON(http.StatusCreated, branch)
	}
}

func GetBranches() gin.HandlerFunc {
	return func(c *gin.Context) {
		branches, err := models.GetBranches(c.Request.Context(), nameQuery(c))
		if err != nil {
			respondError(c, "catalogs.go", "GetBranches", err)
			return
		}
		c.JSON(http.StatusOK, branches)
	}
}

func GetBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		branch, err := models.GetBranch(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "GetBranch", err)
			return
		}
		c.JSON(http.StatusOK, branch)
	}
}

func UpdateBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		var input models.NewBranch
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		branch, err := models.UpdateBranch(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "catalogs.go", "UpdateBranch", err)
			return
		}
		c.JSON(http.StatusOK, branch)
	}
}

func DeleteBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		branch, err := models.DeleteBranch(c.Request.Context(), id)
		if err != nil {
			respondError(c, "catalogs.go", "DeleteBranch", err)
			return
		}
		c.JSON(http.StatusOK, branch)
	}
}
