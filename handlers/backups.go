package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func RunBackup() gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := models.RunBackup(c.Request.Context())
		if err != nil {
			respondError(c, "backups.go", "RunBackup", err)
			return
		}
		c.JSON(http.StatusCreated, info)
	}
}

func ListBackups() gin.HandlerFunc {
	return func(c *gin.Context) {
		backups, err := models.ListBackups(c.Request.Context())
		if err != nil {
			respondError(c, "backups.go", "ListBackups", err)
			return
		}
		c.JSON(http.StatusOK, backups)
	}
}
