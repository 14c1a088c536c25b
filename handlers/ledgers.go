package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/retail_backend/models"
)

func CreateLedgerEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewLedgerEntry
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		entry, err := models.CreateLedgerEntry(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "ledgers.go", "CreateLedgerEntry", err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func GetLedgerEntries() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.LedgerFilter{
			BranchId: queryInt(c, "branch_id"),
			From:     queryDate(c, "from"),
			To:       queryDate(c, "to"),
		}
		if account := c.Query("account_type"); account != "" {
			a := models.AccountType(account)
			filter.AccountType = &a
		}
		entries, err := models.GetLedgerEntries(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, "ledgers.go", "GetLedgerEntries", err)
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}

func GetLedgerEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		entry, err := models.GetLedgerEntry(c.Request.Context(), id)
		if err != nil {
			respondError(c, "ledgers.go", "GetLedgerEntry", err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}

func DeleteLedgerEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}
		entry, err := models.DeleteLedgerEntry(c.Request.Context(), id)
		if err != nil {
			respondError(c, "ledgers.go", "DeleteLedgerEntry", err)
			return
		}
		c.JSON(http.StatusOK, entry)
	}
}
