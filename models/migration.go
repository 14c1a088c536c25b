package models

import (
	"github.com/mmdatafocus/retail_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Branch{},
		&ProductCategory{},
		&Vendor{},
		&Customer{},
		&Product{},
		&StockMovement{},
		&Sale{},
		&SaleDetail{},
		&Purchase{},
		&PurchaseDetail{},
		&LedgerEntry{},
		&TransactionNumberSeries{},
	)
	if err != nil {
		panic(err)
	}
	if err := seedTransactionNumberSeries(db); err != nil {
		panic(err)
	}
}
