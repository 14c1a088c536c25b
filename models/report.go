package models

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type DashboardSummary struct {
	TodaySalesTotal decimal.Decimal `json:"today_sales_total"`
	TodaySalesCount int             `json:"today_sales_count"`
	ProductCount    int64           `json:"product_count"`
	CustomerCount   int64           `json:"customer_count"`
	LowStockCount   int64           `json:"low_stock_count"`
	OpenPurchases   int64           `json:"open_purchases"`
}

func GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {

	db := config.GetDB()
	var summary DashboardSummary

	startOfDay := time.Now().Truncate(24 * time.Hour)
	row := struct {
		Total decimal.Decimal
		Count int
	}{}
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("COALESCE(SUM(grand_total), 0) AS total, COUNT(id) AS count").
		Where("sale_date >= ?", startOfDay).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	summary.TodaySalesTotal = row.Total
	summary.TodaySalesCount = row.Count

	if err := db.WithContext(ctx).Model(&Product{}).Count(&summary.ProductCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Customer{}).Count(&summary.CustomerCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Product{}).
		Where("reorder_level > 0 AND stock <= reorder_level").
		Count(&summary.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Purchase{}).
		Where("status = ?", PurchaseStatusOpen).
		Count(&summary.OpenPurchases).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

type SalesByDayRow struct {
	Day           string          `json:"day"`
	InvoiceCount  int             `json:"invoice_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
}

func GetSalesByDayReport(ctx context.Context, from time.Time, to time.Time) ([]*SalesByDayRow, error) {

	sql := `
SELECT
    DATE_FORMAT(sale_date, '%Y-%m-%d') AS day,
    COUNT(id) AS invoice_count,
    COALESCE(SUM(grand_total), 0) AS total_sales,
    COALESCE(SUM(discount_total), 0) AS total_discount,
    COALESCE(SUM(tax_total), 0) AS total_tax
FROM
    sales
WHERE
    sale_date BETWEEN @fromDate AND @toDate
GROUP BY day
ORDER BY day;
`

	var records []*SalesByDayRow
	db := config.GetDB()
	err := db.WithContext(ctx).Raw(sql,
		map[string]interface{}{"fromDate": from, "toDate": to},
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type LowStockRow struct {
	ProductId    int             `json:"product_id"`
	Sku          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	Stock        decimal.Decimal `json:"stock"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	VendorName   *string         `json:"vendor_name,omitempty"`
}

func GetLowStockReport(ctx context.Context) ([]*LowStockRow, error) {

	sql := `
SELECT
    products.id AS product_id,
    products.sku,
    products.name AS product_name,
    products.stock,
    products.reorder_level,
    vendors.name AS vendor_name
FROM
    products
    LEFT JOIN vendors ON vendors.id = products.vendor_id
WHERE
    products.reorder_level > 0
    AND products.stock <= products.reorder_level
ORDER BY products.stock ASC;
`

	var records []*LowStockRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

type InventoryRow struct {
	ProductId    int             `json:"product_id"`
	Sku          string          `json:"sku"`
	ProductName  string          `json:"product_name"`
	CategoryName *string         `json:"category_name,omitempty"`
	Stock        decimal.Decimal `json:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	StockValue   decimal.Decimal `json:"stock_value"`
}

func GetInventoryReport(ctx context.Context) ([]*InventoryRow, error) {

	sql := `
SELECT
    products.id AS product_id,
    products.sku,
    products.name AS product_name,
    product_categories.name AS category_name,
    products.stock,
    products.cost_price,
    products.stock * products.cost_price AS stock_value
FROM
    products
    LEFT JOIN product_categories ON product_categories.id = products.category_id
ORDER BY products.name;
`

	var records []*InventoryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ExportInventoryReport streams the inventory report as an xlsx workbook.
func ExportInventoryReport(ctx context.Context, w io.Writer) error {

	data, err := GetInventoryReport(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	// Add headers
	f.SetCellValue(sheetName, "A1", "Sku")
	f.SetCellValue(sheetName, "B1", "Product")
	f.SetCellValue(sheetName, "C1", "Category")
	f.SetCellValue(sheetName, "D1", "Stock")
	f.SetCellValue(sheetName, "E1", "CostPrice")
	f.SetCellValue(sheetName, "F1", "StockValue")

	// Add data
	for i, d := range data {
		category := ""
		if d.CategoryName != nil {
			category = *d.CategoryName
		}
		f.SetCellValue(sheetName, "A"+fmt.Sprint(i+2), d.Sku)
		f.SetCellValue(sheetName, "B"+fmt.Sprint(i+2), d.ProductName)
		f.SetCellValue(sheetName, "C"+fmt.Sprint(i+2), category)
		f.SetCellValue(sheetName, "D"+fmt.Sprint(i+2), d.Stock.String())
		f.SetCellValue(sheetName, "E"+fmt.Sprint(i+2), d.CostPrice.String())
		f.SetCellValue(sheetName, "F"+fmt.Sprint(i+2), d.StockValue.String())
	}

	return f.Write(w)
}
