// inventory-rebuild recomputes product stock from the movement ledger and
// repairs drift. Run it offline; it takes per-product advisory locks, not a
// global one.
//
// Usage:
//   go run ./cmd/inventory-rebuild                # all products
//   go run ./cmd/inventory-rebuild -product-id 7  # one product
//   go run ./cmd/inventory-rebuild -dry-run       # report drift only
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func main() {
	productID := flag.Int("product-id", 0, "Optional: rebuild a single product")
	dryRun := flag.Bool("dry-run", false, "Report drift without repairing")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := logrus.New()

	if *dryRun {
		if err := reportDrift(ctx, *productID); err != nil {
			fmt.Fprintf(os.Stderr, "dry run failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var repaired []*workflow.RebuildResult
	var err error
	if *productID > 0 {
		var result *workflow.RebuildResult
		result, err = workflow.RebuildProductStock(ctx, db, logger, *productID)
		if result != nil {
			repaired = append(repaired, result)
		}
	} else {
		repaired, err = workflow.RebuildAllProductStocks(ctx, db, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}

	if len(repaired) == 0 {
		fmt.Println("no drift found")
		return
	}
	for _, r := range repaired {
		fmt.Printf("repaired product %d (%s): %s -> %s\n", r.ProductId, r.Sku, r.OldStock, r.NewStock)
	}
}

func reportDrift(ctx context.Context, productID int) error {
	db := config.GetDB()

	type driftRow struct {
		ProductId int
		Sku       string
		Stock     decimal.Decimal
		Computed  decimal.Decimal
	}
	sql := `
SELECT
    products.id AS product_id,
    products.sku,
    products.stock,
    COALESCE(SUM(CASE WHEN sm.direction = 'IN' THEN sm.qty ELSE -sm.qty END), 0) AS computed
FROM
    products
    LEFT JOIN stock_movements sm ON sm.product_id = products.id
%s
GROUP BY products.id, products.sku, products.stock
HAVING products.stock <> computed;
`
	where := ""
	args := []interface{}{}
	if productID > 0 {
		where = "WHERE products.id = ?"
		args = append(args, productID)
	}

	var rows []driftRow
	if err := db.WithContext(ctx).Raw(fmt.Sprintf(sql, where), args...).Scan(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no drift found")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("drift product %d (%s): stock=%s computed=%s\n", r.ProductId, r.Sku, r.Stock, r.Computed)
	}
	return nil
}
