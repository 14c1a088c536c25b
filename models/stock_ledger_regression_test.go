package models_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
)

func seedProduct(t *testing.T, ctx context.Context, sku string, openingStock int64) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:         "Product " + sku,
		Sku:          sku,
		Barcode:      "BC-" + sku,
		CostPrice:    decimal.NewFromInt(700),
		SalePrice:    decimal.NewFromInt(1000),
		OpeningStock: decimal.NewFromInt(openingStock),
	})
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", sku, err)
	}
	return product
}

func currentStock(t *testing.T, ctx context.Context, productId int) decimal.Decimal {
	t.Helper()
	product, err := models.GetProduct(ctx, productId)
	if err != nil {
		t.Fatalf("GetProduct(%d): %v", productId, err)
	}
	return product.Stock
}

// Scenario: stock 10, sell 4, try to sell 10 more (fails whole request),
// delete the first sale (stock restored exactly once).
func TestSaleLifecycleKeepsStockConsistent(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	product := seedProduct(t, ctx, "SALE-001", 10)

	sale, err := models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleDetail{
			{ProductId: product.ID, Qty: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("after sale of 4: expected stock 6, got %s", got)
	}

	// Selling 10 against 6 must fail and change nothing.
	_, err = models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleDetail{
			{ProductId: product.ID, Qty: decimal.NewFromInt(10)},
		},
	})
	if !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("failed sale must not move stock: expected 6, got %s", got)
	}

	// Multi-line sale with one short line: whole request fails, no line applies.
	other := seedProduct(t, ctx, "SALE-002", 100)
	_, err = models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items: []models.NewSaleDetail{
			{ProductId: other.ID, Qty: decimal.NewFromInt(5)},
			{ProductId: product.ID, Qty: decimal.NewFromInt(7)},
		},
	})
	if !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError for mixed sale, got %v", err)
	}
	if got := currentStock(t, ctx, other.ID); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("aborted sale must roll back sibling lines: expected 100, got %s", got)
	}

	// Delete restores stock exactly once; the second delete 404s.
	if _, err := models.DeleteSale(ctx, sale.ID); err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("after delete: expected stock 10, got %s", got)
	}
	if _, err := models.DeleteSale(ctx, sale.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("second delete must 404, got %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("second delete must not move stock: expected 10, got %s", got)
	}

	// Movements referencing the deleted sale are gone.
	db := config.GetDB()
	var count int64
	if err := db.Model(&models.StockMovement{}).
		Where("reference_type = ? AND reference_id = ?", models.MovementReferenceSale, sale.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count movements: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected sale movements removed, found %d", count)
	}
}

// Scenario: stock 10, manual IN 5 (15), edit to 3 (13), delete (10).
func TestManualMovementUpdateAppliesDeltaOnly(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	product := seedProduct(t, ctx, "MOVE-001", 10)

	movement, err := models.CreateStockMovement(ctx, &models.NewStockMovement{
		ProductId: product.ID,
		Direction: models.MovementDirectionIn,
		Reason:    models.MovementReasonAdjustment,
		Qty:       decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("CreateStockMovement: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("after IN 5: expected 15, got %s", got)
	}

	newQty := decimal.NewFromInt(3)
	updated, err := models.UpdateStockMovement(ctx, movement.ID, &models.UpdateStockMovementInput{Qty: &newQty})
	if err != nil {
		t.Fatalf("UpdateStockMovement: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(13)) {
		t.Fatalf("after edit 5->3: expected 13, got %s", got)
	}
	if !updated.Qty.Equal(newQty) {
		t.Fatalf("expected movement qty 3, got %s", updated.Qty)
	}

	if _, err := models.DeleteStockMovement(ctx, movement.ID); err != nil {
		t.Fatalf("DeleteStockMovement: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("after delete: expected 10, got %s", got)
	}

	// Deleting an IN that was already consumed must fail.
	in2, err := models.CreateStockMovement(ctx, &models.NewStockMovement{
		ProductId: product.ID,
		Direction: models.MovementDirectionIn,
		Reason:    models.MovementReasonReturnIn,
		Qty:       decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("CreateStockMovement(IN 5): %v", err)
	}
	if _, err := models.CreateStockMovement(ctx, &models.NewStockMovement{
		ProductId: product.ID,
		Direction: models.MovementDirectionOut,
		Reason:    models.MovementReasonDamage,
		Qty:       decimal.NewFromInt(12),
	}); err != nil {
		t.Fatalf("CreateStockMovement(OUT 12): %v", err)
	}
	// stock is 3 now; removing the IN 5 would drive it negative
	if _, err := models.DeleteStockMovement(ctx, in2.ID); !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError deleting consumed IN, got %v", err)
	}
}

// Concurrent sales against the same product must never drive stock negative:
// exactly floor(stock/qty) of them can succeed.
func TestConcurrentSalesNeverOversell(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	product := seedProduct(t, ctx, "RACE-001", 10)

	const workers = 8
	qty := decimal.NewFromInt(3)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = models.CreateSale(ctx, &models.NewSale{
				PaymentMethod: models.PaymentMethodCash,
				Notes:         fmt.Sprintf("worker %d", i),
				Items: []models.NewSaleDetail{
					{ProductId: product.ID, Qty: qty},
				},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !utils.IsInsufficientStock(err) {
			t.Fatalf("unexpected error under contention: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 of %d sales of 3 units against stock 10, got %d", workers, succeeded)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected remaining stock 1, got %s", got)
	}
}

// Stock always equals opening + sum(IN) - sum(OUT) of in-force movements.
func TestStockMatchesMovementLedger(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	product := seedProduct(t, ctx, "LEDGER-001", 20)

	if _, err := models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleDetail{{ProductId: product.ID, Qty: decimal.NewFromInt(6)}},
	}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if _, err := models.CreateStockMovement(ctx, &models.NewStockMovement{
		ProductId: product.ID,
		Direction: models.MovementDirectionIn,
		Reason:    models.MovementReasonReturnIn,
		Qty:       decimal.NewFromInt(2),
	}); err != nil {
		t.Fatalf("CreateStockMovement: %v", err)
	}

	db := config.GetDB()
	var ledgerSum decimal.Decimal
	err := db.Raw(`
SELECT COALESCE(SUM(CASE WHEN direction = 'IN' THEN qty ELSE -qty END), 0)
FROM stock_movements WHERE product_id = ?`, product.ID).Scan(&ledgerSum).Error
	if err != nil {
		t.Fatalf("sum movements: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(ledgerSum) {
		t.Fatalf("stock %s diverged from movement ledger %s", got, ledgerSum)
	}
	if !ledgerSum.Equal(decimal.NewFromInt(16)) {
		t.Fatalf("expected ledger sum 16, got %s", ledgerSum)
	}
}
