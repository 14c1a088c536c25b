package models_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/mmdatafocus/retail_backend/config"
	"github.com/mmdatafocus/retail_backend/models"
	"github.com/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
)

// Confirming a purchase must be one transaction: status flip, stock receipt,
// cost refresh and ledger rows all land together, and a second confirm is
// rejected without receiving stock twice.
func TestConfirmPurchaseIsAtomicAndIdempotent(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	vendor, err := models.CreateVendor(ctx, &models.NewVendor{Name: "Acme Supplies"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	product := seedProduct(t, ctx, "PO-001", 2)

	unitCost := decimal.NewFromInt(800)
	purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorId: vendor.ID,
		Items: []models.NewPurchaseDetail{
			{ProductId: product.ID, Qty: decimal.NewFromInt(10), UnitCost: &unitCost},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if purchase.Status != models.PurchaseStatusOpen {
		t.Fatalf("expected OPEN, got %s", purchase.Status)
	}
	// Creating the order must not move stock.
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("open purchase moved stock: expected 2, got %s", got)
	}

	confirmed, err := models.ConfirmPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("ConfirmPurchase: %v", err)
	}
	if confirmed.Status != models.PurchaseStatusPosted {
		t.Fatalf("expected POSTED, got %s", confirmed.Status)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("after confirm: expected 12, got %s", got)
	}

	// Cost refreshed from the received line.
	refreshed, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if !refreshed.CostPrice.Equal(unitCost) {
		t.Fatalf("expected cost price %s, got %s", unitCost, refreshed.CostPrice)
	}

	// Ledger rows posted with the purchase reference.
	db := config.GetDB()
	var ledgerCount int64
	if err := db.Model(&models.LedgerEntry{}).
		Where("reference_type = ? AND reference_id = ?", models.MovementReferencePurchase, purchase.ID).
		Count(&ledgerCount).Error; err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	if ledgerCount == 0 {
		t.Fatalf("expected ledger rows for confirmed purchase")
	}

	// Second confirm rejected, stock unchanged.
	if _, err := models.ConfirmPurchase(ctx, purchase.ID); !errors.Is(err, models.ErrPurchaseNotOpen) {
		t.Fatalf("expected ErrPurchaseNotOpen on re-confirm, got %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("re-confirm moved stock: expected 12, got %s", got)
	}
}

// Deleting a posted purchase reverses its receipt; when the received goods
// were already sold the delete fails and nothing changes.
func TestDeletePostedPurchaseReversesOrFails(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	vendor, err := models.CreateVendor(ctx, &models.NewVendor{Name: "Acme Supplies"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	product := seedProduct(t, ctx, "PO-DEL-001", 0)

	purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorId: vendor.ID,
		Items: []models.NewPurchaseDetail{
			{ProductId: product.ID, Qty: decimal.NewFromInt(10)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	if _, err := models.ConfirmPurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("ConfirmPurchase: %v", err)
	}

	// Sell 4 of the received 10.
	if _, err := models.CreateSale(ctx, &models.NewSale{
		PaymentMethod: models.PaymentMethodCash,
		Items:         []models.NewSaleDetail{{ProductId: product.ID, Qty: decimal.NewFromInt(4)}},
	}); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	// Reversing the receipt of 10 against stock 6 must fail atomically.
	if _, err := models.DeletePurchase(ctx, purchase.ID); !utils.IsInsufficientStock(err) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("failed delete moved stock: expected 6, got %s", got)
	}
	still, err := models.GetPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("purchase should survive failed delete: %v", err)
	}
	if still.Status != models.PurchaseStatusPosted {
		t.Fatalf("expected POSTED after failed delete, got %s", still.Status)
	}

	// Return the sold units, then delete succeeds and removes everything.
	if _, err := models.CreateStockMovement(ctx, &models.NewStockMovement{
		ProductId: product.ID,
		Direction: models.MovementDirectionIn,
		Reason:    models.MovementReasonReturnIn,
		Qty:       decimal.NewFromInt(4),
	}); err != nil {
		t.Fatalf("CreateStockMovement: %v", err)
	}
	if _, err := models.DeletePurchase(ctx, purchase.ID); err != nil {
		t.Fatalf("DeletePurchase: %v", err)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(0)) {
		t.Fatalf("after reversal: expected 0, got %s", got)
	}
}

// Cancel only works on OPEN purchases and never touches stock.
func TestCancelPurchase(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	vendor, err := models.CreateVendor(ctx, &models.NewVendor{Name: "Acme Supplies"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	product := seedProduct(t, ctx, "PO-CXL-001", 5)

	purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
		VendorId: vendor.ID,
		Items:    []models.NewPurchaseDetail{{ProductId: product.ID, Qty: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	cancelled, err := models.CancelPurchase(ctx, purchase.ID)
	if err != nil {
		t.Fatalf("CancelPurchase: %v", err)
	}
	if cancelled.Status != models.PurchaseStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if got := currentStock(t, ctx, product.ID); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("cancel moved stock: expected 5, got %s", got)
	}
	if _, err := models.ConfirmPurchase(ctx, purchase.ID); !errors.Is(err, models.ErrPurchaseNotOpen) {
		t.Fatalf("expected ErrPurchaseNotOpen confirming cancelled purchase, got %v", err)
	}
}

// A line edit racing a confirm must leave the movement ledger mirroring the
// stored document, whichever side wins the status flip.
func TestConfirmRacingLineEditStaysConsistent(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	vendor, err := models.CreateVendor(ctx, &models.NewVendor{Name: "Acme Supplies"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	first := seedProduct(t, ctx, "PO-RACE-A", 0)
	second := seedProduct(t, ctx, "PO-RACE-B", 0)

	for i := 0; i < 10; i++ {
		purchase, err := models.CreatePurchase(ctx, &models.NewPurchase{
			VendorId: vendor.ID,
			Items:    []models.NewPurchaseDetail{{ProductId: first.ID, Qty: decimal.NewFromInt(5)}},
		})
		if err != nil {
			t.Fatalf("CreatePurchase: %v", err)
		}

		var wg sync.WaitGroup
		var updateErr, confirmErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, updateErr = models.UpdatePurchase(ctx, purchase.ID, &models.NewPurchase{
				VendorId: vendor.ID,
				Items:    []models.NewPurchaseDetail{{ProductId: second.ID, Qty: decimal.NewFromInt(2)}},
			})
		}()
		go func() {
			defer wg.Done()
			_, confirmErr = models.ConfirmPurchase(ctx, purchase.ID)
		}()
		wg.Wait()

		if confirmErr != nil {
			t.Fatalf("iteration %d: ConfirmPurchase: %v", i, confirmErr)
		}
		// The edit either landed before the flip or was rejected by it.
		if updateErr != nil && !errors.Is(updateErr, models.ErrPurchaseNotOpen) {
			t.Fatalf("iteration %d: UpdatePurchase: %v", i, updateErr)
		}

		posted, err := models.GetPurchase(ctx, purchase.ID)
		if err != nil {
			t.Fatalf("GetPurchase: %v", err)
		}
		wantQtyByProduct := map[int]decimal.Decimal{}
		for _, d := range posted.Details {
			wantQtyByProduct[d.ProductId] = wantQtyByProduct[d.ProductId].Add(d.Qty)
		}

		var movements []models.StockMovement
		if err := config.GetDB().
			Where("reference_type = ? AND reference_id = ?", models.MovementReferencePurchase, purchase.ID).
			Find(&movements).Error; err != nil {
			t.Fatalf("load movements: %v", err)
		}
		gotQtyByProduct := map[int]decimal.Decimal{}
		for _, m := range movements {
			gotQtyByProduct[m.ProductId] = gotQtyByProduct[m.ProductId].Add(m.Qty)
		}
		if len(gotQtyByProduct) != len(wantQtyByProduct) {
			t.Fatalf("iteration %d: movements cover %d products, document has %d",
				i, len(gotQtyByProduct), len(wantQtyByProduct))
		}
		for productId, want := range wantQtyByProduct {
			if got := gotQtyByProduct[productId]; !got.Equal(want) {
				t.Fatalf("iteration %d: product %d received %s, document line says %s",
					i, productId, got, want)
			}
		}
	}
}

// First-ever postings must not race on creating the number series row; every
// concurrent posting gets a distinct number.
func TestConcurrentFirstPostingsGetDistinctNumbers(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	vendor, err := models.CreateVendor(ctx, &models.NewVendor{Name: "Acme Supplies"})
	if err != nil {
		t.Fatalf("CreateVendor: %v", err)
	}
	product := seedProduct(t, ctx, "PO-SERIES-001", 0)

	const n = 6
	results := make([]*models.Purchase, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = models.CreatePurchase(ctx, &models.NewPurchase{
				VendorId: vendor.ID,
				Items:    []models.NewPurchaseDetail{{ProductId: product.ID, Qty: decimal.NewFromInt(1)}},
			})
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("CreatePurchase %d: %v", i, errs[i])
		}
		if seen[results[i].InvoiceNo] {
			t.Fatalf("duplicate invoice number %s", results[i].InvoiceNo)
		}
		seen[results[i].InvoiceNo] = true
	}
}
