package models_test

import (
	"testing"

	"github.com/mmdatafocus/retail_backend/models"
)

// Deactivating and reactivating a product or category must persist the flag.
func TestToggleActiveFlags(t *testing.T) {
	skipUnlessIntegration(t)
	ctx := setupIntegration(t)

	product := seedProduct(t, ctx, "TOGGLE-001", 0)
	toggled, err := models.ToggleActiveProduct(ctx, product.ID, false)
	if err != nil {
		t.Fatalf("ToggleActiveProduct: %v", err)
	}
	if toggled.IsActive == nil || *toggled.IsActive {
		t.Fatalf("expected product inactive after toggle")
	}
	stored, err := models.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if stored.IsActive == nil || *stored.IsActive {
		t.Fatalf("stored product still active")
	}
	if _, err := models.ToggleActiveProduct(ctx, product.ID, true); err != nil {
		t.Fatalf("re-activate product: %v", err)
	}

	category, err := models.CreateProductCategory(ctx, &models.NewProductCategory{Name: "Beverages"})
	if err != nil {
		t.Fatalf("CreateProductCategory: %v", err)
	}
	off, err := models.ToggleActiveProductCategory(ctx, category.ID, false)
	if err != nil {
		t.Fatalf("ToggleActiveProductCategory: %v", err)
	}
	if off.IsActive == nil || *off.IsActive {
		t.Fatalf("expected category inactive after toggle")
	}
}
