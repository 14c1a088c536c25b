package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCalculateDiscountAmount(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	if got := CalculateDiscountAmount(amount, decimal.NewFromInt(10), "P"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("percent: got %s want 100", got)
	}
	if got := CalculateDiscountAmount(amount, decimal.NewFromInt(250), "A"); !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("absolute: got %s want 250", got)
	}
	if got := CalculateDiscountAmount(amount, decimal.Zero, "P"); !got.Equal(decimal.Zero) {
		t.Errorf("zero discount: got %s want 0", got)
	}
	if got := CalculateDiscountAmount(amount, decimal.NewFromInt(-5), "A"); !got.Equal(decimal.Zero) {
		t.Errorf("negative discount: got %s want 0", got)
	}
	// rounding to 4 places
	if got := CalculateDiscountAmount(decimal.NewFromInt(333), decimal.NewFromInt(3), "P"); !got.Equal(decimal.RequireFromString("9.99")) {
		t.Errorf("rounded percent: got %s want 9.99", got)
	}
}

func TestCalculateTaxAmount(t *testing.T) {
	if got := CalculateTaxAmount(decimal.NewFromInt(800), decimal.NewFromInt(5)); !got.Equal(decimal.NewFromInt(40)) {
		t.Errorf("5%% of 800: got %s want 40", got)
	}
	if got := CalculateTaxAmount(decimal.NewFromInt(800), decimal.Zero); !got.Equal(decimal.Zero) {
		t.Errorf("zero rate: got %s want 0", got)
	}
	if got := CalculateTaxAmount(decimal.NewFromInt(800), decimal.NewFromInt(-5)); !got.Equal(decimal.Zero) {
		t.Errorf("negative rate: got %s want 0", got)
	}
}
