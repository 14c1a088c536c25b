package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCalculateLineAmounts(t *testing.T) {
	tests := []struct {
		name         string
		qty          string
		unitPrice    string
		discount     string
		discountType DiscountType
		taxRate      string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "plain line", qty: "4", unitPrice: "1000",
			discount: "0", discountType: DiscountTypeAbsolute, taxRate: "0",
			wantDiscount: "0", wantTax: "0", wantTotal: "4000",
		},
		{
			name: "percent discount", qty: "2", unitPrice: "500",
			discount: "10", discountType: DiscountTypePercent, taxRate: "0",
			wantDiscount: "100", wantTax: "0", wantTotal: "900",
		},
		{
			name: "absolute discount with tax after discount", qty: "1", unitPrice: "1000",
			discount: "200", discountType: DiscountTypeAbsolute, taxRate: "5",
			wantDiscount: "200", wantTax: "40", wantTotal: "800",
		},
		{
			name: "fractional qty rounds to 4 places", qty: "0.5", unitPrice: "333",
			discount: "3", discountType: DiscountTypePercent, taxRate: "0",
			wantDiscount: "4.995", wantTax: "0", wantTotal: "161.505",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discountAmount, taxAmount, totalAmount := calculateLineAmounts(
				d(tt.qty), d(tt.unitPrice), d(tt.discount), tt.discountType, d(tt.taxRate))
			if !discountAmount.Equal(d(tt.wantDiscount)) {
				t.Errorf("discount: got %s want %s", discountAmount, tt.wantDiscount)
			}
			if !taxAmount.Equal(d(tt.wantTax)) {
				t.Errorf("tax: got %s want %s", taxAmount, tt.wantTax)
			}
			if !totalAmount.Equal(d(tt.wantTotal)) {
				t.Errorf("total: got %s want %s", totalAmount, tt.wantTotal)
			}
		})
	}
}

func TestCalculateSaleTotals(t *testing.T) {
	details := []SaleDetail{
		{Qty: d("4"), UnitPrice: d("1000"), DiscountAmount: d("100"), TaxAmount: d("195")},
		{Qty: d("2"), UnitPrice: d("250"), DiscountAmount: d("0"), TaxAmount: d("25")},
	}
	subTotal, discountTotal, taxTotal, grandTotal := calculateSaleTotals(details, d("150"))

	if !subTotal.Equal(d("4500")) {
		t.Errorf("subTotal: got %s want 4500", subTotal)
	}
	if !discountTotal.Equal(d("100")) {
		t.Errorf("discountTotal: got %s want 100", discountTotal)
	}
	if !taxTotal.Equal(d("220")) {
		t.Errorf("taxTotal: got %s want 220", taxTotal)
	}
	// 4500 - 100 + 220 + 150
	if !grandTotal.Equal(d("4770")) {
		t.Errorf("grandTotal: got %s want 4770", grandTotal)
	}
}

func TestPurchaseTotals(t *testing.T) {
	details := []PurchaseDetail{
		{Qty: d("10"), UnitCost: d("800"), DiscountAmount: d("400"), TaxAmount: d("380")},
	}
	subTotal, discountTotal, taxTotal, grandTotal := purchaseTotals(details, d("0"))

	if !subTotal.Equal(d("8000")) {
		t.Errorf("subTotal: got %s want 8000", subTotal)
	}
	if !discountTotal.Equal(d("400")) {
		t.Errorf("discountTotal: got %s want 400", discountTotal)
	}
	if !taxTotal.Equal(d("380")) {
		t.Errorf("taxTotal: got %s want 380", taxTotal)
	}
	if !grandTotal.Equal(d("7980")) {
		t.Errorf("grandTotal: got %s want 7980", grandTotal)
	}
}

func TestStockChangeSignedDelta(t *testing.T) {
	in := stockChange{Direction: MovementDirectionIn, Qty: d("5")}
	if got := in.signedDelta(); !got.Equal(d("5")) {
		t.Errorf("IN delta: got %s want 5", got)
	}
	out := stockChange{Direction: MovementDirectionOut, Qty: d("5")}
	if got := out.signedDelta(); !got.Equal(d("-5")) {
		t.Errorf("OUT delta: got %s want -5", got)
	}
}
