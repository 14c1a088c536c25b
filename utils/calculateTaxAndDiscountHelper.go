package utils

import "github.com/shopspring/decimal"

// CalculateDiscountAmount resolves a discount expressed either as a
// percentage ("P") of the amount or as an absolute value ("A").
func CalculateDiscountAmount(amount decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {

	decimalOneHundred := decimal.NewFromFloat(100)

	if !discount.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	if discountType == "P" {
		return amount.Mul(discount).DivRound(decimalOneHundred, 4)
	}
	return discount
}

// CalculateTaxAmount applies a tax-exclusive rate: (amount / 100) * rate.
func CalculateTaxAmount(amount decimal.Decimal, taxRate decimal.Decimal) decimal.Decimal {
	if !taxRate.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return amount.DivRound(decimal.NewFromFloat(100), 4).Mul(taxRate)
}
