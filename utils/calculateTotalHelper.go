package utils

import (
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	if discount.GreaterThan(decimal.NewFromFloat(0.0)) {
		if discountType == "percent" {
			discountAmount = subTotal.Mul(discount).DivRound(decimalOneHundred, 4)
		} else {
			discountAmount = discount
		}
	} else {
		discountAmount = decimal.NewFromFloat(0.0)
	}

	return discountAmount
}

func CalculateVATAmount(baseAmount decimal.Decimal, vatRate decimal.Decimal) decimal.Decimal {
	if vatRate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	// VAT-exclusive base: (baseAmount / 100) * vatRate
	return baseAmount.DivRound(decimalOneHundred, 4).Mul(vatRate)
}

// TTCToHTVA converts a VAT-inclusive amount to its VAT-exclusive equivalent:
// amount / (1 + vatRate/100). Used to record "X off the displayed TTC price"
// against the HTVA base.
func TTCToHTVA(ttcAmount decimal.Decimal, vatRate decimal.Decimal) decimal.Decimal {
	if vatRate.LessThanOrEqual(decimal.Zero) {
		return ttcAmount
	}
	return ttcAmount.DivRound(vatRate.Add(decimalOneHundred), 4).Mul(decimalOneHundred)
}

// ClampNonNegative floors an amount at zero. Line and document subtotals are
// clamped before VAT is applied so an oversized discount never produces a
// negative total.
func ClampNonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
