package models

import (
	"sort"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// CalculateLineTotal returns the HTVA amount of one line: qty * unit_price
// minus the line discount, floored at zero. A fixed discount expressed
// against the TTC price is converted to its HTVA equivalent before it is
// subtracted.
func CalculateLineTotal(item DocumentItem) decimal.Decimal {
	lineTotal := item.Qty.Mul(item.UnitPrice)

	if item.DiscountType != nil && item.DiscountValue.GreaterThan(decimal.Zero) {
		var discountAmount decimal.Decimal
		switch *item.DiscountType {
		case DiscountTypePercent:
			discountAmount = utils.CalculateDiscountAmount(lineTotal, item.DiscountValue, string(DiscountTypePercent))
		case DiscountTypeFixed:
			discountAmount = item.DiscountValue
			if item.DiscountTarget != nil && *item.DiscountTarget == DiscountTargetTTC {
				discountAmount = utils.TTCToHTVA(item.DiscountValue, item.VatRate)
			}
		}
		lineTotal = lineTotal.Sub(discountAmount)
	}

	return utils.ClampNonNegative(lineTotal)
}

type DocumentTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	VatAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`
}

// CalculateDocumentTotals computes the frozen totals snapshot of a document.
// VAT is always computed from the per-line vat_rate; when a global discount
// is present it is prorated across lines before VAT so each rate keeps its
// correct base.
func CalculateDocumentTotals(items []DocumentItem, globalDiscountType *DiscountType, globalDiscountValue decimal.Decimal) DocumentTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(CalculateLineTotal(item))
	}

	discounted := subtotal
	if globalDiscountType != nil {
		discountAmount := utils.CalculateDiscountAmount(subtotal, globalDiscountValue, string(*globalDiscountType))
		discounted = utils.ClampNonNegative(subtotal.Sub(discountAmount))
	}

	vatAmount := decimal.Zero
	for _, line := range CalculateVATBreakdown(items, globalDiscountType, globalDiscountValue) {
		vatAmount = vatAmount.Add(line.Vat)
	}

	roundedSubtotal := discounted.Round(2)
	roundedVat := vatAmount.Round(2)
	return DocumentTotals{
		Subtotal:  roundedSubtotal,
		VatAmount: roundedVat,
		Total:     roundedSubtotal.Add(roundedVat),
	}
}

type VATBreakdownLine struct {
	Rate     decimal.Decimal `json:"rate"`
	Category string          `json:"category"`
	Base     decimal.Decimal `json:"base"`
	Vat      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

func vatRateCategory(rate decimal.Decimal) string {
	switch {
	case rate.IsZero():
		return "zero"
	case rate.Equal(decimal.NewFromInt(21)):
		return "standard"
	case rate.Equal(decimal.NewFromInt(12)) || rate.Equal(decimal.NewFromInt(6)):
		return "reduced"
	default:
		return "other"
	}
}

// CalculateVATBreakdown groups line items by vat_rate, one row per distinct
// rate with its base, VAT and gross amounts. Used for fiscal reporting.
func CalculateVATBreakdown(items []DocumentItem, globalDiscountType *DiscountType, globalDiscountValue decimal.Decimal) []VATBreakdownLine {
	baseByRate := map[string]decimal.Decimal{}
	rateByKey := map[string]decimal.Decimal{}

	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal := CalculateLineTotal(item)
		subtotal = subtotal.Add(lineTotal)

		key := item.VatRate.String()
		baseByRate[key] = baseByRate[key].Add(lineTotal)
		rateByKey[key] = item.VatRate
	}

	// Prorate the global discount so every rate keeps its share of the base.
	if globalDiscountType != nil && subtotal.GreaterThan(decimal.Zero) {
		discountAmount := utils.CalculateDiscountAmount(subtotal, globalDiscountValue, string(*globalDiscountType))
		discounted := utils.ClampNonNegative(subtotal.Sub(discountAmount))
		if !discounted.Equal(subtotal) {
			for key, base := range baseByRate {
				baseByRate[key] = base.Mul(discounted).DivRound(subtotal, 4)
			}
		}
	}

	lines := make([]VATBreakdownLine, 0, len(baseByRate))
	for key, base := range baseByRate {
		rate := rateByKey[key]
		vat := utils.CalculateVATAmount(base, rate)
		lines = append(lines, VATBreakdownLine{
			Rate:     rate,
			Category: vatRateCategory(rate),
			Base:     base.Round(2),
			Vat:      vat.Round(2),
			Total:    base.Add(vat).Round(2),
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].Rate.GreaterThan(lines[j].Rate)
	})
	return lines
}
