package config

import (
	"os"
	"strings"
)

// StrictReturnValidation rejects return lines crediting more than the
// remaining returnable quantity of an invoice line. Defaults to on; the
// legacy client-side-only clamping can be restored with
// STRICT_RETURN_VALIDATION=false for parity testing.
func StrictReturnValidation() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_RETURN_VALIDATION")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// FailOnMissingStockProduct turns the "product not found during stock
// mutation" skip into a hard error instead of a logged warning.
//
// Set via env:
// - STOCK_FAIL_ON_MISSING_PRODUCT=true
func FailOnMissingStockProduct() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STOCK_FAIL_ON_MISSING_PRODUCT")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
