package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// NewPosCheckout is a counter sale: an invoice plus its payment in a
// single request.
type NewPosCheckout struct {
	CustomerId          int                      `json:"customer_id"`
	Items               []models.NewDocumentItem `json:"items" binding:"required,dive"`
	GlobalDiscountType  *models.DiscountType     `json:"global_discount_type"`
	GlobalDiscountValue decimal.Decimal          `json:"global_discount_value"`
	Payment             NewPayment               `json:"payment" binding:"required"`
	Notes               string                   `json:"notes"`
}

// PosCheckout rings up a sale: it creates an invoice (which decrements
// stock, being the first document in its chain) and immediately records
// the tendered payment. Change due is returned for cash overpayment.
type PosCheckoutResult struct {
	Invoice   *models.Document `json:"invoice"`
	ChangeDue decimal.Decimal  `json:"change_due"`
}

func PosCheckout(ctx context.Context, input *NewPosCheckout) (*PosCheckoutResult, error) {
	if !input.Payment.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", utils.ErrorInvalidArgument)
	}

	newDoc := &models.NewDocument{
		DocType:             models.DocumentTypeInvoice,
		CustomerId:          input.CustomerId,
		Items:               input.Items,
		GlobalDiscountType:  input.GlobalDiscountType,
		GlobalDiscountValue: input.GlobalDiscountValue,
		Notes:               input.Notes,
	}

	// Vet the tender before anything is stored or stock is touched.
	totals, err := models.PreviewDocumentTotals(ctx, newDoc)
	if err != nil {
		return nil, err
	}
	if input.Payment.Amount.LessThan(totals.Total) {
		return nil, fmt.Errorf("%w: tendered %s is less than total %s",
			utils.ErrorBusinessRule, input.Payment.Amount.String(), totals.Total.String())
	}

	invoice, err := CreateDocument(ctx, newDoc)
	if err != nil {
		return nil, err
	}

	// Cash keeps the tendered amount on the ledger only up to the total;
	// the remainder is handed back as change.
	changeDue := decimal.Zero
	recorded := input.Payment.Amount
	if input.Payment.Method == models.PaymentMethodCash && recorded.GreaterThan(invoice.Total) {
		changeDue = recorded.Sub(invoice.Total)
		recorded = invoice.Total
	}

	invoice, err = AddPayment(ctx, invoice.ID, &NewPayment{
		Method:    input.Payment.Method,
		Amount:    recorded,
		Reference: input.Payment.Reference,
	})
	if err != nil {
		return nil, err
	}

	return &PosCheckoutResult{Invoice: invoice, ChangeDue: changeDue}, nil
}
