package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// NewPayment is the request body for recording a payment.
type NewPayment struct {
	Method    models.PaymentMethod `json:"method" binding:"required"`
	Amount    decimal.Decimal      `json:"amount" binding:"required"`
	Reference string               `json:"reference"`
}

var paymentStatusRank = map[models.DocumentStatus]int{
	models.DocumentStatusUnpaid:        0,
	models.DocumentStatusPartiallyPaid: 1,
	models.DocumentStatusPaid:          2,
}

// derivePaymentStatus maps the running paid total onto a payment status.
// Overpayment still reads as paid.
func derivePaymentStatus(paidTotal, total decimal.Decimal) models.DocumentStatus {
	switch {
	case paidTotal.GreaterThanOrEqual(total):
		return models.DocumentStatusPaid
	case paidTotal.IsPositive():
		return models.DocumentStatusPartiallyPaid
	default:
		return models.DocumentStatusUnpaid
	}
}

// AddPayment appends a payment to the document's ledger and refreshes the
// derived status. The status only ever moves forward: a document marked
// credited or paid never regresses because a late partial payment arrives.
func AddPayment(ctx context.Context, documentId int, input *NewPayment) (*models.Document, error) {
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", utils.ErrorInvalidArgument)
	}

	AcquireDocumentPostingLock(documentId)
	defer ReleaseDocumentPostingLock(documentId)

	return models.UpdateDocument(ctx, documentId, func(d *models.Document) error {
		d.Payments = append(d.Payments, models.Payment{
			Method:    input.Method,
			Amount:    input.Amount,
			Reference: input.Reference,
			Date:      time.Now().UTC(),
		})

		paidTotal := decimal.Zero
		for _, p := range d.Payments {
			paidTotal = paidTotal.Add(p.Amount)
		}
		d.PaidTotal = paidTotal

		// Statuses outside the payment ladder (credited, delivered, ...)
		// are never overwritten by a payment; the ledger still records it.
		currentRank, onLadder := paymentStatusRank[d.CurrentStatus]
		if !onLadder {
			return nil
		}
		candidate := derivePaymentStatus(paidTotal, d.Total)
		if paymentStatusRank[candidate] > currentRank {
			d.CurrentStatus = candidate
		}
		return nil
	})
}
