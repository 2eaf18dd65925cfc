package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// ReturnableLine is an invoice line annotated with how much of it can
// still be credited.
type ReturnableLine struct {
	InvoiceLineId int             `json:"invoice_line_id"`
	ProductId     int             `json:"product_id,omitempty"`
	Sku           string          `json:"sku,omitempty"`
	Description   string          `json:"description"`
	Qty           decimal.Decimal `json:"qty"`
	QtyCredited   decimal.Decimal `json:"qty_credited"`
	QtyReturnable decimal.Decimal `json:"qty_returnable"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	VatRate       decimal.Decimal `json:"vat_rate"`
}

// InvoiceWithReturnable is the payload served to the returns screen.
type InvoiceWithReturnable struct {
	InvoiceId     int              `json:"invoice_id"`
	InvoiceNumber string           `json:"invoice_number"`
	CustomerName  string           `json:"customer_name"`
	Lines         []ReturnableLine `json:"lines"`
}

// GetCreditedQuantities sums, per invoice line, the quantities already
// credited across every non-cancelled credit note of the invoice.
func GetCreditedQuantities(ctx context.Context, invoiceId int) map[int]decimal.Decimal {
	credited := map[int]decimal.Decimal{}
	for _, cn := range models.GetCreditNotesForInvoice(ctx, invoiceId) {
		if cn.CurrentStatus == models.DocumentStatusCancelled {
			continue
		}
		for _, item := range cn.Items {
			if item.InvoiceLineId == 0 {
				continue
			}
			qty := item.QtyCredited
			if qty.IsZero() {
				qty = item.Qty
			}
			credited[item.InvoiceLineId] = credited[item.InvoiceLineId].Add(qty)
		}
	}
	return credited
}

// ComputeReturnable recomputes per-line returnable quantities from the
// invoice and its credit notes. Nothing is cached: the credit notes are
// the source of truth.
func ComputeReturnable(invoice *models.Document, credited map[int]decimal.Decimal) []ReturnableLine {
	lines := make([]ReturnableLine, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		creditedQty := credited[item.ID]
		lines = append(lines, ReturnableLine{
			InvoiceLineId: item.ID,
			ProductId:     item.ProductId,
			Sku:           item.Sku,
			Description:   item.Description,
			Qty:           item.Qty,
			QtyCredited:   creditedQty,
			QtyReturnable: utils.ClampNonNegative(item.Qty.Sub(creditedQty)),
			UnitPrice:     item.UnitPrice,
			VatRate:       item.VatRate,
		})
	}
	return lines
}

// GetReturnableInvoice loads an invoice together with its per-line
// returnable quantities.
func GetReturnableInvoice(ctx context.Context, invoiceId int) (*InvoiceWithReturnable, error) {
	invoice, err := models.GetDocument(ctx, invoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.DocType != models.DocumentTypeInvoice {
		return nil, fmt.Errorf("%w: document %s is not an invoice", utils.ErrorInvalidArgument, invoice.Number)
	}

	credited := GetCreditedQuantities(ctx, invoiceId)
	return &InvoiceWithReturnable{
		InvoiceId:     invoice.ID,
		InvoiceNumber: invoice.Number,
		CustomerName:  invoice.CustomerName,
		Lines:         ComputeReturnable(invoice, credited),
	}, nil
}

// CreateReturn validates a return against the invoice's remaining
// returnable quantities, emits a partial credit note, restocks the lines
// flagged for restock, and records the return itself.
func CreateReturn(ctx context.Context, input *models.NewReturn) (*models.Return, error) {
	logger := config.GetLogger()

	AcquireDocumentPostingLock(input.InvoiceId)
	defer ReleaseDocumentPostingLock(input.InvoiceId)

	invoice, err := models.GetDocument(ctx, input.InvoiceId)
	if err != nil {
		return nil, err
	}
	if invoice.DocType != models.DocumentTypeInvoice {
		return nil, fmt.Errorf("%w: document %s is not an invoice", utils.ErrorInvalidArgument, invoice.Number)
	}

	invoiceItems := map[int]models.DocumentItem{}
	for _, item := range invoice.Items {
		invoiceItems[item.ID] = item
	}

	credited := GetCreditedQuantities(ctx, input.InvoiceId)

	// Zero-quantity lines are dropped before validation; an all-zero
	// request has nothing to credit.
	effective := make([]models.NewReturnLine, 0, len(input.Lines))
	for _, line := range input.Lines {
		if !line.Qty.IsPositive() {
			continue
		}
		effective = append(effective, line)
	}
	if len(effective) == 0 {
		return nil, fmt.Errorf("%w: return has no lines with a positive quantity", utils.ErrorInvalidArgument)
	}

	strict := config.StrictReturnValidation()
	for _, line := range effective {
		item, ok := invoiceItems[line.InvoiceLineId]
		if !ok {
			return nil, fmt.Errorf("%w: invoice %s has no line %d", utils.ErrorInvalidArgument, invoice.Number, line.InvoiceLineId)
		}
		if strict {
			returnable := utils.ClampNonNegative(item.Qty.Sub(credited[item.ID]))
			if line.Qty.GreaterThan(returnable) {
				return nil, fmt.Errorf("%w: line %d allows at most %s more, got %s",
					utils.ErrorBusinessRule, line.InvoiceLineId, returnable.String(), line.Qty.String())
			}
		}
		// Lines in this request count against the cap too, so repeating an
		// invoice line cannot credit past it.
		credited[item.ID] = credited[item.ID].Add(line.Qty)
	}

	// The credit note copies pricing from the invoice lines so the credited
	// amounts match what was charged.
	creditItems := make([]models.DocumentItem, 0, len(effective))
	for i, line := range effective {
		src := invoiceItems[line.InvoiceLineId]
		creditItems = append(creditItems, models.DocumentItem{
			ID:             i + 1,
			ProductId:      src.ProductId,
			Sku:            src.Sku,
			Description:    src.Description,
			Qty:            line.Qty,
			UnitPrice:      src.UnitPrice,
			DiscountType:   src.DiscountType,
			DiscountValue:  src.DiscountValue,
			DiscountTarget: src.DiscountTarget,
			VatRate:        src.VatRate,
			InvoiceLineId:  src.ID,
			QtyCredited:    line.Qty,
		})
	}

	totals := models.CalculateDocumentTotals(creditItems, nil, decimal.Zero)
	creditNote := &models.Document{
		DocType:              models.DocumentTypeCreditNote,
		CurrentStatus:        models.GetDocumentDefaults(models.DocumentTypeCreditNote, invoice.DocType).Status,
		CustomerId:           invoice.CustomerId,
		CustomerName:         invoice.CustomerName,
		CustomerVat:          invoice.CustomerVat,
		CustomerAddress:      invoice.CustomerAddress,
		CustomerReference:    invoice.CustomerReference,
		Items:                creditItems,
		Subtotal:             totals.Subtotal,
		VatAmount:            totals.VatAmount,
		Total:                totals.Total,
		Payments:             []models.Payment{},
		PaidTotal:            decimal.Zero,
		SourceDocumentId:     invoice.ID,
		SourceDocumentType:   invoice.DocType,
		SourceDocumentNumber: invoice.Number,
		Notes:                input.Reason,
	}

	creditNote, err = models.InsertDocument(ctx, creditNote)
	if err != nil {
		return nil, err
	}

	if _, err := models.UpdateDocument(ctx, invoice.ID, func(d *models.Document) error {
		d.CreditNoteId = creditNote.ID
		d.CreditNoteNumber = creditNote.Number
		return nil
	}); err != nil {
		return nil, err
	}

	// Restock is per-line and independent of the monetary credit.
	for _, line := range effective {
		if line.Restock == nil || !*line.Restock {
			continue
		}
		src := invoiceItems[line.InvoiceLineId]
		if src.ProductId <= 0 {
			continue
		}
		if err := ProcessIncomingStock(ctx, logger, creditNote.Number, src.ProductId, line.Qty); err != nil {
			return nil, err
		}
	}

	returnLines := make([]models.ReturnLine, 0, len(effective))
	for _, line := range effective {
		src := invoiceItems[line.InvoiceLineId]
		condition := line.Condition
		if condition == "" {
			condition = models.ReturnConditionResalable
		}
		returnLines = append(returnLines, models.ReturnLine{
			InvoiceLineId: line.InvoiceLineId,
			ProductId:     src.ProductId,
			Sku:           src.Sku,
			Description:   src.Description,
			QtyCredited:   line.Qty,
			QtyReturnable: utils.ClampNonNegative(src.Qty.Sub(credited[src.ID])),
			Condition:     condition,
			Restock:       line.Restock,
		})
	}

	return models.InsertReturn(ctx, &models.Return{
		InvoiceId:        invoice.ID,
		CreditNoteId:     creditNote.ID,
		CreditNoteNumber: creditNote.Number,
		Reason:           input.Reason,
		CurrentStatus:    models.ReturnStatusValidated,
		Lines:            returnLines,
	})
}
