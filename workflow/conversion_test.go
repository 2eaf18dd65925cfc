package workflow_test

import (
	"context"
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedProduct(t *testing.T, ctx context.Context, sku string, stock string) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:       sku,
		Name:      "Product " + sku,
		UnitPrice: dec("10"),
		VatRate:   dec("21"),
		StockQty:  dec(stock),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return product
}

func stockOf(t *testing.T, ctx context.Context, productId int) decimal.Decimal {
	t.Helper()
	product, err := models.GetProduct(ctx, productId)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	return product.StockQty
}

func newQuoteInput(productId int, qty string) *models.NewDocument {
	return &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items: []models.NewDocumentItem{
			{ProductId: productId, Qty: dec(qty)},
		},
	}
}

// A full quote -> delivery note -> invoice chain must decrement stock exactly
// once, at the delivery note.
func TestConvertDocument_ChainDecrementsStockOnce(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()
	product := seedProduct(t, ctx, "SKU-CHAIN", "100")

	quote, err := workflow.CreateDocument(ctx, newQuoteInput(product.ID, "5"))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("100")) {
		t.Fatal("quote must not touch stock")
	}

	deliveryNote, err := workflow.ConvertDocument(ctx, quote.ID, "delivery_note")
	if err != nil {
		t.Fatalf("ConvertDocument to delivery_note: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("95")) {
		t.Fatalf("delivery note must decrement stock to 95, got %s", stockOf(t, ctx, product.ID))
	}
	if deliveryNote.CurrentStatus != models.DocumentStatusDelivered {
		t.Fatalf("expected delivered, got %s", deliveryNote.CurrentStatus)
	}

	invoice, err := workflow.ConvertDocument(ctx, deliveryNote.ID, "invoice")
	if err != nil {
		t.Fatalf("ConvertDocument to invoice: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("95")) {
		t.Fatalf("invoicing a delivery note must not decrement again, got %s", stockOf(t, ctx, product.ID))
	}
	if invoice.CurrentStatus != models.DocumentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", invoice.CurrentStatus)
	}

	// source statuses follow the transitions
	quote, err = models.GetDocument(ctx, quote.ID)
	if err != nil {
		t.Fatalf("GetDocument quote: %v", err)
	}
	if quote.CurrentStatus != models.DocumentStatusAccepted {
		t.Fatalf("expected quote accepted, got %s", quote.CurrentStatus)
	}
	deliveryNote, err = models.GetDocument(ctx, deliveryNote.ID)
	if err != nil {
		t.Fatalf("GetDocument delivery note: %v", err)
	}
	if deliveryNote.CurrentStatus != models.DocumentStatusInvoiced {
		t.Fatalf("expected delivery note invoiced, got %s", deliveryNote.CurrentStatus)
	}
}

// An invoice converted directly from a quote is the first document to
// represent the shipment, so it decrements stock itself.
func TestConvertDocument_DirectInvoiceDecrements(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()
	product := seedProduct(t, ctx, "SKU-DIRECT", "100")

	quote, err := workflow.CreateDocument(ctx, newQuoteInput(product.ID, "5"))
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	if _, err := workflow.ConvertDocument(ctx, quote.ID, "invoice"); err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("95")) {
		t.Fatalf("direct invoice must decrement stock to 95, got %s", stockOf(t, ctx, product.ID))
	}
}

func TestConvertDocument_TotalsAndLinksCarriedOver(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	quote, err := workflow.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items: []models.NewDocumentItem{
			{Description: "service", Qty: dec("1"), UnitPrice: dec("100"), VatRate: dec("21")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	invoice, err := workflow.ConvertDocument(ctx, quote.ID, "invoice")
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if !invoice.Total.Equal(quote.Total) {
		t.Fatalf("totals must carry over: %s != %s", invoice.Total, quote.Total)
	}
	if invoice.SourceDocumentId != quote.ID || invoice.SourceDocumentNumber != quote.Number {
		t.Fatalf("backward link missing: %d/%s", invoice.SourceDocumentId, invoice.SourceDocumentNumber)
	}
	if invoice.SourceDocumentType != models.DocumentTypeQuote {
		t.Fatalf("backward link type: %s", invoice.SourceDocumentType)
	}
	if len(invoice.Payments) != 0 || !invoice.PaidTotal.IsZero() {
		t.Fatal("derived document must start with an empty ledger")
	}

	// mutation of the derived items must not reach the source
	_, err = models.UpdateDocument(ctx, invoice.ID, func(d *models.Document) error {
		d.Items[0].Description = "changed"
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}
	quote, err = models.GetDocument(ctx, quote.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if quote.Items[0].Description != "service" {
		t.Fatal("source items were mutated through the derived document")
	}
}

func TestConvertDocument_WholeDocumentCreditNote(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	invoice, err := workflow.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeInvoice,
		Items: []models.NewDocumentItem{
			{Description: "goods", Qty: dec("4"), UnitPrice: dec("25"), VatRate: dec("21")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	creditNote, err := workflow.ConvertDocument(ctx, invoice.ID, "credit_note")
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if creditNote.Items[0].InvoiceLineId != invoice.Items[0].ID {
		t.Fatalf("credit note line must reference the invoice line, got %d", creditNote.Items[0].InvoiceLineId)
	}
	if !creditNote.Items[0].QtyCredited.Equal(dec("4")) {
		t.Fatalf("whole-document credit must credit the full qty, got %s", creditNote.Items[0].QtyCredited)
	}

	invoice, err = models.GetDocument(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if invoice.CurrentStatus != models.DocumentStatusCredited {
		t.Fatalf("expected credited, got %s", invoice.CurrentStatus)
	}
	if invoice.CreditNoteId != creditNote.ID || invoice.CreditNoteNumber != creditNote.Number {
		t.Fatalf("forward link missing: %d/%s", invoice.CreditNoteId, invoice.CreditNoteNumber)
	}
}

func TestConvertDocument_Preconditions(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	if _, err := workflow.ConvertDocument(ctx, 999, "invoice"); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected not found for missing source, got %v", err)
	}

	quote, err := workflow.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items:   []models.NewDocumentItem{{Description: "x", Qty: dec("1"), UnitPrice: dec("1")}},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if _, err := workflow.ConvertDocument(ctx, quote.ID, "facture"); !errors.Is(err, utils.ErrorInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown target, got %v", err)
	}
	if _, err := workflow.ConvertDocument(ctx, quote.ID, ""); !errors.Is(err, utils.ErrorInvalidArgument) {
		t.Fatalf("expected invalid argument for empty target, got %v", err)
	}

	// failed conversion must not mutate the source
	quote, err = models.GetDocument(ctx, quote.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if quote.CurrentStatus != models.DocumentStatusDraft {
		t.Fatalf("source mutated by failed conversion: %s", quote.CurrentStatus)
	}
}
