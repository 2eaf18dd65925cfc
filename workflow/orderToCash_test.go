package workflow_test

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/workflow"
)

// Full order-to-cash walkthrough: quote, delivery, invoicing, payment and a
// partial restocked return.
func TestOrderToCash_EndToEnd(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Sku:       "P1",
		Name:      "Product one",
		UnitPrice: dec("20"),
		VatRate:   dec("21"),
		StockQty:  dec("100"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	quote, err := workflow.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items:   []models.NewDocumentItem{{ProductId: product.ID, Qty: dec("5")}},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if !quote.Total.Equal(dec("121")) {
		t.Fatalf("expected quote total 121, got %s", quote.Total)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("100")) {
		t.Fatal("quote must not touch stock")
	}

	deliveryNote, err := workflow.ConvertDocument(ctx, quote.ID, "delivery_note")
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("95")) {
		t.Fatalf("expected stock 95 after delivery, got %s", stockOf(t, ctx, product.ID))
	}

	invoice, err := workflow.ConvertDocument(ctx, deliveryNote.ID, "invoice")
	if err != nil {
		t.Fatalf("ConvertDocument: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("95")) {
		t.Fatal("invoicing a delivery note must not decrement again")
	}

	invoice, err = workflow.AddPayment(ctx, invoice.ID, &workflow.NewPayment{
		Method: models.PaymentMethodCard,
		Amount: dec("121"),
	})
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if invoice.CurrentStatus != models.DocumentStatusPaid {
		t.Fatalf("expected paid, got %s", invoice.CurrentStatus)
	}

	restock := true
	if _, err := workflow.CreateReturn(ctx, &models.NewReturn{
		InvoiceId: invoice.ID,
		Reason:    "wrong size",
		Lines: []models.NewReturnLine{
			{InvoiceLineId: invoice.Items[0].ID, Qty: dec("2"), Restock: &restock},
		},
	}); err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if !stockOf(t, ctx, product.ID).Equal(dec("97")) {
		t.Fatalf("expected stock 97 after restocked return, got %s", stockOf(t, ctx, product.ID))
	}

	returnable, err := workflow.GetReturnableInvoice(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("GetReturnableInvoice: %v", err)
	}
	if !returnable.Lines[0].QtyReturnable.Equal(dec("3")) {
		t.Fatalf("expected returnable 3, got %s", returnable.Lines[0].QtyReturnable)
	}
}
