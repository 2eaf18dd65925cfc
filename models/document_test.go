package models_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/models"
)

func TestCreateDocument_NumberingAndDefaults(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	quote, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items: []models.NewDocumentItem{
			{Description: "consulting", Qty: dec("1"), UnitPrice: dec("100"), VatRate: dec("21")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if quote.Number != "DEV-000001" {
		t.Fatalf("expected number DEV-000001, got %s", quote.Number)
	}
	if quote.CurrentStatus != models.DocumentStatusDraft {
		t.Fatalf("expected draft, got %s", quote.CurrentStatus)
	}
	if !quote.Total.Equal(dec("121")) {
		t.Fatalf("expected total 121, got %s", quote.Total)
	}

	invoice, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeInvoice,
		Items: []models.NewDocumentItem{
			{Description: "consulting", Qty: dec("1"), UnitPrice: dec("100"), VatRate: dec("21")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument invoice: %v", err)
	}
	// shared sequence across types
	if invoice.Number != "FAC-000002" {
		t.Fatalf("expected number FAC-000002, got %s", invoice.Number)
	}
	if invoice.CurrentStatus != models.DocumentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", invoice.CurrentStatus)
	}
}

func TestCreateDocument_Validation(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	_, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items:   []models.NewDocumentItem{},
	})
	if err == nil {
		t.Fatal("expected error for empty items")
	}

	_, err = models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items: []models.NewDocumentItem{
			{Description: "bad", Qty: dec("0"), UnitPrice: dec("10")},
		},
	})
	if err == nil {
		t.Fatal("expected error for zero qty")
	}
}

func TestDocumentNumbering_ConcurrentUnique(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := models.CreateDocument(ctx, &models.NewDocument{
				DocType: models.DocumentTypeQuote,
				Items: []models.NewDocumentItem{
					{Description: "x", Qty: dec("1"), UnitPrice: dec("1")},
				},
			})
			if err != nil {
				t.Errorf("CreateDocument: %v", err)
				return
			}
			numbers <- doc.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate document number %s", number)
		}
		if !strings.HasPrefix(number, "DEV-") {
			t.Fatalf("unexpected prefix on %s", number)
		}
		seen[number] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d unique numbers, got %d", n, len(seen))
	}
}

func TestGetDocument_ReturnsIsolatedCopy(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	doc, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeQuote,
		Items: []models.NewDocumentItem{
			{Description: "original", Qty: dec("1"), UnitPrice: dec("10")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	copy1, err := models.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	copy1.Items[0].Description = "mutated"

	copy2, err := models.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if copy2.Items[0].Description != "original" {
		t.Fatalf("store record was mutated through a returned copy")
	}
}

func TestDuplicateDocument_FreshDraftWithoutLinks(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	source, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeInvoice,
		Items: []models.NewDocumentItem{
			{Description: "service", Qty: dec("2"), UnitPrice: dec("50"), VatRate: dec("21")},
		},
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	dup, err := models.DuplicateDocument(ctx, source.ID)
	if err != nil {
		t.Fatalf("DuplicateDocument: %v", err)
	}
	if dup.ID == source.ID || dup.Number == source.Number {
		t.Fatalf("duplicate shares identity with source: %d/%s", dup.ID, dup.Number)
	}
	if dup.DocType != source.DocType {
		t.Fatalf("duplicate changed type: %s", dup.DocType)
	}
	if dup.CurrentStatus != models.DocumentStatusDraft {
		t.Fatalf("expected draft, got %s", dup.CurrentStatus)
	}
	if dup.SourceDocumentId != 0 || dup.CreditNoteId != 0 {
		t.Fatal("duplicate must not carry links")
	}
	if len(dup.Payments) != 0 || !dup.PaidTotal.IsZero() {
		t.Fatal("duplicate must not carry payments")
	}
	if !dup.Total.Equal(source.Total) {
		t.Fatalf("duplicate total %s, expected %s", dup.Total, source.Total)
	}
}

func TestGetDocuments_FilterAndLimit(t *testing.T) {
	models.ResetStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := models.CreateDocument(ctx, &models.NewDocument{
			DocType: models.DocumentTypeQuote,
			Items:   []models.NewDocumentItem{{Description: "q", Qty: dec("1"), UnitPrice: dec("1")}},
		}); err != nil {
			t.Fatalf("CreateDocument: %v", err)
		}
	}
	if _, err := models.CreateDocument(ctx, &models.NewDocument{
		DocType: models.DocumentTypeInvoice,
		Items:   []models.NewDocumentItem{{Description: "i", Qty: dec("1"), UnitPrice: dec("1")}},
	}); err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	quoteType := models.DocumentTypeQuote
	quotes, err := models.GetDocuments(ctx, &quoteType, 0)
	if err != nil {
		t.Fatalf("GetDocuments: %v", err)
	}
	if len(quotes) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(quotes))
	}

	limited, err := models.GetDocuments(ctx, nil, 2)
	if err != nil {
		t.Fatalf("GetDocuments: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected limit 2, got %d", len(limited))
	}
	// newest first
	if limited[0].ID < limited[1].ID {
		t.Fatalf("expected newest-first ordering, got ids %d, %d", limited[0].ID, limited[1].ID)
	}
}
