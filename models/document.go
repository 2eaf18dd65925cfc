package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type DocumentItem struct {
	ID             int             `json:"id"`
	ProductId      int             `json:"product_id"`
	Sku            string          `json:"sku"`
	Description    string          `json:"description"`
	Qty            decimal.Decimal `json:"qty"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountType   *DiscountType   `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountTarget *DiscountTarget `json:"discount_target"`
	VatRate        decimal.Decimal `json:"vat_rate"`
	// credit note lines only: which invoice line is being credited, and by
	// how much. The cumulative credited quantity per invoice line is always
	// recomputed from these, never cached.
	InvoiceLineId int             `json:"invoice_line_id,omitempty"`
	QtyCredited   decimal.Decimal `json:"qty_credited,omitempty"`
}

type Payment struct {
	Method    PaymentMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference"`
}

type Document struct {
	ID            int            `json:"id"`
	Number        string         `json:"number"`
	DocType       DocumentType   `json:"doc_type"`
	CurrentStatus DocumentStatus `json:"current_status"`
	Date          time.Time      `json:"date"`

	// Customer details are a snapshot taken at creation/conversion time; a
	// later edit of the customer record never changes an issued document.
	CustomerId        int    `json:"customer_id"`
	CustomerName      string `json:"customer_name"`
	CustomerVat       string `json:"customer_vat"`
	CustomerAddress   string `json:"customer_address"`
	CustomerReference string `json:"customer_reference"`

	Items               []DocumentItem  `json:"items"`
	GlobalDiscountType  *DiscountType   `json:"global_discount_type"`
	GlobalDiscountValue decimal.Decimal `json:"global_discount_value"`
	Notes               string          `json:"notes"`

	// Totals are frozen at creation/conversion time, not recomputed when
	// items mutate later.
	Subtotal  decimal.Decimal `json:"subtotal"`
	VatAmount decimal.Decimal `json:"vat_amount"`
	Total     decimal.Decimal `json:"total"`

	Payments  []Payment       `json:"payments"`
	PaidTotal decimal.Decimal `json:"paid_total"`

	// Backward link, set only when the document was created via conversion.
	SourceDocumentId     int          `json:"source_document_id,omitempty"`
	SourceDocumentType   DocumentType `json:"source_document_type,omitempty"`
	SourceDocumentNumber string       `json:"source_document_number,omitempty"`

	// Forward link, set on the original invoice when a credit note is issued
	// against it.
	CreditNoteId     int    `json:"credit_note_id,omitempty"`
	CreditNoteNumber string `json:"credit_note_number,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewDocument struct {
	DocType             DocumentType      `json:"doc_type" binding:"required"`
	CustomerId          int               `json:"customer_id"`
	Items               []NewDocumentItem `json:"items" binding:"required,dive"`
	GlobalDiscountType  *DiscountType     `json:"global_discount_type"`
	GlobalDiscountValue decimal.Decimal   `json:"global_discount_value"`
	Notes               string            `json:"notes"`
}

type NewDocumentItem struct {
	ProductId      int             `json:"product_id"`
	Sku            string          `json:"sku"`
	Description    string          `json:"description"`
	Qty            decimal.Decimal `json:"qty" binding:"required"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountType   *DiscountType   `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	DiscountTarget *DiscountTarget `json:"discount_target"`
	VatRate        decimal.Decimal `json:"vat_rate"`
}

// Clone deep-copies a document so callers can never mutate the canonical
// record (or a conversion source) through a shared slice.
func (d *Document) Clone() *Document {
	clone := *d
	clone.Items = make([]DocumentItem, len(d.Items))
	copy(clone.Items, d.Items)
	clone.Payments = make([]Payment, len(d.Payments))
	copy(clone.Payments, d.Payments)
	return &clone
}

// validate input for create. Conversion/duplication build documents directly
// from an existing record and skip this.
func (input *NewDocument) validate(ctx context.Context) error {
	if len(input.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", utils.ErrorInvalidArgument)
	}
	for _, item := range input.Items {
		if item.Qty.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: item qty must be positive", utils.ErrorInvalidArgument)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item unit_price cannot be negative", utils.ErrorInvalidArgument)
		}
	}
	if input.CustomerId > 0 {
		if _, err := GetCustomer(ctx, input.CustomerId); err != nil {
			return fmt.Errorf("%w: customer %d", utils.ErrorRecordNotFound, input.CustomerId)
		}
	}
	return nil
}

func mapNewDocumentItems(input []NewDocumentItem) []DocumentItem {
	items := make([]DocumentItem, 0, len(input))
	for i, in := range input {
		item := DocumentItem{
			// positional line id, stable for credit/return traceability
			ID:             i + 1,
			ProductId:      in.ProductId,
			Sku:            in.Sku,
			Description:    in.Description,
			Qty:            in.Qty,
			UnitPrice:      in.UnitPrice,
			DiscountType:   in.DiscountType,
			DiscountValue:  in.DiscountValue,
			DiscountTarget: in.DiscountTarget,
			VatRate:        in.VatRate,
		}
		// Enrich from the catalog when the caller sent a bare product id.
		if in.ProductId > 0 {
			if product, ok := GetStore().findProduct(in.ProductId); ok {
				if item.Sku == "" {
					item.Sku = product.Sku
				}
				if item.Description == "" {
					item.Description = product.Name
				}
				if item.UnitPrice.IsZero() {
					item.UnitPrice = product.UnitPrice
				}
				if item.VatRate.IsZero() {
					item.VatRate = product.VatRate
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// CreateDocument builds and stores a document of the requested type with its
// registry default status. Stock impact of direct creation is applied by the
// workflow layer, not here.
func CreateDocument(ctx context.Context, input *NewDocument) (*Document, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	doc := &Document{
		DocType:             input.DocType,
		CurrentStatus:       GetDocumentDefaults(input.DocType, "").Status,
		Items:               mapNewDocumentItems(input.Items),
		GlobalDiscountType:  input.GlobalDiscountType,
		GlobalDiscountValue: input.GlobalDiscountValue,
		Notes:               input.Notes,
		Payments:            []Payment{},
		PaidTotal:           decimal.Zero,
	}
	if input.CustomerId > 0 {
		customer, err := GetCustomer(ctx, input.CustomerId)
		if err != nil {
			return nil, err
		}
		doc.CustomerId = customer.ID
		doc.CustomerName = customer.Name
		doc.CustomerVat = customer.VatNumber
		doc.CustomerAddress = customer.Address
		doc.CustomerReference = customer.Reference
	}

	totals := CalculateDocumentTotals(doc.Items, doc.GlobalDiscountType, doc.GlobalDiscountValue)
	doc.Subtotal = totals.Subtotal
	doc.VatAmount = totals.VatAmount
	doc.Total = totals.Total

	return InsertDocument(ctx, doc)
}

// PreviewDocumentTotals validates the input and computes the totals it would
// freeze, without storing anything. Used to vet a tendered amount before the
// document exists.
func PreviewDocumentTotals(ctx context.Context, input *NewDocument) (DocumentTotals, error) {
	if err := input.validate(ctx); err != nil {
		return DocumentTotals{}, err
	}
	items := mapNewDocumentItems(input.Items)
	return CalculateDocumentTotals(items, input.GlobalDiscountType, input.GlobalDiscountValue), nil
}

// InsertDocument assigns id, number and timestamps, then stores the record.
// The returned value is a copy.
func InsertDocument(ctx context.Context, doc *Document) (*Document, error) {
	s := GetStore()

	doc.ID = s.nextId()
	doc.Number = NextDocumentNumber(doc.DocType)
	now := time.Now().UTC()
	if doc.Date.IsZero() {
		doc.Date = now
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Payments == nil {
		doc.Payments = []Payment{}
	}

	s.mu.Lock()
	s.documents[doc.ID] = doc.Clone()
	s.mu.Unlock()

	return doc, nil
}

func GetDocument(ctx context.Context, id int) (*Document, error) {
	s := GetStore()
	s.mu.RLock()
	doc, ok := s.documents[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: document %d", utils.ErrorRecordNotFound, id)
	}
	return doc.Clone(), nil
}

// GetDocuments lists documents newest first, optionally filtered by type.
// limit <= 0 means no limit.
func GetDocuments(ctx context.Context, docType *DocumentType, limit int) ([]*Document, error) {
	s := GetStore()
	s.mu.RLock()
	results := make([]*Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if docType != nil && doc.DocType != *docType {
			continue
		}
		results = append(results, doc.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Date.Equal(results[j].Date) {
			return results[i].ID > results[j].ID
		}
		return results[i].Date.After(results[j].Date)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// UpdateDocument applies fn to the canonical record under the store lock and
// returns a copy of the result.
func UpdateDocument(ctx context.Context, id int, fn func(*Document) error) (*Document, error) {
	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("%w: document %d", utils.ErrorRecordNotFound, id)
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.UpdatedAt = time.Now().UTC()
	return doc.Clone(), nil
}

// GetCreditNotesForInvoice returns every credit note issued against the
// invoice, i.e. credit-note documents whose backward link points at it.
func GetCreditNotesForInvoice(ctx context.Context, invoiceId int) []*Document {
	s := GetStore()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []*Document
	for _, doc := range s.documents {
		if doc.DocType == DocumentTypeCreditNote && doc.SourceDocumentId == invoiceId {
			results = append(results, doc.Clone())
		}
	}
	return results
}

// DuplicateDocument copies items, discounts and customer snapshot into a
// brand-new document of the same type: status reset to draft, no backward
// link, no payments, no stock effect. Used for re-quote workflows.
func DuplicateDocument(ctx context.Context, id int) (*Document, error) {
	source, err := GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	doc := source.Clone()
	doc.ID = 0
	doc.Number = ""
	doc.Date = time.Time{}
	doc.CurrentStatus = DocumentStatusDraft
	doc.Payments = []Payment{}
	doc.PaidTotal = decimal.Zero
	doc.SourceDocumentId = 0
	doc.SourceDocumentType = ""
	doc.SourceDocumentNumber = ""
	doc.CreditNoteId = 0
	doc.CreditNoteNumber = ""

	return InsertDocument(ctx, doc)
}
