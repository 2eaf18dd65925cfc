package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// CreateDocument stores a new document and applies the stock impact of
// direct creation: a delivery note or invoice created from scratch is the
// first document to represent the shipment, so it decrements.
func CreateDocument(ctx context.Context, input *models.NewDocument) (*models.Document, error) {
	doc, err := models.CreateDocument(ctx, input)
	if err != nil {
		return nil, err
	}

	defaults := models.GetDocumentDefaults(doc.DocType, "")
	if defaults.ShouldDecreaseStock {
		if err := ProcessOutgoingStock(ctx, config.GetLogger(), doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// ConvertDocument derives a new document of targetType from an existing one.
//
// Preconditions (no mutation on failure): the source must exist and the
// target type must be recognized. Once execution begins the conversion runs
// to completion; per-line stock adjustment is skip-and-continue.
func ConvertDocument(ctx context.Context, sourceId int, targetTypeRaw string) (*models.Document, error) {
	if strings.TrimSpace(targetTypeRaw) == "" {
		return nil, fmt.Errorf("%w: target_type is required", utils.ErrorInvalidArgument)
	}
	targetType, err := models.ParseDocumentType(targetTypeRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown target_type %q", utils.ErrorInvalidArgument, targetTypeRaw)
	}

	AcquireDocumentPostingLock(sourceId)
	defer ReleaseDocumentPostingLock(sourceId)

	source, err := models.GetDocument(ctx, sourceId)
	if err != nil {
		return nil, err
	}

	defaults := models.GetDocumentDefaults(targetType, source.DocType)

	// Clone gives a deep copy of the items, so later edits of the derived
	// document never reach back into the source. The priced totals are
	// carried over verbatim.
	newDoc := source.Clone()
	newDoc.ID = 0
	newDoc.Number = ""
	newDoc.Date = time.Time{}
	newDoc.DocType = targetType
	newDoc.CurrentStatus = defaults.Status
	newDoc.Payments = []models.Payment{}
	newDoc.PaidTotal = decimal.Zero
	newDoc.SourceDocumentId = source.ID
	newDoc.SourceDocumentType = source.DocType
	newDoc.SourceDocumentNumber = source.Number
	newDoc.CreditNoteId = 0
	newDoc.CreditNoteNumber = ""

	if targetType == models.DocumentTypeCreditNote {
		// A whole-document credit note credits every line in full.
		for i := range newDoc.Items {
			newDoc.Items[i].InvoiceLineId = newDoc.Items[i].ID
			newDoc.Items[i].QtyCredited = newDoc.Items[i].Qty
		}
	}

	newDoc, err = models.InsertDocument(ctx, newDoc)
	if err != nil {
		return nil, err
	}

	if _, err := models.UpdateDocument(ctx, source.ID, func(d *models.Document) error {
		applySourceTransition(d, targetType, newDoc)
		return nil
	}); err != nil {
		return nil, err
	}

	if defaults.ShouldDecreaseStock {
		if err := ProcessOutgoingStock(ctx, config.GetLogger(), newDoc); err != nil {
			return nil, err
		}
	}

	return newDoc, nil
}

// applySourceTransition moves the source document into its post-conversion
// status and records forward links for credit notes.
func applySourceTransition(source *models.Document, targetType models.DocumentType, newDoc *models.Document) {
	if targetType == models.DocumentTypeCreditNote {
		source.CurrentStatus = models.DocumentStatusCredited
		source.CreditNoteId = newDoc.ID
		source.CreditNoteNumber = newDoc.Number
		return
	}

	switch source.DocType {
	case models.DocumentTypeQuote:
		switch targetType {
		case models.DocumentTypePurchaseOrder, models.DocumentTypeDeliveryNote, models.DocumentTypeInvoice:
			source.CurrentStatus = models.DocumentStatusAccepted
		}
	case models.DocumentTypePurchaseOrder:
		switch targetType {
		case models.DocumentTypeDeliveryNote, models.DocumentTypeInvoice:
			source.CurrentStatus = models.DocumentStatusCompleted
		}
	case models.DocumentTypeDeliveryNote:
		if targetType == models.DocumentTypeInvoice {
			source.CurrentStatus = models.DocumentStatusInvoiced
		}
	}
}
