package models

import (
	"fmt"
)

// DocumentNumberSeriesModule is the static numbering/status registry entry
// for one document type.
type DocumentNumberSeriesModule struct {
	DocType       DocumentType   `json:"doc_type"`
	Prefix        string         `json:"prefix"`
	DefaultStatus DocumentStatus `json:"default_status"`
}

const defaultDocumentPrefix = "DOC"

var documentNumberSeries = map[DocumentType]DocumentNumberSeriesModule{
	DocumentTypeQuote:         {DocType: DocumentTypeQuote, Prefix: "DEV", DefaultStatus: DocumentStatusDraft},
	DocumentTypePurchaseOrder: {DocType: DocumentTypePurchaseOrder, Prefix: "BC", DefaultStatus: DocumentStatusConfirmed},
	DocumentTypeDeliveryNote:  {DocType: DocumentTypeDeliveryNote, Prefix: "BL", DefaultStatus: DocumentStatusDelivered},
	DocumentTypeInvoice:       {DocType: DocumentTypeInvoice, Prefix: "FAC", DefaultStatus: DocumentStatusUnpaid},
	DocumentTypeCreditNote:    {DocType: DocumentTypeCreditNote, Prefix: "AV", DefaultStatus: DocumentStatusDraft},
}

func DocumentPrefix(docType DocumentType) string {
	if series, ok := documentNumberSeries[docType]; ok {
		return series.Prefix
	}
	return defaultDocumentPrefix
}

// NextDocumentNumber formats the next number under the type's prefix using
// the shared sequence.
func NextDocumentNumber(docType DocumentType) string {
	return fmt.Sprintf("%s-%06d", DocumentPrefix(docType), GetStore().nextSequenceNo())
}

// DocumentDefaults is the outcome of the type registry for a (target, source)
// pair: the status a freshly created document starts in and whether creating
// it represents goods leaving the warehouse.
type DocumentDefaults struct {
	Status              DocumentStatus `json:"status"`
	ShouldDecreaseStock bool           `json:"should_decrease_stock"`
}

// GetDocumentDefaults decides the stock-impact policy. Stock must decrement
// exactly once per physical shipment: a delivery note always decrements; an
// invoice decrements only when it is the first document in the chain to
// represent the shipment, i.e. when it was not derived from a delivery note
// (which already decremented).
func GetDocumentDefaults(targetType DocumentType, sourceType DocumentType) DocumentDefaults {
	switch targetType {
	case DocumentTypeQuote:
		return DocumentDefaults{Status: DocumentStatusDraft, ShouldDecreaseStock: false}
	case DocumentTypePurchaseOrder:
		return DocumentDefaults{Status: DocumentStatusConfirmed, ShouldDecreaseStock: false}
	case DocumentTypeDeliveryNote:
		return DocumentDefaults{Status: DocumentStatusDelivered, ShouldDecreaseStock: true}
	case DocumentTypeInvoice:
		return DocumentDefaults{Status: DocumentStatusUnpaid, ShouldDecreaseStock: sourceType != DocumentTypeDeliveryNote}
	case DocumentTypeCreditNote:
		// Restocking is decided per return line by the returns engine.
		return DocumentDefaults{Status: DocumentStatusDraft, ShouldDecreaseStock: false}
	default:
		return DocumentDefaults{Status: DocumentStatusDraft, ShouldDecreaseStock: false}
	}
}
