package models

import (
	"errors"
	"strconv"
)

type DocumentType string

const (
	DocumentTypeQuote         DocumentType = "quote"
	DocumentTypePurchaseOrder DocumentType = "purchase_order"
	DocumentTypeDeliveryNote  DocumentType = "delivery_note"
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeCreditNote    DocumentType = "credit_note"
	DocumentTypeReceipt       DocumentType = "receipt"
	DocumentTypeProforma      DocumentType = "proforma"
)

var documentTypes = map[string]DocumentType{
	"quote":          DocumentTypeQuote,
	"purchase_order": DocumentTypePurchaseOrder,
	"delivery_note":  DocumentTypeDeliveryNote,
	"invoice":        DocumentTypeInvoice,
	"credit_note":    DocumentTypeCreditNote,
	"receipt":        DocumentTypeReceipt,
	"proforma":       DocumentTypeProforma,
}

func ParseDocumentType(s string) (DocumentType, error) {
	t, ok := documentTypes[s]
	if !ok {
		return "", errors.New("invalid document type")
	}
	return t, nil
}

// convert input to enum type
func (t *DocumentType) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("document type must be string")
	}
	parsed, err := ParseDocumentType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

type DocumentStatus string

const (
	// quote
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusSent      DocumentStatus = "sent"
	DocumentStatusAccepted  DocumentStatus = "accepted"
	DocumentStatusCancelled DocumentStatus = "cancelled"
	// purchase order
	DocumentStatusConfirmed DocumentStatus = "confirmed"
	DocumentStatusCompleted DocumentStatus = "completed"
	// delivery note
	DocumentStatusDelivered DocumentStatus = "delivered"
	DocumentStatusInvoiced  DocumentStatus = "invoiced"
	// invoice
	DocumentStatusUnpaid        DocumentStatus = "unpaid"
	DocumentStatusPartiallyPaid DocumentStatus = "partially_paid"
	DocumentStatusPaid          DocumentStatus = "paid"
	DocumentStatusCredited      DocumentStatus = "credited"
	// credit note
	DocumentStatusValidated DocumentStatus = "validated"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "percent"
	DiscountTypeFixed   DiscountType = "fixed"
)

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("discount type must be string")
	}
	switch str {
	case "percent":
		*t = DiscountTypePercent
	case "fixed":
		*t = DiscountTypeFixed
	default:
		return errors.New("invalid discount type")
	}
	return nil
}

// DiscountTarget says which price a fixed discount was expressed against.
// A "ttc" fixed discount is converted to its HTVA equivalent before it is
// recorded against the base amount.
type DiscountTarget string

const (
	DiscountTargetHTVA DiscountTarget = "htva"
	DiscountTargetTTC  DiscountTarget = "ttc"
)

func (t *DiscountTarget) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("discount target must be string")
	}
	switch str {
	case "htva":
		*t = DiscountTargetHTVA
	case "ttc":
		*t = DiscountTargetTTC
	default:
		return errors.New("invalid discount target")
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodVoucher  PaymentMethod = "voucher"
)

var paymentMethods = map[string]PaymentMethod{
	"cash":     PaymentMethodCash,
	"card":     PaymentMethodCard,
	"transfer": PaymentMethodTransfer,
	"voucher":  PaymentMethodVoucher,
}

func (t *PaymentMethod) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("payment method must be string")
	}
	m, ok := paymentMethods[str]
	if !ok {
		return errors.New("invalid payment method")
	}
	*t = m
	return nil
}

type ReturnStatus string

const (
	ReturnStatusDraft     ReturnStatus = "draft"
	ReturnStatusValidated ReturnStatus = "validated"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// ReturnCondition drives nothing by itself; whether a returned unit goes back
// into sellable stock is the Restock flag. The condition is kept for audit.
type ReturnCondition string

const (
	ReturnConditionResalable ReturnCondition = "resalable"
	ReturnConditionDamaged   ReturnCondition = "damaged"
)

type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)
