package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type ReturnLine struct {
	InvoiceLineId int             `json:"invoice_line_id"`
	ProductId     int             `json:"product_id"`
	Sku           string          `json:"sku"`
	Description   string          `json:"description"`
	QtyCredited   decimal.Decimal `json:"qty_credited"`
	// returnable quantity of the invoice line before this return was applied
	QtyReturnable decimal.Decimal `json:"qty_returnable"`
	Condition     ReturnCondition `json:"condition"`
	Restock       *bool           `json:"restock"`
}

type Return struct {
	ID               int          `json:"id"`
	InvoiceId        int          `json:"invoice_id"`
	CreditNoteId     int          `json:"credit_note_id"`
	CreditNoteNumber string       `json:"credit_note_number"`
	Reason           string       `json:"reason"`
	CurrentStatus    ReturnStatus `json:"current_status"`
	Lines            []ReturnLine `json:"lines"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

type NewReturn struct {
	InvoiceId int             `json:"invoice_id" binding:"required"`
	Reason    string          `json:"reason"`
	Lines     []NewReturnLine `json:"lines" binding:"required,dive"`
}

type NewReturnLine struct {
	InvoiceLineId int             `json:"invoice_line_id" binding:"required"`
	Qty           decimal.Decimal `json:"qty"`
	Condition     ReturnCondition `json:"condition"`
	Restock       *bool           `json:"restock"`
}

func (r *Return) clone() *Return {
	c := *r
	c.Lines = make([]ReturnLine, len(r.Lines))
	copy(c.Lines, r.Lines)
	return &c
}

func InsertReturn(ctx context.Context, ret *Return) (*Return, error) {
	s := GetStore()

	ret.ID = s.nextId()
	now := time.Now().UTC()
	ret.CreatedAt = now
	ret.UpdatedAt = now

	s.mu.Lock()
	s.returns[ret.ID] = ret.clone()
	s.mu.Unlock()

	return ret, nil
}

func GetReturn(ctx context.Context, id int) (*Return, error) {
	s := GetStore()
	s.mu.RLock()
	ret, ok := s.returns[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: return %d", utils.ErrorRecordNotFound, id)
	}
	return ret.clone(), nil
}

func GetReturns(ctx context.Context, invoiceId *int) ([]*Return, error) {
	s := GetStore()
	s.mu.RLock()
	results := make([]*Return, 0, len(s.returns))
	for _, ret := range s.returns {
		if invoiceId != nil && ret.InvoiceId != *invoiceId {
			continue
		}
		results = append(results, ret.clone())
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

// CancelReturn is a status flip only: the credit note and any restocked
// quantities stay as they are. Validated returns are otherwise immutable.
func CancelReturn(ctx context.Context, id int) (*Return, error) {
	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	ret, ok := s.returns[id]
	if !ok {
		return nil, fmt.Errorf("%w: return %d", utils.ErrorRecordNotFound, id)
	}
	if ret.CurrentStatus == ReturnStatusCancelled {
		return nil, fmt.Errorf("%w: return %d is already cancelled", utils.ErrorBusinessRule, id)
	}
	ret.CurrentStatus = ReturnStatusCancelled
	ret.UpdatedAt = time.Now().UTC()
	return ret.clone(), nil
}
