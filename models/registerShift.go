package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// RegisterShift tracks one cash-register session: opening float, cash taken
// while the shift was open, and the counted-vs-expected difference at close.
type RegisterShift struct {
	ID             int             `json:"id"`
	RegisterId     string          `json:"register_id"`
	CashierName    string          `json:"cashier_name"`
	CurrentStatus  ShiftStatus     `json:"current_status"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       *time.Time      `json:"closed_at"`
	OpeningFloat   decimal.Decimal `json:"opening_float"`
	ExpectedCash   decimal.Decimal `json:"expected_cash"`
	CountedCash    decimal.Decimal `json:"counted_cash"`
	CashDifference decimal.Decimal `json:"cash_difference"`
}

type NewRegisterShift struct {
	RegisterId   string          `json:"register_id" binding:"required"`
	CashierName  string          `json:"cashier_name"`
	OpeningFloat decimal.Decimal `json:"opening_float"`
}

type CloseRegisterShift struct {
	RegisterId  string          `json:"register_id" binding:"required"`
	CountedCash decimal.Decimal `json:"counted_cash"`
}

func OpenRegisterShift(ctx context.Context, input *NewRegisterShift) (*RegisterShift, error) {
	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, open := s.activeShiftByRegister[input.RegisterId]; open {
		return nil, fmt.Errorf("%w: register %q already has an open shift", utils.ErrorBusinessRule, input.RegisterId)
	}

	cashierName := input.CashierName
	if cashierName == "" {
		if name, ok := utils.GetCashierNameFromContext(ctx); ok {
			cashierName = name
		}
	}

	shift := &RegisterShift{
		ID:            s.nextId(),
		RegisterId:    input.RegisterId,
		CashierName:   cashierName,
		CurrentStatus: ShiftStatusOpen,
		OpenedAt:      time.Now().UTC(),
		OpeningFloat:  input.OpeningFloat,
	}
	s.shifts[shift.ID] = shift
	s.activeShiftByRegister[shift.RegisterId] = shift.ID

	c := *shift
	return &c, nil
}

// cashReceivedSince sums cash payments recorded on any document since the
// given time. Callers hold the store lock.
func (s *Store) cashReceivedSince(since time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, doc := range s.documents {
		for _, payment := range doc.Payments {
			if payment.Method == PaymentMethodCash && !payment.Date.Before(since) {
				total = total.Add(payment.Amount)
			}
		}
	}
	return total
}

func CloseShift(ctx context.Context, input *CloseRegisterShift) (*RegisterShift, error) {
	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	shiftId, open := s.activeShiftByRegister[input.RegisterId]
	if !open {
		return nil, fmt.Errorf("%w: no open shift for register %q", utils.ErrorRecordNotFound, input.RegisterId)
	}
	shift := s.shifts[shiftId]

	now := time.Now().UTC()
	shift.ExpectedCash = shift.OpeningFloat.Add(s.cashReceivedSince(shift.OpenedAt))
	shift.CountedCash = input.CountedCash
	shift.CashDifference = shift.CountedCash.Sub(shift.ExpectedCash)
	shift.CurrentStatus = ShiftStatusClosed
	shift.ClosedAt = &now
	delete(s.activeShiftByRegister, shift.RegisterId)

	c := *shift
	return &c, nil
}

func GetCurrentShift(ctx context.Context, registerId string) (*RegisterShift, error) {
	s := GetStore()
	s.mu.RLock()
	defer s.mu.RUnlock()

	shiftId, open := s.activeShiftByRegister[registerId]
	if !open {
		return nil, fmt.Errorf("%w: no open shift for register %q", utils.ErrorRecordNotFound, registerId)
	}
	c := *s.shifts[shiftId]
	return &c, nil
}
