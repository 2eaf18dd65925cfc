package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
)

type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	VatNumber string    `json:"vat_number"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Reference string    `json:"reference"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewCustomer struct {
	Name      string `json:"name" binding:"required"`
	VatNumber string `json:"vat_number"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewCustomer) validate(ctx context.Context, id int) error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return fmt.Errorf("%w: invalid email", utils.ErrorInvalidArgument)
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return fmt.Errorf("%w: %s", utils.ErrorInvalidArgument, err.Error())
		}
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	s := GetStore()
	now := time.Now().UTC()
	customer := &Customer{
		ID:        s.nextId(),
		Name:      input.Name,
		VatNumber: input.VatNumber,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		Reference: input.Reference,
		Notes:     input.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.customers[customer.ID] = customer
	s.mu.Unlock()

	c := *customer
	return &c, nil
}

func UpdateCustomer(ctx context.Context, id int, input *NewCustomer) (*Customer, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", utils.ErrorRecordNotFound, id)
	}
	customer.Name = input.Name
	customer.VatNumber = input.VatNumber
	customer.Email = input.Email
	customer.Phone = input.Phone
	customer.Address = input.Address
	customer.Reference = input.Reference
	customer.Notes = input.Notes
	customer.UpdatedAt = time.Now().UTC()

	c := *customer
	return &c, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	s := GetStore()
	s.mu.RLock()
	customer, ok := s.customers[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", utils.ErrorRecordNotFound, id)
	}
	c := *customer
	return &c, nil
}

func GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {
	s := GetStore()
	s.mu.RLock()
	results := make([]*Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		if name != nil && len(*name) > 0 && !strings.Contains(strings.ToLower(customer.Name), strings.ToLower(*name)) {
			continue
		}
		c := *customer
		results = append(results, &c)
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}
