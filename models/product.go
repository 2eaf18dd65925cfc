package models

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/shopspring/decimal"
)

type ProductCustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Product struct {
	ID          int             `json:"id"`
	Sku         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Barcode     string          `json:"barcode"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VatRate     decimal.Decimal `json:"vat_rate"`
	StockQty    decimal.Decimal `json:"stock_qty"`
	// Known attribute categories (dimensions, packaging, commercial) live in
	// Attributes; anything else goes in Custom.
	Attributes map[string]string    `json:"attributes"`
	Custom     []ProductCustomField `json:"custom"`
	IsActive   *bool                `json:"is_active"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

type NewProduct struct {
	Sku         string               `json:"sku" binding:"required"`
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Barcode     string               `json:"barcode"`
	Category    string               `json:"category"`
	UnitPrice   decimal.Decimal      `json:"unit_price"`
	VatRate     decimal.Decimal      `json:"vat_rate"`
	StockQty    decimal.Decimal      `json:"stock_qty"`
	Attributes  map[string]string    `json:"attributes"`
	Custom      []ProductCustomField `json:"custom"`
}

func (p *Product) clone() *Product {
	c := *p
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	c.Custom = make([]ProductCustomField, len(p.Custom))
	copy(c.Custom, p.Custom)
	return &c
}

func (s *Store) findProduct(id int) (*Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, false
	}
	return p.clone(), true
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, id int) error {
	if input.VatRate.IsNegative() {
		return fmt.Errorf("%w: vat_rate cannot be negative", utils.ErrorInvalidArgument)
	}
	if input.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit_price cannot be negative", utils.ErrorInvalidArgument)
	}
	// sku unique
	s := GetStore()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID != id && strings.EqualFold(p.Sku, input.Sku) {
			return fmt.Errorf("%w: sku %q already in use", utils.ErrorBusinessRule, input.Sku)
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	s := GetStore()
	now := time.Now().UTC()
	product := &Product{
		ID:          s.nextId(),
		Sku:         input.Sku,
		Name:        input.Name,
		Description: input.Description,
		Barcode:     input.Barcode,
		Category:    input.Category,
		UnitPrice:   input.UnitPrice,
		VatRate:     input.VatRate,
		StockQty:    input.StockQty,
		Attributes:  input.Attributes,
		Custom:      input.Custom,
		IsActive:    utils.NewTrue(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	s.products[product.ID] = product.clone()
	s.mu.Unlock()

	return product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %d", utils.ErrorRecordNotFound, id)
	}
	product.Sku = input.Sku
	product.Name = input.Name
	product.Description = input.Description
	product.Barcode = input.Barcode
	product.Category = input.Category
	product.UnitPrice = input.UnitPrice
	product.VatRate = input.VatRate
	product.Attributes = input.Attributes
	product.Custom = input.Custom
	product.UpdatedAt = time.Now().UTC()

	return product.clone(), nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	product, ok := GetStore().findProduct(id)
	if !ok {
		return nil, fmt.Errorf("%w: product %d", utils.ErrorRecordNotFound, id)
	}
	return product, nil
}

func GetProducts(ctx context.Context, name *string) ([]*Product, error) {
	s := GetStore()
	s.mu.RLock()
	results := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if name != nil && len(*name) > 0 && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*name)) {
			continue
		}
		results = append(results, p.clone())
	}
	s.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results, nil
}

// AdjustProductStock applies delta to the product's stock quantity as one
// atomic read-modify-write. Returns false when the product does not exist;
// the caller decides whether that is fatal.
func AdjustProductStock(ctx context.Context, productId int, delta decimal.Decimal) (decimal.Decimal, bool) {
	s := GetStore()
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productId]
	if !ok {
		return decimal.Zero, false
	}
	product.StockQty = product.StockQty.Add(delta)
	product.UpdatedAt = time.Now().UTC()
	return product.StockQty, true
}
