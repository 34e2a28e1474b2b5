package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
)

// Batch is a decoded prediction request.
type Batch struct {
	Products []domain.Product
	Sales    []domain.SaleRecord
}

type rawBatch struct {
	Products []rawProduct `json:"products"`
	Sales    []rawSale    `json:"sales"`
}

type rawProduct struct {
	SKU   json.RawMessage `json:"sku"`
	Name  json.RawMessage `json:"name"`
	Stock json.RawMessage `json:"stock"`
}

type rawSale struct {
	ProductSKU   json.RawMessage `json:"product_sku"`
	Date         json.RawMessage `json:"date"`
	QuantitySold json.RawMessage `json:"quantity_sold"`
}

// MaxQuantity bounds stock and quantity_sold so both always fit an int.
const MaxQuantity = math.MaxInt32

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Decode reads a whole payload from r.
func Decode(r io.Reader) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes parses a payload of the form {"products": [...], "sales": [...]}.
// Missing collections decode as empty.
func DecodeBytes(data []byte) (*Batch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, domain.ErrNoInput
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", domain.ErrMalformedPayload)
	}

	var raw rawBatch
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	batch := &Batch{
		Products: make([]domain.Product, 0, len(raw.Products)),
		Sales:    make([]domain.SaleRecord, 0, len(raw.Sales)),
	}

	for i, p := range raw.Products {
		product, err := p.toProduct()
		if err != nil {
			return nil, fmt.Errorf("%w: products[%d]: %v", domain.ErrMalformedPayload, i, err)
		}
		batch.Products = append(batch.Products, product)
	}

	for i, s := range raw.Sales {
		sale, err := s.toSale()
		if err != nil {
			return nil, fmt.Errorf("%w: sales[%d]: %v", domain.ErrMalformedPayload, i, err)
		}
		batch.Sales = append(batch.Sales, sale)
	}

	return batch, nil
}

func (p rawProduct) toProduct() (domain.Product, error) {
	sku, ok, err := coerceString(p.SKU)
	if err != nil {
		return domain.Product{}, fmt.Errorf("sku: %w", err)
	}
	if !ok || sku == "" {
		return domain.Product{}, fmt.Errorf("sku is required")
	}

	name, ok, err := coerceString(p.Name)
	if err != nil {
		return domain.Product{}, fmt.Errorf("name: %w", err)
	}
	if !ok {
		name = domain.DefaultProductName
	}

	stock, ok, err := coerceNumber(p.Stock)
	if err != nil {
		return domain.Product{}, fmt.Errorf("stock: %w", err)
	}
	if !ok || stock < 0 {
		stock = 0
	}
	if stock > MaxQuantity {
		return domain.Product{}, fmt.Errorf("stock exceeds %d, got %v", MaxQuantity, stock)
	}

	return domain.Product{SKU: sku, Name: name, Stock: int(stock)}, nil
}

func (s rawSale) toSale() (domain.SaleRecord, error) {
	sku, ok, err := coerceString(s.ProductSKU)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("product_sku: %w", err)
	}
	if !ok {
		return domain.SaleRecord{}, fmt.Errorf("product_sku is required")
	}

	rawDate, ok, err := coerceString(s.Date)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("date: %w", err)
	}
	if !ok {
		return domain.SaleRecord{}, fmt.Errorf("date is required")
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return domain.SaleRecord{}, err
	}

	qty, ok, err := coerceNumber(s.QuantitySold)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("quantity_sold: %w", err)
	}
	if !ok {
		return domain.SaleRecord{}, fmt.Errorf("quantity_sold is required")
	}
	if qty < 0 {
		return domain.SaleRecord{}, fmt.Errorf("quantity_sold must not be negative, got %v", qty)
	}
	if qty > MaxQuantity {
		return domain.SaleRecord{}, fmt.Errorf("quantity_sold exceeds %d, got %v", MaxQuantity, qty)
	}

	return domain.SaleRecord{ProductSKU: sku, Date: date, QuantitySold: qty}, nil
}

// ParseDate accepts RFC3339 timestamps and plain calendar dates.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

// coerceString accepts JSON strings and numbers. ok is false for absent or null.
func coerceString(raw json.RawMessage) (string, bool, error) {
	if isNull(raw) {
		return "", false, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s), true, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true, nil
	}

	return "", false, fmt.Errorf("expected string or number, got %s", raw)
}

// coerceNumber accepts JSON numbers and numeric strings. ok is false for absent or null.
func coerceNumber(raw json.RawMessage) (float64, bool, error) {
	if isNull(raw) {
		return 0, false, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false, fmt.Errorf("expected a number, got %q", s)
		}
		return f, true, nil
	}

	return 0, false, fmt.Errorf("expected a number, got %s", raw)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
