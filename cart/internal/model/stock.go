package model

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	inErrors "github.com/yudistira/storecart/internal/errors"
)

// AvailableStock computes the sellable ceiling for a configuration. With no
// selected specifications it is the product stock; otherwise it is the
// minimum remaining quantity among the resolved specification values, since
// a configuration is only as available as its scarcest selected option.
// A selection that resolves to no specification value after every fallback
// fails with a specification mismatch error. Never returns a negative.
func AvailableStock(product ProductSnapshot, selected []SelectedSpecification) (int32, error) {
	if len(selected) == 0 {
		if product.Stock < 0 {
			return 0, nil
		}
		return product.Stock, nil
	}

	available := int32(math.MaxInt32)
	for _, s := range selected {
		entry, ok := resolveSpecificationValue(product.SpecificationValues, s)
		if !ok {
			return 0, inErrors.NewSpecificationMismatch(s.SpecificationID, s.ValueID)
		}
		if entry.Quantity < available {
			available = entry.Quantity
		}
	}
	if available < 0 {
		return 0, nil
	}
	return available, nil
}

// resolveSpecificationValue locates the stock entry for one selection.
// Resolution order: exact id match, case-insensitive id match, match by raw
// value text, and finally -- when the submitted valueId is malformed but
// still prefixed by the specification id -- the first entry of that
// specification. The last two steps tolerate drifted catalogs and sloppy
// client submissions.
func resolveSpecificationValue(
	values []SpecificationValueStock,
	s SelectedSpecification,
) (SpecificationValueStock, bool) {
	for _, v := range values {
		if v.SpecificationID == s.SpecificationID && v.ValueID == s.ValueID {
			return v, true
		}
	}
	for _, v := range values {
		if strings.EqualFold(v.SpecificationID, s.SpecificationID) &&
			strings.EqualFold(v.ValueID, s.ValueID) {
			return v, true
		}
	}
	for _, v := range values {
		if !strings.EqualFold(v.SpecificationID, s.SpecificationID) || v.Value == "" {
			continue
		}
		if strings.EqualFold(v.Value, s.Value) || strings.EqualFold(v.Value, s.ValueID) {
			return v, true
		}
	}
	if s.SpecificationID != "" && strings.HasPrefix(s.ValueID, s.SpecificationID) {
		for _, v := range values {
			if strings.EqualFold(v.SpecificationID, s.SpecificationID) {
				return v, true
			}
		}
	}
	return SpecificationValueStock{}, false
}

// SalePrice is the effective unit price of a product: the listed price
// reduced by the sale percentage when the product is on sale.
func SalePrice(product ProductSnapshot) decimal.Decimal {
	if product.IsOnSale && product.SalePercentage.IsPositive() {
		hundred := decimal.NewFromInt(100)
		return product.Price.Mul(hundred.Sub(product.SalePercentage)).Div(hundred)
	}
	return product.Price
}
