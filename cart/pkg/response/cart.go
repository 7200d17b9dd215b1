package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SelectedSpecification struct {
	SpecificationID string `json:"specificationId"`
	ValueID         string `json:"valueId"`
	TitleAr         string `json:"titleAr,omitempty"`
	TitleEn         string `json:"titleEn,omitempty"`
	ValueAr         string `json:"valueAr,omitempty"`
	ValueEn         string `json:"valueEn,omitempty"`
}

type CartLine struct {
	ProductID      uuid.UUID               `json:"productId"`
	Variant        string                  `json:"variant,omitempty"`
	Quantity       int32                   `json:"quantity"`
	PriceAtAdd     decimal.Decimal         `json:"priceAtAdd"`
	Specifications []SelectedSpecification `json:"selectedSpecifications"`
	Colors         []string                `json:"selectedColors"`
	AddedAt        time.Time               `json:"addedAt"`
}

// Cart is the projected read view. RemovedCount reports how many lines the
// self-healing pass pruned so callers can message the shopper.
type Cart struct {
	ID           uuid.UUID  `json:"id"`
	StoreID      uuid.UUID  `json:"storeId"`
	UserID       *uuid.UUID `json:"userId,omitempty"`
	GuestID      string     `json:"guestId,omitempty"`
	Lines        []CartLine `json:"items"`
	RemovedCount int        `json:"removedCount,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type TotalsLine struct {
	ProductID    uuid.UUID       `json:"productId"`
	Quantity     int32           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	ListPrice    decimal.Decimal `json:"listPrice"`
	ItemTotal    decimal.Decimal `json:"itemTotal"`
	ItemDiscount decimal.Decimal `json:"itemDiscount"`
}

type Totals struct {
	Lines         []TotalsLine    `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	RemovedCount  int             `json:"removedCount,omitempty"`
}

type MergeResult struct {
	MergedCount  int `json:"mergedCount"`
	UpdatedCount int `json:"updatedCount"`
	SkippedCount int `json:"skippedCount"`
}
