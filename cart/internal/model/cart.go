package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Owner identifies who a cart belongs to. Exactly one of the two fields is
// set: UserID for an authenticated owner, GuestID for an anonymous one.
type Owner struct {
	UserID  uuid.UUID `json:"userId,omitempty"`
	GuestID string    `json:"guestId,omitempty"`
}

func UserOwner(userId uuid.UUID) Owner { return Owner{UserID: userId} }

func GuestOwner(guestId string) Owner { return Owner{GuestID: guestId} }

func (o Owner) Valid() bool {
	return (o.UserID != uuid.Nil) != (o.GuestID != "")
}

func (o Owner) IsGuest() bool { return o.GuestID != "" }

// Key is the cache/lock key fragment for this owner.
func (o Owner) Key() string {
	if o.UserID != uuid.Nil {
		return "user:" + o.UserID.String()
	}
	return "guest:" + o.GuestID
}

// SelectedSpecification is one chosen option of a configuration. The
// bilingual title/value fields are a display cache filled from the
// specification catalog at write time; Value keeps the raw caller text the
// lenient stock matching falls back to.
type SelectedSpecification struct {
	SpecificationID string `json:"specificationId"`
	ValueID         string `json:"valueId"`
	Value           string `json:"value,omitempty"`
	TitleAr         string `json:"titleAr,omitempty"`
	TitleEn         string `json:"titleEn,omitempty"`
	ValueAr         string `json:"valueAr,omitempty"`
	ValueEn         string `json:"valueEn,omitempty"`
}

// CartLine is one configuration-plus-quantity entry. Quantity is >= 1 for
// as long as the line exists, a requested quantity of zero deletes it.
type CartLine struct {
	ProductID      uuid.UUID               `json:"productId"`
	Variant        string                  `json:"variant,omitempty"`
	Quantity       int32                   `json:"quantity"`
	PriceAtAdd     decimal.Decimal         `json:"priceAtAdd"`
	Specifications []SelectedSpecification `json:"selectedSpecifications"`
	Colors         []string                `json:"selectedColors"`
	AddedAt        time.Time               `json:"addedAt"`
}

// Cart is the owner-and-store-scoped aggregate of pending purchase-intent
// lines. Version backs the optimistic concurrency check on every write.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	StoreID   uuid.UUID  `json:"storeId"`
	Owner     Owner      `json:"owner"`
	Lines     []CartLine `json:"lines"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// FindLine returns the index of the first line for productId, -1 when none.
// Lookup is by product only, a cart holding several configurations of one
// product resolves to its first line.
func (cart Cart) FindLine(productId uuid.UUID) int {
	for i, line := range cart.Lines {
		if line.ProductID == productId {
			return i
		}
	}
	return -1
}

// FindConfiguration returns the index of the first line with the same
// configuration as candidate, -1 when none.
func (cart Cart) FindConfiguration(candidate CartLine) int {
	for i, line := range cart.Lines {
		if SameConfiguration(line, candidate) {
			return i
		}
	}
	return -1
}

// SpecificationValueStock is one sellable option pool of a product.
type SpecificationValueStock struct {
	SpecificationID string `json:"specificationId"`
	ValueID         string `json:"valueId"`
	Value           string `json:"value,omitempty"`
	Quantity        int32  `json:"quantity"`
}

// ProductSnapshot is the read-only catalog view a cart operation validates
// against. Owned by the product catalog, never mutated here.
type ProductSnapshot struct {
	ID                  uuid.UUID                 `json:"id"`
	StoreID             uuid.UUID                 `json:"storeId"`
	Price               decimal.Decimal           `json:"price"`
	CompareAtPrice      decimal.Decimal           `json:"compareAtPrice"`
	IsOnSale            bool                      `json:"isOnSale"`
	SalePercentage      decimal.Decimal           `json:"salePercentage"`
	Stock               int32                     `json:"stock"`
	IsActive            bool                      `json:"isActive"`
	SpecificationValues []SpecificationValueStock `json:"specificationValues"`
}

// Specification is the canonical catalog row used to refresh the bilingual
// display cache on cart lines.
type Specification struct {
	ID      string               `json:"id"`
	TitleAr string               `json:"titleAr"`
	TitleEn string               `json:"titleEn"`
	Values  []SpecificationValue `json:"values"`
}

type SpecificationValue struct {
	ID      string `json:"id"`
	ValueAr string `json:"valueAr"`
	ValueEn string `json:"valueEn"`
}
