package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yudistira/storecart/cart/internal/model"
)

// CartStore persists the cart aggregate. Update and UpdateAndDelete are
// conditioned on the aggregate version and return
// errors.ErrVersionConflict when a concurrent writer won the race.
type CartStore interface {
	FindByOwner(c context.Context, storeId uuid.UUID, owner model.Owner) (model.Cart, error)
	Insert(c context.Context, cart model.Cart) (model.Cart, error)
	Update(c context.Context, cart model.Cart) (model.Cart, error)
	Delete(c context.Context, id uuid.UUID) error
	// UpdateAndDelete applies both writes atomically; the guest merge uses
	// it so the guest cart cannot survive a persisted merge.
	UpdateAndDelete(c context.Context, update model.Cart, remove uuid.UUID) (model.Cart, error)
}

// ProductCatalog is the live product collaborator. Find returns the
// snapshot scoped to the store regardless of active flag so callers can
// distinguish a missing product from a deactivated one.
type ProductCatalog interface {
	Find(c context.Context, productId uuid.UUID, storeId uuid.UUID) (model.ProductSnapshot, error)
}

// SpecificationCatalog resolves canonical bilingual specification rows in
// one batched lookup.
type SpecificationCatalog interface {
	FindBatch(c context.Context, ids []string) (map[string]model.Specification, error)
}

// CartCache is the cache-aside layer over the cart aggregate. Misses and
// failures are never fatal, the store stays authoritative.
type CartCache interface {
	Find(c context.Context, storeId uuid.UUID, owner model.Owner) (model.Cart, bool, error)
	Set(c context.Context, cart model.Cart) error
	Delete(c context.Context, storeId uuid.UUID, owner model.Owner) error
}

// TaxPolicy supplies the tax rate applied to cart subtotals.
type TaxPolicy interface {
	Rate(c context.Context, storeId uuid.UUID) decimal.Decimal
}

// StaticTaxPolicy applies one configured rate to every store.
type StaticTaxPolicy struct {
	rate decimal.Decimal
}

func NewStaticTaxPolicy(rate decimal.Decimal) StaticTaxPolicy {
	return StaticTaxPolicy{rate: rate}
}

func (p StaticTaxPolicy) Rate(context.Context, uuid.UUID) decimal.Decimal {
	return p.rate
}
