package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yudistira/storecart/cart/internal/model"
	inErrors "github.com/yudistira/storecart/internal/errors"
)

// fakeCartStore keeps carts in memory and enforces the same
// version-conditioned writes the postgres repository does. Setting
// conflicts > 0 makes the next writes lose the race: the stored version is
// bumped as a concurrent writer would and ErrVersionConflict is returned.
// insertRaces > 0 makes the next inserts lose the first-touch race: a
// concurrent winner cart is created for the same owner and ErrCartExists
// is returned, matching the partial unique owner index.
type fakeCartStore struct {
	carts       map[uuid.UUID]model.Cart
	conflicts   int
	insertRaces int
	updateCalls int
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[uuid.UUID]model.Cart{}}
}

func (f *fakeCartStore) FindByOwner(
	_ context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (model.Cart, error) {
	for _, cart := range f.carts {
		if cart.StoreID == storeId && cart.Owner.Key() == owner.Key() {
			return cart, nil
		}
	}
	return model.Cart{}, inErrors.ErrCartNotFound
}

func (f *fakeCartStore) Insert(_ context.Context, cart model.Cart) (model.Cart, error) {
	if f.insertRaces > 0 {
		f.insertRaces--
		winner := cart
		winner.ID = uuid.New()
		winner.Version = 1
		f.carts[winner.ID] = winner
		return model.Cart{}, inErrors.ErrCartExists
	}
	cart.Version = 1
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeCartStore) Update(_ context.Context, cart model.Cart) (model.Cart, error) {
	f.updateCalls++
	stored, ok := f.carts[cart.ID]
	if !ok || stored.Version != cart.Version {
		return model.Cart{}, inErrors.ErrVersionConflict
	}
	if f.conflicts > 0 {
		f.conflicts--
		stored.Version++
		f.carts[cart.ID] = stored
		return model.Cart{}, inErrors.ErrVersionConflict
	}
	cart.Version++
	cart.UpdatedAt = time.Now()
	f.carts[cart.ID] = cart
	return cart, nil
}

func (f *fakeCartStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.carts, id)
	return nil
}

func (f *fakeCartStore) UpdateAndDelete(
	c context.Context,
	update model.Cart,
	remove uuid.UUID,
) (model.Cart, error) {
	updated, err := f.Update(c, update)
	if err != nil {
		return model.Cart{}, err
	}
	delete(f.carts, remove)
	return updated, nil
}

type fakeProductCatalog struct {
	products map[uuid.UUID]model.ProductSnapshot
}

func newFakeProductCatalog(products ...model.ProductSnapshot) *fakeProductCatalog {
	catalog := &fakeProductCatalog{products: map[uuid.UUID]model.ProductSnapshot{}}
	for _, p := range products {
		catalog.products[p.ID] = p
	}
	return catalog
}

func (f *fakeProductCatalog) Find(
	_ context.Context,
	productId uuid.UUID,
	storeId uuid.UUID,
) (model.ProductSnapshot, error) {
	product, ok := f.products[productId]
	if !ok || product.StoreID != storeId {
		return model.ProductSnapshot{}, inErrors.NewNotFound(
			"product not found in store",
			"المنتج غير موجود في المتجر",
		)
	}
	return product, nil
}

type fakeSpecificationCatalog struct {
	specifications map[string]model.Specification
	calls          int
	err            error
}

func (f *fakeSpecificationCatalog) FindBatch(
	_ context.Context,
	ids []string,
) (map[string]model.Specification, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	found := map[string]model.Specification{}
	for _, id := range ids {
		if spec, ok := f.specifications[id]; ok {
			found[id] = spec
		}
	}
	return found, nil
}

func newTestService(
	store *fakeCartStore,
	products *fakeProductCatalog,
	specifications *fakeSpecificationCatalog,
) CartService {
	if specifications == nil {
		specifications = &fakeSpecificationCatalog{}
	}
	return NewCartService(
		store,
		products,
		specifications,
		nil,
		NewStaticTaxPolicy(decimal.NewFromFloat(0.10)),
	)
}

func activeProduct(storeId uuid.UUID, price int64, stock int32) model.ProductSnapshot {
	return model.ProductSnapshot{
		ID:       uuid.New(),
		StoreID:  storeId,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		IsActive: true,
	}
}
