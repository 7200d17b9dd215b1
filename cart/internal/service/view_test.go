package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudistira/storecart/cart/internal/model"
	"github.com/yudistira/storecart/cart/pkg/request"
	inErrors "github.com/yudistira/storecart/internal/errors"
)

func TestViewPrunesStaleLines(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	alive := activeProduct(storeId, 100, 5)
	dying := activeProduct(storeId, 50, 5)
	store := newFakeCartStore()
	products := newFakeProductCatalog(alive, dying)
	service := newTestService(store, products, nil)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{ProductID: alive.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = service.AddItem(c, storeId, owner, request.AddItem{ProductID: dying.ID, Quantity: 1})
	require.NoError(t, err)

	// the product is deactivated behind the cart's back
	dying.IsActive = false
	products.products[dying.ID] = dying

	cart, err := service.View(c, storeId, owner)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, alive.ID, cart.Lines[0].ProductID)
	assert.Equal(t, 1, cart.RemovedCount)

	stored, err := store.FindByOwner(c, storeId, owner)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 1, "the pruned set must be persisted")

	// a second view finds nothing left to heal
	cart, err = service.View(c, storeId, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, cart.RemovedCount)
}

func TestViewPrunesMissingAndDepletedLines(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	vanishing := activeProduct(storeId, 100, 5)
	depleting := activeProduct(storeId, 50, 5)
	store := newFakeCartStore()
	products := newFakeProductCatalog(vanishing, depleting)
	service := newTestService(store, products, nil)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{ProductID: vanishing.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = service.AddItem(c, storeId, owner, request.AddItem{ProductID: depleting.ID, Quantity: 1})
	require.NoError(t, err)

	delete(products.products, vanishing.ID)
	depleting.Stock = 0
	products.products[depleting.ID] = depleting

	cart, err := service.View(c, storeId, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, 2, cart.RemovedCount)
}

func TestViewClampsQuantityToAvailableStock(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	product := activeProduct(storeId, 100, 5)
	store := newFakeCartStore()
	products := newFakeProductCatalog(product)
	service := newTestService(store, products, nil)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)

	product.Stock = 2
	products.products[product.ID] = product

	cart, err := service.View(c, storeId, owner)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(2), cart.Lines[0].Quantity)
	assert.Equal(t, 0, cart.RemovedCount, "a clamped line is corrected, not removed")
}

func TestViewByGuest(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	guestId := uuid.NewString()

	product := activeProduct(storeId, 100, 5)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(product), nil)

	seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: product.ID, Quantity: 2},
	})

	cart, err := service.ViewByGuest(c, storeId, guestId)
	require.NoError(t, err)
	assert.Equal(t, guestId, cart.GuestID)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, int32(2), cart.Lines[0].Quantity)

	_, err = service.ViewByGuest(c, storeId, "")
	require.Error(t, err)
	assert.Equal(t, inErrors.CodeValidation, inErrors.CodeOf(err))
}

func TestViewEnrichesSpecificationsInOneBatch(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	product := activeProduct(storeId, 100, 50)
	product.SpecificationValues = []model.SpecificationValueStock{
		{SpecificationID: "size", ValueID: "size-m", Quantity: 10},
		{SpecificationID: "fabric", ValueID: "fabric-cotton", Quantity: 10},
	}
	other := activeProduct(storeId, 50, 50)
	other.SpecificationValues = []model.SpecificationValueStock{
		{SpecificationID: "size", ValueID: "size-m", Quantity: 10},
	}

	specifications := &fakeSpecificationCatalog{
		specifications: map[string]model.Specification{
			"size": {
				ID:      "size",
				TitleAr: "المقاس",
				TitleEn: "Size",
				Values: []model.SpecificationValue{
					{ID: "size-m", ValueAr: "وسط", ValueEn: "Medium"},
				},
			},
			"fabric": {
				ID:      "fabric",
				TitleAr: "القماش",
				TitleEn: "Fabric",
				Values: []model.SpecificationValue{
					{ID: "fabric-cotton", ValueAr: "قطن", ValueEn: "Cotton"},
				},
			},
		},
	}
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(product, other), specifications)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{
		ProductID: product.ID,
		Quantity:  1,
		Specifications: []request.SelectedSpecification{
			{SpecificationID: "size", ValueID: "size-m"},
			{SpecificationID: "fabric", ValueID: "fabric-cotton"},
		},
	})
	require.NoError(t, err)
	_, err = service.AddItem(c, storeId, owner, request.AddItem{
		ProductID: other.ID,
		Quantity:  1,
		Specifications: []request.SelectedSpecification{
			{SpecificationID: "size", ValueID: "size-m"},
		},
	})
	require.NoError(t, err)

	specifications.calls = 0
	cart, err := service.View(c, storeId, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, specifications.calls, "all lines enrich from one batched lookup")

	require.Len(t, cart.Lines, 2)
	first := cart.Lines[0].Specifications[0]
	assert.Equal(t, "Size", first.TitleEn)
	assert.Equal(t, "المقاس", first.TitleAr)
	assert.Equal(t, "Medium", first.ValueEn)
	assert.Equal(t, "وسط", first.ValueAr)
}

func TestViewKeepsCachedTextWhenCatalogFails(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	product := activeProduct(storeId, 100, 50)
	product.SpecificationValues = []model.SpecificationValueStock{
		{SpecificationID: "size", ValueID: "size-m", Quantity: 10},
	}
	specifications := &fakeSpecificationCatalog{}
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(product), specifications)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{
		ProductID: product.ID,
		Quantity:  1,
		Specifications: []request.SelectedSpecification{
			{SpecificationID: "size", ValueID: "size-m", TitleEn: "Size", ValueEn: "Medium"},
		},
	})
	require.NoError(t, err)

	specifications.err = assert.AnError
	cart, err := service.View(c, storeId, owner)
	require.NoError(t, err, "an unreachable specification catalog must not fail the read")
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "Size", cart.Lines[0].Specifications[0].TitleEn)
	assert.Equal(t, "Medium", cart.Lines[0].Specifications[0].ValueEn)
}

func TestTotals(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	onSale := activeProduct(storeId, 100, 50)
	onSale.IsOnSale = true
	onSale.SalePercentage = decimal.NewFromInt(20)
	plain := activeProduct(storeId, 40, 50)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(onSale, plain), nil)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{ProductID: onSale.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = service.AddItem(c, storeId, owner, request.AddItem{ProductID: plain.ID, Quantity: 2})
	require.NoError(t, err)

	totals, err := service.Totals(c, storeId, owner)
	require.NoError(t, err)
	require.Len(t, totals.Lines, 2)

	// 100 discounted 20% plus 2 x 40
	assert.True(t, decimal.NewFromInt(160).Equal(totals.Subtotal), "subtotal=%s", totals.Subtotal)
	assert.True(t, decimal.NewFromInt(20).Equal(totals.TotalDiscount), "discount=%s", totals.TotalDiscount)
	assert.True(t, decimal.NewFromFloat(0.10).Equal(totals.TaxRate))
	assert.True(t, decimal.NewFromInt(16).Equal(totals.Tax), "tax=%s", totals.Tax)
	assert.True(t, decimal.NewFromInt(176).Equal(totals.Total), "total=%s", totals.Total)

	saleLine := totals.Lines[0]
	if saleLine.ProductID != onSale.ID {
		saleLine = totals.Lines[1]
	}
	assert.True(t, decimal.NewFromInt(80).Equal(saleLine.UnitPrice))
	assert.True(t, decimal.NewFromInt(100).Equal(saleLine.ListPrice))
	assert.True(t, decimal.NewFromInt(20).Equal(saleLine.ItemDiscount))
}

func TestTotalsReconcilesBeforeSumming(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())

	product := activeProduct(storeId, 100, 5)
	gone := activeProduct(storeId, 999, 5)
	store := newFakeCartStore()
	products := newFakeProductCatalog(product, gone)
	service := newTestService(store, products, nil)

	_, err := service.AddItem(c, storeId, owner, request.AddItem{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)
	_, err = service.AddItem(c, storeId, owner, request.AddItem{ProductID: gone.ID, Quantity: 1})
	require.NoError(t, err)

	delete(products.products, gone.ID)
	product.Stock = 2
	products.products[product.ID] = product

	totals, err := service.Totals(c, storeId, owner)
	require.NoError(t, err)
	require.Len(t, totals.Lines, 1)
	assert.Equal(t, int32(2), totals.Lines[0].Quantity, "clamped before summing")
	assert.Equal(t, 1, totals.RemovedCount)
	assert.True(t, decimal.NewFromInt(200).Equal(totals.Subtotal), "subtotal=%s", totals.Subtotal)
	assert.True(t, decimal.NewFromInt(220).Equal(totals.Total), "total=%s", totals.Total)
}

func TestTotalsOnEmptyCart(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	owner := model.UserOwner(uuid.New())
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(), nil)

	totals, err := service.Totals(c, storeId, owner)
	require.NoError(t, err)
	assert.Empty(t, totals.Lines)
	assert.True(t, decimal.Zero.Equal(totals.Subtotal))
	assert.True(t, decimal.Zero.Equal(totals.Tax))
	assert.True(t, decimal.Zero.Equal(totals.Total))
}
