package service

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudistira/storecart/cart/internal/model"
	"github.com/yudistira/storecart/cart/pkg/request"
	inErrors "github.com/yudistira/storecart/internal/errors"
)

func seedGuestCart(
	t *testing.T,
	store *fakeCartStore,
	storeId uuid.UUID,
	guestId string,
	lines []model.CartLine,
) model.Cart {
	t.Helper()
	cart, err := store.Insert(context.Background(), model.Cart{
		ID:      uuid.New(),
		StoreID: storeId,
		Owner:   model.GuestOwner(guestId),
		Lines:   lines,
	})
	require.NoError(t, err)
	return cart
}

func TestMergeGuestCart(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	userId := uuid.New()
	guestId := uuid.NewString()

	p1 := activeProduct(storeId, 100, 50)
	p3 := activeProduct(storeId, 30, 50)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(p1, p3), nil)

	_, err := service.AddItem(c, storeId, model.UserOwner(userId), request.AddItem{
		ProductID: p1.ID,
		Quantity:  1,
	})
	require.NoError(t, err)

	guestCart := seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: p3.ID, Quantity: 1},
	})

	result, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount, "p1 exists in both carts, quantities are summed")
	assert.Equal(t, 1, result.MergedCount, "p3 only exists in the guest cart")
	assert.Equal(t, 0, result.SkippedCount)

	userCart, err := store.FindByOwner(c, storeId, model.UserOwner(userId))
	require.NoError(t, err)
	require.Len(t, userCart.Lines, 2)
	assert.Equal(t, int32(3), userCart.Lines[userCart.FindLine(p1.ID)].Quantity)
	assert.Equal(t, int32(1), userCart.Lines[userCart.FindLine(p3.ID)].Quantity)

	_, exists := store.carts[guestCart.ID]
	assert.False(t, exists, "the guest cart must not survive the merge")

	// second merge finds no guest cart and must change nothing
	again, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 0, again.MergedCount)
	assert.Equal(t, 0, again.UpdatedCount)
	assert.Equal(t, 0, again.SkippedCount)

	userCart, err = store.FindByOwner(c, storeId, model.UserOwner(userId))
	require.NoError(t, err)
	assert.Equal(t, int32(3), userCart.Lines[userCart.FindLine(p1.ID)].Quantity)
}

func TestMergeGuestCartSkipsMalformedLines(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	userId := uuid.New()
	guestId := uuid.NewString()

	p1 := activeProduct(storeId, 100, 50)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(p1), nil)

	seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: p1.ID, Quantity: 2},
		{ProductID: uuid.New(), Quantity: 0},
	})

	result, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MergedCount)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestMergeGuestCartDoesNotRecheckStock(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	userId := uuid.New()
	guestId := uuid.NewString()

	p1 := activeProduct(storeId, 100, 3)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(p1), nil)

	_, err := service.AddItem(c, storeId, model.UserOwner(userId), request.AddItem{
		ProductID: p1.ID,
		Quantity:  2,
	})
	require.NoError(t, err)
	seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: p1.ID, Quantity: 2},
	})

	// the summed quantity of 4 exceeds stock 3: the merge still succeeds,
	// the next read pass clamps it down
	result, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	userCart, err := store.FindByOwner(c, storeId, model.UserOwner(userId))
	require.NoError(t, err)
	assert.Equal(t, int32(4), userCart.Lines[0].Quantity)
}

func TestMergeGuestCartSaturatesSummedQuantity(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	userId := uuid.New()
	guestId := uuid.NewString()

	p1 := activeProduct(storeId, 100, 5)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(p1), nil)

	_, err := store.Insert(c, model.Cart{
		ID:      uuid.New(),
		StoreID: storeId,
		Owner:   model.UserOwner(userId),
		Lines:   []model.CartLine{{ProductID: p1.ID, Quantity: math.MaxInt32 - 1}},
	})
	require.NoError(t, err)
	seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: p1.ID, Quantity: 5},
	})

	result, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedCount)

	// the sum must saturate at MaxInt32 instead of wrapping negative
	userCart, err := store.FindByOwner(c, storeId, model.UserOwner(userId))
	require.NoError(t, err)
	require.Len(t, userCart.Lines, 1)
	assert.Equal(t, int32(math.MaxInt32), userCart.Lines[0].Quantity)
}

func TestMergeGuestCartValidation(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(), nil)

	_, err := service.MergeGuestCart(c, storeId, uuid.Nil, "guest-1")
	require.Error(t, err)
	assert.Equal(t, inErrors.CodeValidation, inErrors.CodeOf(err))

	_, err = service.MergeGuestCart(c, storeId, uuid.New(), "")
	require.Error(t, err)
	assert.Equal(t, inErrors.CodeValidation, inErrors.CodeOf(err))

	// empty guest cart merges to nothing and is left in place
	guestId := uuid.NewString()
	guestCart := seedGuestCart(t, store, storeId, guestId, nil)
	result, err := service.MergeGuestCart(c, storeId, uuid.New(), guestId)
	require.NoError(t, err)
	assert.Equal(t, 0, result.MergedCount+result.UpdatedCount+result.SkippedCount)
	_, exists := store.carts[guestCart.ID]
	assert.True(t, exists)
}

func TestMergeGuestCartRetriesOnVersionConflict(t *testing.T) {
	c := context.Background()
	storeId := uuid.New()
	userId := uuid.New()
	guestId := uuid.NewString()

	p1 := activeProduct(storeId, 100, 50)
	store := newFakeCartStore()
	service := newTestService(store, newFakeProductCatalog(p1), nil)

	seedGuestCart(t, store, storeId, guestId, []model.CartLine{
		{ProductID: p1.ID, Quantity: 1},
	})

	store.conflicts = 1
	result, err := service.MergeGuestCart(c, storeId, userId, guestId)
	require.NoError(t, err)
	assert.Equal(t, 1, result.MergedCount)
}
