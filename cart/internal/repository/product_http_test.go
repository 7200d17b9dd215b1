package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yudistira/storecart/cart/internal/model"
	inErrors "github.com/yudistira/storecart/internal/errors"
	inHttp "github.com/yudistira/storecart/internal/http"
)

func TestProductClientFind(t *testing.T) {
	storeId := uuid.New()
	product := model.ProductSnapshot{
		ID:             uuid.New(),
		StoreID:        storeId,
		Price:          decimal.NewFromInt(100),
		IsOnSale:       true,
		SalePercentage: decimal.NewFromInt(20),
		Stock:          5,
		IsActive:       true,
		SpecificationValues: []model.SpecificationValueStock{
			{SpecificationID: "size", ValueID: "size-m", Quantity: 3},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, storeId.String(), r.Header.Get(inHttp.HeaderStoreID))
		if r.URL.Path != "/"+product.ID.String() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":     "success",
			"statusCode": http.StatusOK,
			"message":    "product found",
			"data": map[string]interface{}{
				"product": product,
			},
		})
	}))
	defer server.Close()

	client := NewProductClient(server.URL)

	found, err := client.Find(context.Background(), product.ID, storeId)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)
	assert.True(t, product.Price.Equal(found.Price))
	assert.True(t, product.SalePercentage.Equal(found.SalePercentage))
	assert.Equal(t, product.Stock, found.Stock)
	assert.True(t, found.IsActive)
	require.Len(t, found.SpecificationValues, 1)
	assert.Equal(t, int32(3), found.SpecificationValues[0].Quantity)

	_, err = client.Find(context.Background(), uuid.New(), storeId)
	require.Error(t, err)
	assert.Equal(t, inErrors.CodeNotFound, inErrors.CodeOf(err))
}

func TestProductClientFindServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewProductClient(server.URL)
	_, err := client.Find(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Empty(t, inErrors.CodeOf(err), "an upstream failure is not a taxonomy error")
}
