package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yudistira/storecart/cart/internal/model"
	inErrors "github.com/yudistira/storecart/internal/errors"
	inHttp "github.com/yudistira/storecart/internal/http"
	"github.com/yudistira/storecart/internal/log"
)

// ProductClient reads product snapshots from the product service over
// instrumented HTTP instead of the shared database. Used when the catalog
// lives in its own deployment.
type ProductClient struct {
	baseURL string
	client  *http.Client
}

func NewProductClient(baseURL string) *ProductClient {
	return &ProductClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  otelhttp.DefaultClient,
	}
}

func (r *ProductClient) Find(
	c context.Context,
	productId uuid.UUID,
	storeId uuid.UUID,
) (model.ProductSnapshot, error) {
	req, err := http.NewRequestWithContext(
		c,
		http.MethodGet,
		r.baseURL+"/"+productId.String(),
		nil,
	)
	if err != nil {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed creating product request with error=%w",
			err,
		)
	}
	req.Header.Add(inHttp.HeaderStoreID, storeId.String())
	req.Header.Add(inHttp.HeaderRequestID, log.RequestIDFromContext(c))

	resp, err := r.client.Do(req)
	if err != nil {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed getting productId=%s with error=%w",
			productId.String(),
			err,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.ProductSnapshot{}, inErrors.NewNotFound(
			"product not found in store",
			"المنتج غير موجود في المتجر",
		)
	}
	if resp.StatusCode != http.StatusOK {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed getting productId=%s with status=%d",
			productId.String(),
			resp.StatusCode,
		)
	}

	body := struct {
		Data struct {
			Product model.ProductSnapshot `json:"product"`
		} `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed decoding product response with error=%w",
			err,
		)
	}
	return body.Data.Product, nil
}
