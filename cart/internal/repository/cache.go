package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/yudistira/storecart/cart/internal/model"
)

const keyCart = "carts:%s:%s"

const cartCacheTTL = time.Hour * 1

// CartCache is the redis cache-aside layer over the cart aggregate, keyed
// by store and owner. Entries are dropped on every mutation.
type CartCache struct {
	client *redis.Client
}

func NewCartCache(client *redis.Client) *CartCache {
	return &CartCache{client: client}
}

func cacheKey(storeId uuid.UUID, owner model.Owner) string {
	return fmt.Sprintf(keyCart, storeId.String(), owner.Key())
}

func (r *CartCache) Find(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (model.Cart, bool, error) {
	jsonString, err := r.client.Get(c, cacheKey(storeId, owner)).Result()
	if errors.Is(err, redis.Nil) {
		return model.Cart{}, false, nil
	}
	if err != nil {
		return model.Cart{}, false, fmt.Errorf("failed finding cart in cache with error=%w", err)
	}

	cart := model.Cart{}
	err = json.Unmarshal([]byte(jsonString), &cart)
	if err != nil {
		return model.Cart{}, false, fmt.Errorf("failed unmarshaling cache with error=%w", err)
	}
	return cart, true, nil
}

func (r *CartCache) Set(c context.Context, cart model.Cart) error {
	body, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	err = r.client.Set(c, cacheKey(cart.StoreID, cart.Owner), body, cartCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed inserting cart in cache with error=%w", err)
	}
	return nil
}

func (r *CartCache) Delete(c context.Context, storeId uuid.UUID, owner model.Owner) error {
	err := r.client.Del(c, cacheKey(storeId, owner)).Err()
	if err != nil {
		return fmt.Errorf("failed deleting cart from cache with error=%w", err)
	}
	return nil
}
