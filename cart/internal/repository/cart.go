package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/cart/internal/model"
	inErrors "github.com/yudistira/storecart/internal/errors"
	"github.com/yudistira/storecart/internal/log"
)

const findCartByUser = `
SELECT id, store_id, user_id, guest_id, lines, version, created_at, updated_at
FROM carts
WHERE store_id = $1 AND user_id = $2
`

const findCartByGuest = `
SELECT id, store_id, user_id, guest_id, lines, version, created_at, updated_at
FROM carts
WHERE store_id = $1 AND guest_id = $2
`

const insertCart = `
INSERT INTO carts (id, store_id, user_id, guest_id, lines, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 1, $6, $6)
RETURNING version, created_at, updated_at
`

const updateCart = `
UPDATE carts
SET lines = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3
RETURNING version, updated_at
`

const deleteCart = `
DELETE FROM carts WHERE id = $1
`

// uniqueViolation is the postgres sqlstate raised by the partial unique
// owner indexes when two first-touch inserts race.
const uniqueViolation = "23505"

// CartRepository is the pgx-backed CartStore. Lines live in a jsonb column;
// the version column backs the optimistic concurrency check, every write is
// conditioned on the version the caller loaded.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) FindByOwner(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (model.Cart, error) {
	var row pgx.Row
	if owner.IsGuest() {
		row = r.pool.QueryRow(c, findCartByGuest, storeId, owner.GuestID)
	} else {
		row = r.pool.QueryRow(c, findCartByUser, storeId, owner.UserID)
	}
	cart, err := scanCart(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Cart{}, inErrors.ErrCartNotFound
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed finding cart with error=%w", err)
	}
	return cart, nil
}

func (r *CartRepository) Insert(c context.Context, cart model.Cart) (model.Cart, error) {
	lines, err := marshalLines(cart.Lines)
	if err != nil {
		return model.Cart{}, err
	}
	var userId *uuid.UUID
	if !cart.Owner.IsGuest() {
		userId = &cart.Owner.UserID
	}
	var guestId *string
	if cart.Owner.IsGuest() {
		guestId = &cart.Owner.GuestID
	}
	err = r.pool.QueryRow(
		c,
		insertCart,
		cart.ID,
		cart.StoreID,
		userId,
		guestId,
		lines,
		time.Now(),
	).Scan(&cart.Version, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Cart{}, inErrors.ErrCartExists
		}
		return model.Cart{}, fmt.Errorf("failed inserting cart with error=%w", err)
	}
	return cart, nil
}

func (r *CartRepository) Update(c context.Context, cart model.Cart) (model.Cart, error) {
	lines, err := marshalLines(cart.Lines)
	if err != nil {
		return model.Cart{}, err
	}
	err = r.pool.QueryRow(c, updateCart, cart.ID, lines, cart.Version).
		Scan(&cart.Version, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Cart{}, inErrors.ErrVersionConflict
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed updating cart with error=%w", err)
	}
	return cart, nil
}

func (r *CartRepository) Delete(c context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(c, deleteCart, id)
	if err != nil {
		return fmt.Errorf("failed deleting cart with error=%w", err)
	}
	return nil
}

// UpdateAndDelete writes the updated cart and removes the other cart in one
// transaction, so the guest cart never outlives a persisted merge.
func (r *CartRepository) UpdateAndDelete(
	c context.Context,
	update model.Cart,
	remove uuid.UUID,
) (model.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartRepository UpdateAndDelete").
		Logger()

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed initializing transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msg("failed rolling back transaction")
		}
	}()

	lines, err := marshalLines(update.Lines)
	if err != nil {
		return model.Cart{}, err
	}
	err = tx.QueryRow(c, updateCart, update.ID, lines, update.Version).
		Scan(&update.Version, &update.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Cart{}, inErrors.ErrVersionConflict
	}
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed updating cart with error=%w", err)
	}

	_, err = tx.Exec(c, deleteCart, remove)
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed deleting cart with error=%w", err)
	}

	err = tx.Commit(c)
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return update, nil
}

func scanCart(row pgx.Row) (model.Cart, error) {
	var (
		cart    model.Cart
		userId  *uuid.UUID
		guestId *string
		lines   []byte
	)
	err := row.Scan(
		&cart.ID,
		&cart.StoreID,
		&userId,
		&guestId,
		&lines,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return model.Cart{}, err
	}
	if userId != nil {
		cart.Owner.UserID = *userId
	}
	if guestId != nil {
		cart.Owner.GuestID = *guestId
	}
	err = json.Unmarshal(lines, &cart.Lines)
	if err != nil {
		return model.Cart{}, fmt.Errorf("failed unmarshaling cart lines with error=%w", err)
	}
	return cart, nil
}

func marshalLines(lines []model.CartLine) ([]byte, error) {
	if lines == nil {
		lines = []model.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed marshaling cart lines with error=%w", err)
	}
	return b, nil
}
