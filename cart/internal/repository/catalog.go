package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yudistira/storecart/cart/internal/model"
	inErrors "github.com/yudistira/storecart/internal/errors"
)

const findProduct = `
SELECT id, store_id, price, compare_at_price, is_on_sale, sale_percentage, stock, is_active
FROM products
WHERE id = $1 AND store_id = $2
`

const findProductSpecificationValues = `
SELECT specification_id, value_id, value, quantity
FROM product_specification_values
WHERE product_id = $1
ORDER BY specification_id, value_id
`

// ProductRepository reads live product snapshots for the cart engine. The
// row comes back regardless of the active flag so the service can tell a
// missing product from a deactivated one.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Find(
	c context.Context,
	productId uuid.UUID,
	storeId uuid.UUID,
) (model.ProductSnapshot, error) {
	var (
		snapshot       model.ProductSnapshot
		price          pgtype.Numeric
		compareAtPrice pgtype.Numeric
		salePercentage pgtype.Numeric
	)
	err := r.pool.QueryRow(c, findProduct, productId, storeId).Scan(
		&snapshot.ID,
		&snapshot.StoreID,
		&price,
		&compareAtPrice,
		&snapshot.IsOnSale,
		&salePercentage,
		&snapshot.Stock,
		&snapshot.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ProductSnapshot{}, inErrors.NewNotFound(
			"product not found in store",
			"المنتج غير موجود في المتجر",
		)
	}
	if err != nil {
		return model.ProductSnapshot{}, fmt.Errorf("failed finding product with error=%w", err)
	}
	snapshot.Price = numericToDecimal(price)
	snapshot.CompareAtPrice = numericToDecimal(compareAtPrice)
	snapshot.SalePercentage = numericToDecimal(salePercentage)

	rows, err := r.pool.Query(c, findProductSpecificationValues, productId)
	if err != nil {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed finding product specification values with error=%w",
			err,
		)
	}
	defer rows.Close()
	for rows.Next() {
		var v model.SpecificationValueStock
		var value *string
		err = rows.Scan(&v.SpecificationID, &v.ValueID, &value, &v.Quantity)
		if err != nil {
			return model.ProductSnapshot{}, fmt.Errorf(
				"failed scanning product specification value with error=%w",
				err,
			)
		}
		if value != nil {
			v.Value = *value
		}
		snapshot.SpecificationValues = append(snapshot.SpecificationValues, v)
	}
	if err = rows.Err(); err != nil {
		return model.ProductSnapshot{}, fmt.Errorf(
			"failed iterating product specification values with error=%w",
			err,
		)
	}
	return snapshot, nil
}

const findSpecifications = `
SELECT id, title_ar, title_en
FROM specifications
WHERE id = ANY($1)
`

const findSpecificationValues = `
SELECT specification_id, id, value_ar, value_en
FROM specification_values
WHERE specification_id = ANY($1)
ORDER BY specification_id, id
`

// SpecificationRepository resolves canonical specification rows in one
// batched round trip per table.
type SpecificationRepository struct {
	pool *pgxpool.Pool
}

func NewSpecificationRepository(pool *pgxpool.Pool) *SpecificationRepository {
	return &SpecificationRepository{pool: pool}
}

func (r *SpecificationRepository) FindBatch(
	c context.Context,
	ids []string,
) (map[string]model.Specification, error) {
	result := map[string]model.Specification{}
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.pool.Query(c, findSpecifications, ids)
	if err != nil {
		return nil, fmt.Errorf("failed finding specifications with error=%w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var spec model.Specification
		err = rows.Scan(&spec.ID, &spec.TitleAr, &spec.TitleEn)
		if err != nil {
			return nil, fmt.Errorf("failed scanning specification with error=%w", err)
		}
		result[spec.ID] = spec
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating specifications with error=%w", err)
	}

	valueRows, err := r.pool.Query(c, findSpecificationValues, ids)
	if err != nil {
		return nil, fmt.Errorf("failed finding specification values with error=%w", err)
	}
	defer valueRows.Close()
	for valueRows.Next() {
		var specId string
		var value model.SpecificationValue
		err = valueRows.Scan(&specId, &value.ID, &value.ValueAr, &value.ValueEn)
		if err != nil {
			return nil, fmt.Errorf("failed scanning specification value with error=%w", err)
		}
		spec, ok := result[specId]
		if !ok {
			continue
		}
		spec.Values = append(spec.Values, value)
		result[specId] = spec
	}
	if err = valueRows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating specification values with error=%w", err)
	}

	return result, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
