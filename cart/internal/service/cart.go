package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/cart/internal/common/otel"
	"github.com/yudistira/storecart/cart/internal/model"
	"github.com/yudistira/storecart/cart/pkg/request"
	"github.com/yudistira/storecart/cart/pkg/response"
	inErrors "github.com/yudistira/storecart/internal/errors"
	"github.com/yudistira/storecart/internal/log"
)

// maxWriteAttempts bounds the reload-and-reapply retries after a lost
// optimistic-versioning race.
const maxWriteAttempts = 3

type CartService struct {
	carts          CartStore
	products       ProductCatalog
	specifications SpecificationCatalog
	cache          CartCache
	tax            TaxPolicy
}

func NewCartService(
	carts CartStore,
	products ProductCatalog,
	specifications SpecificationCatalog,
	cache CartCache,
	tax TaxPolicy,
) CartService {
	return CartService{
		carts:          carts,
		products:       products,
		specifications: specifications,
		cache:          cache,
		tax:            tax,
	}
}

// GetOrCreateCart loads the cart for an owner+store pair, creating an empty
// one on first touch. Idempotent.
func (s CartService) GetOrCreateCart(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (model.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetOrCreateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetOrCreateCart").
		Str(log.KeyStoreID, storeId.String()).
		Str("owner", owner.Key()).
		Logger()

	if !owner.Valid() {
		err := inErrors.NewAuthorization(
			"request carries neither a user nor a guest identity",
			"الطلب لا يحمل هوية مستخدم أو زائر",
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Cart{}, err
	}

	cart, err := s.carts.FindByOwner(c, storeId, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, inErrors.ErrCartNotFound) {
		err = fmt.Errorf("failed finding cart by owner with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating cart").Logger()
	logger.Info().Msg("creating cart")
	now := time.Now()
	cart, err = s.carts.Insert(c, model.Cart{
		ID:        uuid.New(),
		StoreID:   storeId,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, inErrors.ErrCartExists) {
		// a concurrent first-touch request won the insert race, its cart
		// is the one this owner owns now
		logger.Info().Msg("cart already created concurrently, reloading it")
		cart, err = s.carts.FindByOwner(c, storeId, owner)
		if err != nil {
			err = fmt.Errorf("failed finding concurrently created cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return model.Cart{}, err
		}
		return cart, nil
	}
	if err != nil {
		err = fmt.Errorf("failed inserting cart with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return model.Cart{}, err
	}
	logger.Info().Str(log.KeyCartID, cart.ID.String()).Msg("created cart")
	return cart, nil
}

// AddItem validates a new selection against the live catalog and either
// merges it into the existing line of the same configuration or appends a
// new line. All-or-nothing: an insufficient combined quantity rejects the
// whole add and leaves the existing line untouched.
func (s CartService) AddItem(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
	param request.AddItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyStoreID, storeId.String()).
		Str(log.KeyProductID, param.ProductID.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	if param.ProductID == uuid.Nil || param.Quantity < 1 {
		err := inErrors.NewValidation(
			"productId and a quantity of at least 1 are required",
			"معرف المنتج وكمية لا تقل عن 1 مطلوبان",
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.products.Find(c, param.ProductID, storeId)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if !product.IsActive {
		err = inErrors.NewValidation("product is not active", "المنتج غير متاح")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "normalizing specifications").Logger()
	specs := s.normalizeSpecifications(c, param.Specifications)

	logger = logger.With().Str(log.KeyProcess, "resolving available stock").Logger()
	available, err := model.AvailableStock(product, specs)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Int32(log.KeyAvailable, available).Logger()
	if available <= 0 {
		err = inErrors.NewStock("product is out of stock", "المنتج غير متوفر في المخزون")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	candidate := model.CartLine{
		ProductID:      param.ProductID,
		Variant:        param.Variant,
		Quantity:       param.Quantity,
		PriceAtAdd:     model.SalePrice(product),
		Specifications: specs,
		Colors:         param.Colors,
		AddedAt:        time.Now(),
	}

	logger = logger.With().Str(log.KeyProcess, "adding cart line").Logger()
	c = logger.WithContext(c)
	cart, err := s.withCart(c, storeId, owner, func(cart *model.Cart) error {
		if i := cart.FindConfiguration(candidate); i >= 0 {
			// summed in int64 so a quantity near MaxInt32 cannot wrap
			// negative and slip past the ceiling
			combined := int64(cart.Lines[i].Quantity) + int64(param.Quantity)
			if combined > int64(available) {
				return inErrors.NewStock(
					fmt.Sprintf(
						"requested quantity %d exceeds available stock %d",
						combined,
						available,
					),
					"الكمية المطلوبة تتجاوز المخزون المتاح",
				)
			}
			cart.Lines[i].Quantity = int32(combined)
			return nil
		}
		if param.Quantity > available {
			return inErrors.NewStock(
				fmt.Sprintf(
					"requested quantity %d exceeds available stock %d",
					param.Quantity,
					available,
				),
				"الكمية المطلوبة تتجاوز المخزون المتاح",
			)
		}
		cart.Lines = append(cart.Lines, candidate)
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(cart.Lines)).Msg("added cart line")

	return response.NewCart(cart, 0), nil
}

// UpdateItem rewrites the first line of the target product. A quantity of
// zero deletes the line; any positive quantity is re-validated against the
// stock ceiling of the (possibly new) specifications before the overwrite.
func (s CartService) UpdateItem(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
	productId uuid.UUID,
	param request.UpdateItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyStoreID, storeId.String()).
		Str(log.KeyProductID, productId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	if param.Quantity < 0 {
		err := inErrors.NewValidation("quantity must not be negative", "الكمية يجب ألا تكون سالبة")
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	var product model.ProductSnapshot
	if param.Quantity > 0 {
		logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
		logger.Info().Msg("finding product")
		var err error
		product, err = s.products.Find(c, productId, storeId)
		if err != nil {
			err = fmt.Errorf("failed finding product with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("found product")
	}

	var newSpecs []model.SelectedSpecification
	if param.Specifications != nil {
		newSpecs = s.normalizeSpecifications(c, param.Specifications)
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart line").Logger()
	c = logger.WithContext(c)
	cart, err := s.withCart(c, storeId, owner, func(cart *model.Cart) error {
		i := cart.FindLine(productId)
		if i < 0 {
			return inErrors.NewNotFound("cart line not found", "العنصر غير موجود في السلة")
		}

		if param.Quantity == 0 {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return nil
		}

		specs := cart.Lines[i].Specifications
		if param.Specifications != nil {
			specs = newSpecs
		}
		available, err := model.AvailableStock(product, specs)
		if err != nil {
			return err
		}
		if param.Quantity > available {
			return inErrors.NewStock(
				fmt.Sprintf(
					"requested quantity %d exceeds available stock %d",
					param.Quantity,
					available,
				),
				"الكمية المطلوبة تتجاوز المخزون المتاح",
			)
		}

		cart.Lines[i].Quantity = param.Quantity
		cart.Lines[i].Specifications = specs
		if param.Variant != nil {
			cart.Lines[i].Variant = *param.Variant
		}
		if param.Colors != nil {
			cart.Lines[i].Colors = param.Colors
		}
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(cart.Lines)).Msg("updated cart line")

	return response.NewCart(cart, 0), nil
}

// RemoveItem deletes the first line of the target product.
func (s CartService) RemoveItem(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
	productId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyStoreID, storeId.String()).
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyProcess, "removing cart line").
		Logger()

	logger.Info().Msg("removing cart line")
	c = logger.WithContext(c)
	cart, err := s.withCart(c, storeId, owner, func(cart *model.Cart) error {
		i := cart.FindLine(productId)
		if i < 0 {
			return inErrors.NewNotFound("cart line not found", "العنصر غير موجود في السلة")
		}
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Int(log.KeyCartLines, len(cart.Lines)).Msg("removed cart line")

	return response.NewCart(cart, 0), nil
}

// ClearCart empties the line list unconditionally.
func (s CartService) ClearCart(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyStoreID, storeId.String()).
		Str(log.KeyProcess, "clearing cart").
		Logger()

	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	cart, err := s.withCart(c, storeId, owner, func(cart *model.Cart) error {
		cart.Lines = nil
		return nil
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("cleared cart")

	return response.NewCart(cart, 0), nil
}

// withCart runs one mutation under optimistic versioning: load (or create)
// the aggregate, apply, write conditioned on the loaded version, and on a
// lost race reload and reapply up to maxWriteAttempts times. The cache
// entry is dropped after every successful write.
func (s CartService) withCart(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
	apply func(cart *model.Cart) error,
) (model.Cart, error) {
	logger := zerolog.Ctx(c)

	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		cart, err := s.GetOrCreateCart(c, storeId, owner)
		if err != nil {
			return model.Cart{}, err
		}
		if err := apply(&cart); err != nil {
			return model.Cart{}, err
		}
		updated, err := s.carts.Update(c, cart)
		if err != nil {
			if errors.Is(err, inErrors.ErrVersionConflict) {
				logger.Warn().
					Int(log.KeyAttempt, attempt).
					Msg("cart version conflict, reloading and reapplying")
				lastErr = err
				continue
			}
			return model.Cart{}, fmt.Errorf("failed updating cart with error=%w", err)
		}
		s.invalidateCache(c, storeId, owner)
		return updated, nil
	}
	return model.Cart{}, fmt.Errorf(
		"failed updating cart after %d attempts with error=%w",
		maxWriteAttempts,
		lastErr,
	)
}

func (s CartService) invalidateCache(c context.Context, storeId uuid.UUID, owner model.Owner) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(c, storeId, owner); err != nil {
		zerolog.Ctx(c).Warn().Err(err).Msg("failed invalidating cart cache")
	}
}

// normalizeSpecifications folds a raw client submission into canonical
// SelectedSpecification values: bilingual text comes from the specification
// catalog, falling back to whatever the caller sent when the canonical row
// or value is missing. Catalog failures degrade to caller text, they never
// fail the write.
func (s CartService) normalizeSpecifications(
	c context.Context,
	raw []request.SelectedSpecification,
) []model.SelectedSpecification {
	if len(raw) == 0 {
		return nil
	}
	logger := zerolog.Ctx(c)

	ids := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, r := range raw {
		if r.SpecificationID == "" || seen[r.SpecificationID] {
			continue
		}
		seen[r.SpecificationID] = true
		ids = append(ids, r.SpecificationID)
	}

	catalog := map[string]model.Specification{}
	if len(ids) > 0 {
		found, err := s.specifications.FindBatch(c, ids)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed finding specifications, keeping caller-supplied text")
		} else {
			catalog = found
		}
	}

	specs := make([]model.SelectedSpecification, 0, len(raw))
	for _, r := range raw {
		spec := model.SelectedSpecification{
			SpecificationID: r.SpecificationID,
			ValueID:         r.ValueID,
			Value:           r.Value,
			TitleAr:         r.TitleAr,
			TitleEn:         r.TitleEn,
			ValueAr:         r.ValueAr,
			ValueEn:         r.ValueEn,
		}
		if canonical, ok := catalog[r.SpecificationID]; ok {
			if canonical.TitleAr != "" {
				spec.TitleAr = canonical.TitleAr
			}
			if canonical.TitleEn != "" {
				spec.TitleEn = canonical.TitleEn
			}
			for _, v := range canonical.Values {
				if v.ID == r.ValueID || strings.EqualFold(v.ID, r.ValueID) {
					spec.ValueAr = v.ValueAr
					spec.ValueEn = v.ValueEn
					break
				}
			}
		}
		specs = append(specs, spec)
	}
	return specs
}
