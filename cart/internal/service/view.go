package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yudistira/storecart/cart/internal/common/otel"
	"github.com/yudistira/storecart/cart/internal/model"
	"github.com/yudistira/storecart/cart/pkg/response"
	inErrors "github.com/yudistira/storecart/internal/errors"
	"github.com/yudistira/storecart/internal/log"
)

// View projects the cart for display. Every line is re-checked against the
// live catalog, stale lines are pruned and persisted away, and the
// bilingual specification text is refreshed from one batched lookup.
func (s CartService) View(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService View")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService View").
		Str(log.KeyStoreID, storeId.String()).
		Str("owner", owner.Key()).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadCart(c, storeId, owner)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	cart, _, removed, err := s.reconcile(c, cart)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	if removed > 0 {
		logger.Info().Int(log.KeyRemovedCount, removed).Msg("pruned stale cart lines")
	}

	cart = s.enrichSpecifications(c, cart)

	return response.NewCart(cart, removed), nil
}

// ViewByGuest is the read-only recovery path for a guest cart addressed by
// its id rather than by the request cookie.
func (s CartService) ViewByGuest(
	c context.Context,
	storeId uuid.UUID,
	guestId string,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ViewByGuest")
	defer span.End()

	if guestId == "" {
		err := inErrors.NewValidation("guestId is required", "معرف الزائر مطلوب")
		inErrors.HandleError(err, span)
		return response.Cart{}, err
	}
	return s.View(c, storeId, model.GuestOwner(guestId))
}

// Totals aggregates price, discount and tax over the reconciled cart.
func (s CartService) Totals(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (response.Totals, error) {
	c, span := otel.Tracer.Start(c, "CartService Totals")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Totals").
		Str(log.KeyStoreID, storeId.String()).
		Str("owner", owner.Key()).
		Logger()

	c = logger.WithContext(c)
	cart, err := s.loadCart(c, storeId, owner)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Totals{}, err
	}

	cart, snapshots, removed, err := s.reconcile(c, cart)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Totals{}, err
	}

	totals := response.Totals{
		Lines:         make([]response.TotalsLine, 0, len(cart.Lines)),
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		RemovedCount:  removed,
	}
	for _, line := range cart.Lines {
		product := snapshots[line.ProductID]
		quantity := decimal.NewFromInt(int64(line.Quantity))
		currentPrice := model.SalePrice(product)
		itemTotal := currentPrice.Mul(quantity)
		itemDiscount := product.Price.Sub(currentPrice).Mul(quantity)

		totals.Lines = append(totals.Lines, response.TotalsLine{
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    currentPrice,
			ListPrice:    product.Price,
			ItemTotal:    itemTotal,
			ItemDiscount: itemDiscount,
		})
		totals.Subtotal = totals.Subtotal.Add(itemTotal)
		totals.TotalDiscount = totals.TotalDiscount.Add(itemDiscount)
	}

	totals.TaxRate = s.tax.Rate(c, storeId)
	totals.Tax = totals.Subtotal.Mul(totals.TaxRate)
	totals.Total = totals.Subtotal.Add(totals.Tax)

	logger.Info().
		Str("subtotal", totals.Subtotal.String()).
		Str("total", totals.Total.String()).
		Msg("calculated cart totals")
	return totals, nil
}

// loadCart is the cache-aside read of the aggregate. Cache failures fall
// through to the store, which stays authoritative.
func (s CartService) loadCart(
	c context.Context,
	storeId uuid.UUID,
	owner model.Owner,
) (model.Cart, error) {
	logger := zerolog.Ctx(c)

	if !owner.Valid() {
		return model.Cart{}, inErrors.NewAuthorization(
			"request carries neither a user nor a guest identity",
			"الطلب لا يحمل هوية مستخدم أو زائر",
		)
	}

	if s.cache != nil {
		cart, ok, err := s.cache.Find(c, storeId, owner)
		if err != nil {
			logger.Warn().Err(err).Msg("failed finding cart in cache")
		} else if ok {
			logger.Debug().Msg("found cart in cache")
			return cart, nil
		}
	}

	cart, err := s.GetOrCreateCart(c, storeId, owner)
	if err != nil {
		return model.Cart{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(c, cart); err != nil {
			logger.Warn().Err(err).Msg("failed inserting cart in cache")
		}
	}
	return cart, nil
}

// reconcile heals the cart against catalog drift: lines whose product is
// gone, deactivated, unresolvable or out of stock are dropped, and lines
// above the current ceiling are clamped down (merge defers its stock check
// to this pass). The corrected set is persisted best-effort -- a failed
// write never fails the read, the in-memory correction is returned
// regardless. Also returns the snapshots fetched along the way so totals
// does not query the catalog twice.
func (s CartService) reconcile(
	c context.Context,
	cart model.Cart,
) (model.Cart, map[uuid.UUID]model.ProductSnapshot, int, error) {
	logger := zerolog.Ctx(c)

	snapshots := make(map[uuid.UUID]model.ProductSnapshot, len(cart.Lines))
	kept := make([]model.CartLine, 0, len(cart.Lines))
	removed := 0
	changed := false

	for _, line := range cart.Lines {
		product, ok := snapshots[line.ProductID]
		if !ok {
			var err error
			product, err = s.products.Find(c, line.ProductID, cart.StoreID)
			if err != nil {
				if inErrors.CodeOf(err) == inErrors.CodeNotFound {
					logger.Info().
						Str(log.KeyProductID, line.ProductID.String()).
						Msg("pruning line of missing product")
					removed++
					changed = true
					continue
				}
				return model.Cart{}, nil, 0, fmt.Errorf(
					"failed finding product with error=%w",
					err,
				)
			}
			snapshots[line.ProductID] = product
		}

		if !product.IsActive {
			logger.Info().
				Str(log.KeyProductID, line.ProductID.String()).
				Msg("pruning line of inactive product")
			removed++
			changed = true
			continue
		}

		available, err := model.AvailableStock(product, line.Specifications)
		if err != nil {
			logger.Info().
				Str(log.KeyProductID, line.ProductID.String()).
				Msg("pruning line with unresolvable specifications")
			removed++
			changed = true
			continue
		}
		if available <= 0 {
			logger.Info().
				Str(log.KeyProductID, line.ProductID.String()).
				Msg("pruning line of depleted product")
			removed++
			changed = true
			continue
		}
		if line.Quantity > available {
			logger.Info().
				Str(log.KeyProductID, line.ProductID.String()).
				Int32(log.KeyQuantity, line.Quantity).
				Int32(log.KeyAvailable, available).
				Msg("clamping line to available stock")
			line.Quantity = available
			changed = true
		}
		kept = append(kept, line)
	}

	if !changed {
		return cart, snapshots, 0, nil
	}

	cart.Lines = kept
	updated, err := s.carts.Update(c, cart)
	if err != nil {
		if errors.Is(err, inErrors.ErrVersionConflict) {
			logger.Warn().Msg("skipping self-heal persist, cart changed concurrently")
		} else {
			logger.Error().Err(err).Msg("failed persisting self-healed cart")
		}
	} else {
		cart = updated
	}
	s.invalidateCache(c, cart.StoreID, cart.Owner)

	return cart, snapshots, removed, nil
}

// enrichSpecifications refreshes the cached bilingual text on every
// surviving line from one batched catalog lookup, keeping the cached copy
// where the canonical row is gone.
func (s CartService) enrichSpecifications(c context.Context, cart model.Cart) model.Cart {
	logger := zerolog.Ctx(c)

	ids := []string{}
	seen := map[string]bool{}
	for _, line := range cart.Lines {
		for _, spec := range line.Specifications {
			if spec.SpecificationID == "" || seen[spec.SpecificationID] {
				continue
			}
			seen[spec.SpecificationID] = true
			ids = append(ids, spec.SpecificationID)
		}
	}
	if len(ids) == 0 {
		return cart
	}

	catalog, err := s.specifications.FindBatch(c, ids)
	if err != nil {
		logger.Warn().Err(err).Msg("failed finding specifications, keeping cached text")
		return cart
	}

	for li := range cart.Lines {
		for si := range cart.Lines[li].Specifications {
			spec := &cart.Lines[li].Specifications[si]
			canonical, ok := catalog[spec.SpecificationID]
			if !ok {
				continue
			}
			if canonical.TitleAr != "" {
				spec.TitleAr = canonical.TitleAr
			}
			if canonical.TitleEn != "" {
				spec.TitleEn = canonical.TitleEn
			}
			for _, v := range canonical.Values {
				if v.ID == spec.ValueID {
					spec.ValueAr = v.ValueAr
					spec.ValueEn = v.ValueEn
					break
				}
			}
		}
	}
	return cart
}
