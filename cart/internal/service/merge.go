package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/cart/internal/common/otel"
	"github.com/yudistira/storecart/cart/internal/model"
	"github.com/yudistira/storecart/cart/pkg/response"
	inErrors "github.com/yudistira/storecart/internal/errors"
	"github.com/yudistira/storecart/internal/log"
)

// MergeGuestCart folds a guest cart into the user cart once, on login.
// Matching configurations have their quantities summed without re-checking
// stock -- the next read or totals pass prunes and clamps. The guest cart
// is deleted in the same transaction as the user-cart write, so a repeated
// merge finds no guest cart and reports zero counts.
func (s CartService) MergeGuestCart(
	c context.Context,
	storeId uuid.UUID,
	userId uuid.UUID,
	guestId string,
) (response.MergeResult, error) {
	c, span := otel.Tracer.Start(c, "CartService MergeGuestCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService MergeGuestCart").
		Str(log.KeyStoreID, storeId.String()).
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyGuestID, guestId).
		Logger()

	if userId == uuid.Nil || guestId == "" {
		err := inErrors.NewValidation(
			"both userId and guestId are required to merge",
			"معرف المستخدم ومعرف الزائر مطلوبان للدمج",
		)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.MergeResult{}, err
	}

	guestOwner := model.GuestOwner(guestId)
	userOwner := model.UserOwner(userId)

	var lastErr error
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		logger := logger.With().Int(log.KeyAttempt, attempt).Logger()

		logger.Info().Str(log.KeyProcess, "finding guest cart").Msg("finding guest cart")
		guestCart, err := s.carts.FindByOwner(c, storeId, guestOwner)
		if errors.Is(err, inErrors.ErrCartNotFound) {
			logger.Info().Msg("guest cart absent, nothing to merge")
			return response.MergeResult{}, nil
		}
		if err != nil {
			err = fmt.Errorf("failed finding guest cart with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.MergeResult{}, err
		}
		if len(guestCart.Lines) == 0 {
			logger.Info().Msg("guest cart empty, nothing to merge")
			return response.MergeResult{}, nil
		}

		c = logger.WithContext(c)
		userCart, err := s.GetOrCreateCart(c, storeId, userOwner)
		if err != nil {
			return response.MergeResult{}, err
		}

		result := response.MergeResult{}
		for _, line := range guestCart.Lines {
			if line.Quantity < 1 {
				result.SkippedCount++
				continue
			}
			if i := userCart.FindConfiguration(line); i >= 0 {
				// summed in int64 and saturated so two large carts cannot
				// wrap the quantity negative; the next read clamps it to
				// the real stock ceiling anyway
				combined := int64(userCart.Lines[i].Quantity) + int64(line.Quantity)
				if combined > math.MaxInt32 {
					combined = math.MaxInt32
				}
				userCart.Lines[i].Quantity = int32(combined)
				result.UpdatedCount++
				continue
			}
			userCart.Lines = append(userCart.Lines, line)
			result.MergedCount++
		}

		logger.Info().
			Str(log.KeyProcess, "persisting merge").
			Any(log.KeyMergeResult, result).
			Msg("persisting merged cart and deleting guest cart")
		_, err = s.carts.UpdateAndDelete(c, userCart, guestCart.ID)
		if err != nil {
			if errors.Is(err, inErrors.ErrVersionConflict) {
				logger.Warn().Msg("cart version conflict during merge, retrying")
				lastErr = err
				continue
			}
			err = fmt.Errorf("failed persisting merge with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.MergeResult{}, err
		}

		s.invalidateCache(c, storeId, userOwner)
		s.invalidateCache(c, storeId, guestOwner)
		logger.Info().Any(log.KeyMergeResult, result).Msg("merged guest cart")
		return result, nil
	}

	err := fmt.Errorf(
		"failed merging guest cart after %d attempts with error=%w",
		maxWriteAttempts,
		lastErr,
	)
	inErrors.HandleError(err, span)
	logger.Error().Err(err).Msg(err.Error())
	return response.MergeResult{}, err
}
