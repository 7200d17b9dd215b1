package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/internal/common"
	"github.com/yudistira/storecart/internal/config"
	"github.com/yudistira/storecart/internal/log"
)

// GuestIdentity supplies the anonymous owner identity. When the request is
// not authenticated and carries no usable guest cookie a fresh guest id is
// issued as a signed cookie. Authenticated requests keep their cookie
// untouched so the guest cart can still be merged after login.
func GuestIdentity(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "middleware GuestIdentity").
				Logger()

			cookie, err := r.Cookie(common.GuestCookieName)
			if err == nil {
				guestId, err := common.VerifyGuestToken(cookie.Value, cfg.Application.GuestSecret)
				if err == nil {
					logger = logger.With().Str(log.KeyGuestID, guestId).Logger()
					logger.Debug().Msg("resolved guest identity from cookie")
					c = common.AttachGuestIDToContext(c, guestId)
					c = logger.WithContext(c)
					next.ServeHTTP(w, r.WithContext(c))
					return
				}
				logger.Warn().Err(err).Msg("discarding unverifiable guest cookie")
			} else if !errors.Is(err, http.ErrNoCookie) {
				logger.Warn().Err(err).Msg("failed reading guest cookie")
			}

			if _, ok := common.UserIDFromContext(c); ok {
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			guestId := uuid.NewString()
			signed, err := common.SignGuestToken(guestId, cfg.Application.GuestSecret)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				next.ServeHTTP(w, r.WithContext(c))
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     common.GuestCookieName,
				Value:    signed,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			logger = logger.With().Str(log.KeyGuestID, guestId).Logger()
			logger.Debug().Msg("issued new guest identity")
			c = common.AttachGuestIDToContext(c, guestId)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
