package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/internal/common"
	"github.com/yudistira/storecart/internal/config"
	inHttp "github.com/yudistira/storecart/internal/http"
	"github.com/yudistira/storecart/internal/log"
)

// Auth attaches the authenticated user id to the context when a bearer
// token is present. Requests without one fall through to the guest
// identity middleware, an invalid token is rejected outright.
func Auth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware Auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			token = strings.TrimPrefix(token, "bearer ")
			userId, err := common.VerifyUserToken(c, token, cfg.Application.SecretKey)
			if err != nil {
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteErrorResponse(c, w, err)
				return
			}

			logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()
			logger.Debug().Msg("authenticated user")
			c = common.AttachUserIDToContext(c, userId)
			c = logger.WithContext(c)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
