package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yudistira/storecart/internal/common"
	inErrors "github.com/yudistira/storecart/internal/errors"
	inHttp "github.com/yudistira/storecart/internal/http"
	"github.com/yudistira/storecart/internal/log"
)

// ResolveStore scopes the request to a tenant. Every cart operation is
// meaningless without a store, so a missing or malformed store id is
// rejected before any handler runs.
func ResolveStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := r.Context()
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "middleware ResolveStore").
			Logger()

		storeId, err := uuid.Parse(r.Header.Get(inHttp.HeaderStoreID))
		if err != nil || storeId == uuid.Nil {
			err = inErrors.NewValidation("missing or invalid store id", "معرف المتجر مفقود أو غير صالح")
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteErrorResponse(c, w, err)
			return
		}

		logger = logger.With().Str(log.KeyStoreID, storeId.String()).Logger()
		logger.Debug().Msg("resolved store")
		c = common.AttachStoreIDToContext(c, storeId)
		c = logger.WithContext(c)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
