package common

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/yudistira/storecart/internal/errors"
	"github.com/yudistira/storecart/internal/log"
)

// VerifyUserToken parses an access token issued by the user service and
// returns the user id carried in its subject.
func VerifyUserToken(c context.Context, token string, secretKey string) (uuid.UUID, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyUserToken").
		Logger()

	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithAudience(AudienceStorefront),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(IssuerUserService),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, inErrors.NewAuthorization("invalid access token", "رمز الدخول غير صالح")
	}
	if !jwtToken.Valid {
		return uuid.Nil, inErrors.NewAuthorization("invalid access token", "رمز الدخول غير صالح")
	}

	userId, err := uuid.Parse(claims.Subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", claims.Subject, err)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, inErrors.NewAuthorization("invalid access token", "رمز الدخول غير صالح")
	}
	return userId, nil
}

// SignGuestToken wraps a fresh guest id in a signed token for the guest
// cookie. The token has no expiry, the cart lifecycle bounds it instead.
func SignGuestToken(guestId string, secretKey string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  guestId,
		Issuer:   AppCartService,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing guest token with error=%w", err)
	}
	return signed, nil
}

// VerifyGuestToken returns the guest id carried in a signed guest cookie.
func VerifyGuestToken(token string, secretKey string) (string, error) {
	claims := jwt.RegisteredClaims{}
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(AppCartService),
	)
	if err != nil {
		return "", fmt.Errorf("failed parsing guest token with error=%w", err)
	}
	if !jwtToken.Valid || claims.Subject == "" {
		return "", inErrors.NewAuthorization("invalid guest token", "معرف الزائر غير صالح")
	}
	return claims.Subject, nil
}
