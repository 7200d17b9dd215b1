package common

const (
	AppMain        = "storecart"
	AppCartService = "cart-service"
)

const (
	AudienceStorefront = "storefront"
	IssuerUserService  = "user-service"

	GuestCookieName = "guest_id"
)
