package log

const (
	KeyAppName       = "app"
	KeyRequestID     = "requestId"
	KeyProcess       = "process"
	KeyTag           = "tag"
	KeyConfig        = "config"
	KeyRequest       = "request"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyTraceID       = "traceId"
	KeySpanID        = "spanId"
	KeyDbURL         = "dbURL"
	KeyCacheKey      = "cacheKey"

	KeyStoreID       = "storeId"
	KeyUserID        = "userId"
	KeyGuestID       = "guestId"
	KeyCartID        = "cartId"
	KeyProductID     = "productId"
	KeyCart          = "cart"
	KeyCartLines     = "cartLines"
	KeyQuantity      = "quantity"
	KeyAvailable     = "availableStock"
	KeyRemovedCount  = "removedCount"
	KeyMergeResult   = "mergeResult"
	KeyAttempt       = "attempt"
	KeyVariant       = "variant"
	KeySpecification = "specificationId"
)
