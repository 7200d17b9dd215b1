package errors

import (
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeStock                 = "STOCK_ERROR"
	CodeSpecificationMismatch = "SPECIFICATION_MISMATCH"
	CodeAuthorization         = "AUTHORIZATION_ERROR"
	CodeConflict              = "VERSION_CONFLICT"
)

// Error carries the taxonomy code, the http status it recovers to at the
// operation boundary and a bilingual message pair.
type Error struct {
	Code       string `json:"code"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	MessageAr  string `json:"messageAr"`
	Err        error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(message, messageAr string) *Error {
	return &Error{
		Code:       CodeValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		MessageAr:  messageAr,
	}
}

func NewNotFound(message, messageAr string) *Error {
	return &Error{
		Code:       CodeNotFound,
		StatusCode: http.StatusNotFound,
		Message:    message,
		MessageAr:  messageAr,
	}
}

func NewStock(message, messageAr string) *Error {
	return &Error{
		Code:       CodeStock,
		StatusCode: http.StatusConflict,
		Message:    message,
		MessageAr:  messageAr,
	}
}

func NewSpecificationMismatch(specificationId, valueId string) *Error {
	return &Error{
		Code:       CodeSpecificationMismatch,
		StatusCode: http.StatusBadRequest,
		Message: fmt.Sprintf(
			"selected option valueId=%s is not available for specificationId=%s",
			valueId,
			specificationId,
		),
		MessageAr: "الخيار المحدد غير متوفر لهذا المنتج",
	}
}

func NewAuthorization(message, messageAr string) *Error {
	return &Error{
		Code:       CodeAuthorization,
		StatusCode: http.StatusUnauthorized,
		Message:    message,
		MessageAr:  messageAr,
	}
}

// ErrVersionConflict is returned by cart stores when a conditional write
// loses the race against a concurrent mutation of the same cart.
var ErrVersionConflict = &Error{
	Code:       CodeConflict,
	StatusCode: http.StatusConflict,
	Message:    "cart was modified concurrently",
	MessageAr:  "تم تعديل السلة من طلب آخر",
}

var ErrCartNotFound = NewNotFound("cart not found", "السلة غير موجودة")

// ErrCartExists is returned by cart stores when an insert hits the unique
// owner index, meaning a concurrent first-touch request already created
// the cart.
var ErrCartExists = &Error{
	Code:       CodeConflict,
	StatusCode: http.StatusConflict,
	Message:    "cart already exists for this owner",
	MessageAr:  "توجد سلة بالفعل لهذا المالك",
}

// CodeOf walks the chain for the outermost taxonomy code, empty when none.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusCode maps an error to the http status of its taxonomy entry,
// defaulting to 500 for errors outside the taxonomy.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// Messages returns the bilingual message pair for the response envelope.
func Messages(err error) (message string, messageAr string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, e.MessageAr
	}
	return "internal server error", "خطأ داخلي في الخادم"
}

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
