package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// レジ操作のエラー（handlerでステータスに変換）
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrUnknownVariant     = errors.New("unknown variant")
	ErrOutOfStock         = errors.New("out of stock")
	ErrAlreadyRefunded    = errors.New("already refunded")
)

// PaymentError is a declined charge or a gateway failure. It matches
// ErrPaymentFailed under errors.Is.
type PaymentError struct {
	Reason string
	Err    error
}

func (e *PaymentError) Error() string {
	return "payment failed: " + e.Reason
}

func (e *PaymentError) Is(target error) bool {
	return target == ErrPaymentFailed
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
