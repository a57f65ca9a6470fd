package checkout

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUserNotFound     = errors.New("user not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrVoucherInvalid   = errors.New("voucher is invalid")
	ErrInvalidForm      = errors.New("invalid checkout form")
)
