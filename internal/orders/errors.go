package orders

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrValidation        = errors.New("validation failed")
	ErrStoreUnavailable  = errors.New("order store unavailable")
	ErrPublishFailed     = errors.New("event publish failed")
	ErrLookupUnavailable = errors.New("product lookup unavailable")
)
