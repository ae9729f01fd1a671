package market

import "errors"

// Domain errors for market price data

var (
	// ErrInvalidPrice is returned when a price is negative, NaN or infinite
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidItemID is returned when a price entry has an empty item id
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrTokenExpired is returned by price sources when the upstream rejects the session token
	ErrTokenExpired = errors.New("TOKEN_EXPIRED")

	// ErrTokenMissing is returned when a price source needs a token and none is configured
	ErrTokenMissing = errors.New("token not configured")
)

// ErrorTag maps a price refresh failure to the tag reported to callers
func ErrorTag(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrTokenExpired) {
		return "TOKEN_EXPIRED"
	}
	return err.Error()
}
