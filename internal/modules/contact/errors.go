package contact

import "errors"

var (
	// ErrDeliveryFailed means neither the contacts table nor the relay took
	// the message.
	ErrDeliveryFailed   = errors.New("contact delivery failed")
	ErrPropertyNotFound = errors.New("property not found")
)
