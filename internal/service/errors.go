package service

import "errors"

// Errors raised by the lifecycle manager.
//
// Only ErrConnection is returned to callers; the others are logged where
// they happen and can be matched with errors.Is on observer events.
var (
	// ErrConnection is returned by Start when the broker connect fails.
	ErrConnection = errors.New("service: broker connection failed")

	// ErrSubscription marks a failed subscribe after a successful connect.
	ErrSubscription = errors.New("service: subscription failed")

	// ErrPublish marks a result that could not be published.
	ErrPublish = errors.New("service: publish failed")
)
