package documents

import "errors"

var (
	// ErrNoOwner is returned when neither a user nor a device is known.
	ErrNoOwner = errors.New("documents: owner identity required")
	// ErrSignInRequired is returned for operations only signed-in owners
	// may perform, such as sharing or exporting.
	ErrSignInRequired = errors.New("documents: sign-in required")
)
