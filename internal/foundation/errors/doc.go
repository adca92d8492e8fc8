// Package errors provides the classified error primitives used across sitegen.
//
// Package-level sentinel errors (routes.ErrRouteCollision, pages.ErrFileNotFound, ...)
// describe what went wrong; ClassifiedError wraps them with a category, a severity
// and structured context so the CLI can pick an exit code and a log level without
// string matching.
//
// Example usage:
//
//	err := errors.WrapError(routes.ErrRouteCollision, errors.CategoryRouting, "route key claimed twice").
//		WithContext("route_key", key).
//		WithContext("first", a).
//		WithContext("second", b).
//		Build()
//
// errors.Is(err, routes.ErrRouteCollision) still reports true through Unwrap.
package errors
