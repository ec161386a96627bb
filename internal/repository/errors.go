// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between failure scenarios without
// inspecting SQL errors.
package repository

import "errors"

// ErrEventNotFound is returned when a referenced event row does not
// exist.  The booking service translates this into the user-visible
// "Could not find event with id N" message.
var ErrEventNotFound = errors.New("event not found")

// ErrEmailExists is returned when registering a user with an email that
// is already taken.  Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
