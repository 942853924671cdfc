// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// It lives under `internal` because callers should not rely on its exact
// behaviour or API; identifiers are opaque strings.
package idgen

import "github.com/google/uuid"

// NewFunc produces a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier as string.
func New() string { return NewFunc() }
