package models

import "errors"

// ErrNotConfigured indicates a required upstream credential is absent. The HTTP boundary surfaces
// it as an explicit configuration failure instead of a generic upstream error.
var ErrNotConfigured = errors.New("api key not configured")
