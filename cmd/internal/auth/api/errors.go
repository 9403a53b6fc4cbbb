package authapi

import "errors"

// ErrConfig is returned for invalid configuration.
var ErrConfig = errors.New("invalid auth api config")
