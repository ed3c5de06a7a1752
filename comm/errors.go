package comm

import "errors"

// ErrConnectionRequired indicates NewNATS was called without a NATS connection.
var ErrConnectionRequired = errors.New("nats connection is required")
