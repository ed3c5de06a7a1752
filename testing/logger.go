package testing

import (
	"testing"

	"github.com/stochkit/blockpart/internal/logging"
	"github.com/stochkit/blockpart/types"
)

// NewTestLogger creates a logger that writes to the testing.T log.
// Useful for seeing loader and communicator output during test runs.
func NewTestLogger(t *testing.T) types.Logger {
	return logging.NewTest(t)
}
