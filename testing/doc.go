// Package testing provides test utilities for the blockpart library.
//
// This package offers helpers for setting up test environments: an embedded
// NATS server for exercising the JetStream communicator, a stub engine that
// records the loader's call sequence, and a logger that writes through
// testing.T. It follows Go's convention of providing testing utilities in a
// dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single in-process NATS server with JetStream
//   - StubEngine: Recording engine with configurable results
//   - NewTestLogger: Logger writing to the test log
//
// Example usage:
//
//	import (
//	    "testing"
//	    bptest "github.com/stochkit/blockpart/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := bptest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
