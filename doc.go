// Package blockpart partitions block-structured optimization problems across
// a group of workers and drives a decomposition engine through loading and
// solving them.
//
// A program builds its problem once as a master block with weighted
// sub-blocks, and every worker in the group runs the same code: the library
// decides which sub-blocks the local worker owns, converts them to the
// engine's sparse row-major wire format, agrees on global dimensions with the
// rest of the group, and transmits only the owned part. Solve methods are
// then dispatched to the engine in single-process or group form depending on
// the group size.
//
// # Quick Start
//
// Single-process usage with default settings:
//
//	root := model.NewBlock()
//	// ... add master columns/rows, attach weighted sub-blocks ...
//
//	cfg := blockpart.DefaultConfig()
//	ldr, err := blockpart.New(&cfg, engine, root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ldr.Close()
//
//	if err := ldr.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if err := ldr.Solve(ctx, blockpart.SolveDual); err != nil {
//	    log.Fatal(err)
//	}
//	res, err := ldr.Result(ctx)
//
// # Key Features
//
//   - Deterministic ownership: every worker computes the same round-robin
//     block assignment locally, with an optional coordinator reservation
//   - Two data layouts: uniform two-stage stochastic blocks or generic
//     block-angular structure with per-block shapes
//   - Coordination without a coordinator: dimension agreement and master
//     verification run as symmetric collectives over the injected
//     communicator
//   - Opaque engine boundary: any decomposition solver session satisfying
//     types.Engine can be driven
//
// # Architecture
//
// A load progresses through a validated state machine:
//
//	Unloaded → MasterLoaded → BlocksLoaded → Finalized
//
// Any failure moves the loader to Failed and frees partially transmitted
// data; Close is legal in every state. State changes can be observed through
// SubscribeState.
//
// # Process Groups
//
// Multi-worker sessions inject a communicator:
//
//	c, err := comm.NewNATS(ctx, natsConn, comm.Config{
//	    Group: "job-42",
//	    Rank:  rank,
//	    Size:  size,
//	})
//	ldr, err := blockpart.New(&cfg, engine, root, blockpart.WithCommunicator(c))
//
// All workers must build an identical model and issue the same Load/Solve
// sequence; the collectives inside Load act as group barriers.
//
// See the examples/ directory for complete working examples.
package blockpart
