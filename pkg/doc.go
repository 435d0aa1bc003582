// Package pkg provides the core libraries for Cyclesearch phase cycle design.
//
// # Overview
//
// Cyclesearch finds the shortest phase cycles that keep the wanted coherence
// transfer pathways of a pulse sequence and cancel all others. The pkg
// directory is organized into four main areas:
//
//  1. [core] - Search engine (counters, candidate streaming, oracles, search)
//  2. [ctp], [count], [phases] - Descriptors, closed-form counts, phase tables
//  3. [pipeline] - Orchestration (validate → cache → search → archive)
//  4. [cache], [archive], [server], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through Cyclesearch:
//
//	Pathway descriptor (JSON/TOML)
//	         ↓
//	    [ctp] package (validate, resolve last-zero)
//	         ↓
//	    [core/search] package (enumerate, stream and check candidates)
//	         ↓
//	    [phases] package (phase table per scan and block)
//	         ↓
//	    Table, JSON or archive record
//
// # Quick Start
//
// Search for a cogwheel cycle:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cyclesearch/pkg/core/search"
//	    "github.com/matzehuels/cyclesearch/pkg/ctp"
//	    "github.com/matzehuels/cyclesearch/pkg/phases"
//	)
//
//	// 1. Describe the pathways: row 0 is wanted, row 1 is suppressed
//	d, _ := ctp.New([][]int{{1, 1}, {1, -1}}, 1)
//
//	// 2. Search up to 16 scans
//	res, _ := search.Cogwheel(context.Background(), d, search.DefaultOptions(search.FamilyCogwheel, 16))
//
//	// 3. Build the phase table of the first cycle in degrees
//	c := res.Cycles[0]
//	table, _ := phases.Cogwheel(c.Windings, c.NScans, phases.Degrees)
//
// # Main Packages
//
// ## Search Engine
//
// [core/counter] - Lexicographic enumerators for every candidate space:
// winding tuples, factorizations, permutations, subsets and combinations.
// A counter keeps no iteration state; it advances the tuple it is given.
//
// [core/stream] - Buffered candidate streaming. [stream.ParallelFill] splits
// one fill across workers and merges the parts in counter order.
//
// [core/oracle] - Pathway separability checks for a cycle. Tables are
// precomputed per descriptor; the nested oracle uses prefix sums.
//
// [core/search] - The three search families: cogwheel, nested and nested
// cogwheel. Scan counts are tried in increasing order and the first count
// with an accepted cycle wins.
//
// ## Domain Utilities
//
// [ctp] - Coherence transfer pathway descriptors with JSON and TOML codecs.
//
// [count] - Closed-form sizes of the search spaces and the cogwheel
// scan-count prediction.
//
// [phases] - Phase tables, receiver phases and unit conversion.
//
// ## Infrastructure
//
// [pipeline] - Search pipeline used by both the CLI and the HTTP server.
// Ensures consistent validation, caching and archiving across entry points.
//
// [cache] - Result caches with a shared key scheme: file cache for the CLI,
// Redis for the server, and a null cache when caching is off.
//
// [archive] - Run history in a JSONL file or MongoDB.
//
// [server] - HTTP API over the pipeline.
//
// [observability] - Hooks for search, cache and server events, with a
// Prometheus implementation.
//
// [errors] - Coded errors shared by all packages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/search/...        # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core
// [core/counter]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core/counter
// [core/stream]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core/stream
// [stream.ParallelFill]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core/stream#ParallelFill
// [core/oracle]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core/oracle
// [core/search]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/core/search
// [ctp]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/ctp
// [count]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/count
// [phases]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/phases
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/cache
// [archive]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/archive
// [server]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/cyclesearch/pkg/errors
package pkg
