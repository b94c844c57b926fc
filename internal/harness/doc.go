// Package harness runs encoder conformance scenarios.
//
// A scenario names a crate, encodes it through the engine exactly as the CLI
// would, and checks the outcome of every procedure together with assertions
// over the printed IVL.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: add
//	description: "Integer addition encodes to a builtin call"
//	crate: ../crates/arith.cue      # relative to the scenario file
//	procedures: [add]               # optional, default every procedure
//	options:
//	  comments: true                # default true
//	  reach_blocks: false
//	  total_rvalues: false
//	  workers: 1
//	expect:
//	  - procedure: add
//	    outcome: encoded
//	  - procedure: deinit
//	    outcome: failed
//	    class: unsupported-construct
//	    code: E201
//	    location: bb0[0]
//	assertions:
//	  - type: method_contains
//	    procedure: add
//	    text: "mir_binop_Add"
//	golden: true
//
// A crate may instead be given inline with source: (CUE text).
//
// # Assertion Types
//
//   - method_contains: the printed method of procedure contains text
//   - method_lacks: the printed method of procedure does not contain text
//   - program_contains: the printed program contains text
//   - validation_code: structural validation reported code
//   - recursive: a recursion group with the given message was found
//   - stored_methods: the store holds count methods for the run
//
// Validation findings fail the scenario unless a validation_code assertion
// names them.
//
// # Deterministic Testing
//
// Every scenario runs with a fixed run ID, a clock that stamps procedures in
// scenario order and a fresh in-memory SQLite store. With workers: 1 (the
// default) the printed methods come out in a fixed order, which makes them
// usable as golden files:
//
//	go test ./internal/harness -update
package harness
