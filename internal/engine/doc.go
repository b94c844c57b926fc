// Package engine drives the encoder over a whole crate.
//
// One run encodes a set of procedures on a pool of workers. The workers
// share a single encoder.Session, so every collaborator result (type
// descriptors, builtin operators, callee signatures) is computed exactly
// once per run, whichever worker asks first.
//
// Run flow:
//  1. Run ID assigned (UUIDv7), run recorded in the store
//  2. Procedures enqueued in the order given (declaration order by default)
//  3. Workers dequeue and encode, each on its own dependency path
//  4. Each result is stamped by the logical Clock as it finishes
//  5. After the workers drain, results are sorted by seq and written to the
//     store from the Run goroutine (single writer)
//
// Failing procedures are results, not run errors: an unsupported construct
// in one procedure leaves the others untouched. Cancellation stops dispatch
// and lets in-flight encodings finish.
//
// Results are ordered by Clock seq, NEVER by wall-clock timestamps.
package engine
