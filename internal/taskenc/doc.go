// Package taskenc is the memoizing dependency cache shared by all encoders.
//
// Each encoder owns a Cache keyed by its task identity (a procedure, a
// type, an operator signature). A task's result comes in two parts:
//
//   - the reference output: a small, structural result such as a callable
//     signature, published by the task itself with EmitRef before it starts
//     encoding its body
//   - the full output: the complete result, published when the task returns
//
// RequireRef returns as soon as the reference exists, which lets a
// recursive or mutually recursive task obtain the signature of a callee
// whose body is still being encoded further up the same path. RequireFull
// waits for the full output.
//
// Every full computation runs at most once per key, including when several
// goroutines request the same key concurrently: the first request runs the
// computation and the others block until the output they asked for is
// published. A request that can never be satisfied (the key is in flight on
// the requesting path itself, or on another path that is transitively
// waiting on the requester) fails with a *CycleError carrying the task chain.
// Failures are cached like successes; nothing is retried.
//
// A Deps value is the logical path of one goroutine: the stack of tasks it
// is currently computing. Pass the same Deps down through nested requests
// and never share it between goroutines.
package taskenc
