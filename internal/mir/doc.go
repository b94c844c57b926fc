// Package mir models the typed control-flow graph of a single source
// procedure: basic blocks of statements ending in one terminator, built over
// places (a base local plus a projection path).
//
// The model is the input contract of the procedure encoder. Every sum type
// (operands, rvalues, statements, terminators) is a sealed interface so that
// consumers dispatch with an explicit type switch and an explicit default
// arm. String methods render the debug form used in encoded comments, which
// is also the textual syntax accepted by package mirtext.
package mir
