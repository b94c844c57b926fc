// Package mirtext parses the textual forms of types, places, statements,
// terminators and repack operations used in crate files.
//
// The accepted syntax is the debug syntax printed by package mir, so every
// statement or terminator printed by mir parses back to an equal value:
//
//	_0 = Add(copy _1, const 1_i32)
//	_3 = call const fn inc(move _2) -> bb2
//	switchInt(copy _4) -> [0: bb3, otherwise: bb5]
//	expand _1 exclusive
//	weaken _2.0 exclusive write
//
// Places are typed while they are parsed: a field projection records the
// field type taken from the enclosing local or struct, so a Context carries
// the local types of the body and the named struct types of the crate.
package mirtext
