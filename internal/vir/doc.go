// Package vir is the intermediate verification language (IVL) produced by
// the encoders: Viper-style expressions, statements, control-flow blocks,
// methods and the declarations they depend on.
//
// Nodes are allocated from a Ctx arena and referenced through stable
// pointers for the lifetime of one encoding session. A Ctx may be shared by
// concurrently running encoders; allocation is serialized internally and
// nodes are immutable once built.
//
// Identifiers (FunctionIdent, PredicateIdent, MethodIdent) carry their
// parameter types, and Apply refuses to build an application with the wrong
// number of arguments.
package vir
