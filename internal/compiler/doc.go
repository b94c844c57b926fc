// Package compiler turns CUE crate files into crates ready for encoding.
//
// CompileCrate reads the types and procedures of a crate file, parsing the
// textual statements, terminators and repacks with package mirtext.
// Validate then reports structural problems (dangling block targets,
// undeclared locals, repacks outside the body) all at once, and
// AnalyzeRecursion reports the recursive procedure groups of the call graph.
package compiler
