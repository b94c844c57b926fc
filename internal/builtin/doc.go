// Package builtin resolves source operators to IVL functions over
// snapshots, e.g. Add on two i32 snapshots to mir_binop_Add_Int_i32_Int_i32.
//
// Resolution distinguishes two failure conditions. ErrUnsupportedOperator
// means the input is well-typed but has no encoding (floats, pointer
// offsets, overflow checks of division). ErrMalformedOperator means the
// operand and result types cannot belong to a well-typed program.
package builtin
