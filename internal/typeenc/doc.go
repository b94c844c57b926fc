// Package typeenc encodes source types into IVL: for every type a snapshot
// domain, a points-to predicate, a snapshot function reading a reference,
// and an assignment method. Primitive types also get conversions between
// the snapshot and the Int/Bool primitive; tuples and structs get a
// constructor from field snapshots and one projection function per field.
//
// Naming (for a type named N, e.g. Int_i32, Bool, Tuple2_Bool_Uint_u8):
//
//	s_N                  snapshot domain
//	p_N(self_p: Ref)     points-to predicate
//	p_N_snap(self_p)     snapshot of a reference
//	assign_p_N(p, v)     store snapshot v into reference p
//	s_N_cons / s_N_val   primitive <-> snapshot, or struct constructor
//	p_N_field_<i>        reference to field i
//	s_N_field_<i>        snapshot of field i
package typeenc
