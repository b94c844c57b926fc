// Package encoder translates procedure bodies into IVL methods.
//
// A Session owns the collaborators shared by all procedures of a crate: the
// node arena, the type encoder, the builtin operator resolver and the method
// cache. Encoding one procedure publishes its signature (a MethodRef) before
// the body is translated, so recursive and mutually recursive calls resolve
// against the signature instead of waiting for the body.
//
// Inside one procedure the translation is syntax directed. Each statement and
// terminator first applies the repacks scheduled for its location, then
// encodes its own effect.
//
// Naming:
//
//	m_<name>      method of procedure <name>
//	_<i>p         reference of source local i (_0p is the return place)
//	_tmp<N>       temporaries, numbered per procedure
//	_reach_bb<N>  reachability flag of block N (optional)
//	start, bb<N>, end  block labels
package encoder
