// Package canon provides the canonical serialization and content hashing used
// to identify encoded artifacts.
//
// Bodies, encoded methods and runs are addressed by SHA-256 hashes of their
// RFC 8785 canonical JSON form, prefixed by a versioned domain string. The
// same input always produces the same identifier, which lets the store
// deduplicate re-encodings of an unchanged procedure.
package canon
