// Package descriptor derives stable cache identities for image requests.
//
// A Descriptor pairs caller-supplied source data with a key derived once, at
// construction, from the data's canonical string form. The key is the only value
// that may be used as a cache lookup token or as a file name component.
//
// # Key Format
//
// Keys are the lowercase hex encoding of the SHA-256 digest of the UTF-8 bytes of
// the canonical string. They are always 64 characters from [0-9a-f], identical
// across processes and hosts, and safe to use in file names.
//
// # Canonical Form
//
// Data types provide their canonical form by implementing Canonical. The form must
// be stable: two logically identical requests must produce the same string. The
// package cannot enforce this. The built-in kinds normalise what they can:
//   - String: the string itself
//   - URL: lowercased scheme and host, sorted query, no fragment
//   - File: absolute path, size and modification time
//
// # Equality
//
// Two descriptors are equal exactly when their keys are equal. Data that produces
// the same canonical string is treated as the same cache entry, whatever its type.
//
// # Collisions
//
// There is no collision handling beyond the strength of SHA-256.
//
// # Thread Safety
//
// Descriptors are immutable values and may be shared between goroutines freely.
package descriptor
