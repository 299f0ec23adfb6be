// Package codec implements skald's self-describing binary serialization
// engine: a typed byte-level encoding for scalars, strings, collections,
// and domain records, with pluggable compression and encryption applied at
// the framing layer.
//
// # Wire format
//
// Every encoded value begins with a single tag byte identifying its variant
// and, for collections and strings, a size class (empty / small / medium /
// large) chosen as the narrowest that fits the payload. Multi-byte scalars
// are big-endian. A value may be preceded by a META_TAG prefix carrying an
// associated metadata map; the reader treats that prefix as a read-ahead
// that attaches the metadata to the value immediately following it.
//
// Framing (Freeze/Thaw) wraps the raw encoding with an optional 4-byte
// header, an optional compression pass, and an optional authenticated
// encryption pass; see framing.go.
//
// # Custom types
//
// Callers extend the engine with ExtendFreeze/ExtendThaw, either under a
// small positive byte id (cheapest, collision-prone) or under an arbitrary
// keyword name hashed to 16 bits (collision-checked at registration time).
//
// # Thread safety
//
// A single Freeze/Thaw call is confined to its caller's goroutine. The
// custom-type registry and the fallback policy may be read concurrently
// while another goroutine mutates them; mutations replace the backing map
// atomically so readers never observe a torn registry.
package codec
