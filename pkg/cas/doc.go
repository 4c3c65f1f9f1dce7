/*
Package cas implements content addressing for stored payloads.

Identifiers are deterministic SHA-256 digests rendered as 64 lowercase hex
characters, so identical content always produces identical identifiers and
the identifier alphabet can never collide with the path delimiter. The Store
type layers hashing and integrity verification over any ports.BlobStore
backend; backends only ever see opaque keys.
*/
package cas
