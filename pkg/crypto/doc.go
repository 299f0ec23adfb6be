// Package crypto implements the stream-level encryptors the codec's
// framing layer can select between. The wire format names its one
// built-in encryptor "aes128-sha512" after the host library this spec was
// distilled from; the actual implementation here is a passphrase-based
// age construction (see age.go and DESIGN.md for the naming mismatch this
// intentionally preserves).
package crypto
