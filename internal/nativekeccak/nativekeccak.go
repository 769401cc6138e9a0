// Package nativekeccak provides the out-of-circuit Keccak-256 reference
// implementation tests check the gadget against, plus the bit<->byte
// conversions the gadget's wire-level convention uses (little-endian bit
// order within each byte). It is test-only scaffolding, not part of the
// constraint system.
package nativekeccak

import (
	"golang.org/x/crypto/sha3"
)

// Hash256 returns the 32-byte Keccak-256 digest of msg.
func Hash256(msg []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(msg)
	return h.Sum(nil)
}

// Address returns the last 20 bytes of Hash256(msg), i.e. the Ethereum
// address derived from a 64-byte uncompressed public key.
func Address(msg []byte) []byte {
	digest := Hash256(msg)
	return digest[12:]
}

// BytesToLEBits expands each byte of b into 8 bits, LSB first within each
// byte, matching the wire convention the gadget's test vectors use.
func BytesToLEBits(b []byte) []uint {
	bits := make([]uint, 0, len(b)*8)
	for _, byt := range b {
		for i := 0; i < 8; i++ {
			bits = append(bits, uint((byt>>uint(i))&1))
		}
	}
	return bits
}
