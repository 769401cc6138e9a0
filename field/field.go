// Package field adapts gnark-crypto's BN254 scalar field to the small
// surface the constraint system and gadgets need: add/sub/mul/neg, the
// constants 0 and 1, construction from a uint64 or big.Int, exponentiation,
// the big-endian byte decomposition gadgets.ToBits draws on during witness
// generation, and a single-bit accessor.
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Element is a single element of the BN254 scalar field.
type Element struct {
	inner fr.Element
}

// Zero returns the additive identity.
func Zero() Element {
	var e Element
	e.inner.SetZero()
	return e
}

// One returns the multiplicative identity.
func One() Element {
	var e Element
	e.inner.SetOne()
	return e
}

// FromUint64 builds the field element equal to v.
func FromUint64(v uint64) Element {
	var e Element
	e.inner.SetUint64(v)
	return e
}

// FromBigInt builds the field element equal to v mod the field modulus.
func FromBigInt(v *big.Int) Element {
	var e Element
	e.inner.SetBigInt(v)
	return e
}

// Add returns a+b.
func Add(a, b Element) Element {
	var e Element
	e.inner.Add(&a.inner, &b.inner)
	return e
}

// Sub returns a-b.
func Sub(a, b Element) Element {
	var e Element
	e.inner.Sub(&a.inner, &b.inner)
	return e
}

// Mul returns a*b.
func Mul(a, b Element) Element {
	var e Element
	e.inner.Mul(&a.inner, &b.inner)
	return e
}

// Neg returns -a.
func Neg(a Element) Element {
	var e Element
	e.inner.Neg(&a.inner)
	return e
}

// Pow returns a^exp.
func Pow(a Element, exp uint64) Element {
	var e Element
	e.inner.Exp(a.inner, new(big.Int).SetUint64(exp))
	return e
}

// IsZero reports whether a is the additive identity.
func (a Element) IsZero() bool {
	return a.inner.IsZero()
}

// Equal reports whether a and b represent the same field element.
func (a Element) Equal(b Element) bool {
	return a.inner.Equal(&b.inner)
}

// ToBigInt returns the canonical (non-Montgomery) big.Int representation.
func (a Element) ToBigInt() *big.Int {
	var z big.Int
	a.inner.ToBigIntRegular(&z)
	return &z
}

// ToBytesBE returns the big-endian byte encoding of a; gadgets.ToBits uses
// it to recover a's bit decomposition during witness generation.
func (a Element) ToBytesBE() []byte {
	b := a.inner.Bytes()
	out := make([]byte, len(b))
	copy(out, b[:])
	return out
}

// Bit returns the i-th bit (0 = least significant) of a's canonical
// integer representation, for callers that need a single bit rather than
// the full byte encoding.
func (a Element) Bit(i int) uint {
	return uint(a.ToBigInt().Bit(i))
}

// String renders a in decimal, for logging and error messages.
func (a Element) String() string {
	return a.inner.String()
}
