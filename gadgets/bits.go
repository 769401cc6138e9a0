// Package gadgets implements bit-level primitives (bit_xor, not_a_and_b,
// xor_64, not_a_and_b_64, rotate_left_64, from_bits, to_bits), plus the
// Keccak/address gadget built on top of them in keccak.go. Every gadget
// here assumes its inputs are already boolean-typed wires, either
// produced by one of these gadgets or by an explicit decomposition.
package gadgets

import (
	"fmt"

	"github.com/nume-crypto/zk-keccak-addr/cs"
	"github.com/nume-crypto/zk-keccak-addr/field"
)

// LaneBits is the width of a Keccak lane.
const LaneBits = 64

// Lane is a 64-bit-wide array of boolean wires, little-endian (index 0 is
// the least significant bit), matching the lane layout ToAddr (keccak.go)
// absorbs the padded input into.
type Lane = [LaneBits]cs.Wire

// BitXor returns a wire equal to a⊕b when a,b ∈ {0,1}, via the single
// constraint (−2a)·(b) = c−a−b, i.e. c = a+b−2ab. No separate booleanity
// constraint is needed, provided a and b are themselves boolean.
func BitXor(c *cs.ConstraintSystem, a, b cs.Wire) cs.Wire {
	two := field.FromUint64(2)
	return c.Constrain(
		[]cs.LCTerm{{W: a, Coeff: field.Neg(two)}},
		[]cs.LCTerm{{W: b, Coeff: field.One()}},
		[]cs.LCTerm{{W: a, Coeff: field.One()}, {W: b, Coeff: field.One()}},
	)
}

// NotAAndB returns a wire equal to (¬a)∧b = (1−a)·b when a,b ∈ {0,1}.
func NotAAndB(c *cs.ConstraintSystem, a, b cs.Wire) cs.Wire {
	return c.Constrain(
		[]cs.LCTerm{{W: a, Coeff: field.Neg(field.One())}, {W: c.One(), Coeff: field.One()}},
		[]cs.LCTerm{{W: b, Coeff: field.One()}},
		nil,
	)
}

// Xor64 applies BitXor lane-wise.
func Xor64(c *cs.ConstraintSystem, a, b Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = BitXor(c, a[i], b[i])
	}
	return out
}

// NotAAndB64 applies NotAAndB lane-wise.
func NotAAndB64(c *cs.ConstraintSystem, a, b Lane) Lane {
	var out Lane
	for i := range out {
		out[i] = NotAAndB(c, a[i], b[i])
	}
	return out
}

// RotateLeft64 reindexes a: out[i] = a[(i-n) mod 64]. It is purely a Go
// reassignment of wire handles, no constraint is emitted, since rotation
// never changes which field element a wire holds, only which logical bit
// position it is read from next.
//
// Under the Lane convention (index 0 is the least significant bit) this is
// a left rotation by n: the bit at position i-n moves to position i, which
// is the FIPS 202 bit order. Validate any change here against the literal
// test vector in keccak_test.go rather than reasoning about the direction
// in the abstract (see DESIGN.md Open Question 2).
func RotateLeft64(a Lane, n int) Lane {
	if n < 0 || n >= LaneBits {
		panic(&cs.ShapeError{Op: "rotate_left_64", Detail: fmt.Sprintf("rotation amount %d outside [0,%d)", n, LaneBits)})
	}
	var out Lane
	for i := 0; i < LaneBits; i++ {
		src := ((i-n)%LaneBits + LaneBits) % LaneBits
		out[i] = a[src]
	}
	return out
}

// FromBits returns a wire equal to Σ bits[i]·2^(len−1−i): it reads bits
// tail-first, assigning the last element weight 1 and doubling the weight
// towards the front, so the slice's own convention is "last element is
// least significant".
func FromBits(c *cs.ConstraintSystem, bits []cs.Wire) cs.Wire {
	terms := make([]cs.LCTerm, len(bits))
	pow := field.One()
	for i := len(bits) - 1; i >= 0; i-- {
		scaled := c.MulConst(bits[i], pow)
		terms[len(bits)-1-i] = cs.LCTerm{W: scaled, Coeff: field.One()}
		pow = field.Mul(pow, field.FromUint64(2))
	}
	return c.Sum(terms)
}

// ToBits decomposes a into k boolean-valued wires and emits the equality
// constraint Σ 2^i·b_i = a, summed in 8-bit chunks with byte-granularity
// powers of two, using a big-endian-bytes, little-endian-within-byte
// witness convention. k must be a multiple of 8.
//
// SOUNDNESS: this does not emit the explicit booleanity constraint
// b_i·(b_i-1)=0 for each output bit. A malicious prover could, in
// principle, satisfy the summation constraint with non-boolean b_i.
// BitXor and NotAAndB do not restore booleanity: their outputs are in
// {0,1} only when their inputs are. No gadget in this package calls
// ToBits (ToAddr takes its input as bits). Callers that need a hard
// boolean guarantee on a to_bits output must add that constraint
// themselves; see DESIGN.md Open Question 1.
func ToBits(c *cs.ConstraintSystem, a cs.Wire, k int) []cs.Wire {
	if k <= 0 || k%8 != 0 {
		panic(&cs.ShapeError{Op: "to_bits", Detail: fmt.Sprintf("k=%d must be a positive multiple of 8", k)})
	}

	bits := make([]cs.Wire, k)
	for i := range bits {
		bits[i] = c.AllocVar(field.Zero())
	}

	if c.IsWitnessGen() {
		nBytes := k / 8
		raw := c.Value(a).ToBytesBE()
		padded := make([]byte, nBytes)
		if len(raw) >= nBytes {
			copy(padded, raw[len(raw)-nBytes:])
		} else {
			copy(padded[nBytes-len(raw):], raw)
		}
		for i, b := range padded {
			for j := 0; j < 8; j++ {
				bit := field.Zero()
				if (b>>uint(j))&1 == 1 {
					bit = field.One()
				}
				c.SetValue(bits[i*8+j], bit)
			}
		}
	}

	nChunks := k / 8
	chunkTerms := make([]cs.LCTerm, nChunks)
	pow := field.One()
	for i := 0; i < nChunks; i++ {
		chunk := bits[k-(i+1)*8 : k-i*8]
		reversed := make([]cs.Wire, 8)
		for j, w := range chunk {
			reversed[7-j] = w
		}
		term := FromBits(c, reversed)
		scaled := c.MulConst(term, pow)
		chunkTerms[i] = cs.LCTerm{W: scaled, Coeff: field.One()}
		pow = field.Mul(pow, field.FromUint64(256))
	}
	sum := c.Sum(chunkTerms)
	c.AssertEqual(a, sum, "to_bits failed")

	return bits
}
