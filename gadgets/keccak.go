package gadgets

import (
	"math/big"

	"github.com/nume-crypto/zk-keccak-addr/cs"
	"github.com/nume-crypto/zk-keccak-addr/field"
)

// Keccak-256 / address-derivation parameters, in bits. Fixed: this gadget
// supports exactly a 512-bit input and a 256-bit digest.
const (
	Rounds     = 24
	OutputLen  = 256
	Capacity   = OutputLen * 2
	StateWidth = 1600
	// Rate is the sponge's absorb-visible width: StateWidth - Capacity.
	Rate = StateWidth - Capacity
	// InputBits is the fixed public-key width this gadget accepts.
	InputBits = 512
)

// RhoOffsets is Table 2 of FIPS 202 (https://nvlpubs.nist.gov/nistpubs/FIPS/NIST.FIPS.202.pdf),
// RhoOffsets[y][x].
var RhoOffsets = [5][5]uint{
	{0, 1, 190, 28, 91},
	{36, 300, 6, 55, 276},
	{3, 10, 171, 153, 231},
	{105, 45, 15, 21, 136},
	{210, 66, 253, 120, 78},
}

// RC holds the 24 Keccak-f[1600] round constants.
var RC = [Rounds]uint64{
	0x1, 0x8082, 0x800000000000808a, 0x8000000080008000,
	0x808b, 0x80000001, 0x8000000080008081, 0x8000000000008009,
	0x8a, 0x88, 0x80008009, 0x8000000a,
	0x8000808b, 0x800000000000008b, 0x8000000000008089, 0x8000000000008003,
	0x8000000000008002, 0x8000000000000080, 0x800a, 0x800000008000000a,
	0x8000000080008081, 0x8000000000008080, 0x80000001, 0x8000000080008008,
}

// State is the 25-lane, column-major Keccak state: state[x+5y] is lane
// A[x,y].
type State = [25]Lane

// ToAddr applies the Keccak-f[1600] permutation to the padded 512-bit
// input and returns the Ethereum address (the low 160 bits of the digest,
// interpreted as a big-endian integer) packed into a single field
// element.
func ToAddr(c *cs.ConstraintSystem, input [InputBits]cs.Wire) cs.Wire {
	zero, one := c.Zero(), c.One()

	padLen := Rate - InputBits
	var padded [StateWidth]cs.Wire
	for i := range padded {
		padded[i] = zero
	}
	copy(padded[:InputBits], input[:])
	padded[InputBits] = one
	padded[InputBits+padLen-1] = one

	var state State
	for i := 0; i < 25; i++ {
		var lane Lane
		copy(lane[:], padded[i*64:(i+1)*64])
		state[i] = lane
	}

	rc := make([]Lane, Rounds)
	for i, r := range RC {
		var lane Lane
		for b := 0; b < LaneBits; b++ {
			if (r>>uint(b))&1 == 1 {
				lane[b] = one
			} else {
				lane[b] = zero
			}
		}
		rc[i] = lane
	}

	for round := 0; round < Rounds; round++ {
		// Theta: C[x] = XOR of column x's 5 lanes; D[x] = C[x-1] ⊕
		// rotl(C[x+1],1); state[x,y] ⊕= D[x].
		var col [5]Lane
		for x := 0; x < 5; x++ {
			col[x] = state[x]
			for y := 1; y < 5; y++ {
				col[x] = Xor64(c, col[x], state[x+5*y])
			}
		}
		var d [5]Lane
		for x := 0; x < 5; x++ {
			d[x] = Xor64(c, col[(x+4)%5], RotateLeft64(col[(x+1)%5], 1))
		}
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				state[x+5*y] = Xor64(c, state[x+5*y], d[x])
			}
		}

		// Rho: rotate lane (rho_x,rho_y) in place by RhoOffsets[y][x],
		// walking (x,y) -> (y, 2x+3y mod 5) for 24 steps starting at
		// (1,0). Lane (0,0) is never rotated.
		rx, ry := 1, 0
		for t := 0; t < 24; t++ {
			idx := rx + 5*ry
			state[idx] = RotateLeft64(state[idx], int(RhoOffsets[ry][rx]%LaneBits))
			rxPrev := rx
			rx = ry
			ry = (2*rxPrev + 3*ry) % 5
		}

		// Pi: new[x,y] = old[(x+3y) mod 5 + 5x].
		old := state
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				idx := ((x+3*y)%5 + 5*x)
				state[x+5*y] = old[idx]
			}
		}

		// Chi: new[x,y] = old[x,y] ⊕ (¬old[x+1,y] ∧ old[x+2,y]).
		old = state
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				idx := x + 5*y
				na := NotAAndB64(c, old[(x+1)%5+5*y], old[(x+2)%5+5*y])
				state[idx] = Xor64(c, old[idx], na)
			}
		}

		// Iota: XOR the round constant into lane (0,0).
		state[0] = Xor64(c, state[0], rc[round])
	}

	return extractAddress(c, state)
}

// extractAddress packs the low 160 bits of the digest (digest bytes
// 12..31: state[1]'s high 32 bits, all of state[2], all of state[3]) into a
// single field element as a big-endian integer. The lanes hold each byte
// least significant bit first while FromBits reads its slice most
// significant bit first, so the bits of every byte are reversed before
// packing. The 160 bits are then split into chunks of 64, 64 and 32 bits:
// addr = high64·2^96 + mid64·2^32 + low32 (see DESIGN.md Open Question 3).
func extractAddress(c *cs.ConstraintSystem, state State) cs.Wire {
	addressBits := make([]cs.Wire, 0, 160)
	addressBits = append(addressBits, state[1][32:]...)
	addressBits = append(addressBits, state[2][:]...)
	addressBits = append(addressBits, state[3][:]...)
	for i := 0; i < len(addressBits); i += 8 {
		for j := 0; j < 4; j++ {
			addressBits[i+j], addressBits[i+7-j] = addressBits[i+7-j], addressBits[i+j]
		}
	}

	shift96 := field.FromBigInt(new(big.Int).Lsh(big.NewInt(1), 96))
	shift32 := field.FromBigInt(new(big.Int).Lsh(big.NewInt(1), 32))

	chunk0 := FromBits(c, addressBits[:64])
	chunk1 := FromBits(c, addressBits[64:128])

	chunk2Padded := make([]cs.Wire, 64)
	for i := 0; i < 32; i++ {
		chunk2Padded[i] = c.Zero()
	}
	copy(chunk2Padded[32:], addressBits[128:160])
	chunk2 := FromBits(c, chunk2Padded)

	term0 := c.MulConst(chunk0, shift96)
	term1 := c.MulConst(chunk1, shift32)

	return c.Sum([]cs.LCTerm{
		{W: term0, Coeff: field.One()},
		{W: term1, Coeff: field.One()},
		{W: chunk2, Coeff: field.One()},
	})
}
