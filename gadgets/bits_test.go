package gadgets_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-keccak-addr/cs"
	"github.com/nume-crypto/zk-keccak-addr/field"
	"github.com/nume-crypto/zk-keccak-addr/gadgets"
)

func boolField(b bool) field.Element {
	if b {
		return field.One()
	}
	return field.Zero()
}

// runGadget drives a one-shot witness/constraint pass for a synthesizer
// that returns the wire it wants inspected, and reports both that wire's
// witness value and whether the recorded constraints are satisfied.
func runGadget(priv []field.Element, synth func(c *cs.ConstraintSystem) cs.Wire) (field.Element, bool) {
	var out cs.Wire
	wrapped := func(c *cs.ConstraintSystem) { out = synth(c) }

	system := cs.New()
	witness := system.GenWitness(wrapped, nil, priv)
	system.SetConstraints(wrapped)
	sat := system.IsSat(witness, nil)
	return witness.Values[out.Index()], sat
}

func TestBitXorProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("bit_xor computes a XOR b and is satisfiable", prop.ForAll(
		func(a, b bool) bool {
			got, sat := runGadget([]field.Element{boolField(a), boolField(b)}, func(c *cs.ConstraintSystem) cs.Wire {
				ins := c.AllocPrivInputs(2)
				return gadgets.BitXor(c, ins[0], ins[1])
			})
			return sat && got.Equal(boolField(a != b))
		},
		gen.Bool(), gen.Bool(),
	))

	properties.Property("bit_xor is commutative", prop.ForAll(
		func(a, b bool) bool {
			ab, _ := runGadget([]field.Element{boolField(a), boolField(b)}, func(c *cs.ConstraintSystem) cs.Wire {
				ins := c.AllocPrivInputs(2)
				return gadgets.BitXor(c, ins[0], ins[1])
			})
			ba, _ := runGadget([]field.Element{boolField(b), boolField(a)}, func(c *cs.ConstraintSystem) cs.Wire {
				ins := c.AllocPrivInputs(2)
				return gadgets.BitXor(c, ins[0], ins[1])
			})
			return ab.Equal(ba)
		},
		gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestNotAAndBProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("not_a_and_b computes (not a) and b and is satisfiable", prop.ForAll(
		func(a, b bool) bool {
			got, sat := runGadget([]field.Element{boolField(a), boolField(b)}, func(c *cs.ConstraintSystem) cs.Wire {
				ins := c.AllocPrivInputs(2)
				return gadgets.NotAAndB(c, ins[0], ins[1])
			})
			return sat && got.Equal(boolField(!a && b))
		},
		gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestRotateLeft64RoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	system := cs.New()
	var lane gadgets.Lane
	for i := range lane {
		lane[i] = system.AllocVar(field.Zero())
	}

	properties.Property("rotating left by n then by 64-n is the identity", prop.ForAll(
		func(n int) bool {
			rotated := gadgets.RotateLeft64(lane, n)
			back := gadgets.RotateLeft64(rotated, (gadgets.LaneBits-n)%gadgets.LaneBits)
			for i := range lane {
				if back[i] != lane[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, gadgets.LaneBits-1),
	))

	properties.TestingRun(t)
}

func TestRotateLeft64RejectsOutOfRangeAmount(t *testing.T) {
	var lane gadgets.Lane
	require.Panics(t, func() { gadgets.RotateLeft64(lane, 64) })
	require.Panics(t, func() { gadgets.RotateLeft64(lane, -1) })
}

func TestToBitsRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("to_bits decomposition satisfies its own equality constraint", prop.ForAll(
		func(v uint32) bool {
			val := field.FromUint64(uint64(v))
			_, sat := runGadget([]field.Element{val}, func(c *cs.ConstraintSystem) cs.Wire {
				in := c.AllocPrivInput()
				bits := gadgets.ToBits(c, in, 32)
				return gadgets.FromBits(c, bits)
			})
			return sat
		},
		gen.UInt32(),
	))

	properties.TestingRun(t)
}

func TestFromBitsLiteralVector(t *testing.T) {
	one, zero := field.One(), field.Zero()
	priv := make([]field.Element, 256)
	for i := 0; i < 253; i++ {
		priv[i] = zero
	}
	priv[253] = one
	priv[254] = zero
	priv[255] = zero

	var fromBitsWire cs.Wire
	synth := func(c *cs.ConstraintSystem) {
		ins := c.AllocPrivInputs(256)
		fromBitsWire = gadgets.FromBits(c, ins)
		c.ExposePublic(fromBitsWire)
	}

	pub := []field.Element{field.FromUint64(4)}
	system := cs.New()
	witness := system.GenWitness(synth, pub, priv)
	system.SetConstraints(synth)

	require.True(t, witness.Values[fromBitsWire.Index()].Equal(field.FromUint64(4)))
	require.True(t, system.IsSat(witness, pub))
}

func TestToBitsLiteralVector(t *testing.T) {
	const k = 256
	priv := []field.Element{field.FromUint64(123)}

	var full [32]byte
	b := new(big.Int).SetUint64(123).Bytes()
	copy(full[32-len(b):], b)

	expectedPub := make([]field.Element, k)
	for i := 0; i < 32; i++ {
		for j := 0; j < 8; j++ {
			bit := (full[i] >> uint(j)) & 1
			expectedPub[i*8+j] = field.FromUint64(uint64(bit))
		}
	}

	var bitWires []cs.Wire
	synth := func(c *cs.ConstraintSystem) {
		in := c.AllocPrivInput()
		bitWires = gadgets.ToBits(c, in, k)
		for _, w := range bitWires {
			c.ExposePublic(w)
		}
	}

	system := cs.New()
	witness := system.GenWitness(synth, expectedPub, priv)
	for i, w := range bitWires {
		require.True(t, witness.Values[w.Index()].Equal(expectedPub[i]), "bit %d", i)
	}
	system.SetConstraints(synth)
	require.True(t, system.IsSat(witness, expectedPub))
}

func TestFromBitsKnownValue(t *testing.T) {
	// bits = [1,0,1,1] read tail-first: weight(last)=1 -> 1*1 + 1*2 + 0*4 + 1*8 = 11
	got, sat := runGadget(nil, func(c *cs.ConstraintSystem) cs.Wire {
		one, zero := c.One(), c.Zero()
		return gadgets.FromBits(c, []cs.Wire{one, zero, one, one})
	})
	require.True(t, sat)
	require.True(t, got.Equal(field.FromBigInt(big.NewInt(11))))
}
