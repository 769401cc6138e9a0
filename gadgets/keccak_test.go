package gadgets_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-keccak-addr/cs"
	"github.com/nume-crypto/zk-keccak-addr/field"
	"github.com/nume-crypto/zk-keccak-addr/gadgets"
	"github.com/nume-crypto/zk-keccak-addr/internal/nativekeccak"
)

const scenarioPubkeyHex = "765b012d6340fd3baf3068e3e118a68a559b832af2d9ddd05585fedcf9f9c2a95a65f71708281d9e1517e28c3643fa932d7675a233d8cc4edc3440c10684cd95"

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func privBitsOf(msg []byte) []field.Element {
	bits := nativekeccak.BytesToLEBits(msg)
	out := make([]field.Element, len(bits))
	for i, b := range bits {
		out[i] = field.FromUint64(uint64(b))
	}
	return out
}

func addrFieldOf(msg []byte) field.Element {
	addr := nativekeccak.Address(msg)
	return field.FromBigInt(new(big.Int).SetBytes(addr))
}

func toAddrSynth(c *cs.ConstraintSystem) {
	ins := c.AllocPrivInputs(gadgets.InputBits)
	var input [gadgets.InputBits]cs.Wire
	copy(input[:], ins)
	addr := gadgets.ToAddr(c, input)
	c.ExposePublic(addr)
}

func TestToAddrScenarioSatisfiable(t *testing.T) {
	msg := mustDecodeHex(t, scenarioPubkeyHex)
	require.Len(t, msg, 64)

	priv := privBitsOf(msg)
	pub := []field.Element{addrFieldOf(msg)}

	system := cs.New()
	witness := system.GenWitness(toAddrSynth, pub, priv)
	system.SetConstraints(toAddrSynth)

	require.True(t, system.IsSat(witness, pub))
}

func TestToAddrScenarioNegativeOffByOneBit(t *testing.T) {
	msg := mustDecodeHex(t, scenarioPubkeyHex)
	priv := privBitsOf(msg)
	correct := addrFieldOf(msg)

	system := cs.New()
	witness := system.GenWitness(toAddrSynth, []field.Element{correct}, priv)
	system.SetConstraints(toAddrSynth)

	wrong := field.Add(correct, field.One())
	require.False(t, system.IsSat(witness, []field.Element{wrong}))
}

func TestToAddrMatchesNativeReference(t *testing.T) {
	messages := [][]byte{
		mustDecodeHex(t, scenarioPubkeyHex),
		make([]byte, 64),
	}
	for i := range messages[1] {
		messages[1][i] = byte(i)
	}

	for _, msg := range messages {
		priv := privBitsOf(msg)
		want := addrFieldOf(msg)

		system := cs.New()
		witness := system.GenWitness(toAddrSynth, []field.Element{want}, priv)
		system.SetConstraints(toAddrSynth)
		require.True(t, system.IsSat(witness, []field.Element{want}))
	}
}

func TestToAddrDiffersAcrossDistinctInputs(t *testing.T) {
	msgA := mustDecodeHex(t, scenarioPubkeyHex)
	msgB := make([]byte, 64)
	copy(msgB, msgA)
	msgB[0] ^= 0x01

	gadgetAddr := func(msg []byte) field.Element {
		var addrWire cs.Wire
		synth := func(c *cs.ConstraintSystem) {
			ins := c.AllocPrivInputs(gadgets.InputBits)
			var input [gadgets.InputBits]cs.Wire
			copy(input[:], ins)
			addrWire = gadgets.ToAddr(c, input)
		}
		witness := cs.New().GenWitness(synth, nil, privBitsOf(msg))
		return witness.Values[addrWire.Index()]
	}

	addrA := gadgetAddr(msgA)
	addrB := gadgetAddr(msgB)
	require.False(t, addrA.Equal(addrB))
}

func TestSetConstraintsIsDeterministicForKeccak(t *testing.T) {
	system := cs.New()

	system.SetConstraints(toAddrSynth)
	first := system.Constraints()

	system.SetConstraints(toAddrSynth)
	second := system.Constraints()

	require.Equal(t, len(first), len(second))
	fieldComparer := cmp.Comparer(func(a, b field.Element) bool { return a.Equal(b) })
	if diff := cmp.Diff(first, second, fieldComparer); diff != "" {
		t.Fatalf("constraint list not deterministic across set_constraints runs:\n%s", diff)
	}
}

func TestSetConstraintsShapeIndependentOfInput(t *testing.T) {
	msgA := mustDecodeHex(t, scenarioPubkeyHex)
	msgB := make([]byte, 64)
	copy(msgB, msgA)
	msgB[10] ^= 0xff

	systemA := cs.New()
	witnessA := systemA.GenWitness(toAddrSynth, []field.Element{addrFieldOf(msgA)}, privBitsOf(msgA))
	systemA.SetConstraints(toAddrSynth)

	systemB := cs.New()
	witnessB := systemB.GenWitness(toAddrSynth, []field.Element{addrFieldOf(msgB)}, privBitsOf(msgB))
	systemB.SetConstraints(toAddrSynth)

	require.Equal(t, systemA.NbConstraints(), systemB.NbConstraints())
	require.Equal(t, len(witnessA.Values), len(witnessB.Values))
}
