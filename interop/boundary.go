// Package interop defines the boundary types an external Sumcheck/Hyrax
// prover would consume to turn a constraint system's output into a
// zero-knowledge proof. That prover is out of scope here: nothing in this
// package runs a Sumcheck round, commits to a polynomial, or touches an
// elliptic curve. It only shapes the two artifacts crossing the boundary,
// the constraint list and the witness, plus the proof transcript shape a
// collaborator would hand back.
package interop

import (
	"fmt"
	"io"
	"math/big"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/nume-crypto/zk-keccak-addr/cs"
	"github.com/nume-crypto/zk-keccak-addr/field"
)

// FormatVersion tags every wire-format artifact this package emits. Bump
// the minor component for an additive field, the major for a breaking
// reshuffle.
var FormatVersion = semver.MustParse("0.1.0")

// cborTerm is Term's cbor wire format: WireIndex as-is, Coeff as a
// big.Int, since field.Element carries no cbor tags of its own (same
// reasoning as cs/witness.go's cborWitness).
type cborTerm struct {
	WireIndex int
	Coeff     big.Int
}

type cborConstraint struct {
	A, B, C []cborTerm
}

func toCborLC(lc cs.LinearCombination) []cborTerm {
	out := make([]cborTerm, len(lc))
	for i, t := range lc {
		out[i] = cborTerm{WireIndex: t.WireIndex, Coeff: *t.Coeff.ToBigInt()}
	}
	return out
}

func fromCborLC(terms []cborTerm) cs.LinearCombination {
	out := make(cs.LinearCombination, len(terms))
	for i, t := range terms {
		out[i] = cs.Term{WireIndex: t.WireIndex, Coeff: field.FromBigInt(&t.Coeff)}
	}
	return out
}

// ConstraintExport is the curve-agnostic, cbor-serializable rendering of a
// ConstraintSystem's recorded constraint list, the shape an external
// Sumcheck prover ingests in place of a gnark-style compiled R1CS.
type ConstraintExport struct {
	Version     string
	NbWires     int
	NbPublic    int
	Constraints []cs.Constraint
}

type cborConstraintExport struct {
	Version     string
	NbWires     int
	NbPublic    int
	Constraints []cborConstraint
}

// ExportConstraints snapshots system's constraint list, as recorded by its
// last SetConstraints call, into a ConstraintExport.
func ExportConstraints(system *cs.ConstraintSystem, nbPublic int) ConstraintExport {
	return ConstraintExport{
		Version:     FormatVersion.String(),
		NbWires:     system.NbWires(),
		NbPublic:    nbPublic,
		Constraints: system.Constraints(),
	}
}

// WriteTo cbor-encodes e, following the same
// WriteTo(io.Writer)(int64,error) shape as cs.Witness.WriteTo.
func (e ConstraintExport) WriteTo(dst io.Writer) (int64, error) {
	raw := cborConstraintExport{
		Version:     e.Version,
		NbWires:     e.NbWires,
		NbPublic:    e.NbPublic,
		Constraints: make([]cborConstraint, len(e.Constraints)),
	}
	for i, c := range e.Constraints {
		raw.Constraints[i] = cborConstraint{A: toCborLC(c.A), B: toCborLC(c.B), C: toCborLC(c.C)}
	}

	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	b, err := enc.Marshal(raw)
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(b)
	return int64(n), err
}

// ReadFrom decodes a ConstraintExport previously written by WriteTo,
// rejecting a major-version mismatch.
func (e *ConstraintExport) ReadFrom(src io.Reader) (int64, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	var raw cborConstraintExport
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return int64(len(b)), err
	}

	got, err := semver.Parse(raw.Version)
	if err != nil {
		return int64(len(b)), fmt.Errorf("interop: unparseable format version %q: %w", raw.Version, err)
	}
	if got.Major != FormatVersion.Major {
		return int64(len(b)), fmt.Errorf("interop: incompatible format version %s, this build understands %s", got, FormatVersion)
	}

	e.Version = raw.Version
	e.NbWires = raw.NbWires
	e.NbPublic = raw.NbPublic
	e.Constraints = make([]cs.Constraint, len(raw.Constraints))
	for i, c := range raw.Constraints {
		e.Constraints[i] = cs.Constraint{A: fromCborLC(c.A), B: fromCborLC(c.B), C: fromCborLC(c.C)}
	}
	return int64(len(b)), nil
}

// WitnessExport tags a Witness with FormatVersion so a collaborator
// reading it off the wire can reject a format it doesn't understand,
// rather than misinterpreting a reshuffled field layout.
type WitnessExport struct {
	Version string
	Witness *cs.Witness
}

// ExportWitness wraps w with the current FormatVersion.
func ExportWitness(w *cs.Witness) WitnessExport {
	return WitnessExport{Version: FormatVersion.String(), Witness: w}
}

// WriteTo writes the version tag followed by the witness's own cbor
// encoding.
func (e WitnessExport) WriteTo(dst io.Writer) (int64, error) {
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	header, err := enc.Marshal(e.Version)
	if err != nil {
		return 0, err
	}
	n1, err := dst.Write(header)
	if err != nil {
		return int64(n1), err
	}
	n2, err := e.Witness.WriteTo(dst)
	return int64(n1) + n2, err
}

// SumCheckProof is the boundary shape an external Hyrax-backed Sumcheck
// collaborator returns: a labeled transcript of per-round polynomial
// coefficients, the claimed sum of the blinding polynomial, and an opaque
// polynomial-evaluation proof this package leaves uninterpreted, since
// Hyrax commitment opening is outside this gadget's scope.
type SumCheckProof struct {
	Label            string
	RoundPolyCoeffs  [][]field.Element
	BlinderPolySum   field.Element
	BlinderEvalProof []byte
}

type cborSumCheckProof struct {
	Label            string
	RoundPolyCoeffs  [][]big.Int
	BlinderPolySum   big.Int
	BlinderEvalProof []byte
}

// WriteTo cbor-encodes p.
func (p SumCheckProof) WriteTo(dst io.Writer) (int64, error) {
	raw := cborSumCheckProof{
		Label:            p.Label,
		RoundPolyCoeffs:  make([][]big.Int, len(p.RoundPolyCoeffs)),
		BlinderPolySum:   *p.BlinderPolySum.ToBigInt(),
		BlinderEvalProof: p.BlinderEvalProof,
	}
	for i, round := range p.RoundPolyCoeffs {
		raw.RoundPolyCoeffs[i] = make([]big.Int, len(round))
		for j, c := range round {
			raw.RoundPolyCoeffs[i][j] = *c.ToBigInt()
		}
	}

	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	b, err := enc.Marshal(raw)
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(b)
	return int64(n), err
}

// ReadFrom decodes a SumCheckProof previously written by WriteTo.
func (p *SumCheckProof) ReadFrom(src io.Reader) (int64, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	var raw cborSumCheckProof
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return int64(len(b)), err
	}

	p.Label = raw.Label
	p.BlinderPolySum = field.FromBigInt(&raw.BlinderPolySum)
	p.BlinderEvalProof = raw.BlinderEvalProof
	p.RoundPolyCoeffs = make([][]field.Element, len(raw.RoundPolyCoeffs))
	for i, round := range raw.RoundPolyCoeffs {
		p.RoundPolyCoeffs[i] = make([]field.Element, len(round))
		for j := range round {
			p.RoundPolyCoeffs[i][j] = field.FromBigInt(&round[j])
		}
	}
	return int64(len(b)), nil
}
