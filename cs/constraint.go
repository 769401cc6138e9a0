package cs

import "github.com/nume-crypto/zk-keccak-addr/field"

// Term is one coefficient*wire summand of a sparse linear combination.
// Terms reference wires by index rather than by Wire handle so that a
// Constraint list is self-contained and independent of any particular
// ConstraintSystem instance, the shape interop.ConstraintExport hands to
// the external Sumcheck/Hyrax collaborator.
type Term struct {
	WireIndex int
	Coeff     field.Element
}

// LinearCombination is a sparse sum of weighted wires:
// Σ terms[i].Coeff * w[terms[i].WireIndex].
type LinearCombination []Term

// Constraint is a single rank-one constraint ⟨A,w⟩·⟨B,w⟩ = ⟨C,w⟩ over the
// wire vector w.
type Constraint struct {
	A, B, C LinearCombination
}

// eval returns Σ coeff_i * values[wireIndex_i]. Called both during live
// synthesis (values = cs.wires) and during is_sat against an externally
// supplied witness, so it never touches ConstraintSystem state directly.
func (lc LinearCombination) eval(values []field.Element) field.Element {
	acc := field.Zero()
	for _, t := range lc {
		acc = field.Add(acc, field.Mul(t.Coeff, values[t.WireIndex]))
	}
	return acc
}

// maxWireIndex returns the largest wire index the combination references,
// or -1 if it is empty. Used by internal/depgraph's monotonicity check.
func (lc LinearCombination) maxWireIndex() int {
	m := -1
	for _, t := range lc {
		if t.WireIndex > m {
			m = t.WireIndex
		}
	}
	return m
}
