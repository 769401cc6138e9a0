package cs

import (
	"io"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/nume-crypto/zk-keccak-addr/field"
)

// Witness is the dense assignment of every wire produced by a witness
// pass (gen_witness). Index i holds the value of wire i; indices not
// covered by a partition (public/private) are internal wires.
type Witness struct {
	Values []field.Element
}

// cborWitness is the wire format Witness is marshaled to/from: big.Int
// values, since field.Element has no exported cbor tags of its own. This
// keeps an independent wire-format type next to the in-memory one rather
// than tagging field.Element directly.
type cborWitness struct {
	Values []big.Int
}

// WriteTo cbor-encodes the witness.
func (w *Witness) WriteTo(dst io.Writer) (int64, error) {
	raw := cborWitness{Values: make([]big.Int, len(w.Values))}
	for i, v := range w.Values {
		raw.Values[i] = *v.ToBigInt()
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

// ReadFrom decodes a witness previously written by WriteTo.
func (w *Witness) ReadFrom(src io.Reader) (int64, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	var raw cborWitness
	if err := cbor.Unmarshal(b, &raw); err != nil {
		return int64(len(b)), err
	}
	w.Values = make([]field.Element, len(raw.Values))
	for i := range raw.Values {
		w.Values[i] = field.FromBigInt(&raw.Values[i])
	}
	return int64(len(b)), nil
}
