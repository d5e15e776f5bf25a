package bigmath

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

const (
	op2x1 byte = 1
	op2x2 byte = 2
)

const (
	outcomeOK byte = iota
	outcomeDivisionByZero
	outcomeOverflow
)

// Transcript runs calls through an Engine and folds every call and its outcome
// into a keyed digest. Two replicas that made the same calls in the same order
// with the same configuration end with the same Sum. A Transcript is not safe
// for concurrent use.
type Transcript struct {
	e   *Engine
	h   *blake3.Hasher
	n   uint64
	buf []byte
}

// NewTranscript returns a Transcript over e. The label separates digests of
// unrelated call sequences.
func NewTranscript(e *Engine, label string) (*Transcript, error) {
	var key [32]byte
	blake3.DeriveKey("bigmath v0 transcript key derivation", []byte(label), key[:])

	h, err := blake3.NewKeyed(key[:])
	if err != nil {
		return nil, Error.Wrap(err)
	}

	var hdr [8]byte
	binary.BigEndian.PutUint64(hdr[:], uint64(e.m))
	_, _ = h.Write(hdr[:])

	return &Transcript{e: e, h: h}, nil
}

// BigDiv2x1 calls the engine's BigDiv2x1 and records it.
func (t *Transcript) BigDiv2x1(a, b, d U256, roundUp bool) (U256, error) {
	r, err := t.e.BigDiv2x1(a, b, d, roundUp)
	t.record(op2x1, roundUp, r, err, a, b, d)
	return r, err
}

// BigDiv2x2 calls the engine's BigDiv2x2 and records it.
func (t *Transcript) BigDiv2x2(a, b, d1, d2 U256, roundUp bool) (U256, error) {
	r, err := t.e.BigDiv2x2(a, b, d1, d2, roundUp)
	t.record(op2x2, roundUp, r, err, a, b, d1, d2)
	return r, err
}

// Len returns the number of recorded calls.
func (t *Transcript) Len() uint64 { return t.n }

// Sum returns the digest of the calls recorded so far. Recording may continue
// after Sum.
func (t *Transcript) Sum() (out [32]byte) {
	t.h.Sum(out[:0])
	return out
}

// record layout: op, call index, round up flag, operands, outcome, result.
func (t *Transcript) record(op byte, roundUp bool, r U256, err error, args ...U256) {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], t.n)

	buf := append(t.buf[:0], op)
	buf = append(buf, idx[:]...)
	buf = append(buf, boolByte(roundUp))
	for _, x := range args {
		w := x.Bytes32()
		buf = append(buf, w[:]...)
	}

	outcome := outcomeOK
	switch {
	case DivisionByZero.Has(err):
		outcome = outcomeDivisionByZero
	case ArithmeticOverflow.Has(err):
		outcome = outcomeOverflow
	}
	w := r.Bytes32()
	buf = append(buf, outcome)
	buf = append(buf, w[:]...)

	_, _ = t.h.Write(buf)
	t.buf = buf
	t.n++
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
