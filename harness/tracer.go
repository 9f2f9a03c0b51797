package harness

import (
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/sarchlab/branchstress/predictor"
	"github.com/sarchlab/branchstress/stress"
)

// traceDigest hashes the branch outcome stream. Two runs with the same
// digest took exactly the same branches in the same order.
type traceDigest struct {
	h   hash.Hash
	buf [17]byte
}

func newTraceDigest() *traceDigest {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only a key longer than 64 bytes makes New256 fail.
		panic(err)
	}
	return &traceDigest{h: h}
}

func (d *traceDigest) record(kind byte, pc, value uint64) {
	d.buf[0] = kind
	binary.LittleEndian.PutUint64(d.buf[1:9], pc)
	binary.LittleEndian.PutUint64(d.buf[9:17], value)
	_, _ = d.h.Write(d.buf[:])
}

func (d *traceDigest) sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// predictorTracer replays every branch of a suite run through a predictor.
type predictorTracer struct {
	bp     *predictor.BranchPredictor
	digest *traceDigest
}

func (t *predictorTracer) Branch(site stress.Site, taken bool) {
	pred := t.bp.Predict(site.PC)
	t.bp.Resolve(site.PC, pred, taken, site.Target)

	var v uint64
	if taken {
		v = 1
	}
	t.digest.record('B', site.PC, v)
}

func (t *predictorTracer) Indirect(site stress.Site, target uint64) {
	t.bp.ResolveIndirect(site.PC, target)
	t.digest.record('I', site.PC, target)
}
