package predictor

import (
	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

// instBytes is the fetch granularity; every branch PC is a multiple of it.
const instBytes = 4

// btb is a set-associative Branch Target Buffer. Tags and LRU state live in
// an Akita cache directory; targets live in a parallel array indexed by
// (setID * ways + wayID).
type btb struct {
	directory *akitacache.DirectoryImpl
	targets   []uint64
	ways      int
}

func newBTB(sets, ways int) *btb {
	return &btb{
		directory: akitacache.NewDirectory(
			sets,
			ways,
			instBytes,
			akitacache.NewLRUVictimFinder(),
		),
		targets: make([]uint64, sets*ways),
		ways:    ways,
	}
}

func (b *btb) index(block *akitacache.Block) int {
	return block.SetID*b.ways + block.WayID
}

// lookup returns the stored target for pc, if any.
func (b *btb) lookup(pc uint64) (uint64, bool) {
	block := b.directory.Lookup(0, pc)
	if block == nil || !block.IsValid {
		return 0, false
	}
	b.directory.Visit(block)
	return b.targets[b.index(block)], true
}

// insert records target for pc, evicting the LRU way on a conflict.
func (b *btb) insert(pc, target uint64) {
	block := b.directory.Lookup(0, pc)
	if block == nil || !block.IsValid {
		block = b.directory.FindVictim(pc)
		if block == nil {
			return
		}
		block.Tag = pc
		block.IsValid = true
	}
	b.targets[b.index(block)] = target
	b.directory.Visit(block)
}

func (b *btb) reset() {
	b.directory.Reset()
	for i := range b.targets {
		b.targets[i] = 0
	}
}
