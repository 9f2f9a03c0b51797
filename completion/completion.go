// Package completion implements the protocol benchmarks use to hand their
// result to the simulation harness: a result word, a status word, and a
// sentinel written last to mark the other two as valid.
package completion

import (
	"math"

	"github.com/sarchlab/branchstress/mem"
)

// Register offsets, relative to the base of the completion region.
const (
	ResultAddr   uint64 = 0x4
	SentinelAddr uint64 = 0x100
	StatusAddr   uint64 = 0x104
)

// MaxBase is the highest base address whose register block does not wrap
// around the top of the address space.
const MaxBase uint64 = math.MaxUint64 - (StatusAddr + 3)

// Status codes.
const (
	StatusPass uint32 = 0x0F
	StatusFail uint32 = 0x01
)

// SentinelValue marks the run as complete.
const SentinelValue uint32 = 0xCAFEF00D

// Sink receives the completion writes. The host decides what backs it.
type Sink interface {
	WriteResult(value int32)
	WriteStatus(code uint32)
	WriteSentinel()
}

// Signal writes result, then status, then the sentinel. The harness polls
// for the sentinel only, so it must come last.
func Signal(s Sink, result int32, status uint32) {
	s.WriteResult(result)
	s.WriteStatus(status)
	s.WriteSentinel()
}

// Completion is what the harness reads back once a run has finished.
type Completion struct {
	Result int32
	Status uint32
}

// Passed reports whether the status is StatusPass.
func (c Completion) Passed() bool {
	return c.Status == StatusPass
}

// MemorySink stores the completion registers into simulated memory.
type MemorySink struct {
	memory *mem.Memory
	base   uint64
}

// NewMemorySink creates a sink whose registers start at base.
func NewMemorySink(memory *mem.Memory, base uint64) *MemorySink {
	return &MemorySink{memory: memory, base: base}
}

// WriteResult stores the result word.
func (s *MemorySink) WriteResult(value int32) {
	s.memory.Write32(s.base+ResultAddr, uint32(value))
}

// WriteStatus stores the status word.
func (s *MemorySink) WriteStatus(code uint32) {
	s.memory.Write32(s.base+StatusAddr, code)
}

// WriteSentinel stores the sentinel.
func (s *MemorySink) WriteSentinel() {
	s.memory.Write32(s.base+SentinelAddr, SentinelValue)
}

// Read returns the completion registers at base. ok is false until the
// sentinel has been written.
func Read(memory *mem.Memory, base uint64) (c Completion, ok bool) {
	if memory.Read32(base+SentinelAddr) != SentinelValue {
		return Completion{}, false
	}
	return Completion{
		Result: int32(memory.Read32(base + ResultAddr)),
		Status: memory.Read32(base + StatusAddr),
	}, true
}
