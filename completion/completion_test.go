package completion_test

import (
	"math"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchstress/completion"
	"github.com/sarchlab/branchstress/mem"
)

func TestCompletion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Completion Suite")
}

// orderSink fails the moment the sentinel is written before the other two.
type orderSink struct {
	memory *mem.Memory
	inner  *completion.MemorySink
	seen   []uint64
}

func (s *orderSink) WriteResult(v int32) {
	s.seen = append(s.seen, completion.ResultAddr)
	s.inner.WriteResult(v)
}

func (s *orderSink) WriteStatus(c uint32) {
	s.seen = append(s.seen, completion.StatusAddr)
	s.inner.WriteStatus(c)
}

func (s *orderSink) WriteSentinel() {
	_, ok := completion.Read(s.memory, 0)
	Expect(ok).To(BeFalse(), "sentinel already present before final write")
	Expect(s.seen).To(ConsistOf(completion.ResultAddr, completion.StatusAddr))
	s.inner.WriteSentinel()
}

var _ = Describe("Completion protocol", func() {
	It("should use the fixed register layout", func() {
		Expect(completion.ResultAddr).To(Equal(uint64(0x4)))
		Expect(completion.SentinelAddr).To(Equal(uint64(0x100)))
		Expect(completion.StatusAddr).To(Equal(uint64(0x104)))
		Expect(completion.SentinelValue).To(Equal(uint32(0xCAFEF00D)))
	})

	It("should write result, status, then sentinel", func() {
		rec := &completion.Recorder{}
		completion.Signal(rec, -5052, completion.StatusPass)

		Expect(rec.Writes).To(Equal([]completion.Write{
			{Addr: completion.ResultAddr, Value: uint32(0xFFFFEC44)},
			{Addr: completion.StatusAddr, Value: 0x0F},
			{Addr: completion.SentinelAddr, Value: 0xCAFEF00D},
		}))
		Expect(rec.Completed()).To(BeTrue())
	})

	It("should make result and status visible before the sentinel", func() {
		memory := mem.NewMemory()
		sink := &orderSink{memory: memory, inner: completion.NewMemorySink(memory, 0)}
		completion.Signal(sink, 7, completion.StatusPass)

		c, ok := completion.Read(memory, 0)
		Expect(ok).To(BeTrue())
		Expect(c.Result).To(Equal(int32(7)))
	})

	Describe("MemorySink", func() {
		var memory *mem.Memory

		BeforeEach(func() {
			memory = mem.NewMemory()
		})

		It("should not report completion before the sentinel", func() {
			sink := completion.NewMemorySink(memory, 0)
			sink.WriteResult(1)
			sink.WriteStatus(completion.StatusPass)

			_, ok := completion.Read(memory, 0)
			Expect(ok).To(BeFalse())
		})

		It("should round-trip negative results", func() {
			completion.Signal(completion.NewMemorySink(memory, 0), -5052, completion.StatusPass)

			c, ok := completion.Read(memory, 0)
			Expect(ok).To(BeTrue())
			Expect(c.Result).To(Equal(int32(-5052)))
			Expect(c.Passed()).To(BeTrue())
		})

		It("should honor the base address", func() {
			completion.Signal(completion.NewMemorySink(memory, 0x8000), 3, completion.StatusFail)

			Expect(memory.Read32(0x8004)).To(Equal(uint32(3)))
			Expect(memory.Read32(0x8104)).To(Equal(uint32(0x01)))
			Expect(memory.Read32(0x8100)).To(Equal(uint32(0xCAFEF00D)))

			c, ok := completion.Read(memory, 0x8000)
			Expect(ok).To(BeTrue())
			Expect(c.Passed()).To(BeFalse())
		})

		It("should fit the whole register block at the highest base", func() {
			completion.Signal(completion.NewMemorySink(memory, completion.MaxBase), 7, completion.StatusPass)

			Expect(memory.Read8(math.MaxUint64)).To(Equal(byte(0x00)))
			Expect(memory.Read8(math.MaxUint64 - 3)).To(Equal(byte(completion.StatusPass)))
			Expect(memory.Read32(0x104)).To(BeZero())

			c, ok := completion.Read(memory, completion.MaxBase)
			Expect(ok).To(BeTrue())
			Expect(c.Result).To(Equal(int32(7)))
		})
	})
})
