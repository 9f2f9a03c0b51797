package stress_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/branchstress/completion"
	"github.com/sarchlab/branchstress/lfsr"
	"github.com/sarchlab/branchstress/stress"
)

func TestStress(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Stress Suite")
}

type event struct {
	site   string
	taken  bool
	target uint64
}

type recordingTracer struct {
	events []event
}

func (r *recordingTracer) Branch(site stress.Site, taken bool) {
	r.events = append(r.events, event{site: site.Name, taken: taken})
}

func (r *recordingTracer) Indirect(site stress.Site, target uint64) {
	r.events = append(r.events, event{site: site.Name, taken: true, target: target})
}

func (r *recordingTracer) outcomes(site string) []bool {
	var out []bool
	for _, e := range r.events {
		if e.site == site {
			out = append(out, e.taken)
		}
	}
	return out
}

var _ = Describe("Pattern generators", func() {
	var s *stress.Suite

	BeforeEach(func() {
		s = stress.NewSuite()
	})

	Describe("Correlated", func() {
		It("should score -6 for a single iteration", func() {
			Expect(s.Correlated(1)).To(Equal(int32(-6)))
		})

		It("should score -80 for 64 iterations", func() {
			Expect(s.Correlated(64)).To(Equal(int32(-80)))
		})

		It("should return zero when there is nothing to do", func() {
			Expect(s.Correlated(0)).To(BeZero())
		})
	})

	Describe("Random", func() {
		It("should draw from the shared sequence across calls", func() {
			Expect(s.Random(64)).To(Equal(int32(66)))
			Expect(s.Random(64)).To(Equal(int32(58)))
		})

		It("should repeat after the sequence is reset", func() {
			first := s.Random(64)
			s.Sequence().Reset()
			Expect(s.Random(64)).To(Equal(first))
		})

		It("should advance the generator once per iteration", func() {
			seq := lfsr.New()
			s = stress.NewSuite(stress.WithSequence(seq))
			s.Random(3)

			ref := lfsr.New()
			ref.Next()
			ref.Next()
			Expect(seq.State()).To(Equal(ref.Next()))
		})
	})

	Describe("NestedLoops", func() {
		It("should sum the full inner range on even outer iterations", func() {
			Expect(s.NestedLoops(1, 8)).To(Equal(int32(28)))
		})

		It("should leave early on odd outer iterations", func() {
			// i=1: limit 9, j=0..8, break after adding 8
			Expect(s.NestedLoops(2, 8)).To(Equal(int32(64)))
		})

		It("should score 580 with the phase parameters", func() {
			Expect(s.NestedLoops(16, 8)).To(Equal(int32(580)))
		})
	})

	Describe("IndirectCalls", func() {
		It("should walk add1, sub1, double, halve", func() {
			Expect(s.IndirectCalls(4)).To(Equal(int32(100)))
		})

		It("should start from 100", func() {
			Expect(s.IndirectCalls(0)).To(Equal(int32(100)))
			Expect(s.IndirectCalls(5)).To(Equal(int32(101)))
		})

		It("should report the transform entry as the indirect target", func() {
			tr := &recordingTracer{}
			s = stress.NewSuite(stress.WithTracer(tr))
			s.IndirectCalls(5)

			table := stress.DispatchTable()
			var targets []uint64
			for _, e := range tr.events {
				if e.site == "indirect.call" {
					targets = append(targets, e.target)
				}
			}
			Expect(targets).To(Equal([]uint64{
				table[0].Entry, table[1].Entry, table[2].Entry, table[3].Entry, table[0].Entry,
			}))
		})
	})

	Describe("Alternating", func() {
		It("should cancel out over two iterations", func() {
			Expect(s.Alternating(2)).To(BeZero())
		})

		It("should score -1 for an odd count", func() {
			Expect(s.Alternating(3)).To(Equal(int32(-1)))
		})
	})

	Describe("Bimodal", func() {
		It("should score -93 for one full period", func() {
			Expect(s.Bimodal(8)).To(Equal(int32(-93)))
		})

		It("should score -1488 for 128 iterations", func() {
			Expect(s.Bimodal(128)).To(Equal(int32(-1488)))
		})
	})

	Describe("LongHistory", func() {
		It("should decrease by one on each of the first iterations", func() {
			for n := int32(1); n <= 6; n++ {
				Expect(s.LongHistory(n)).To(Equal(-n))
			}
		})

		It("should never be taken from an all-zero history", func() {
			tr := &recordingTracer{}
			s = stress.NewSuite(stress.WithTracer(tr))
			Expect(s.LongHistory(128)).To(Equal(int32(-128)))
			Expect(tr.outcomes("long_history.taken")).To(HaveLen(128))
			Expect(tr.outcomes("long_history.taken")).NotTo(ContainElement(true))
		})
	})

	Describe("Switch", func() {
		It("should add the Fibonacci-like constants", func() {
			Expect(s.Switch(8)).To(Equal(int32(87)))
			Expect(s.Switch(64)).To(Equal(int32(696)))
		})

		It("should dispatch to a distinct target per case", func() {
			tr := &recordingTracer{}
			s = stress.NewSuite(stress.WithTracer(tr))
			s.Switch(8)

			targets := map[uint64]struct{}{}
			for _, e := range tr.events {
				if e.site == "switch.dispatch" {
					targets[e.target] = struct{}{}
				}
			}
			Expect(targets).To(HaveLen(8))
		})
	})
})

var _ = Describe("Dispatch table", func() {
	It("should hold add1, sub1, double, halve in order", func() {
		table := stress.DispatchTable()
		names := []string{table[0].Name, table[1].Name, table[2].Name, table[3].Name}
		Expect(names).To(Equal([]string{"add1", "sub1", "double", "halve"}))
	})

	It("should cycle by index modulo four", func() {
		Expect(stress.Dispatch(0).Name).To(Equal("add1"))
		Expect(stress.Dispatch(5).Name).To(Equal("sub1"))
		Expect(stress.Dispatch(10).Name).To(Equal("double"))
		Expect(stress.Dispatch(7).Name).To(Equal("halve"))
	})

	It("should halve with sign preserved", func() {
		halve := stress.Dispatch(3).Apply
		Expect(halve(200)).To(Equal(int32(100)))
		Expect(halve(-7)).To(Equal(int32(-4)))
		Expect(halve(-1)).To(Equal(int32(-1)))
	})

	It("should wrap when doubling past the int32 range", func() {
		double := stress.Dispatch(2).Apply
		Expect(double(0x40000000)).To(Equal(int32(-0x80000000)))
	})
})

var _ = Describe("Phase driver", func() {
	It("should run the phases in the fixed order", func() {
		var names []string
		for _, p := range stress.Phases() {
			names = append(names, p.Name)
		}
		Expect(names).To(Equal([]string{
			"correlated", "random", "nested_loops", "indirect_calls",
			"alternating", "bimodal", "long_history", "switch",
		}))
	})

	It("should produce the reference phase scores", func() {
		results := stress.NewSuite().RunPhases()
		scores := make([]int32, 0, len(results))
		for _, r := range results {
			scores = append(scores, r.Score)
		}
		Expect(scores).To(Equal([]int32{-1600, 1348, 11600, 2000, 0, -29760, -2560, 13920}))
	})

	It("should accumulate -5052", func() {
		Expect(stress.NewSuite().Run()).To(Equal(int32(-5052)))
	})

	It("should be deterministic across runs on the same suite", func() {
		s := stress.NewSuite()
		first := s.Run()
		s.Sequence().Next()
		Expect(s.Run()).To(Equal(first))
	})

	It("should not change scores when traced", func() {
		tr := &recordingTracer{}
		Expect(stress.NewSuite(stress.WithTracer(tr)).Run()).To(Equal(int32(-5052)))
		Expect(tr.events).NotTo(BeEmpty())
	})

	It("should trace only known sites", func() {
		known := map[string]bool{}
		for _, site := range stress.Sites() {
			known[site.Name] = true
		}

		tr := &recordingTracer{}
		stress.NewSuite(stress.WithTracer(tr)).Run()
		for _, e := range tr.events {
			Expect(known).To(HaveKey(e.site))
		}
	})

	It("should give every site a distinct PC", func() {
		pcs := map[uint64]string{}
		for _, site := range stress.Sites() {
			Expect(pcs).NotTo(HaveKey(site.PC), site.Name)
			pcs[site.PC] = site.Name
		}
	})

	It("should report the result with a pass status", func() {
		rec := &completion.Recorder{}
		result := stress.NewSuite().Execute(rec)

		Expect(result).To(Equal(int32(-5052)))
		Expect(rec.Writes).To(HaveLen(3))
		Expect(rec.Writes[0].Value).To(Equal(uint32(result)))
		Expect(rec.Writes[1].Value).To(Equal(completion.StatusPass))
		Expect(rec.Completed()).To(BeTrue())
	})
})
