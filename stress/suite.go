// Package stress provides the branch-pattern stress suite: eight generators
// that each run a fixed shape of conditional and indirect branches, and the
// phase driver that runs them in a fixed order and sums their scores.
//
// All scores are int32 and wrap on overflow.
package stress

import "github.com/sarchlab/branchstress/lfsr"

// Tracer observes the branch outcomes of a run. Implementations must not
// influence the generators; a traced run returns the same scores as an
// untraced one.
type Tracer interface {
	// Branch reports a conditional branch (including loop back-edges).
	Branch(site Site, taken bool)
	// Indirect reports an indirect call or jump and its resolved target.
	Indirect(site Site, target uint64)
}

// Suite holds the state shared by the generators: the sequence generator
// used by the random pattern and an optional tracer.
type Suite struct {
	seq    *lfsr.LFSR
	tracer Tracer
}

// SuiteOption is a functional option for configuring the Suite.
type SuiteOption func(*Suite)

// WithTracer attaches a tracer that receives every branch outcome.
func WithTracer(t Tracer) SuiteOption {
	return func(s *Suite) {
		s.tracer = t
	}
}

// WithSequence makes the suite draw from the given generator instead of a
// private one.
func WithSequence(seq *lfsr.LFSR) SuiteOption {
	return func(s *Suite) {
		s.seq = seq
	}
}

// NewSuite creates a suite with a freshly seeded sequence generator.
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{}
	for _, opt := range opts {
		opt(s)
	}
	if s.seq == nil {
		s.seq = lfsr.New()
	}
	return s
}

// Sequence returns the suite's sequence generator.
func (s *Suite) Sequence() *lfsr.LFSR {
	return s.seq
}

// branch reports a conditional outcome and passes it through.
func (s *Suite) branch(site Site, taken bool) bool {
	if s.tracer != nil {
		s.tracer.Branch(site, taken)
	}
	return taken
}

func (s *Suite) indirect(site Site, target uint64) {
	if s.tracer != nil {
		s.tracer.Indirect(site, target)
	}
}
