package stress

// Correlated runs branches whose outcomes are functions of the low three bits
// of the loop index, so a global-history predictor can learn them from the
// preceding outcomes.
func (s *Suite) Correlated(n int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteCorrelatedLoop, i < n); i++ {
		a := i & 1
		b := (i & 2) >> 1
		c := (i & 4) >> 2

		if s.branch(siteCorrelatedXor, a^b != 0 && c != 0) {
			sum += 10
		} else {
			sum -= 5
		}

		if s.branch(siteCorrelatedAnd, a != 0 && b == 0) {
			sum += 3
		} else {
			sum -= 1
		}
	}
	return sum
}

// Random branches on bits 0 and 3 of the sequence generator. The generator
// state carries over between calls.
func (s *Suite) Random(n int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteRandomLoop, i < n); i++ {
		r := s.seq.Next()

		if s.branch(siteRandomBit0, r&1 != 0) {
			sum += 1
		} else {
			sum -= 1
		}

		if s.branch(siteRandomBit3, r&8 != 0) {
			sum += 2
		}
	}
	return sum
}

// NestedLoops runs an inner loop whose trip count varies with the outer
// index, leaving early on odd outer iterations once j reaches innerBase.
func (s *Suite) NestedLoops(outer, innerBase int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteNestedOuter, i < outer); i++ {
		innerLimit := innerBase + (i & 3)
		for j := int32(0); s.branch(siteNestedInner, j < innerLimit); j++ {
			sum += j

			if s.branch(siteNestedExit, j == innerBase && i&1 != 0) {
				break
			}
		}
	}
	return sum
}

// IndirectCalls threads a value through the dispatch table, cycling
// add1, sub1, double, halve.
func (s *Suite) IndirectCalls(n int32) int32 {
	result := int32(100)
	for i := int32(0); s.branch(siteIndirectLoop, i < n); i++ {
		t := Dispatch(i)
		s.indirect(siteIndirectCall, t.Entry)
		result = t.Apply(result)
	}
	return result
}

// Alternating is taken on every odd iteration.
func (s *Suite) Alternating(n int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteAlternatingLoop, i < n); i++ {
		if s.branch(siteAlternatingOdd, i&1 != 0) {
			sum += 1
		} else {
			sum -= 1
		}
	}
	return sum
}

// Bimodal is taken seven times out of eight.
func (s *Suite) Bimodal(n int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteBimodalLoop, i < n); i++ {
		if s.branch(siteBimodalTaken, i&7 != 7) {
			sum += 1
		} else {
			sum -= 100
		}
	}
	return sum
}

// LongHistory decides each outcome from bits 0, 2 and 5 of an 8-bit local
// history of its own previous outcomes. The history starts at zero on every
// call.
func (s *Suite) LongHistory(n int32) int32 {
	var sum int32
	var history uint8
	for i := int32(0); s.branch(siteLongHistoryLoop, i < n); i++ {
		h0 := history & 1
		h2 := (history >> 2) & 1
		h5 := (history >> 5) & 1
		taken := h0 ^ h2 ^ h5

		if s.branch(siteLongHistoryTaken, taken != 0) {
			sum += 1
		} else {
			sum -= 1
		}

		history = history<<1 | taken
	}
	return sum
}

// Switch dispatches eight ways on the low three bits of the index.
func (s *Suite) Switch(n int32) int32 {
	var sum int32
	for i := int32(0); s.branch(siteSwitchLoop, i < n); i++ {
		val := i & 7
		s.indirect(siteSwitchDispatch, switchCaseTarget(val))
		switch val {
		case 0:
			sum += 1
		case 1:
			sum += 2
		case 2:
			sum += 3
		case 3:
			sum += 5
		case 4:
			sum += 8
		case 5:
			sum += 13
		case 6:
			sum += 21
		case 7:
			sum += 34
		}
	}
	return sum
}
