// Package predictor provides the branch predictor models the stress suite is
// run against: bimodal, gshare and tournament direction predictors in front
// of a set-associative Branch Target Buffer.
package predictor

// Stats holds statistics for the branch predictor.
type Stats struct {
	// Predictions is the total number of conditional predictions made.
	Predictions uint64
	// Correct is the number of correct direction predictions.
	Correct uint64
	// Mispredictions is the number of incorrect direction predictions.
	Mispredictions uint64
	// BTBHits is the number of BTB hits.
	BTBHits uint64
	// BTBMisses is the number of BTB misses.
	BTBMisses uint64
	// Indirect is the number of indirect branches resolved.
	Indirect uint64
	// IndirectMisses is the number of indirect branches whose target the
	// BTB did not supply.
	IndirectMisses uint64
}

// Accuracy returns the direction prediction accuracy as a percentage.
func (s Stats) Accuracy() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Predictions) * 100
}

// MispredictionRate returns the direction misprediction rate as a percentage.
func (s Stats) MispredictionRate() float64 {
	if s.Predictions == 0 {
		return 0
	}
	return float64(s.Mispredictions) / float64(s.Predictions) * 100
}

// BTBHitRate returns the BTB hit rate as a percentage.
func (s Stats) BTBHitRate() float64 {
	total := s.BTBHits + s.BTBMisses
	if total == 0 {
		return 0
	}
	return float64(s.BTBHits) / float64(total) * 100
}

// Sub returns the difference s - o, field by field.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Predictions:    s.Predictions - o.Predictions,
		Correct:        s.Correct - o.Correct,
		Mispredictions: s.Mispredictions - o.Mispredictions,
		BTBHits:        s.BTBHits - o.BTBHits,
		BTBMisses:      s.BTBMisses - o.BTBMisses,
		Indirect:       s.Indirect - o.Indirect,
		IndirectMisses: s.IndirectMisses - o.IndirectMisses,
	}
}

// Prediction represents a branch prediction result.
type Prediction struct {
	// Taken indicates whether the branch is predicted to be taken.
	Taken bool
	// Target is the predicted target address (if known from BTB).
	Target uint64
	// TargetKnown indicates whether the target address is known.
	TargetKnown bool
}

// Counter states: 0=Strongly Not Taken, 1=Weakly Not Taken,
// 2=Weakly Taken, 3=Strongly Taken.
const weaklyTaken = 2

// BranchPredictor predicts conditional branch directions with 2-bit
// saturating counters and branch targets with a BTB.
type BranchPredictor struct {
	config Config

	// bimodal counters, indexed by PC
	bht []uint8
	// gshare counters, indexed by PC XOR history
	pht []uint8
	// chooser counters; >= 2 selects gshare
	chooser []uint8

	history     uint32
	historyMask uint32

	btb *btb

	stats Stats
}

// NewBranchPredictor creates a new branch predictor with the given
// configuration. Zero sizes fall back to the defaults.
func NewBranchPredictor(config Config) *BranchPredictor {
	def := DefaultConfig()
	if config.Kind == "" {
		config.Kind = def.Kind
	}
	if config.BHTSize == 0 {
		config.BHTSize = def.BHTSize
	}
	if config.BTBSets == 0 {
		config.BTBSets = def.BTBSets
	}
	if config.BTBWays == 0 {
		config.BTBWays = def.BTBWays
	}
	if config.GlobalHistoryLength == 0 && config.Kind != KindBimodal {
		config.GlobalHistoryLength = def.GlobalHistoryLength
	}
	if config.MispredictPenalty == 0 {
		config.MispredictPenalty = def.MispredictPenalty
	}

	bp := &BranchPredictor{
		config:  config,
		bht:     make([]uint8, config.BHTSize),
		pht:     make([]uint8, config.BHTSize),
		chooser: make([]uint8, config.BHTSize),
		btb:     newBTB(config.BTBSets, config.BTBWays),
	}
	if config.GlobalHistoryLength >= 32 {
		bp.historyMask = ^uint32(0)
	} else {
		bp.historyMask = uint32(1)<<config.GlobalHistoryLength - 1
	}

	bp.resetCounters()

	return bp
}

// Config returns the configuration in effect.
func (bp *BranchPredictor) Config() Config {
	return bp.config
}

func (bp *BranchPredictor) resetCounters() {
	// Biased towards taken
	for i := range bp.bht {
		bp.bht[i] = weaklyTaken
		bp.pht[i] = weaklyTaken
		bp.chooser[i] = weaklyTaken
	}
	bp.history = 0
}

// pcIndex uses the low PC bits above the instruction alignment.
func (bp *BranchPredictor) pcIndex(pc uint64) uint32 {
	return uint32(pc>>2) & (bp.config.BHTSize - 1)
}

func (bp *BranchPredictor) globalIndex(pc uint64) uint32 {
	return (uint32(pc>>2) ^ bp.history) & (bp.config.BHTSize - 1)
}

// direction returns the prediction of each component and the final choice.
func (bp *BranchPredictor) direction(pc uint64) (local, global, taken bool) {
	local = bp.bht[bp.pcIndex(pc)] >= weaklyTaken
	global = bp.pht[bp.globalIndex(pc)] >= weaklyTaken

	switch bp.config.Kind {
	case KindBimodal:
		taken = local
	case KindGShare:
		taken = global
	default:
		if bp.chooser[bp.pcIndex(pc)] >= weaklyTaken {
			taken = global
		} else {
			taken = local
		}
	}
	return local, global, taken
}

// Predict makes a branch prediction for the given PC.
func (bp *BranchPredictor) Predict(pc uint64) Prediction {
	_, _, taken := bp.direction(pc)
	pred := Prediction{Taken: taken}

	if target, ok := bp.btb.lookup(pc); ok {
		pred.Target = target
		pred.TargetKnown = true
		bp.stats.BTBHits++
	} else {
		bp.stats.BTBMisses++
	}

	bp.stats.Predictions++
	return pred
}

func saturate(counter uint8, taken bool) uint8 {
	if taken {
		if counter < 3 {
			return counter + 1
		}
		return counter
	}
	if counter > 0 {
		return counter - 1
	}
	return counter
}

// Resolve scores pred against the actual outcome of a conditional branch
// and trains the predictor with it. pred must come from Predict on the same
// pc with no other branch resolved in between. It reports whether the
// direction was predicted correctly.
func (bp *BranchPredictor) Resolve(pc uint64, pred Prediction, taken bool, target uint64) bool {
	correct := pred.Taken == taken
	if correct {
		bp.stats.Correct++
	} else {
		bp.stats.Mispredictions++
	}

	local, global, _ := bp.direction(pc)

	// The chooser only learns when the components disagree.
	if local != global {
		ci := bp.pcIndex(pc)
		bp.chooser[ci] = saturate(bp.chooser[ci], global == taken)
	}

	li := bp.pcIndex(pc)
	bp.bht[li] = saturate(bp.bht[li], taken)
	gi := bp.globalIndex(pc)
	bp.pht[gi] = saturate(bp.pht[gi], taken)

	bp.history = bp.history << 1 & bp.historyMask
	if taken {
		bp.history |= 1
	}

	if taken {
		bp.btb.insert(pc, target)
	}

	return correct
}

// Update trains the predictor with the actual outcome of a conditional
// branch that was not run through Predict. It scores against the direction
// the predictor would choose now.
func (bp *BranchPredictor) Update(pc uint64, taken bool, target uint64) {
	_, _, predicted := bp.direction(pc)
	bp.Resolve(pc, Prediction{Taken: predicted}, taken, target)
}

// ResolveIndirect handles an indirect branch: the BTB's stored target is the
// prediction, and the actual target replaces it.
func (bp *BranchPredictor) ResolveIndirect(pc, target uint64) bool {
	bp.stats.Indirect++

	predicted, ok := bp.btb.lookup(pc)
	hit := ok && predicted == target
	if !hit {
		bp.stats.IndirectMisses++
	}

	bp.btb.insert(pc, target)
	return hit
}

// PenaltyCycles returns the cycles lost to direction and target
// mispredictions so far.
func (bp *BranchPredictor) PenaltyCycles() uint64 {
	return (bp.stats.Mispredictions + bp.stats.IndirectMisses) * bp.config.MispredictPenalty
}

// Stats returns the branch predictor statistics.
func (bp *BranchPredictor) Stats() Stats {
	return bp.stats
}

// Reset clears all predictor state and statistics.
func (bp *BranchPredictor) Reset() {
	bp.resetCounters()
	bp.btb.reset()
	bp.stats = Stats{}
}
