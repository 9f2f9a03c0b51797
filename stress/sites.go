package stress

// Site is a static branch location. PC is the address of the branch and
// Target is where it goes when taken. Indirect sites have no fixed target.
//
// The addresses lay the generators out as if each were a small function in
// its own 256-byte slot, so predictors that index by PC see distinct,
// stable branches.
type Site struct {
	Name     string
	PC       uint64
	Target   uint64
	Indirect bool
}

var (
	siteCorrelatedLoop = Site{Name: "correlated.loop", PC: 0x1048, Target: 0x1004}
	siteCorrelatedXor  = Site{Name: "correlated.xor_and_c", PC: 0x1014, Target: 0x1024}
	siteCorrelatedAnd  = Site{Name: "correlated.a_and_not_b", PC: 0x102C, Target: 0x103C}

	siteRandomLoop = Site{Name: "random.loop", PC: 0x1138, Target: 0x1104}
	siteRandomBit0 = Site{Name: "random.bit0", PC: 0x1110, Target: 0x1120}
	siteRandomBit3 = Site{Name: "random.bit3", PC: 0x1124, Target: 0x1130}

	siteNestedOuter = Site{Name: "nested.outer", PC: 0x1250, Target: 0x1204}
	siteNestedInner = Site{Name: "nested.inner", PC: 0x1238, Target: 0x1214}
	siteNestedExit  = Site{Name: "nested.early_exit", PC: 0x1228, Target: 0x1240}

	siteIndirectLoop = Site{Name: "indirect.loop", PC: 0x1330, Target: 0x1304}
	siteIndirectCall = Site{Name: "indirect.call", PC: 0x1318, Indirect: true}

	siteAlternatingLoop = Site{Name: "alternating.loop", PC: 0x1420, Target: 0x1404}
	siteAlternatingOdd  = Site{Name: "alternating.odd", PC: 0x140C, Target: 0x1418}

	siteBimodalLoop  = Site{Name: "bimodal.loop", PC: 0x1520, Target: 0x1504}
	siteBimodalTaken = Site{Name: "bimodal.not_seven", PC: 0x150C, Target: 0x1518}

	siteLongHistoryLoop  = Site{Name: "long_history.loop", PC: 0x1640, Target: 0x1604}
	siteLongHistoryTaken = Site{Name: "long_history.taken", PC: 0x1620, Target: 0x1630}

	siteSwitchLoop     = Site{Name: "switch.loop", PC: 0x17A0, Target: 0x1704}
	siteSwitchDispatch = Site{Name: "switch.dispatch", PC: 0x1710, Indirect: true}
)

// switchCaseBase is the address of case 0; each case body is 8 bytes.
const switchCaseBase uint64 = 0x1720

func switchCaseTarget(val int32) uint64 {
	return switchCaseBase + uint64(val)*8
}

// Sites returns every branch site in layout order.
func Sites() []Site {
	return []Site{
		siteCorrelatedXor, siteCorrelatedAnd, siteCorrelatedLoop,
		siteRandomBit0, siteRandomBit3, siteRandomLoop,
		siteNestedInner, siteNestedExit, siteNestedOuter,
		siteIndirectCall, siteIndirectLoop,
		siteAlternatingOdd, siteAlternatingLoop,
		siteBimodalTaken, siteBimodalLoop,
		siteLongHistoryTaken, siteLongHistoryLoop,
		siteSwitchDispatch, siteSwitchLoop,
	}
}
