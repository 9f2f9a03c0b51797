package stress

// Transform is one entry of the indirect-call dispatch table.
type Transform struct {
	Name string
	// Entry is the transform's address, reported as the indirect target.
	Entry uint64
	Apply func(x int32) int32
}

func add1(x int32) int32   { return x + 1 }
func sub1(x int32) int32   { return x - 1 }
func double(x int32) int32 { return x + x }

// halve keeps the sign: >> on a signed integer is an arithmetic shift.
func halve(x int32) int32 { return x >> 1 }

var dispatchTable = [4]Transform{
	{Name: "add1", Entry: 0x1800, Apply: add1},
	{Name: "sub1", Entry: 0x1810, Apply: sub1},
	{Name: "double", Entry: 0x1820, Apply: double},
	{Name: "halve", Entry: 0x1830, Apply: halve},
}

// DispatchTable returns the four transforms in selection order.
func DispatchTable() [4]Transform {
	return dispatchTable
}

// Dispatch selects the transform for iteration i.
func Dispatch(i int32) Transform {
	return dispatchTable[i&3]
}
