// Package lfsr provides the 16-bit Fibonacci LFSR that drives the
// data-dependent branch patterns.
package lfsr

// Seed is the fixed power-on state.
const Seed uint16 = 0xACE1

// LFSR is a 16-bit Fibonacci linear-feedback shift register with taps at
// bit positions 0, 2, 3 and 5, shifting right. Starting from any nonzero
// state it walks all 65535 nonzero values before repeating.
type LFSR struct {
	state uint16
}

// New creates an LFSR at Seed.
func New() *LFSR {
	return &LFSR{state: Seed}
}

// NewWithSeed creates an LFSR at the given state. A zero seed would lock the
// register at zero forever, so Seed is used instead.
func NewWithSeed(seed uint16) *LFSR {
	if seed == 0 {
		seed = Seed
	}
	return &LFSR{state: seed}
}

// Next advances the register by one step and returns the new state.
func (l *LFSR) Next() uint16 {
	s := l.state
	bit := (s ^ s>>2 ^ s>>3 ^ s>>5) & 1
	l.state = s>>1 | bit<<15
	return l.state
}

// State returns the current state without advancing.
func (l *LFSR) State() uint16 {
	return l.state
}

// Reset puts the register back at Seed.
func (l *LFSR) Reset() {
	l.state = Seed
}
