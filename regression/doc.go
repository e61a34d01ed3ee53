// Package regression holds the tests of the dual-port RAM.
//
// The RAM has a write port clocked by CLKA and a read port clocked by CLKB.
// The tests write every address through port A and read every address back
// through port B, two read clock edges after presenting the address.
package regression
