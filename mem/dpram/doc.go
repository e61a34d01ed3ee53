// Package dpram provides a simple dual-port RAM with one clock per port.
//
// Port A is a write port clocked by CLKA. On every rising edge of CLKA, if
// ENA and WEA are high, DIA is written to the word at ADDRA. Port B is a read
// port clocked by CLKB. On every rising edge of CLKB, if ENB is high, the word
// at ADDRB enters a chain of output registers and DOB shows the last one.
//
// Inputs are sampled at the clock edge and every update is committed in the
// NBA region, so a write and a read of the same word at the same instant
// return the old content.
package dpram
