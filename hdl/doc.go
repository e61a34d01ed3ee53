// Package hdl binds a testbench to the signals of a simulated design.
//
// A Signal is a named bit vector of fixed width. The testbench writes a
// signal with Set, which deposits the value: it becomes visible in the NBA
// region of the current time step, after every process that is sensitive to
// the same clock edge has sampled the old value. Models and clocks use Drive,
// which changes the value immediately. Every value change notifies the
// listeners subscribed to the matching edge, in subscription order.
//
// The Kernel collects deposits and commits them, in the order they were
// made, in a single NBA event per time step. A Clock toggles a 1-bit signal
// every half period.
package hdl
