// Package tb runs testbench code against a simulated design.
//
// A test is a function that drives and observes the signals of a design and
// waits for triggers such as clock edges or timers. Each test and each task
// it forks run as coroutines: only one of them executes at any time, and the
// simulation only advances while all of them are waiting. Tasks resume in
// the order their triggers fire, so a run is fully deterministic.
//
// Edge triggers resume a task in the active region of the edge, before the
// non-blocking updates of the same time step. A task that waits for a rising
// clock edge therefore observes register outputs as they were before the
// edge. The ReadOnly trigger resumes a task after all the values of the
// current time step have settled.
package tb
