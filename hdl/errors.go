package hdl

import "errors"

var (
	// ErrValueOutOfRange is returned when a value does not fit the signal.
	ErrValueOutOfRange = errors.New("hdl: value does not fit the signal width")

	// ErrWriteInReadOnly is returned when a signal is written while the
	// engine is in the read-only region.
	ErrWriteInReadOnly = errors.New(
		"hdl: signals cannot be written in the read-only region")

	// ErrInvalidWidth is returned when creating a signal of an unsupported
	// width.
	ErrInvalidWidth = errors.New("hdl: signal width must be between 1 and 64")

	// ErrSignalNotFound is returned when a design has no signal of the
	// requested name.
	ErrSignalNotFound = errors.New("hdl: signal not found")

	// ErrEdgeNeedsOneBit is returned when rising or falling edges are
	// requested on a multi-bit signal.
	ErrEdgeNeedsOneBit = errors.New("hdl: edges are only defined on 1-bit signals")

	// ErrInvalidPeriod is returned when a clock period cannot be split into
	// two equal phases.
	ErrInvalidPeriod = errors.New("hdl: clock period must be even and at least 2ps")
)
