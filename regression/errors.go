package regression

import "fmt"

// MismatchError reports a word that was not read back as written.
type MismatchError struct {
	Addr     uint64
	Expected uint64
	Got      uint64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"Data read at address %d is not correct. "+
			"The data written was %d and %d was read",
		e.Addr, e.Expected, e.Got)
}

// IsFailure marks the mismatch as a failure of the design.
func (e *MismatchError) IsFailure() bool {
	return true
}
