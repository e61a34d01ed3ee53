package regression

import "github.com/sarchlab/dpramtb/tb"

// Tests returns the tests of the regression with the default options.
func Tests() []tb.Test {
	return NewTests(Options{})
}

// NewTests returns the tests of the regression with the given options.
func NewTests(opts Options) []tb.Test {
	return []tb.Test{
		{
			Name: "simple_test",
			Doc: "Writes random values to all memory addresses " +
				"and reads them back.",
			Func: NewSimpleTest(opts),
		},
		{
			Name: "write_read_test",
			Doc:  "Writes 517 to address 3 and reads it back.",
			Func: func(ctx *tb.Ctx) error {
				return writeRead(ctx, 3, 517, opts.withDefaults())
			},
		},
	}
}

// Select returns the tests with the given names, in the given order. An
// empty list selects all the tests.
func Select(tests []tb.Test, names []string) ([]tb.Test, error) {
	if len(names) == 0 {
		return tests, nil
	}

	byName := make(map[string]tb.Test, len(tests))
	for _, t := range tests {
		byName[t.Name] = t
	}

	selected := make([]tb.Test, 0, len(names))
	for _, n := range names {
		t, found := byName[n]
		if !found {
			return nil, &UnknownTestError{Name: n}
		}

		selected = append(selected, t)
	}

	return selected, nil
}

// UnknownTestError is returned when selecting a test that does not exist.
type UnknownTestError struct {
	Name string
}

func (e *UnknownTestError) Error() string {
	return "unknown test " + e.Name
}
