package regression

import (
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/tb"
)

// ports are the signals of the RAM as seen by the tests.
type ports struct {
	CLKA, CLKB, ENA, ENB, WEA *hdl.Signal
	ADDRA, ADDRB, DIA, DOB    *hdl.Signal
}

func bindPorts(ctx *tb.Ctx) (*ports, error) {
	p := &ports{}

	bindings := []struct {
		target **hdl.Signal
		name   string
	}{
		{&p.CLKA, "CLKA"},
		{&p.CLKB, "CLKB"},
		{&p.ENA, "ENA"},
		{&p.ENB, "ENB"},
		{&p.WEA, "WEA"},
		{&p.ADDRA, "ADDRA"},
		{&p.ADDRB, "ADDRB"},
		{&p.DIA, "DIA"},
		{&p.DOB, "DOB"},
	}

	for _, b := range bindings {
		s, err := ctx.Signal(b.name)
		if err != nil {
			return nil, err
		}

		*b.target = s
	}

	return p, nil
}

type assignment struct {
	signal *hdl.Signal
	value  uint64
}

// deposit sets the signals in order, stopping at the first error.
func deposit(assignments ...assignment) error {
	for _, a := range assignments {
		if err := a.signal.Set(a.value); err != nil {
			return err
		}
	}

	return nil
}
