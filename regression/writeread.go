package regression

import (
	"github.com/sarchlab/dpramtb/tb"
)

// WriteReadTest writes 517 to address 3 and reads it back.
func WriteReadTest(ctx *tb.Ctx) error {
	return writeRead(ctx, 3, 517, Options{}.withDefaults())
}

func writeRead(ctx *tb.Ctx, addr, value uint64, o Options) error {
	p, err := bindPorts(ctx)
	if err != nil {
		return err
	}

	if err = initialize(ctx, p, o); err != nil {
		return err
	}

	err = deposit(
		assignment{p.WEA, 1},
		assignment{p.ADDRA, addr},
		assignment{p.DIA, value},
	)
	if err != nil {
		return err
	}

	if err = ctx.RisingEdge(p.CLKA); err != nil {
		return err
	}

	ctx.Logf("%d was written at address: %d", value, addr)

	if err = p.WEA.Set(0); err != nil {
		return err
	}

	got, err := readBack(ctx, p, addr, o.ReadLatency)
	if err != nil {
		return err
	}

	if got != value {
		return &MismatchError{Addr: addr, Expected: value, Got: got}
	}

	ctx.Logf("Test is OK")

	return nil
}
