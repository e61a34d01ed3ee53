package regression

import (
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/tb"
)

// writeEnableChecker samples WEA on every rising edge of CLKA and flags the
// edges where a write is enabled outside of the write phase.
type writeEnableChecker struct {
	p   *ports
	sub *hdl.Subscription

	writing     bool
	writeCycles int
	idleCycles  int
	err         error
}

func watchWriteEnable(p *ports) (*writeEnableChecker, error) {
	c := &writeEnableChecker{p: p}

	sub, err := p.CLKA.Subscribe(hdl.EdgeRising, hdl.ListenerFunc(c.sample))
	if err != nil {
		return nil, err
	}

	c.sub = sub

	return c, nil
}

func (c *writeEnableChecker) sample(_ *hdl.Signal, _ hdl.Edge) {
	if !c.p.WEA.Bool() {
		c.idleCycles++
		return
	}

	if c.writing {
		c.writeCycles++
		return
	}

	if c.err == nil {
		c.err = tb.Failf("WEA asserted outside of a write at address %d",
			c.p.ADDRA.Uint())
	}
}

// Err returns the first violation.
func (c *writeEnableChecker) Err() error {
	return c.err
}

func (c *writeEnableChecker) close() {
	c.p.CLKA.Unsubscribe(c.sub)
}
