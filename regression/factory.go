package regression

import (
	"github.com/sarchlab/dpramtb/hdl"
	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/sim/timing"
	"github.com/sarchlab/dpramtb/tb"
)

// DesignConfig describes the RAM the tests run against.
type DesignConfig struct {
	AddrWidth   int
	DataWidth   int
	ReadLatency int
}

// DefaultDesign is a 1024 x 16 RAM with one output register.
var DefaultDesign = DesignConfig{
	AddrWidth:   10,
	DataWidth:   16,
	ReadLatency: 1,
}

// A Setup is called on every new simulation, before the named test starts.
type Setup func(testName string, sim *tb.Simulation, ram *dpram.Comp) error

// NewFactory returns a factory that builds a serial engine and a RAM named
// "DUT" for every test.
func NewFactory(cfg DesignConfig, setups ...Setup) tb.Factory {
	return func(testName string) (*tb.Simulation, error) {
		engine := timing.NewSerialEngine()
		kernel := hdl.NewKernel(engine)

		ram, err := dpram.MakeBuilder().
			WithEngine(engine).
			WithKernel(kernel).
			WithAddrWidth(cfg.AddrWidth).
			WithDataWidth(cfg.DataWidth).
			WithReadLatency(cfg.ReadLatency).
			Build("DUT")
		if err != nil {
			return nil, err
		}

		sim := &tb.Simulation{
			Engine: engine,
			Kernel: kernel,
			DUT:    ram,
		}

		for _, setup := range setups {
			if err := setup(testName, sim, ram); err != nil {
				return nil, err
			}
		}

		return sim, nil
	}
}
