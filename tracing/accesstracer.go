package tracing

import (
	"github.com/sarchlab/dpramtb/datarecording"
	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/sim/hooking"
)

// AccessTableName is the table that holds the RAM accesses.
const AccessTableName = "mem_access"

type accessEntry struct {
	Test   string
	Port   string
	Kind   string
	Addr   uint64
	Data   uint64
	TimePS uint64
}

// AccessTracer is a hook that records every committed access of a RAM.
type AccessTracer struct {
	backend  datarecording.DataRecorder
	testName string
}

// NewAccessTracer creates a tracer that tags its entries with the test name.
func NewAccessTracer(
	backend datarecording.DataRecorder,
	testName string,
) *AccessTracer {
	ensureTable(backend, AccessTableName, accessEntry{})

	return &AccessTracer{
		backend:  backend,
		testName: testName,
	}
}

// Func records reads and writes.
func (t *AccessTracer) Func(ctx hooking.HookCtx) {
	var kind string

	switch ctx.Pos {
	case dpram.HookPosWrite:
		kind = "write"
	case dpram.HookPosRead:
		kind = "read"
	default:
		return
	}

	a := ctx.Item.(dpram.Access)

	t.backend.InsertData(AccessTableName, accessEntry{
		Test:   t.testName,
		Port:   string(a.Port),
		Kind:   kind,
		Addr:   a.Addr,
		Data:   a.Data,
		TimePS: uint64(a.Time),
	})
}

func ensureTable(
	backend datarecording.DataRecorder,
	name string,
	sample any,
) {
	for _, t := range backend.ListTables() {
		if t == name {
			return
		}
	}

	backend.CreateTable(name, sample)
}
