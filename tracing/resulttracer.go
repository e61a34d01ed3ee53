package tracing

import (
	"github.com/sarchlab/dpramtb/datarecording"
	"github.com/sarchlab/dpramtb/sim/hooking"
	"github.com/sarchlab/dpramtb/tb"
)

// ResultTableName is the table that holds the test results.
const ResultTableName = "test_result"

type resultEntry struct {
	Test       string
	Outcome    string
	SimTimePS  uint64
	WallTimeNS int64
	Message    string
}

// ResultTracer is a hook on a test runner that records every result.
type ResultTracer struct {
	backend datarecording.DataRecorder
}

// NewResultTracer creates a ResultTracer.
func NewResultTracer(backend datarecording.DataRecorder) *ResultTracer {
	ensureTable(backend, ResultTableName, resultEntry{})

	return &ResultTracer{backend: backend}
}

// Func records the result at the end of each test.
func (t *ResultTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != tb.HookPosTestEnd {
		return
	}

	r := ctx.Item.(tb.Result)

	t.backend.InsertData(ResultTableName, resultEntry{
		Test:       r.Name,
		Outcome:    r.Outcome.String(),
		SimTimePS:  uint64(r.SimTime),
		WallTimeNS: r.WallTime.Nanoseconds(),
		Message:    r.Message,
	})
}
