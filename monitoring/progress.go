package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/dpramtb/mem/dpram"
	"github.com/sarchlab/dpramtb/sim/hooking"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// AccessProgress is a hook on a RAM that shows how many distinct addresses
// have been written and read.
type AccessProgress struct {
	monitor   *Monitor
	writeBar  *ProgressBar
	readBar   *ProgressBar
	written   map[uint64]bool
	readAddrs map[uint64]bool
}

// NewAccessProgress creates the progress bars of a test on a RAM with the
// given number of words.
func NewAccessProgress(m *Monitor, testName string, depth uint64) *AccessProgress {
	return &AccessProgress{
		monitor:   m,
		writeBar:  m.CreateProgressBar(testName+" writes", depth),
		readBar:   m.CreateProgressBar(testName+" reads", depth),
		written:   make(map[uint64]bool),
		readAddrs: make(map[uint64]bool),
	}
}

// Func counts the addresses reached by writes and reads.
func (p *AccessProgress) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Item.(dpram.Access)
	if !ok {
		return
	}

	switch ctx.Pos {
	case dpram.HookPosWrite:
		if !p.written[a.Addr] {
			p.written[a.Addr] = true
			p.writeBar.IncrementFinished(1)
		}
	case dpram.HookPosRead:
		if p.written[a.Addr] && !p.readAddrs[a.Addr] {
			p.readAddrs[a.Addr] = true
			p.readBar.IncrementFinished(1)
		}
	}
}

// Complete removes the bars from the monitor.
func (p *AccessProgress) Complete() {
	p.monitor.CompleteProgressBar(p.writeBar)
	p.monitor.CompleteProgressBar(p.readBar)
}
