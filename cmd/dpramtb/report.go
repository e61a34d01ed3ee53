package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/natefinch/atomic"
	"github.com/rs/xid"
	"github.com/sarchlab/dpramtb/config"
	"github.com/sarchlab/dpramtb/tb"
)

// report is the JSON document written with --report.
type report struct {
	RunID   string        `json:"run_id"`
	Passed  bool          `json:"passed"`
	Config  config.Config `json:"config"`
	Results []tb.Result   `json:"results"`
}

func writeReport(path string, cfg config.Config, results []tb.Result) error {
	buf, err := json.MarshalIndent(report{
		RunID:   xid.New().String(),
		Passed:  tb.AllPassed(results),
		Config:  cfg,
		Results: results,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}

	buf = append(buf, '\n')

	err = atomic.WriteFile(path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("cannot write report %s: %w", path, err)
	}

	return nil
}
