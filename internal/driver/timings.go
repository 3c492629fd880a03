package driver

import (
	"encoding/json"
	"fmt"

	"phphint/internal/diag"
	"phphint/internal/observ"
	"phphint/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTiming adds the phase timings of res as an info diagnostic with the
// JSON report in its note. It is a no-op for runs without timings.
func AppendTiming(res *FileResult) {
	if res == nil || res.Timing == nil || res.Bag == nil {
		return
	}
	payload := timingPayload{
		Kind:    "file",
		Path:    res.Path,
		TotalMS: res.Timing.TotalMS,
		Phases:  res.Timing.Phases,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms, %s", payload.Kind, payload.TotalMS, payload.Path)
	entry := &diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.IOInfo,
		Message:  msg,
		Notes:    []diag.Note{{Msg: string(data)}},
		Priority: diag.DefaultPriority,
	}
	if res.Unit != nil {
		entry.Primary = source.Span{File: res.Unit.File.ID}
	}
	if res.Bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(res.Bag.Len() + 1)
	overflow.Add(entry)
	res.Bag.Merge(overflow)
}
