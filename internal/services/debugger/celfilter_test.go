package debuggersvc

import (
	"testing"

	"github.com/rzbill/lens/internal/debugevents"
)

func TestFilterDisabledMatchesAll(t *testing.T) {
	f, err := NewFilter("  ")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(0, debugevents.Execution{OpType: "Anything"}) {
		t.Fatalf("disabled filter rejected a digest")
	}
}

func TestFilterOpType(t *testing.T) {
	f, err := NewFilter(`op_type.startsWith("MatMul")`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !f.Eval(0, debugevents.Execution{OpType: "MatMul"}) {
		t.Fatalf("expected match")
	}
	if f.Eval(1, debugevents.Execution{OpType: "Relu"}) {
		t.Fatalf("expected non-match")
	}
}

func TestFilterNumericFields(t *testing.T) {
	f, err := NewFilter(`wall_time > 100.0 && index >= 2 && num_outputs == 1`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	d := debugevents.Execution{WallTime: 200, OutputTensorDeviceIDs: []string{"/device:0"}}
	if !f.Eval(2, d) {
		t.Fatalf("expected match")
	}
	if f.Eval(1, d) {
		t.Fatalf("index guard failed")
	}
}

func TestFilterCompileError(t *testing.T) {
	if _, err := NewFilter(`op_type ==`); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestFilterDigestsKeepsBoundsAndCount(t *testing.T) {
	f, err := NewFilter(`index % 2 == 0`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	page := &DigestPage{
		Begin:      2,
		End:        6,
		NumDigests: 10,
		ExecutionDigests: []debugevents.Execution{
			{OpType: "A"}, {OpType: "B"}, {OpType: "C"}, {OpType: "D"},
		},
	}
	got := FilterDigests(f, page)
	if got.Begin != 2 || got.End != 6 || got.NumDigests != 10 {
		t.Fatalf("bounds changed: %+v", got)
	}
	// Absolute indices 2 and 4 survive.
	if len(got.ExecutionDigests) != 2 || got.ExecutionDigests[0].OpType != "A" || got.ExecutionDigests[1].OpType != "C" {
		t.Fatalf("filtered = %+v", got.ExecutionDigests)
	}
	// Source page untouched.
	if len(page.ExecutionDigests) != 4 {
		t.Fatalf("input page mutated")
	}
}
