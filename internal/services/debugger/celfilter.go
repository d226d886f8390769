package debuggersvc

import (
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/lens/internal/debugevents"
)

// celFilter wraps a compiled CEL program used to narrow digest pages and
// tail streams. When disabled, Eval always returns true.
type celFilter struct {
	prog    cel.Program
	enabled bool
}

// NewFilter compiles a CEL expression over digest fields. An empty
// expression yields a disabled filter that matches everything.
//
// Available variables:
//   - op_type: string, the digest's operation type
//   - wall_time: double, seconds since the epoch
//   - index: int, position of the digest in the stream
//   - num_outputs: int, number of output tensor device IDs
func NewFilter(expr string) (celFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return celFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("op_type", cel.StringType),
		cel.Variable("wall_time", cel.DoubleType),
		cel.Variable("index", cel.IntType),
		cel.Variable("num_outputs", cel.IntType),
	)
	if err != nil {
		return celFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return celFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return celFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return celFilter{}, err
	}
	return celFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against one digest. When disabled,
// returns true. Evaluation errors count as non-matches.
func (f celFilter) Eval(index int64, d debugevents.Execution) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"op_type":     d.OpType,
		"wall_time":   d.WallTime,
		"index":       index,
		"num_outputs": int64(len(d.OutputTensorDeviceIDs)),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// FilterDigests applies the filter to a page, keeping the page bounds and
// total count but dropping non-matching digests. Indices are absolute
// stream positions so filters on index stay meaningful across pages.
func FilterDigests(f celFilter, page *DigestPage) *DigestPage {
	if page == nil || !f.enabled {
		return page
	}
	kept := make([]debugevents.Execution, 0, len(page.ExecutionDigests))
	for i, d := range page.ExecutionDigests {
		if f.Eval(page.Begin+int64(i), d) {
			kept = append(kept, d)
		}
	}
	out := *page
	out.ExecutionDigests = kept
	return &out
}
