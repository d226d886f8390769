package errdefs

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoriesMatch(t *testing.T) {
	cases := []struct {
		err  error
		pred func(error) bool
	}{
		{NotFoundf("no runs"), IsNotFound},
		{InvalidArgumentf("bad run %q", "x"), IsInvalidArgument},
		{OutOfRangef("index %d", 9), IsOutOfRange},
		{NotSupportedf("nope"), IsNotSupported},
	}
	for _, c := range cases {
		if !c.pred(c.err) {
			t.Errorf("predicate did not match %v", c.err)
		}
	}
}

func TestCategoriesAreDisjoint(t *testing.T) {
	err := OutOfRangef("index out of bounds")
	if IsInvalidArgument(err) || IsNotFound(err) || IsNotSupported(err) {
		t.Fatalf("out-of-range error matched another category")
	}
}

func TestMessageHasNoCategoryPrefix(t *testing.T) {
	err := OutOfRangef("Invalid begin index (%d)", -1)
	if got, want := err.Error(), "Invalid begin index (-1)"; got != want {
		t.Fatalf("message = %q, want %q", got, want)
	}
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	err := fmt.Errorf("query failed: %w", NotFoundf("no store"))
	if !IsNotFound(err) {
		t.Fatalf("wrapped error lost its category")
	}
	if errors.Is(err, ErrOutOfRange) {
		t.Fatalf("wrapped error matched wrong category")
	}
}
