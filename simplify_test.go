package bvexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario: Not(Or(A, B)) => And(Not(A), Not(B)) under canonicalisation
func TestSimplifyDeMorgan(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	or, err := b.Or(x, y)
	require.NoError(t, err)
	e := b.Not(or)

	require.Equal(t, TY_AND, e.Kind())
	lhs, rhs := binArgs(e)
	require.Equal(t, TY_NOT, lhs.Kind())
	require.Equal(t, TY_NOT, rhs.Kind())
	require.Equal(t, x.Id(), notArg(lhs).Id())
	require.Equal(t, y.Id(), notArg(rhs).Id())
}

func TestSimplifyNe(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	e, err := b.Ne(x, y)
	require.NoError(t, err)
	require.Equal(t, TY_NOT, e.Kind())
	require.Equal(t, TY_EQ, notArg(e).Kind())

	// Ne of structurally equal operands collapses through Eq
	e, err = b.Ne(x, x)
	require.NoError(t, err)
	require.True(t, e.IsFalse())
}

func TestSimplifyOrderingSwaps(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	for _, tc := range []struct {
		name  string
		op    func(lhs, rhs *ExprPtr) (*ExprPtr, error)
		kind  int
		left  *ExprPtr
		right *ExprPtr
	}{
		{"ugt", b.Ugt, TY_ULT, y, x},
		{"uge", b.Uge, TY_ULE, y, x},
		{"sgt", b.Sgt, TY_SLT, y, x},
		{"sge", b.Sge, TY_SLE, y, x},
	} {
		e, err := tc.op(x, y)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.kind, e.Kind(), tc.name)
		lhs, rhs := binArgs(e)
		require.Equal(t, tc.left.Id(), lhs.Id(), tc.name)
		require.Equal(t, tc.right.Id(), rhs.Id(), tc.name)
	}
}

func TestSimplifyBoolEq(t *testing.T) {
	b := NewBuilder()
	p := sym(t, b, "p", 1)

	e, err := b.Eq(b.Constant(1, 1), p)
	require.NoError(t, err)
	require.Equal(t, p.Id(), e.Id())

	e, err = b.Eq(p, b.Constant(1, 1))
	require.NoError(t, err)
	require.Equal(t, p.Id(), e.Id())

	e, err = b.Eq(b.Constant(0, 1), p)
	require.NoError(t, err)
	require.Equal(t, TY_NOT, e.Kind())
	require.Equal(t, p.Id(), notArg(e).Id())
}

func TestSimplifyMinimalComparatorSet(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	add, err := b.Add(x, y)
	require.NoError(t, err)
	ops := []func(lhs, rhs *ExprPtr) (*ExprPtr, error){b.Ne, b.Ugt, b.Uge, b.Sgt, b.Sge}
	for _, op := range ops {
		e, err := op(add, y)
		require.NoError(t, err)
		requireMinimalComparators(t, e)
	}
}

func requireMinimalComparators(t *testing.T, e *ExprPtr) {
	t.Helper()
	switch e.Kind() {
	case TY_NE, TY_UGT, TY_UGE, TY_SGT, TY_SGE:
		t.Fatalf("non-canonical comparator in %s", e.String())
	}
	for _, c := range e.e.children() {
		requireMinimalComparators(t, c)
	}
}
