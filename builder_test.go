package bvexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sym returns a fresh symbolic variable of the given width: a read of a
// pristine array at a constant index.
func sym(t *testing.T, b Builder, name string, width uint) *ExprPtr {
	t.Helper()
	arr := NewArray(name, 32, width)
	return rd(t, b, arr)
}

func rd(t *testing.T, b Builder, arr *Array) *ExprPtr {
	t.Helper()
	e, err := b.Read(NewUpdateList(arr), b.Constant(0, arr.Domain))
	require.NoError(t, err)
	return e
}

func TestHashConsing(t *testing.T) {
	db := NewDefaultBuilder()
	arr := NewArray("x", 32, 32)

	x1 := rd(t, db, arr)
	x2 := rd(t, db, arr)
	require.Equal(t, x1.Id(), x2.Id())

	a1, err := db.Add(x1, db.Constant(3, 32))
	require.NoError(t, err)
	a2, err := db.Add(x2, db.Constant(3, 32))
	require.NoError(t, err)
	require.Equal(t, a1.Id(), a2.Id())
	require.True(t, db.Stats.CacheHits > 0)
	require.True(t, db.Stats.CacheLookups >= db.Stats.CacheHits)
}

func TestDeterminism(t *testing.T) {
	arr := NewArray("x", 32, 32)
	arr2 := NewArray("y", 32, 32)

	build := func(b Builder) *ExprPtr {
		x := rd(t, b, arr)
		y := rd(t, b, arr2)
		s, err := b.Sub(b.Constant(0, 32), x)
		require.NoError(t, err)
		e, err := b.Add(s, y)
		require.NoError(t, err)
		return e
	}

	e1 := build(NewBuilder())
	e2 := build(NewBuilder())
	require.True(t, e1.StructEq(e2))
}

func TestTypePreservation(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	add, err := b.Add(x, y)
	require.NoError(t, err)
	require.Equal(t, uint(32), add.Width())

	eq, err := b.Eq(x, y)
	require.NoError(t, err)
	require.Equal(t, WidthBool, eq.Width())

	ze, err := b.ZExt(x, 64)
	require.NoError(t, err)
	require.Equal(t, uint(64), ze.Width())

	se, err := b.SExt(x, 48)
	require.NoError(t, err)
	require.Equal(t, uint(48), se.Width())

	ex, err := b.Extract(x, 8, 16)
	require.NoError(t, err)
	require.Equal(t, uint(16), ex.Width())

	cc, err := b.Concat(x, y)
	require.NoError(t, err)
	require.Equal(t, uint(64), cc.Width())

	sel, err := b.Select(eq, x, y)
	require.NoError(t, err)
	require.Equal(t, uint(32), sel.Width())

	require.Equal(t, uint(32), b.Not(x).Width())
	require.Equal(t, uint(32), b.NotOptimized(x).Width())
}

func TestContractViolations(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	s := sym(t, b, "s", 8)

	_, err := b.Add(x, s)
	require.Error(t, err)

	_, err = b.Ult(x, s)
	require.Error(t, err)

	_, err = b.Extract(x, 20, 16)
	require.Error(t, err)

	_, err = b.ZExt(x, 16)
	require.Error(t, err)

	_, err = b.Select(x, x, x)
	require.Error(t, err)

	cond, err := b.Eq(x, x)
	require.NoError(t, err)
	_, err = b.Select(cond, x, s)
	require.Error(t, err)

	arr := NewArray("a", 32, 8)
	_, err = b.Read(NewUpdateList(arr), s)
	require.Error(t, err)
}

func TestZExtIdentity(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)

	ze, err := b.ZExt(x, 32)
	require.NoError(t, err)
	require.Equal(t, x.Id(), ze.Id())

	se, err := b.SExt(x, 32)
	require.NoError(t, err)
	require.Equal(t, x.Id(), se.Id())
}

func TestConstantAllocation(t *testing.T) {
	b := NewBuilder()

	c := b.Constant(-1, 8)
	require.True(t, c.HasAllBitsSet())
	require.Equal(t, uint(8), c.Width())

	v, err := c.GetConst()
	require.NoError(t, err)
	require.Equal(t, uint64(0xff), v.AsULong())

	tr := b.ConstantValue(MakeBoolConst(true))
	require.True(t, tr.IsTrue())
	require.Equal(t, WidthBool, tr.Width())
}
