package bvexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExprString(t *testing.T) {
	b := NewDefaultBuilder()
	arr := NewArray("x", 32, 32)
	x := rd(t, b, arr)

	require.Equal(t, "x[0x0]", x.String())

	e, err := b.Add(x, b.Constant(3, 32))
	require.NoError(t, err)
	require.Equal(t, "x[0x0] + 0x3", e.String())

	n := b.Not(x)
	require.Equal(t, "~x[0x0]", n.String())

	ze, err := b.ZExt(x, 64)
	require.NoError(t, err)
	require.Equal(t, "ZExt(x[0x0], 64)", ze.String())

	ex, err := b.Extract(x, 8, 16)
	require.NoError(t, err)
	require.Equal(t, "x[0x0][23:8]", ex.String())

	lt, err := b.Ult(x, b.Constant(7, 32))
	require.NoError(t, err)
	require.Equal(t, "x[0x0] u< 0x7", lt.String())
}

func TestStructEqAcrossBuilders(t *testing.T) {
	arr := NewArray("x", 32, 32)

	b1 := NewDefaultBuilder()
	b2 := NewDefaultBuilder()

	e1, err := b1.Add(rd(t, b1, arr), b1.Constant(3, 32))
	require.NoError(t, err)
	e2, err := b2.Add(rd(t, b2, arr), b2.Constant(3, 32))
	require.NoError(t, err)

	require.NotEqual(t, e1.Id(), e2.Id())
	require.True(t, e1.StructEq(e2))

	e3, err := b2.Add(rd(t, b2, arr), b2.Constant(4, 32))
	require.NoError(t, err)
	require.False(t, e1.StructEq(e3))
}

func TestExprKindsAndWidths(t *testing.T) {
	b := NewDefaultBuilder()
	arr := NewArray("x", 16, 8)
	x := rd(t, b, arr)

	require.Equal(t, TY_READ, x.Kind())
	require.Equal(t, uint(8), x.Width())

	c := b.Constant(300, 16)
	require.Equal(t, TY_CONST, c.Kind())
	v, err := c.GetConst()
	require.NoError(t, err)
	require.Equal(t, uint64(300), v.AsULong())

	_, err = x.GetConst()
	require.Error(t, err)

	no := b.NotOptimized(x)
	require.Equal(t, TY_NOTOPT, no.Kind())
	require.Equal(t, uint(8), no.Width())
}

func TestUpdateListStore(t *testing.T) {
	b := NewDefaultBuilder()
	arr := NewArray("mem", 32, 8)

	ul := NewUpdateList(arr)
	require.Equal(t, 0, ul.Len())

	ul2, err := ul.Store(b.Constant(1, 32), b.Constant(0xaa, 8))
	require.NoError(t, err)
	require.Equal(t, 1, ul2.Len())
	require.Equal(t, 0, ul.Len())

	_, err = ul.Store(b.Constant(1, 16), b.Constant(0xaa, 8))
	require.Error(t, err)

	_, err = ul.Store(b.Constant(1, 32), b.Constant(0xaa, 16))
	require.Error(t, err)
}
