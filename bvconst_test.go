package bvexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBVConstWrap(t *testing.T) {
	a := MakeBVConst(250, 8)
	b := MakeBVConst(10, 8)
	require.Equal(t, uint64(4), a.Add(b).AsULong())

	c := MakeBVConst(-1, 8)
	require.Equal(t, uint64(0xff), c.AsULong())
	require.True(t, c.HasAllBitsSet())
	require.True(t, c.IsNegative())
}

func TestBVConstNegNot(t *testing.T) {
	a := MakeBVConst(1, 32)
	require.Equal(t, uint64(0xffffffff), a.Neg().AsULong())
	require.Equal(t, uint64(0xfffffffe), a.Not().AsULong())
	require.Equal(t, uint64(1), a.Neg().Neg().AsULong())

	z := MakeBVConst(0, 16)
	require.Equal(t, uint64(0), z.Neg().AsULong())
}

func TestBVConstSignedDivRem(t *testing.T) {
	a := MakeBVConst(-7, 8)
	b := MakeBVConst(2, 8)
	require.Equal(t, uint64(0xfd), a.SDiv(b).AsULong()) // -3
	require.Equal(t, uint64(0xff), a.SRem(b).AsULong()) // -1

	require.Equal(t, uint64(124), a.UDiv(b).AsULong()) // 249 / 2
	require.Equal(t, uint64(1), a.URem(b).AsULong())
}

func TestBVConstShift(t *testing.T) {
	a := MakeBVConst(0x81, 8)
	require.Equal(t, uint64(0x02), a.Shl(1).AsULong())
	require.Equal(t, uint64(0x40), a.LShr(1).AsULong())
	require.Equal(t, uint64(0xc0), a.AShr(1).AsULong())
	require.Equal(t, uint64(0), a.Shl(8).AsULong())
	require.Equal(t, uint64(0xff), a.AShr(100).AsULong())
}

func TestBVConstExtend(t *testing.T) {
	a := MakeBVConst(0x80, 8)
	require.Equal(t, uint64(0x80), a.ZExtTo(32).AsULong())
	require.Equal(t, uint64(0xffffff80), a.SExtTo(32).AsULong())

	b := MakeBVConst(0x7f, 8)
	require.Equal(t, uint64(0x7f), b.SExtTo(32).AsULong())
}

func TestBVConstExtractConcat(t *testing.T) {
	a := MakeBVConst(0xdeadbeef, 32)
	require.Equal(t, uint64(0xbeef), a.Extract(0, 16).AsULong())
	require.Equal(t, uint64(0xdead), a.Extract(16, 16).AsULong())
	require.Equal(t, uint64(0xef), a.TruncTo(8).AsULong())

	hi := MakeBVConst(0xde, 8)
	lo := MakeBVConst(0xad, 8)
	cc := hi.Concat(lo)
	require.Equal(t, uint(16), cc.Size)
	require.Equal(t, uint64(0xdead), cc.AsULong())
}

func TestBVConstCompare(t *testing.T) {
	a := MakeBVConst(-1, 8)
	b := MakeBVConst(1, 8)

	require.True(t, a.Ugt(b))
	require.True(t, a.Slt(b))
	require.True(t, b.Ult(a))
	require.True(t, b.Sgt(a))
	require.True(t, a.Sle(a))
	require.True(t, a.Uge(a))
	require.True(t, a.Eq(a.Copy()))
	require.True(t, a.Ne(b))
}
