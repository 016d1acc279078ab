package bvexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario: Add(3, Add(4, X)) => Add(7, X)
func TestFoldConstantHoisting(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)

	inner, err := b.Add(b.Constant(4, 32), x)
	require.NoError(t, err)
	e, err := b.Add(b.Constant(3, 32), inner)
	require.NoError(t, err)

	require.Equal(t, TY_ADD, e.Kind())
	lhs, rhs := binArgs(e)
	require.True(t, lhs.IsConst())
	c, _ := lhs.GetConst()
	require.Equal(t, uint64(7), c.AsULong())
	require.Equal(t, x.Id(), rhs.Id())
}

// Scenario: Sub(0, Sub(X, Y)) => Sub(Y, X)
func TestFoldNegatedSub(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	inner, err := b.Sub(x, y)
	require.NoError(t, err)
	e, err := b.Sub(b.Constant(0, 32), inner)
	require.NoError(t, err)

	require.Equal(t, TY_SUB, e.Kind())
	lhs, rhs := binArgs(e)
	require.Equal(t, y.Id(), lhs.Id())
	require.Equal(t, x.Id(), rhs.Id())
}

// Scenario: Or(And(X, Y), X) => X
func TestFoldAbsorption(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	and, err := b.And(x, y)
	require.NoError(t, err)
	e, err := b.Or(and, x)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())

	e, err = b.Or(x, and)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())

	e, err = b.And(b.Not(and), x)
	require.NoError(t, err)
	require.Equal(t, TY_AND, e.Kind())
}

// Scenario: Xor(X, X) => 0, with constOpts incremented
func TestFoldXorSelf(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)

	exprBefore, constBefore := ExprOpts(), ConstOpts()
	e, err := b.Xor(x, x)
	require.NoError(t, err)

	require.True(t, e.IsZero())
	require.Equal(t, uint(32), e.Width())
	require.True(t, ExprOpts() > exprBefore)
	require.True(t, ConstOpts() > constBefore)
}

// Scenario: Eq(ZExt(X:8, 32), 256) => false, 256 is outside the ZExt range
func TestFoldEqZExtOutOfRange(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 8)

	ze, err := b.ZExt(x, 32)
	require.NoError(t, err)
	e, err := b.Eq(ze, b.Constant(256, 32))
	require.NoError(t, err)
	require.True(t, e.IsFalse())
}

func TestFoldEqZExtInRange(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 8)

	ze, err := b.ZExt(x, 32)
	require.NoError(t, err)
	e, err := b.Eq(ze, b.Constant(200, 32))
	require.NoError(t, err)

	// pushed through the cast: X:8 == 200:8
	require.Equal(t, TY_EQ, e.Kind())
	lhs, rhs := binArgs(e)
	require.Equal(t, uint(8), lhs.Width())
	require.Equal(t, uint(8), rhs.Width())
}

// Scenario: Ult(URem(X, Y), Y) => true
func TestFoldURemUlt(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	rem, err := b.URem(x, y)
	require.NoError(t, err)
	e, err := b.Ult(rem, y)
	require.NoError(t, err)
	require.True(t, e.IsTrue())
}

// Scenario: Read through a matching constant store returns the stored value
func TestReadRollback(t *testing.T) {
	b := NewBuilder()
	arr := NewArray("mem", 32, 32)
	v := sym(t, b, "v", 32)
	w := sym(t, b, "w", 32)

	ul := NewUpdateList(arr)
	ul, err := ul.Store(b.Constant(7, 32), w)
	require.NoError(t, err)
	ul, err = ul.Store(b.Constant(4, 32), v)
	require.NoError(t, err)

	e, err := b.Read(ul, b.Constant(4, 32))
	require.NoError(t, err)
	require.Equal(t, v.Id(), e.Id())

	// distinct head is skipped before the hit
	e, err = b.Read(ul, b.Constant(7, 32))
	require.NoError(t, err)
	require.Equal(t, w.Id(), e.Id())
}

func TestReadSymbolicIndexStopsRollback(t *testing.T) {
	b := NewBuilder()
	arr := NewArray("mem", 32, 32)
	i := sym(t, b, "i", 32)
	v := sym(t, b, "v", 32)
	w := sym(t, b, "w", 32)

	ul := NewUpdateList(arr)
	ul, err := ul.Store(i, v)
	require.NoError(t, err)
	ul, err = ul.Store(b.Constant(9, 32), w)
	require.NoError(t, err)

	// reading index 4 skips the distinct write at 9 but must stop at the
	// symbolic one
	e, err := b.Read(ul, b.Constant(4, 32))
	require.NoError(t, err)
	require.Equal(t, TY_READ, e.Kind())
	got, _ := readArgs(e)
	require.Equal(t, 1, got.Len())
	require.Equal(t, i.Id(), got.Head.Index.Id())
}

func TestFoldSelect(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	e, err := b.Select(b.Constant(1, 1), x, y)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())

	e, err = b.Select(b.Constant(0, 1), x, y)
	require.NoError(t, err)
	require.Equal(t, y.Id(), e.Id())

	cond, err := b.Ult(x, y)
	require.NoError(t, err)
	e, err = b.Select(cond, x, x)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())
}

func TestFoldIdentities(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	zero := b.Constant(0, 32)
	one := b.Constant(1, 32)
	ones := b.Constant(-1, 32)

	for _, tc := range []struct {
		name string
		got  func() (*ExprPtr, error)
		want *ExprPtr
	}{
		{"0+x", func() (*ExprPtr, error) { return b.Add(zero, x) }, x},
		{"x+0", func() (*ExprPtr, error) { return b.Add(x, zero) }, x},
		{"1*x", func() (*ExprPtr, error) { return b.Mul(one, x) }, x},
		{"0*x", func() (*ExprPtr, error) { return b.Mul(zero, x) }, zero},
		{"0&x", func() (*ExprPtr, error) { return b.And(zero, x) }, zero},
		{"-1&x", func() (*ExprPtr, error) { return b.And(ones, x) }, x},
		{"0|x", func() (*ExprPtr, error) { return b.Or(zero, x) }, x},
		{"-1|x", func() (*ExprPtr, error) { return b.Or(ones, x) }, ones},
		{"0^x", func() (*ExprPtr, error) { return b.Xor(zero, x) }, x},
		{"x<<0", func() (*ExprPtr, error) { return b.Shl(x, zero) }, x},
		{"x>>0", func() (*ExprPtr, error) { return b.LShr(x, zero) }, x},
		{"x a>> 0", func() (*ExprPtr, error) { return b.AShr(x, zero) }, x},
		{"0/x", func() (*ExprPtr, error) { return b.UDiv(zero, x) }, zero},
		{"x/1", func() (*ExprPtr, error) { return b.UDiv(x, one) }, x},
		{"0%x", func() (*ExprPtr, error) { return b.URem(zero, x) }, zero},
		{"x%1", func() (*ExprPtr, error) { return b.URem(x, one) }, zero},
	} {
		e, err := tc.got()
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want.Id(), e.Id(), tc.name)
	}
}

func TestFoldSelfCancel(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)

	e, err := b.Sub(x, x)
	require.NoError(t, err)
	require.True(t, e.IsZero())

	e, err = b.And(x, x)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())

	e, err = b.Or(x, x)
	require.NoError(t, err)
	require.Equal(t, x.Id(), e.Id())

	// X + X => X << 1
	e, err = b.Add(x, x)
	require.NoError(t, err)
	require.Equal(t, TY_SHL, e.Kind())

	e, err = b.Eq(x, x)
	require.NoError(t, err)
	require.True(t, e.IsTrue())

	e, err = b.Ult(x, x)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Ule(x, x)
	require.NoError(t, err)
	require.True(t, e.IsTrue())
}

func TestFoldNegationComplement(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)

	e, err := b.Add(x, b.Not(x))
	require.NoError(t, err)
	require.True(t, e.HasAllBitsSet())

	e, err = b.Xor(x, b.Not(x))
	require.NoError(t, err)
	require.True(t, e.HasAllBitsSet())

	e, err = b.Or(x, b.Not(x))
	require.NoError(t, err)
	require.True(t, e.HasAllBitsSet())

	e, err = b.And(x, b.Not(x))
	require.NoError(t, err)
	require.True(t, e.IsZero())

	require.Equal(t, x.Id(), b.Not(b.Not(x)).Id())
}

func TestFoldDivisionByZeroPreserved(t *testing.T) {
	b := NewBuilder()

	e, err := b.UDiv(b.Constant(4, 32), b.Constant(0, 32))
	require.NoError(t, err)
	require.Equal(t, TY_UDIV, e.Kind())

	e, err = b.SRem(b.Constant(4, 32), b.Constant(0, 32))
	require.NoError(t, err)
	require.Equal(t, TY_SREM, e.Kind())

	// X / X must not fold: X may be zero
	x := sym(t, b, "x", 32)
	e, err = b.UDiv(x, x)
	require.NoError(t, err)
	require.Equal(t, TY_UDIV, e.Kind())
}

func TestFoldConstantClosure(t *testing.T) {
	b := NewBuilder()

	m, err := b.Mul(b.Constant(2, 32), b.Constant(3, 32))
	require.NoError(t, err)
	s, err := b.Sub(b.Constant(10, 32), b.Constant(4, 32))
	require.NoError(t, err)
	e, err := b.Add(m, s)
	require.NoError(t, err)
	require.True(t, e.IsConst())
	c, _ := e.GetConst()
	require.Equal(t, uint64(12), c.AsULong())

	lt, err := b.Ult(b.Constant(1, 32), b.Constant(2, 32))
	require.NoError(t, err)
	sel, err := b.Select(lt, b.Constant(5, 32), b.Constant(6, 32))
	require.NoError(t, err)
	require.True(t, sel.IsConst())
	c, _ = sel.GetConst()
	require.Equal(t, uint64(5), c.AsULong())

	cc, err := b.Concat(b.Constant(0xde, 8), b.Constant(0xad, 8))
	require.NoError(t, err)
	require.True(t, cc.IsConst())
	c, _ = cc.GetConst()
	require.Equal(t, uint64(0xdead), c.AsULong())

	ex, err := b.Extract(b.Constant(0xdead, 16), 8, 8)
	require.NoError(t, err)
	require.True(t, ex.IsConst())
	c, _ = ex.GetConst()
	require.Equal(t, uint64(0xde), c.AsULong())
}

func TestFoldIdempotence(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	inner, err := b.Add(b.Constant(4, 32), x)
	require.NoError(t, err)
	e, err := b.Add(b.Constant(3, 32), inner)
	require.NoError(t, err)

	lhs, rhs := binArgs(e)
	again, err := b.Add(lhs, rhs)
	require.NoError(t, err)
	require.Equal(t, e.Id(), again.Id())

	shl, err := b.Add(x, x)
	require.NoError(t, err)
	lhs, rhs = binArgs(shl)
	again, err = b.Shl(lhs, rhs)
	require.NoError(t, err)
	require.Equal(t, shl.Id(), again.Id())

	sub, err := b.Sub(b.Not(x), b.Not(y))
	require.NoError(t, err)
	lhs, rhs = binArgs(sub)
	again, err = b.Sub(lhs, rhs)
	require.NoError(t, err)
	require.Equal(t, sub.Id(), again.Id())
}

func TestNotOptimizedOpacity(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	// ~N(~X) must not collapse
	wrapped := b.NotOptimized(b.Not(x))
	e := b.Not(wrapped)
	require.Equal(t, TY_NOT, e.Kind())
	require.Equal(t, wrapped.Id(), notArg(e).Id())

	// constant hoisting must not look through the wrapper
	inner, err := b.Add(b.Constant(4, 32), x)
	require.NoError(t, err)
	w := b.NotOptimized(inner)
	e2, err := b.Add(b.Constant(3, 32), w)
	require.NoError(t, err)
	require.Equal(t, TY_ADD, e2.Kind())
	_, rhs := binArgs(e2)
	require.Equal(t, w.Id(), rhs.Id())

	// absorption premise fails against the opaque operand
	and, err := b.And(b.NotOptimized(x), y)
	require.NoError(t, err)
	or, err := b.Or(and, x)
	require.NoError(t, err)
	require.Equal(t, TY_OR, or.Kind())
}

func TestCounterMonotonicity(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	e1, c1 := ExprOpts(), ConstOpts()
	require.True(t, c1 <= e1)

	_, err := b.Xor(x, x)
	require.NoError(t, err)
	or, err := b.Or(x, y)
	require.NoError(t, err)
	_, err = b.Sub(or, x)
	require.NoError(t, err)

	e2, c2 := ExprOpts(), ConstOpts()
	require.True(t, e2 >= e1)
	require.True(t, c2 >= c1)
	require.True(t, c2 <= e2)
}

func TestFoldBooleanAlgebraShapes(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	and, err := b.And(x, y)
	require.NoError(t, err)
	or, err := b.Or(x, y)
	require.NoError(t, err)
	xor, err := b.Xor(x, y)
	require.NoError(t, err)
	add, err := b.Add(x, y)
	require.NoError(t, err)

	// (A ^ B) + (A & B) => A | B
	e, err := b.Add(xor, and)
	require.NoError(t, err)
	require.True(t, e.StructEq(or))

	// (A | B) + (A & B) => A + B
	e, err = b.Add(or, and)
	require.NoError(t, err)
	require.True(t, e.StructEq(add))

	// (A + B) - (A | B) => A & B
	e, err = b.Sub(add, or)
	require.NoError(t, err)
	require.True(t, e.StructEq(and))

	// (A + B) - (A & B) => A | B
	e, err = b.Sub(add, and)
	require.NoError(t, err)
	require.True(t, e.StructEq(or))

	// (A | B) - (A & B) => A ^ B
	e, err = b.Sub(or, and)
	require.NoError(t, err)
	require.True(t, e.StructEq(xor))

	// (A | B) - (A ^ B) => A & B
	e, err = b.Sub(or, xor)
	require.NoError(t, err)
	require.True(t, e.StructEq(and))

	// ~(A & B) | A => -1
	e, err = b.Or(b.Not(and), x)
	require.NoError(t, err)
	require.True(t, e.HasAllBitsSet())

	// (X | Y) - X => ~X & Y
	e, err = b.Sub(or, x)
	require.NoError(t, err)
	nx, err := b.And(b.Not(x), y)
	require.NoError(t, err)
	require.True(t, e.StructEq(nx))

	// X - (X & Y) => X & ~Y
	e, err = b.Sub(x, and)
	require.NoError(t, err)
	xny, err := b.And(x, b.Not(y))
	require.NoError(t, err)
	require.True(t, e.StructEq(xny))
}

func TestFoldComparisonStructure(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)

	or, err := b.Or(x, y)
	require.NoError(t, err)
	and, err := b.And(x, y)
	require.NoError(t, err)
	rem, err := b.URem(x, y)
	require.NoError(t, err)
	div, err := b.UDiv(x, y)
	require.NoError(t, err)

	e, err := b.Ult(x, b.Constant(0, 32))
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Ule(rem, x)
	require.NoError(t, err)
	require.True(t, e.IsTrue())

	e, err = b.Ult(x, rem)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Ult(x, div)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Ult(or, x)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Ule(x, or)
	require.NoError(t, err)
	require.True(t, e.IsTrue())

	e, err = b.Ult(x, and)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	// (X URem Y) == Y => false
	e, err = b.Eq(rem, y)
	require.NoError(t, err)
	require.True(t, e.IsFalse())
}

func TestFoldEqAcrossArithmetic(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 32)
	y := sym(t, b, "y", 32)
	z := sym(t, b, "z", 32)

	// (X + Z) == (Y + Z) => X == Y
	xz, err := b.Add(x, z)
	require.NoError(t, err)
	yz, err := b.Add(y, z)
	require.NoError(t, err)
	e, err := b.Eq(xz, yz)
	require.NoError(t, err)
	want, err := b.Eq(x, y)
	require.NoError(t, err)
	require.True(t, e.StructEq(want))

	// C + X == X decides on C
	cx, err := b.Add(b.Constant(5, 32), x)
	require.NoError(t, err)
	e, err = b.Eq(cx, x)
	require.NoError(t, err)
	require.True(t, e.IsFalse())
}

func TestFoldCastComparisons(t *testing.T) {
	b := NewBuilder()
	x := sym(t, b, "x", 8)
	y := sym(t, b, "y", 8)

	zx, err := b.ZExt(x, 32)
	require.NoError(t, err)
	zy, err := b.ZExt(y, 32)
	require.NoError(t, err)
	sx, err := b.SExt(x, 32)
	require.NoError(t, err)
	sy, err := b.SExt(y, 32)
	require.NoError(t, err)

	// same-kind casts strip
	e, err := b.Eq(zx, zy)
	require.NoError(t, err)
	want, err := b.Eq(x, y)
	require.NoError(t, err)
	require.True(t, e.StructEq(want))

	e, err = b.Ult(sx, sy)
	require.NoError(t, err)
	wantU, err := b.Ult(x, y)
	require.NoError(t, err)
	require.True(t, e.StructEq(wantU))

	e, err = b.Sle(sx, sy)
	require.NoError(t, err)
	wantS, err := b.Sle(x, y)
	require.NoError(t, err)
	require.True(t, e.StructEq(wantS))

	// mixed casts of the same operand decide
	e, err = b.Ule(zx, sx)
	require.NoError(t, err)
	require.True(t, e.IsTrue())

	e, err = b.Ult(sx, zx)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Slt(zx, sx)
	require.NoError(t, err)
	require.True(t, e.IsFalse())

	e, err = b.Sle(sx, zx)
	require.NoError(t, err)
	require.True(t, e.IsTrue())

	// different inner widths must not bridge
	w := sym(t, b, "w", 16)
	zw, err := b.ZExt(w, 32)
	require.NoError(t, err)
	e, err = b.Eq(zx, zw)
	require.NoError(t, err)
	require.Equal(t, TY_EQ, e.Kind())
	lhs, rhs := binArgs(e)
	require.Equal(t, uint(32), lhs.Width())
	require.Equal(t, uint(32), rhs.Width())
}
