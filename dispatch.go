package bvexpr

import "fmt"

// dispatchBuilder classifies each operand as constant or non-constant,
// folds fully-constant applications with concrete BVConst arithmetic and
// hands everything else to its specialised helper. It also hosts the
// universal rewrites that do not belong to any rule set: Read rollback
// through update lists, Select on a constant condition, and double negation.
//
// Width validation happens here: the terminal layer allocates as-is, the
// helpers assume well-typed operands.
type dispatchBuilder struct {
	helper Builder
}

func (d *dispatchBuilder) checkWidths(op string, lhs, rhs *ExprPtr) error {
	if lhs.Width() != rhs.Width() {
		return fmt.Errorf("%s: different widths %d and %d", op, lhs.Width(), rhs.Width())
	}
	return nil
}

func (d *dispatchBuilder) Constant(value int64, width uint) *ExprPtr {
	return d.helper.Constant(value, width)
}

func (d *dispatchBuilder) ConstantValue(c *BVConst) *ExprPtr {
	return d.helper.ConstantValue(c)
}

func (d *dispatchBuilder) NotOptimized(e *ExprPtr) *ExprPtr {
	return d.helper.NotOptimized(e)
}

// Read rolls back through writes whose index is demonstrably distinct from
// the read index. Distinctness is decided by building Eq through this
// builder: a constant-false Eq skips the write, a constant-true Eq resolves
// the read to the stored value, anything symbolic stops the walk.
func (d *dispatchBuilder) Read(updates UpdateList, index *ExprPtr) (*ExprPtr, error) {
	if index.Width() != updates.Root.Domain {
		return nil, fmt.Errorf("Read: index width %d, domain %d", index.Width(), updates.Root.Domain)
	}

	un := updates.Head
	for un != nil {
		eq, err := d.Eq(index, un.Index)
		if err != nil {
			return nil, err
		}
		if eq.IsFalse() {
			un = un.Next
			continue
		}
		if eq.IsTrue() {
			return un.Value, nil
		}
		break
	}

	return d.helper.Read(UpdateList{Root: updates.Root, Head: un}, index)
}

func (d *dispatchBuilder) Select(cond, iftrue, iffalse *ExprPtr) (*ExprPtr, error) {
	if cond.Width() != WidthBool {
		return nil, fmt.Errorf("Select: condition width %d", cond.Width())
	}
	if err := d.checkWidths("Select", iftrue, iffalse); err != nil {
		return nil, err
	}

	if c := cond.constVal(); c != nil {
		if c.IsOne() {
			return iftrue, nil
		}
		return iffalse, nil
	}

	return d.helper.Select(cond, iftrue, iffalse)
}

func (d *dispatchBuilder) Concat(hi, lo *ExprPtr) (*ExprPtr, error) {
	if hc, lc := hi.constVal(), lo.constVal(); hc != nil && lc != nil {
		return d.helper.ConstantValue(hc.Concat(lc)), nil
	}
	return d.helper.Concat(hi, lo)
}

func (d *dispatchBuilder) Extract(e *ExprPtr, offset, width uint) (*ExprPtr, error) {
	if width == 0 {
		return nil, fmt.Errorf("Extract: zero width")
	}
	if offset+width > e.Width() {
		return nil, fmt.Errorf("Extract: [%d, %d) out of range for width %d", offset, offset+width, e.Width())
	}
	if c := e.constVal(); c != nil {
		return d.helper.ConstantValue(c.Extract(offset, width)), nil
	}
	return d.helper.Extract(e, offset, width)
}

func (d *dispatchBuilder) ZExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	if width < e.Width() {
		return nil, fmt.Errorf("ZExt: target width %d smaller than %d", width, e.Width())
	}
	if width == e.Width() {
		return e, nil
	}
	if c := e.constVal(); c != nil {
		return d.helper.ConstantValue(c.ZExtTo(width)), nil
	}
	return d.helper.ZExt(e, width)
}

func (d *dispatchBuilder) SExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	if width < e.Width() {
		return nil, fmt.Errorf("SExt: target width %d smaller than %d", width, e.Width())
	}
	if width == e.Width() {
		return e, nil
	}
	if c := e.constVal(); c != nil {
		return d.helper.ConstantValue(c.SExtTo(width)), nil
	}
	return d.helper.SExt(e, width)
}

func (d *dispatchBuilder) Not(e *ExprPtr) *ExprPtr {
	if c := e.constVal(); c != nil {
		return d.helper.ConstantValue(c.Not())
	}
	// ~~X => X
	if e.Kind() == TY_NOT {
		return notArg(e)
	}
	return d.helper.Not(e)
}

func (d *dispatchBuilder) Add(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Add", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Add(rc)), nil
	}
	return d.helper.Add(lhs, rhs)
}

func (d *dispatchBuilder) Sub(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Sub", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Sub(rc)), nil
	}
	return d.helper.Sub(lhs, rhs)
}

func (d *dispatchBuilder) Mul(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Mul", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Mul(rc)), nil
	}
	return d.helper.Mul(lhs, rhs)
}

// Division and remainder fold only when the divisor is a non-zero constant:
// a division by zero is preserved in the term for the solver.
func (d *dispatchBuilder) UDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("UDiv", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil && !rc.IsZero() {
		return d.helper.ConstantValue(lc.UDiv(rc)), nil
	}
	return d.helper.UDiv(lhs, rhs)
}

func (d *dispatchBuilder) SDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("SDiv", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil && !rc.IsZero() {
		return d.helper.ConstantValue(lc.SDiv(rc)), nil
	}
	return d.helper.SDiv(lhs, rhs)
}

func (d *dispatchBuilder) URem(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("URem", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil && !rc.IsZero() {
		return d.helper.ConstantValue(lc.URem(rc)), nil
	}
	return d.helper.URem(lhs, rhs)
}

func (d *dispatchBuilder) SRem(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("SRem", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil && !rc.IsZero() {
		return d.helper.ConstantValue(lc.SRem(rc)), nil
	}
	return d.helper.SRem(lhs, rhs)
}

func (d *dispatchBuilder) And(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("And", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.And(rc)), nil
	}
	return d.helper.And(lhs, rhs)
}

func (d *dispatchBuilder) Or(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Or", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Or(rc)), nil
	}
	return d.helper.Or(lhs, rhs)
}

func (d *dispatchBuilder) Xor(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Xor", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Xor(rc)), nil
	}
	return d.helper.Xor(lhs, rhs)
}

// shiftAmount clamps a constant shift to the operand width; any amount not
// fitting an uint64 is already past the width.
func shiftAmount(c *BVConst, width uint) uint {
	if !c.FitsInULong() || c.AsULong() >= uint64(width) {
		return width
	}
	return uint(c.AsULong())
}

func (d *dispatchBuilder) Shl(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("Shl", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.Shl(shiftAmount(rc, lc.Size))), nil
	}
	return d.helper.Shl(lhs, rhs)
}

func (d *dispatchBuilder) LShr(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("LShr", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.LShr(shiftAmount(rc, lc.Size))), nil
	}
	return d.helper.LShr(lhs, rhs)
}

func (d *dispatchBuilder) AShr(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if err := d.checkWidths("AShr", lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(lc.AShr(shiftAmount(rc, lc.Size))), nil
	}
	return d.helper.AShr(lhs, rhs)
}

func (d *dispatchBuilder) foldCmp(op string, lhs, rhs *ExprPtr,
	concrete func(a, b *BVConst) bool,
	symbolic func(lhs, rhs *ExprPtr) (*ExprPtr, error)) (*ExprPtr, error) {
	if err := d.checkWidths(op, lhs, rhs); err != nil {
		return nil, err
	}
	if lc, rc := lhs.constVal(), rhs.constVal(); lc != nil && rc != nil {
		return d.helper.ConstantValue(MakeBoolConst(concrete(lc, rc))), nil
	}
	return symbolic(lhs, rhs)
}

func (d *dispatchBuilder) Eq(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Eq", lhs, rhs, (*BVConst).Eq, d.helper.Eq)
}

func (d *dispatchBuilder) Ne(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Ne", lhs, rhs, (*BVConst).Ne, d.helper.Ne)
}

func (d *dispatchBuilder) Ult(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Ult", lhs, rhs, (*BVConst).Ult, d.helper.Ult)
}

func (d *dispatchBuilder) Ule(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Ule", lhs, rhs, (*BVConst).Ule, d.helper.Ule)
}

func (d *dispatchBuilder) Ugt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Ugt", lhs, rhs, (*BVConst).Ugt, d.helper.Ugt)
}

func (d *dispatchBuilder) Uge(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Uge", lhs, rhs, (*BVConst).Uge, d.helper.Uge)
}

func (d *dispatchBuilder) Slt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Slt", lhs, rhs, (*BVConst).Slt, d.helper.Slt)
}

func (d *dispatchBuilder) Sle(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Sle", lhs, rhs, (*BVConst).Sle, d.helper.Sle)
}

func (d *dispatchBuilder) Sgt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Sgt", lhs, rhs, (*BVConst).Sgt, d.helper.Sgt)
}

func (d *dispatchBuilder) Sge(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return d.foldCmp("Sge", lhs, rhs, (*BVConst).Sge, d.helper.Sge)
}
