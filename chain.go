package bvexpr

// chained is the base of the specialised helpers. It forwards every
// operation to the next layer down; helpers embed it and shadow only the
// operations they have rules for. builder is the helper's own dispatcher,
// re-entered whenever a rule builds new terms.
type chained struct {
	builder Builder
	base    Builder
}

func (c *chained) Constant(value int64, width uint) *ExprPtr {
	return c.base.Constant(value, width)
}

func (c *chained) ConstantValue(v *BVConst) *ExprPtr {
	return c.base.ConstantValue(v)
}

func (c *chained) NotOptimized(e *ExprPtr) *ExprPtr {
	return c.base.NotOptimized(e)
}

func (c *chained) Read(updates UpdateList, index *ExprPtr) (*ExprPtr, error) {
	return c.base.Read(updates, index)
}

func (c *chained) Select(cond, iftrue, iffalse *ExprPtr) (*ExprPtr, error) {
	return c.base.Select(cond, iftrue, iffalse)
}

func (c *chained) Concat(hi, lo *ExprPtr) (*ExprPtr, error) {
	return c.base.Concat(hi, lo)
}

func (c *chained) Extract(e *ExprPtr, offset, width uint) (*ExprPtr, error) {
	return c.base.Extract(e, offset, width)
}

func (c *chained) ZExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	return c.base.ZExt(e, width)
}

func (c *chained) SExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	return c.base.SExt(e, width)
}

func (c *chained) Not(e *ExprPtr) *ExprPtr {
	return c.base.Not(e)
}

func (c *chained) Add(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Add(lhs, rhs) }
func (c *chained) Sub(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Sub(lhs, rhs) }
func (c *chained) Mul(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Mul(lhs, rhs) }
func (c *chained) UDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.UDiv(lhs, rhs) }
func (c *chained) SDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.SDiv(lhs, rhs) }
func (c *chained) URem(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.URem(lhs, rhs) }
func (c *chained) SRem(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.SRem(lhs, rhs) }
func (c *chained) And(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.And(lhs, rhs) }
func (c *chained) Or(lhs, rhs *ExprPtr) (*ExprPtr, error)   { return c.base.Or(lhs, rhs) }
func (c *chained) Xor(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Xor(lhs, rhs) }
func (c *chained) Shl(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Shl(lhs, rhs) }
func (c *chained) LShr(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.LShr(lhs, rhs) }
func (c *chained) AShr(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.AShr(lhs, rhs) }

func (c *chained) Eq(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Eq(lhs, rhs) }
func (c *chained) Ne(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return c.base.Ne(lhs, rhs) }
func (c *chained) Ult(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Ult(lhs, rhs) }
func (c *chained) Ule(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Ule(lhs, rhs) }
func (c *chained) Ugt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Ugt(lhs, rhs) }
func (c *chained) Uge(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Uge(lhs, rhs) }
func (c *chained) Slt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Slt(lhs, rhs) }
func (c *chained) Sle(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Sle(lhs, rhs) }
func (c *chained) Sgt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Sgt(lhs, rhs) }
func (c *chained) Sge(lhs, rhs *ExprPtr) (*ExprPtr, error) { return c.base.Sge(lhs, rhs) }

// convenience constants used by the rule sets

func (c *chained) zero(width uint) *ExprPtr {
	return c.builder.Constant(0, width)
}

func (c *chained) allOnes(width uint) *ExprPtr {
	return c.builder.Constant(-1, width)
}

func (c *chained) boolConst(v bool) *ExprPtr {
	return c.builder.ConstantValue(MakeBoolConst(v))
}
