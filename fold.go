package bvexpr

// foldBuilder is the algebraic rule set of the constant-folding layer. The
// dispatcher guarantees that at most one operand of a binary operation is a
// constant, except for a division or remainder by a constant zero, which is
// passed on with both operands constant; commutative operations forward the
// (expr, const) case to the (const, expr) case with swapped operands so each
// rule is written once.
//
// Rules are tried in order and the first match wins; right-hand sides are
// built through the layer's own dispatcher so that introduced operators are
// rewritten in turn. Rules never look inside NotOptimized wrappers: the
// wrapper has its own kind tag and never matches a pattern.
type foldBuilder struct {
	chained
}

// recordOpt marks a rewrite that replaced the naive node.
func recordOpt(e *ExprPtr, err error) (*ExprPtr, error) {
	if err == nil {
		exprOptsCounter.Add(1)
	}
	return e, err
}

// recordConstOpt marks a rewrite that collapsed to a constant.
func recordConstOpt(e *ExprPtr, err error) (*ExprPtr, error) {
	if err == nil {
		exprOptsCounter.Add(1)
		constOptsCounter.Add(1)
	}
	return e, err
}

func exactMatch(a, b *ExprPtr) bool {
	return a.StructEq(b)
}

// matchEitherChild returns the sibling of the matched operand, or nil.
func matchEitherChild(be, m *ExprPtr) *ExprPtr {
	lhs, rhs := binArgs(be)
	if exactMatch(lhs, m) {
		return rhs
	}
	if exactMatch(rhs, m) {
		return lhs
	}
	return nil
}

func matchLeftChild(be, m *ExprPtr) bool {
	lhs, _ := binArgs(be)
	return exactMatch(lhs, m)
}

func matchRightChild(be, m *ExprPtr) bool {
	_, rhs := binArgs(be)
	return exactMatch(rhs, m)
}

// matchBinChildren matches {A,B} against {A,B} in either order.
func matchBinChildren(a, b *ExprPtr) bool {
	al, ar := binArgs(a)
	bl, br := binArgs(b)
	return (exactMatch(al, bl) && exactMatch(ar, br)) ||
		(exactMatch(al, br) && exactMatch(ar, bl))
}

// zextInRange reports whether c survives a round trip through the source
// width of a zero extension.
func zextInRange(c *BVConst, srcWidth uint) bool {
	return c.TruncTo(srcWidth).ZExtTo(c.Size).Eq(c)
}

func sextInRange(c *BVConst, srcWidth uint) bool {
	return c.TruncTo(srcWidth).SExtTo(c.Size).Eq(c)
}

// isMinSigned reports the one value whose two's-complement negation is
// itself; negation-hoisting rules must skip it.
func isMinSigned(c *BVConst) bool {
	return c.IsNegative() && c.Neg().Eq(c)
}

/*
 * Add
 */

func (h *foldBuilder) Add(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.addCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.addCN(rhs, lhs)
	}
	return h.addNN(lhs, rhs)
}

func (h *foldBuilder) addCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()

	// 0 + X => X
	if lc.IsZero() {
		return recordOpt(rhs, nil)
	}

	switch rhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(rhs)
		// C_0 + (C_1 + X) => (C_0 + C_1) + X
		if c := bl.constVal(); c != nil {
			return h.builder.Add(h.builder.ConstantValue(lc.Add(c)), br)
		}
		// C_0 + (X + C_1) => (C_0 + C_1) + X
		if c := br.constVal(); c != nil {
			return h.builder.Add(h.builder.ConstantValue(lc.Add(c)), bl)
		}

	case TY_SUB:
		bl, br := binArgs(rhs)
		// C_0 + (C_1 - X) => (C_0 + C_1) - X
		if c := bl.constVal(); c != nil {
			return h.builder.Sub(h.builder.ConstantValue(lc.Add(c)), br)
		}
		// C_0 + (X - C_1) => (C_0 - C_1) + X
		if c := br.constVal(); c != nil {
			return h.builder.Add(h.builder.ConstantValue(lc.Sub(c)), bl)
		}
	}

	return h.base.Add(lhs, rhs)
}

func (h *foldBuilder) addNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X + X => X << 1
	if exactMatch(lhs, rhs) {
		return recordOpt(h.builder.Shl(lhs, h.builder.Constant(1, lhs.Width())))
	}

	switch lhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(lhs)
		// (X + Y) + Z => X + (Y + Z); identical terms are brought together
		// first so they keep matching
		if exactMatch(bl, rhs) {
			inner, err := h.builder.Add(bl, rhs)
			if err != nil {
				return nil, err
			}
			return recordOpt(h.builder.Add(br, inner))
		}
		inner, err := h.builder.Add(br, rhs)
		if err != nil {
			return nil, err
		}
		return h.builder.Add(bl, inner)

	case TY_SUB:
		bl, br := binArgs(lhs)
		// (X - Y) + Z => X + (Z - Y)
		inner, err := h.builder.Sub(rhs, br)
		if err != nil {
			return nil, err
		}
		return h.builder.Add(bl, inner)

	case TY_NOT:
		// ~X + X => -1
		if exactMatch(notArg(lhs), rhs) {
			return recordConstOpt(h.allOnes(rhs.Width()), nil)
		}

	case TY_XOR:
		// (A ^ B) + (A & B) => A | B
		if rhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			bl, br := binArgs(lhs)
			return recordOpt(h.builder.Or(bl, br))
		}

	case TY_OR:
		// (A | B) + (A & B) => A + B
		if rhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			bl, br := binArgs(lhs)
			return recordOpt(h.builder.Add(bl, br))
		}
	}

	switch rhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(rhs)
		// X + (C + Y) => C + (X + Y)
		if bl.IsConst() {
			inner, err := h.builder.Add(lhs, br)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(bl, inner)
		}
		// X + (Y + C) => C + (X + Y)
		if br.IsConst() {
			inner, err := h.builder.Add(lhs, bl)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(br, inner)
		}

	case TY_SUB:
		bl, br := binArgs(rhs)
		if bl.IsConst() {
			// X + (C - Y) => C + (X - Y)
			inner, err := h.builder.Sub(lhs, br)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(bl, inner)
		} else if exactMatch(br, lhs) {
			// X + (Y - X) => Y
			return recordOpt(bl, nil)
		}
		if c := br.constVal(); c != nil {
			// X + (Y - C) => -C + (X + Y)
			inner, err := h.builder.Add(lhs, bl)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(h.builder.ConstantValue(c.Neg()), inner)
		}

	case TY_NOT:
		// X + ~X => -1
		if exactMatch(notArg(rhs), lhs) {
			return recordConstOpt(h.allOnes(lhs.Width()), nil)
		}

	case TY_XOR:
		// (A & B) + (A ^ B) => A | B
		if lhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			bl, br := binArgs(lhs)
			return recordOpt(h.builder.Or(bl, br))
		}

	case TY_OR:
		// (A & B) + (A | B) => A + B
		if lhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			bl, br := binArgs(lhs)
			return recordOpt(h.builder.Add(bl, br))
		}
	}

	return h.base.Add(lhs, rhs)
}

/*
 * Sub
 */

func (h *foldBuilder) Sub(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.subCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.subNC(lhs, rhs)
	}
	return h.subNN(lhs, rhs)
}

func (h *foldBuilder) subCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()

	// -1 - X => ~X
	if lc.HasAllBitsSet() {
		return recordOpt(h.builder.Not(rhs), nil)
	}

	if lc.IsZero() {
		switch rhs.Kind() {
		case TY_ADD:
			bl, br := binArgs(rhs)
			// -(C + X) => (-C) - X
			if c := bl.constVal(); c != nil {
				return recordOpt(h.builder.Sub(h.builder.ConstantValue(c.Neg()), br))
			}

		case TY_SUB:
			bl, br := binArgs(rhs)
			// 0 - (X - Y) => Y - X
			return recordOpt(h.builder.Sub(br, bl))

		case TY_MUL:
			bl, br := binArgs(rhs)
			// -(C * X) => (-C) * X
			if c := bl.constVal(); c != nil {
				return recordOpt(h.builder.Mul(h.builder.ConstantValue(c.Neg()), br))
			}

		case TY_SDIV:
			bl, br := binArgs(rhs)
			// -(C / X) => (-C) / X; the minimum signed value is its own
			// negation and must stay put
			if c := bl.constVal(); c != nil && !isMinSigned(c) {
				return recordOpt(h.builder.SDiv(h.builder.ConstantValue(c.Neg()), br))
			}
			// -(X / C) => X / (-C)
			if c := br.constVal(); c != nil && !isMinSigned(c) {
				return recordOpt(h.builder.SDiv(bl, h.builder.ConstantValue(c.Neg())))
			}
		}
	}

	switch rhs.Kind() {
	case TY_NOT:
		// C - ~X => (C + 1) + X
		cPlusOne := lc.Add(MakeBVConst(1, lc.Size))
		return recordOpt(h.builder.Add(h.builder.ConstantValue(cPlusOne), notArg(rhs)))

	case TY_ADD:
		bl, br := binArgs(rhs)
		// C_0 - (C_1 + X) => (C_0 - C_1) - X
		if c := bl.constVal(); c != nil {
			return recordOpt(h.builder.Sub(h.builder.ConstantValue(lc.Sub(c)), br))
		}
		// C_0 - (X + C_1) => (C_0 - C_1) - X
		if c := br.constVal(); c != nil {
			return recordOpt(h.builder.Sub(h.builder.ConstantValue(lc.Sub(c)), bl))
		}

	case TY_SUB:
		bl, br := binArgs(rhs)
		// C_0 - (C_1 - X) => (C_0 - C_1) + X
		if c := bl.constVal(); c != nil {
			return recordOpt(h.builder.Add(h.builder.ConstantValue(lc.Sub(c)), br))
		}
		// C_0 - (X - C_1) => (C_0 + C_1) - X
		if c := br.constVal(); c != nil {
			return recordOpt(h.builder.Sub(h.builder.ConstantValue(lc.Add(c)), bl))
		}
	}

	return h.base.Sub(lhs, rhs)
}

func (h *foldBuilder) subNC(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X - C => (-C) + X
	rc := rhs.constVal()
	return recordOpt(h.addCN(h.builder.ConstantValue(rc.Neg()), lhs))
}

func (h *foldBuilder) subNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X - X => 0
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.zero(lhs.Width()), nil)
	}

	switch lhs.Kind() {
	case TY_NOT:
		// ~X - ~Y => Y - X
		if rhs.Kind() == TY_NOT {
			return recordOpt(h.builder.Sub(notArg(rhs), notArg(lhs)))
		}

	case TY_ADD:
		bl, br := binArgs(lhs)
		// (A + B) - (A | B) => A & B
		if rhs.Kind() == TY_OR && matchBinChildren(lhs, rhs) {
			return recordOpt(h.builder.And(bl, br))
		}
		// (A + B) - (A & B) => A | B
		if rhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			return recordOpt(h.builder.Or(bl, br))
		}
		// (X + Y) - Z => X + (Y - Z)
		inner, err := h.builder.Sub(br, rhs)
		if err != nil {
			return nil, err
		}
		return h.builder.Add(bl, inner)

	case TY_SUB:
		bl, br := binArgs(lhs)
		// (X - Y) - Z => X - (Y + Z)
		inner, err := h.builder.Add(br, rhs)
		if err != nil {
			return nil, err
		}
		return h.builder.Sub(bl, inner)

	case TY_MUL:
		bl, br := binArgs(lhs)
		// (C * X) - X => (C - 1) * X
		if c := bl.constVal(); c != nil && exactMatch(br, rhs) {
			cMinusOne := c.Sub(MakeBVConst(1, c.Size))
			return recordOpt(h.builder.Mul(h.builder.ConstantValue(cMinusOne), rhs))
		}

	case TY_OR:
		bl, br := binArgs(lhs)
		// (X | Y) - X => ~X & Y
		if other := matchEitherChild(lhs, rhs); other != nil {
			return recordOpt(h.builder.And(h.builder.Not(rhs), other))
		}
		// (A | B) - (A & B) => A ^ B
		if rhs.Kind() == TY_AND && matchBinChildren(lhs, rhs) {
			return recordOpt(h.builder.Xor(bl, br))
		}
		// (A | B) - (A ^ B) => A & B
		if rhs.Kind() == TY_XOR && matchBinChildren(lhs, rhs) {
			return recordOpt(h.builder.And(bl, br))
		}
	}

	switch rhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(rhs)
		// X - (C + Y) => -C + (X - Y)
		if c := bl.constVal(); c != nil {
			inner, err := h.builder.Sub(lhs, br)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(h.builder.ConstantValue(c.Neg()), inner)
		}
		// X - (Y + C) => -C + (X - Y)
		if c := br.constVal(); c != nil {
			inner, err := h.builder.Sub(lhs, bl)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(h.builder.ConstantValue(c.Neg()), inner)
		}

	case TY_SUB:
		bl, br := binArgs(rhs)
		// X - (C - Y) => -C + (X + Y)
		if c := bl.constVal(); c != nil {
			inner, err := h.builder.Add(lhs, br)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(h.builder.ConstantValue(c.Neg()), inner)
		}
		// X - (Y - C) => C + (X - Y)
		if c := br.constVal(); c != nil {
			inner, err := h.builder.Sub(lhs, bl)
			if err != nil {
				return nil, err
			}
			return h.builder.Add(h.builder.ConstantValue(c.Copy()), inner)
		}

	case TY_MUL:
		bl, br := binArgs(rhs)
		// X - (C * X) => (1 - C) * X
		if c := bl.constVal(); c != nil && exactMatch(br, lhs) {
			oneMinusC := MakeBVConst(1, c.Size).Sub(c)
			return recordOpt(h.builder.Mul(h.builder.ConstantValue(oneMinusC), lhs))
		}

	case TY_AND:
		// X - (X & Y) => X & ~Y
		if other := matchEitherChild(rhs, lhs); other != nil {
			return recordOpt(h.builder.And(lhs, h.builder.Not(other)))
		}
	}

	return h.base.Sub(lhs, rhs)
}

/*
 * Mul, UDiv, SDiv, URem, SRem
 */

func (h *foldBuilder) Mul(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.mulCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.mulCN(rhs, lhs)
	}
	return h.base.Mul(lhs, rhs)
}

func (h *foldBuilder) mulCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()
	// 0 * X => 0
	if lc.IsZero() {
		return recordConstOpt(lhs, nil)
	}
	// 1 * X => X
	if lc.IsOne() {
		return recordOpt(rhs, nil)
	}
	return h.base.Mul(lhs, rhs)
}

func (h *foldBuilder) UDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 / X => 0
		if lc.IsZero() && !rhs.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.UDiv(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X / 1 => X
		if rc.IsOne() {
			return recordOpt(lhs, nil)
		}
	}
	return h.base.UDiv(lhs, rhs)
}

func (h *foldBuilder) SDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 / X => 0
		if lc.IsZero() && !rhs.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.SDiv(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X / 1 => X
		if rc.IsOne() {
			return recordOpt(lhs, nil)
		}
	}
	return h.base.SDiv(lhs, rhs)
}

func (h *foldBuilder) URem(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 % X => 0
		if lc.IsZero() && !rhs.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.URem(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X % 1 => 0
		if rc.IsOne() {
			return recordConstOpt(h.zero(lhs.Width()), nil)
		}
	}
	return h.base.URem(lhs, rhs)
}

func (h *foldBuilder) SRem(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 % X => 0
		if lc.IsZero() && !rhs.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.SRem(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X % 1 => 0
		if rc.IsOne() {
			return recordConstOpt(h.zero(lhs.Width()), nil)
		}
	}
	return h.base.SRem(lhs, rhs)
}

/*
 * And, Or, Xor
 */

func (h *foldBuilder) And(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.andCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.andCN(rhs, lhs)
	}
	return h.andNN(lhs, rhs)
}

func (h *foldBuilder) andCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()
	// 0 & X => 0
	if lc.IsZero() {
		return recordConstOpt(lhs, nil)
	}
	// -1 & X => X
	if lc.HasAllBitsSet() {
		return recordOpt(rhs, nil)
	}
	return h.base.And(lhs, rhs)
}

func (h *foldBuilder) andNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X & X => X
	if exactMatch(lhs, rhs) {
		return recordOpt(lhs, nil)
	}

	switch lhs.Kind() {
	case TY_OR:
		// (X | Y) & X => X
		if matchEitherChild(lhs, rhs) != nil {
			return recordOpt(rhs, nil)
		}
	case TY_NOT:
		// ~X & X => 0
		if exactMatch(notArg(lhs), rhs) {
			return recordConstOpt(h.zero(rhs.Width()), nil)
		}
	}

	switch rhs.Kind() {
	case TY_OR:
		// X & (Y | X) => X
		if matchEitherChild(rhs, lhs) != nil {
			return recordOpt(lhs, nil)
		}
	case TY_NOT:
		// X & ~X => 0
		if exactMatch(notArg(rhs), lhs) {
			return recordConstOpt(h.zero(lhs.Width()), nil)
		}
	}

	return h.base.And(lhs, rhs)
}

func (h *foldBuilder) Or(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.orCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.orCN(rhs, lhs)
	}
	return h.orNN(lhs, rhs)
}

func (h *foldBuilder) orCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()
	// 0 | X => X
	if lc.IsZero() {
		return recordOpt(rhs, nil)
	}
	// -1 | X => -1
	if lc.HasAllBitsSet() {
		return recordConstOpt(lhs, nil)
	}
	return h.base.Or(lhs, rhs)
}

func (h *foldBuilder) orNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X | X => X
	if exactMatch(lhs, rhs) {
		return recordOpt(lhs, nil)
	}

	switch lhs.Kind() {
	case TY_AND:
		// (X & Y) | X => X
		if matchEitherChild(lhs, rhs) != nil {
			return recordOpt(rhs, nil)
		}

	case TY_NOT:
		n := notArg(lhs)
		// ~X | X => -1
		if exactMatch(n, rhs) {
			return recordConstOpt(h.allOnes(rhs.Width()), nil)
		}
		switch n.Kind() {
		case TY_AND:
			// ~(X & Y) | X => -1
			if matchEitherChild(n, rhs) != nil {
				return recordConstOpt(h.allOnes(rhs.Width()), nil)
			}
		case TY_XOR:
			// ~(A ^ B) | (A | B) => -1
			if rhs.Kind() == TY_OR && matchBinChildren(n, rhs) {
				return recordConstOpt(h.allOnes(lhs.Width()), nil)
			}
		}

	case TY_XOR:
		// (A ^ B) | (A | B) => A | B
		if rhs.Kind() == TY_OR && matchBinChildren(lhs, rhs) {
			return recordOpt(rhs, nil)
		}

	case TY_OR:
		// (A | B) | (A ^ B) => A | B
		if rhs.Kind() == TY_XOR && matchBinChildren(lhs, rhs) {
			return recordOpt(lhs, nil)
		}
		// (A | B) | ~(A ^ B) => -1
		if rhs.Kind() == TY_NOT {
			n := notArg(rhs)
			if n.Kind() == TY_XOR && matchBinChildren(lhs, n) {
				return recordConstOpt(h.allOnes(lhs.Width()), nil)
			}
		}
	}

	switch rhs.Kind() {
	case TY_AND:
		// X | (X & Y) => X
		if matchEitherChild(rhs, lhs) != nil {
			return recordOpt(lhs, nil)
		}

	case TY_NOT:
		n := notArg(rhs)
		// X | ~X => -1
		if exactMatch(n, lhs) {
			return recordConstOpt(h.allOnes(lhs.Width()), nil)
		}
		// X | ~(X & Y) => -1
		if n.Kind() == TY_AND && matchEitherChild(n, lhs) != nil {
			return recordConstOpt(h.allOnes(lhs.Width()), nil)
		}
	}

	return h.base.Or(lhs, rhs)
}

func (h *foldBuilder) Xor(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.xorCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.xorCN(rhs, lhs)
	}
	return h.xorNN(lhs, rhs)
}

func (h *foldBuilder) xorCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// 0 ^ X => X
	if lhs.constVal().IsZero() {
		return recordOpt(rhs, nil)
	}
	return h.base.Xor(lhs, rhs)
}

func (h *foldBuilder) xorNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X ^ X => 0
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.zero(lhs.Width()), nil)
	}
	// ~X ^ X => -1
	if lhs.Kind() == TY_NOT && exactMatch(notArg(lhs), rhs) {
		return recordConstOpt(h.allOnes(rhs.Width()), nil)
	}
	// X ^ ~X => -1
	if rhs.Kind() == TY_NOT && exactMatch(notArg(rhs), lhs) {
		return recordConstOpt(h.allOnes(lhs.Width()), nil)
	}
	return h.base.Xor(lhs, rhs)
}

/*
 * Shl, LShr, AShr
 */

func (h *foldBuilder) Shl(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 << X => 0
		if lc.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.Shl(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X << 0 => X
		if rc.IsZero() {
			return recordOpt(lhs, nil)
		}
	}
	return h.base.Shl(lhs, rhs)
}

func (h *foldBuilder) LShr(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 >> X => 0
		if lc.IsZero() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.LShr(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X >> 0 => X
		if rc.IsZero() {
			return recordOpt(lhs, nil)
		}
	}
	return h.base.LShr(lhs, rhs)
}

func (h *foldBuilder) AShr(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lc := lhs.constVal(); lc != nil {
		// 0 >> X => 0, -1 >> X => -1 (sign fill)
		if lc.IsZero() || lc.HasAllBitsSet() {
			return recordConstOpt(lhs, nil)
		}
		return h.base.AShr(lhs, rhs)
	}
	if rc := rhs.constVal(); rc != nil {
		// X >> 0 => X
		if rc.IsZero() {
			return recordOpt(lhs, nil)
		}
	}
	return h.base.AShr(lhs, rhs)
}

/*
 * Eq
 */

func (h *foldBuilder) Eq(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.eqCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.eqCN(rhs, lhs)
	}
	return h.eqNN(lhs, rhs)
}

func (h *foldBuilder) eqCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	lc := lhs.constVal()

	if lc.Size == WidthBool {
		// true == X => X
		if lc.IsOne() {
			return recordOpt(rhs, nil)
		}
		// false == X => ~X
		return recordOpt(h.builder.Not(rhs), nil)
	}

	switch rhs.Kind() {
	case TY_ZEXT:
		src := extendArg(rhs)
		// ZExt X == C => X == Trunc C when C fits the source range
		if zextInRange(lc, src.Width()) {
			return recordOpt(h.builder.Eq(h.builder.ConstantValue(lc.TruncTo(src.Width())), src))
		}
		// a bit is set outside the ZExt range, cannot be equal
		return recordConstOpt(h.boolConst(false), nil)

	case TY_SEXT:
		src := extendArg(rhs)
		// SExt X == C => X == Trunc C when C fits the source range
		if sextInRange(lc, src.Width()) {
			return recordOpt(h.builder.Eq(h.builder.ConstantValue(lc.TruncTo(src.Width())), src))
		}
		return recordConstOpt(h.boolConst(false), nil)
	}

	return h.base.Eq(lhs, rhs)
}

func (h *foldBuilder) eqNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X == X => true
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.boolConst(true), nil)
	}

	switch lhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(lhs)
		// C + X == X => C == 0
		if c := bl.constVal(); c != nil && exactMatch(br, rhs) {
			return recordConstOpt(h.boolConst(c.IsZero()), nil)
		}

	case TY_UREM:
		// (X URem Y) == Y => false
		if matchRightChild(lhs, rhs) {
			return recordConstOpt(h.boolConst(false), nil)
		}

	case TY_ZEXT:
		// (ZExt X) == (ZExt Y) => X == Y when widths agree
		if rhs.Kind() == TY_ZEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Eq(srcL, srcR))
			}
		}

	case TY_SEXT:
		// (SExt X) == (SExt Y) => X == Y when widths agree
		if rhs.Kind() == TY_SEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Eq(srcL, srcR))
			}
		}
	}

	switch rhs.Kind() {
	case TY_ADD:
		bl, br := binArgs(rhs)
		// X == C + X => C == 0
		if c := bl.constVal(); c != nil && exactMatch(br, lhs) {
			return recordConstOpt(h.boolConst(c.IsZero()), nil)
		}
	}

	// (X + Z) == (Y + Z) => X == Y, over all four pairings
	if lhs.Kind() == TY_ADD && rhs.Kind() == TY_ADD {
		ll, lr := binArgs(lhs)
		rl, rr := binArgs(rhs)
		if exactMatch(ll, rl) {
			return recordOpt(h.builder.Eq(lr, rr))
		}
		if exactMatch(lr, rr) {
			return recordOpt(h.builder.Eq(ll, rl))
		}
		if exactMatch(ll, rr) {
			return recordOpt(h.builder.Eq(lr, rl))
		}
		if exactMatch(lr, rl) {
			return recordOpt(h.builder.Eq(ll, rr))
		}
	}

	return h.base.Eq(lhs, rhs)
}

/*
 * Ult, Ule, Slt, Sle
 */

func (h *foldBuilder) Ult(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.base.Ult(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.ultNC(lhs, rhs)
	}
	return h.ultNN(lhs, rhs)
}

func (h *foldBuilder) ultNC(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X <u 0 => false
	if rhs.constVal().IsZero() {
		return recordConstOpt(h.boolConst(false), nil)
	}
	return h.base.Ult(lhs, rhs)
}

func (h *foldBuilder) ultNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X <u X => false
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.boolConst(false), nil)
	}

	switch lhs.Kind() {
	case TY_OR:
		// (X | Y) <u X => false
		if matchEitherChild(lhs, rhs) != nil {
			return recordConstOpt(h.boolConst(false), nil)
		}

	case TY_UREM:
		// (X URem Y) <u Y => true
		if matchRightChild(lhs, rhs) {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_ZEXT:
		// (ZExt X) <u (ZExt Y) => X <u Y when widths agree
		if rhs.Kind() == TY_ZEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ult(srcL, srcR))
			}
		}

	case TY_SEXT:
		srcL := extendArg(lhs)
		// (SExt X) <u (SExt Y) => X <u Y when widths agree
		if rhs.Kind() == TY_SEXT {
			srcR := extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ult(srcL, srcR))
			}
		}
		// (SExt X) <u (ZExt X) => false
		if rhs.Kind() == TY_ZEXT && exactMatch(srcL, extendArg(rhs)) {
			return recordConstOpt(h.boolConst(false), nil)
		}
	}

	switch rhs.Kind() {
	case TY_AND:
		// X <u (X & Y) => false
		if matchEitherChild(rhs, lhs) != nil {
			return recordConstOpt(h.boolConst(false), nil)
		}

	case TY_UREM:
		// X <u (X URem Y) => false, Y <u (X URem Y) => false
		if matchEitherChild(rhs, lhs) != nil {
			return recordConstOpt(h.boolConst(false), nil)
		}

	case TY_UDIV:
		// X <u (X UDiv Y) => false
		if matchLeftChild(rhs, lhs) {
			return recordConstOpt(h.boolConst(false), nil)
		}
	}

	return h.base.Ult(lhs, rhs)
}

func (h *foldBuilder) Ule(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() || rhs.IsConst() {
		return h.base.Ule(lhs, rhs)
	}
	return h.uleNN(lhs, rhs)
}

func (h *foldBuilder) uleNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X <=u X => true
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.boolConst(true), nil)
	}

	switch lhs.Kind() {
	case TY_AND:
		// (X & Y) <=u X => true
		if matchEitherChild(lhs, rhs) != nil {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_UREM:
		// (X URem Y) <=u X => true, (X URem Y) <=u Y => true
		if matchEitherChild(lhs, rhs) != nil {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_UDIV:
		// (X UDiv Y) <=u X => true
		if matchLeftChild(lhs, rhs) {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_ZEXT:
		srcL := extendArg(lhs)
		// (ZExt X) <=u (ZExt Y) => X <=u Y when widths agree
		if rhs.Kind() == TY_ZEXT {
			srcR := extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ule(srcL, srcR))
			}
		}
		// (ZExt X) <=u (SExt X) => true
		if rhs.Kind() == TY_SEXT && exactMatch(srcL, extendArg(rhs)) {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_SEXT:
		// (SExt X) <=u (SExt Y) => X <=u Y when widths agree
		if rhs.Kind() == TY_SEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ule(srcL, srcR))
			}
		}
	}

	switch rhs.Kind() {
	case TY_OR:
		// X <=u (X | Y) => true
		if matchEitherChild(rhs, lhs) != nil {
			return recordConstOpt(h.boolConst(true), nil)
		}

	case TY_UREM:
		// Y <=u (X URem Y) => false
		if matchRightChild(rhs, lhs) {
			return recordConstOpt(h.boolConst(false), nil)
		}
	}

	return h.base.Ule(lhs, rhs)
}

func (h *foldBuilder) Slt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() || rhs.IsConst() {
		return h.base.Slt(lhs, rhs)
	}
	return h.sltNN(lhs, rhs)
}

func (h *foldBuilder) sltNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X <s X => false
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.boolConst(false), nil)
	}

	switch lhs.Kind() {
	case TY_ZEXT:
		srcL := extendArg(lhs)
		// (ZExt X) <s (ZExt Y) => X <u Y when widths agree; both sides are
		// non-negative at the wide width, so the signed order is the
		// unsigned order of the sources
		if rhs.Kind() == TY_ZEXT {
			srcR := extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ult(srcL, srcR))
			}
		}
		// (ZExt X) <s (SExt X) => false
		if rhs.Kind() == TY_SEXT && exactMatch(srcL, extendArg(rhs)) {
			return recordConstOpt(h.boolConst(false), nil)
		}

	case TY_SEXT:
		// (SExt X) <s (SExt Y) => X <s Y when widths agree
		if rhs.Kind() == TY_SEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Slt(srcL, srcR))
			}
		}
	}

	return h.base.Slt(lhs, rhs)
}

func (h *foldBuilder) Sle(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() || rhs.IsConst() {
		return h.base.Sle(lhs, rhs)
	}
	return h.sleNN(lhs, rhs)
}

func (h *foldBuilder) sleNN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X <=s X => true
	if exactMatch(lhs, rhs) {
		return recordConstOpt(h.boolConst(true), nil)
	}

	switch lhs.Kind() {
	case TY_ZEXT:
		// (ZExt X) <=s (ZExt Y) => X <=u Y when widths agree
		if rhs.Kind() == TY_ZEXT {
			srcL, srcR := extendArg(lhs), extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Ule(srcL, srcR))
			}
		}

	case TY_SEXT:
		srcL := extendArg(lhs)
		// (SExt X) <=s (ZExt X) => true
		if rhs.Kind() == TY_ZEXT && exactMatch(srcL, extendArg(rhs)) {
			return recordConstOpt(h.boolConst(true), nil)
		}
		// (SExt X) <=s (SExt Y) => X <=s Y when widths agree
		if rhs.Kind() == TY_SEXT {
			srcR := extendArg(rhs)
			if srcL.Width() == srcR.Width() {
				return recordOpt(h.builder.Sle(srcL, srcR))
			}
		}
	}

	return h.base.Sle(lhs, rhs)
}

/*
 * Select
 */

func (h *foldBuilder) Select(cond, iftrue, iffalse *ExprPtr) (*ExprPtr, error) {
	// Select(C, X, X) => X
	if exactMatch(iftrue, iffalse) {
		return recordOpt(iftrue, nil)
	}
	return h.base.Select(cond, iftrue, iffalse)
}
