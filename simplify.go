package bvexpr

// simplifyBuilder canonicalises comparisons to the minimal base set
// Eq/Ult/Ule/Slt/Sle and pushes bitwise Not below Or. It sits above the
// folding layer and leaves everything arithmetic to it. Canonicalisations
// are not optimisations: the counters stay untouched.
type simplifyBuilder struct {
	chained
}

func (h *simplifyBuilder) Eq(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.IsConst() {
		return h.eqCN(lhs, rhs)
	}
	if rhs.IsConst() {
		return h.eqCN(rhs, lhs)
	}
	// X == X => true
	if exactMatch(lhs, rhs) {
		return h.boolConst(true), nil
	}
	return h.base.Eq(lhs, rhs)
}

func (h *simplifyBuilder) eqCN(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	if lhs.Width() == WidthBool {
		// true == X => X
		if lhs.IsTrue() {
			return rhs, nil
		}
		// false == X => ~X
		return h.base.Not(rhs), nil
	}
	return h.base.Eq(lhs, rhs)
}

func (h *simplifyBuilder) Not(e *ExprPtr) *ExprPtr {
	// ~(A | B) => ~A & ~B
	if e.Kind() == TY_OR {
		bl, br := binArgs(e)
		r, err := h.builder.And(h.builder.Not(bl), h.builder.Not(br))
		if err != nil {
			panic(err)
		}
		return r
	}
	return h.base.Not(e)
}

func (h *simplifyBuilder) Ne(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X != Y => ~(X == Y)
	eq, err := h.builder.Eq(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return h.builder.Not(eq), nil
}

func (h *simplifyBuilder) Ugt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X >u Y => Y <u X
	return h.builder.Ult(rhs, lhs)
}

func (h *simplifyBuilder) Uge(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X >=u Y => Y <=u X
	return h.builder.Ule(rhs, lhs)
}

func (h *simplifyBuilder) Sgt(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X >s Y => Y <s X
	return h.builder.Slt(rhs, lhs)
}

func (h *simplifyBuilder) Sge(lhs, rhs *ExprPtr) (*ExprPtr, error) {
	// X >=s Y => Y <=s X
	return h.builder.Sle(rhs, lhs)
}
