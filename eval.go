package bvexpr

import "fmt"

// Assignment gives concrete content to symbolic arrays: array name to cell
// index to value. Cells without an entry read as zero.
type Assignment map[string]map[uint64]*BVConst

// Eval computes the concrete value of e under env. Division or remainder by
// a zero divisor is reported as an error: the builder preserves such terms
// and their meaning belongs to the solver.
func Eval(e *ExprPtr, env Assignment) (*BVConst, error) {
	cache := make(map[uintptr]*BVConst)
	return evalRec(e, cache, env)
}

func evalRec(e *ExprPtr, cache map[uintptr]*BVConst, env Assignment) (*BVConst, error) {
	if r, ok := cache[e.Id()]; ok {
		return r, nil
	}

	r, err := evalNode(e, cache, env)
	if err != nil {
		return nil, err
	}
	cache[e.Id()] = r
	return r, nil
}

func evalNode(e *ExprPtr, cache map[uintptr]*BVConst, env Assignment) (*BVConst, error) {
	switch e.Kind() {
	case TY_CONST:
		return e.constVal().Copy(), nil

	case TY_NOTOPT:
		return evalRec(notOptArg(e), cache, env)

	case TY_READ:
		updates, index := readArgs(e)
		idx, err := evalRec(index, cache, env)
		if err != nil {
			return nil, err
		}
		for un := updates.Head; un != nil; un = un.Next {
			stored, err := evalRec(un.Index, cache, env)
			if err != nil {
				return nil, err
			}
			if stored.Eq(idx) {
				return evalRec(un.Value, cache, env)
			}
		}
		if cells, ok := env[updates.Root.Name]; ok {
			if v, ok := cells[idx.AsULong()]; ok {
				if v.Size != updates.Root.Range {
					return nil, fmt.Errorf("eval: assignment width %d, range %d", v.Size, updates.Root.Range)
				}
				return v.Copy(), nil
			}
		}
		return MakeBVConst(0, updates.Root.Range), nil

	case TY_SELECT:
		cond, iftrue, iffalse := selectArgs(e)
		c, err := evalRec(cond, cache, env)
		if err != nil {
			return nil, err
		}
		if c.IsOne() {
			return evalRec(iftrue, cache, env)
		}
		return evalRec(iffalse, cache, env)

	case TY_CONCAT:
		hi, lo := concatArgs(e)
		hv, err := evalRec(hi, cache, env)
		if err != nil {
			return nil, err
		}
		lv, err := evalRec(lo, cache, env)
		if err != nil {
			return nil, err
		}
		return hv.Concat(lv), nil

	case TY_EXTRACT:
		child, off, w := extractArgs(e)
		v, err := evalRec(child, cache, env)
		if err != nil {
			return nil, err
		}
		return v.Extract(off, w), nil

	case TY_ZEXT:
		v, err := evalRec(extendArg(e), cache, env)
		if err != nil {
			return nil, err
		}
		return v.ZExtTo(e.Width()), nil

	case TY_SEXT:
		v, err := evalRec(extendArg(e), cache, env)
		if err != nil {
			return nil, err
		}
		return v.SExtTo(e.Width()), nil

	case TY_NOT:
		v, err := evalRec(notArg(e), cache, env)
		if err != nil {
			return nil, err
		}
		return v.Not(), nil
	}

	if !isBinaryKind(e.Kind()) {
		return nil, fmt.Errorf("eval: unexpected kind %d", e.Kind())
	}

	bl, br := binArgs(e)
	lv, err := evalRec(bl, cache, env)
	if err != nil {
		return nil, err
	}
	rv, err := evalRec(br, cache, env)
	if err != nil {
		return nil, err
	}

	switch e.Kind() {
	case TY_UDIV, TY_SDIV, TY_UREM, TY_SREM:
		if rv.IsZero() {
			return nil, fmt.Errorf("eval: division by zero")
		}
	}

	switch e.Kind() {
	case TY_ADD:
		return lv.Add(rv), nil
	case TY_SUB:
		return lv.Sub(rv), nil
	case TY_MUL:
		return lv.Mul(rv), nil
	case TY_UDIV:
		return lv.UDiv(rv), nil
	case TY_SDIV:
		return lv.SDiv(rv), nil
	case TY_UREM:
		return lv.URem(rv), nil
	case TY_SREM:
		return lv.SRem(rv), nil
	case TY_AND:
		return lv.And(rv), nil
	case TY_OR:
		return lv.Or(rv), nil
	case TY_XOR:
		return lv.Xor(rv), nil
	case TY_SHL:
		return lv.Shl(shiftAmount(rv, lv.Size)), nil
	case TY_LSHR:
		return lv.LShr(shiftAmount(rv, lv.Size)), nil
	case TY_ASHR:
		return lv.AShr(shiftAmount(rv, lv.Size)), nil
	case TY_EQ:
		return MakeBoolConst(lv.Eq(rv)), nil
	case TY_NE:
		return MakeBoolConst(lv.Ne(rv)), nil
	case TY_ULT:
		return MakeBoolConst(lv.Ult(rv)), nil
	case TY_ULE:
		return MakeBoolConst(lv.Ule(rv)), nil
	case TY_UGT:
		return MakeBoolConst(lv.Ugt(rv)), nil
	case TY_UGE:
		return MakeBoolConst(lv.Uge(rv)), nil
	case TY_SLT:
		return MakeBoolConst(lv.Slt(rv)), nil
	case TY_SLE:
		return MakeBoolConst(lv.Sle(rv)), nil
	case TY_SGT:
		return MakeBoolConst(lv.Sgt(rv)), nil
	case TY_SGE:
		return MakeBoolConst(lv.Sge(rv)), nil
	}

	return nil, fmt.Errorf("eval: unexpected kind %d", e.Kind())
}
