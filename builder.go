package bvexpr

import (
	"runtime"
	"sync"
)

// Builder is the construction interface exposed by every layer of the
// pipeline. A client holds only the outermost layer; layers re-enter their
// own outermost handle when a rewrite builds new terms, so introduced
// operators are themselves subject to rewriting.
//
// Width discipline is the caller's contract: binary operations take operands
// of equal width, Select takes a WidthBool condition and equal-width
// branches, Extract needs offset+width <= src width, the extensions need a
// target width not smaller than the source. The dispatching layers report
// violations as errors; the terminal layer allocates as-is.
type Builder interface {
	Constant(value int64, width uint) *ExprPtr
	ConstantValue(c *BVConst) *ExprPtr
	NotOptimized(e *ExprPtr) *ExprPtr
	Read(updates UpdateList, index *ExprPtr) (*ExprPtr, error)
	Select(cond, iftrue, iffalse *ExprPtr) (*ExprPtr, error)
	Concat(hi, lo *ExprPtr) (*ExprPtr, error)
	Extract(e *ExprPtr, offset, width uint) (*ExprPtr, error)
	ZExt(e *ExprPtr, width uint) (*ExprPtr, error)
	SExt(e *ExprPtr, width uint) (*ExprPtr, error)

	Not(e *ExprPtr) *ExprPtr
	Add(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Sub(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Mul(lhs, rhs *ExprPtr) (*ExprPtr, error)
	UDiv(lhs, rhs *ExprPtr) (*ExprPtr, error)
	SDiv(lhs, rhs *ExprPtr) (*ExprPtr, error)
	URem(lhs, rhs *ExprPtr) (*ExprPtr, error)
	SRem(lhs, rhs *ExprPtr) (*ExprPtr, error)
	And(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Or(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Xor(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Shl(lhs, rhs *ExprPtr) (*ExprPtr, error)
	LShr(lhs, rhs *ExprPtr) (*ExprPtr, error)
	AShr(lhs, rhs *ExprPtr) (*ExprPtr, error)

	Eq(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Ne(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Ult(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Ule(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Ugt(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Uge(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Slt(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Sle(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Sgt(lhs, rhs *ExprPtr) (*ExprPtr, error)
	Sge(lhs, rhs *ExprPtr) (*ExprPtr, error)
}

var (
	_ Builder = (*DefaultBuilder)(nil)
	_ Builder = (*dispatchBuilder)(nil)
	_ Builder = (*foldBuilder)(nil)
	_ Builder = (*simplifyBuilder)(nil)
)

type cacheEntry struct {
	exp     internalExpr
	counter int
}

type CacheStats struct {
	CacheHits    uint
	CacheLookups uint
	CachedExprs  uint
}

// DefaultBuilder is the terminal layer: a faithful allocator backed by a
// hash-consing store. Structurally equal nodes built through the same
// DefaultBuilder share their internal pointer, which makes structural
// equality a pointer comparison most of the time.
type DefaultBuilder struct {
	lock  sync.Mutex
	cache map[uint64][]cacheEntry

	Stats CacheStats
}

func NewDefaultBuilder() *DefaultBuilder {
	return &DefaultBuilder{
		cache: map[uint64][]cacheEntry{},
	}
}

func (db *DefaultBuilder) finalizer(e *ExprPtr) {
	db.lock.Lock()
	defer db.lock.Unlock()

	h := e.e.hash()
	buck, ok := db.cache[h]
	if !ok {
		return
	}
	newBuck := make([]cacheEntry, 0, len(buck))
	for i := 0; i < len(buck); i++ {
		if buck[i].exp.rawPtr() == e.e.rawPtr() {
			buck[i].counter -= 1
			if buck[i].counter <= 0 {
				db.Stats.CachedExprs -= 1
				continue
			}
		}
		newBuck = append(newBuck, buck[i])
	}
	db.cache[h] = newBuck
}

func (db *DefaultBuilder) getOrCreate(e internalExpr) *ExprPtr {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.Stats.CacheLookups += 1

	h := e.hash()
	bucket := db.cache[h]
	for i := 0; i < len(bucket); i++ {
		if bucket[i].exp.shallowEq(e) {
			db.Stats.CacheHits += 1

			bucket[i].counter += 1
			r := &ExprPtr{bucket[i].exp}
			runtime.SetFinalizer(r, db.finalizer)
			return r
		}
	}
	db.Stats.CachedExprs += 1

	db.cache[h] = append(bucket, cacheEntry{e, 1})
	r := &ExprPtr{e}
	runtime.SetFinalizer(r, db.finalizer)
	return r
}

func (db *DefaultBuilder) Constant(value int64, width uint) *ExprPtr {
	return db.getOrCreate(mkinternalConst(MakeBVConst(value, width)))
}

func (db *DefaultBuilder) ConstantValue(c *BVConst) *ExprPtr {
	return db.getOrCreate(mkinternalConst(c))
}

func (db *DefaultBuilder) NotOptimized(e *ExprPtr) *ExprPtr {
	return db.getOrCreate(mkinternalNotOpt(e))
}

func (db *DefaultBuilder) Read(updates UpdateList, index *ExprPtr) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalRead(updates, index)), nil
}

func (db *DefaultBuilder) Select(cond, iftrue, iffalse *ExprPtr) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalSelect(cond, iftrue, iffalse)), nil
}

func (db *DefaultBuilder) Concat(hi, lo *ExprPtr) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalConcat(hi, lo)), nil
}

func (db *DefaultBuilder) Extract(e *ExprPtr, offset, width uint) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalExtract(e, offset, width)), nil
}

func (db *DefaultBuilder) ZExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalExtend(e, false, width)), nil
}

func (db *DefaultBuilder) SExt(e *ExprPtr, width uint) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalExtend(e, true, width)), nil
}

func (db *DefaultBuilder) Not(e *ExprPtr) *ExprPtr {
	return db.getOrCreate(mkinternalNot(e))
}

func (db *DefaultBuilder) bin(kind int, lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalBin(kind, lhs, rhs)), nil
}

func (db *DefaultBuilder) Add(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_ADD, lhs, rhs) }
func (db *DefaultBuilder) Sub(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_SUB, lhs, rhs) }
func (db *DefaultBuilder) Mul(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_MUL, lhs, rhs) }
func (db *DefaultBuilder) UDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_UDIV, lhs, rhs) }
func (db *DefaultBuilder) SDiv(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_SDIV, lhs, rhs) }
func (db *DefaultBuilder) URem(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_UREM, lhs, rhs) }
func (db *DefaultBuilder) SRem(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_SREM, lhs, rhs) }
func (db *DefaultBuilder) And(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_AND, lhs, rhs) }
func (db *DefaultBuilder) Or(lhs, rhs *ExprPtr) (*ExprPtr, error)   { return db.bin(TY_OR, lhs, rhs) }
func (db *DefaultBuilder) Xor(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_XOR, lhs, rhs) }
func (db *DefaultBuilder) Shl(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.bin(TY_SHL, lhs, rhs) }
func (db *DefaultBuilder) LShr(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_LSHR, lhs, rhs) }
func (db *DefaultBuilder) AShr(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.bin(TY_ASHR, lhs, rhs) }

func (db *DefaultBuilder) cmp(kind int, lhs, rhs *ExprPtr) (*ExprPtr, error) {
	return db.getOrCreate(mkinternalCmp(kind, lhs, rhs)), nil
}

func (db *DefaultBuilder) Eq(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.cmp(TY_EQ, lhs, rhs) }
func (db *DefaultBuilder) Ne(lhs, rhs *ExprPtr) (*ExprPtr, error)  { return db.cmp(TY_NE, lhs, rhs) }
func (db *DefaultBuilder) Ult(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_ULT, lhs, rhs) }
func (db *DefaultBuilder) Ule(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_ULE, lhs, rhs) }
func (db *DefaultBuilder) Ugt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_UGT, lhs, rhs) }
func (db *DefaultBuilder) Uge(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_UGE, lhs, rhs) }
func (db *DefaultBuilder) Slt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_SLT, lhs, rhs) }
func (db *DefaultBuilder) Sle(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_SLE, lhs, rhs) }
func (db *DefaultBuilder) Sgt(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_SGT, lhs, rhs) }
func (db *DefaultBuilder) Sge(lhs, rhs *ExprPtr) (*ExprPtr, error) { return db.cmp(TY_SGE, lhs, rhs) }

// NewConstantFoldingBuilder wraps base with the constant-folding layer: a
// constant-specialisation dispatcher over the algebraic rule set.
func NewConstantFoldingBuilder(base Builder) Builder {
	d := &dispatchBuilder{}
	h := &foldBuilder{}
	h.chained = chained{builder: d, base: base}
	d.helper = h
	return d
}

// NewSimplifyingBuilder wraps base with the canonicalisation layer, which
// rewrites comparisons to the minimal Eq/Ult/Ule/Slt/Sle set. Compose it
// above a constant-folding builder to get both.
func NewSimplifyingBuilder(base Builder) Builder {
	d := &dispatchBuilder{}
	h := &simplifyBuilder{}
	h.chained = chained{builder: d, base: base}
	d.helper = h
	return d
}

// NewBuilder returns the typical client composition:
// canonicalisation over constant folding over the terminal allocator.
func NewBuilder() Builder {
	return NewSimplifyingBuilder(NewConstantFoldingBuilder(NewDefaultBuilder()))
}
