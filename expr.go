package bvexpr

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// WidthBool is the width of comparison results and boolean constants.
const WidthBool uint = 1

const (
	TY_CONST = 1 + iota
	TY_READ
	TY_NOTOPT
	TY_SELECT
	TY_CONCAT
	TY_EXTRACT
	TY_ZEXT
	TY_SEXT

	TY_NOT
	TY_ADD
	TY_SUB
	TY_MUL
	TY_UDIV
	TY_SDIV
	TY_UREM
	TY_SREM
	TY_AND
	TY_OR
	TY_XOR
	TY_SHL
	TY_LSHR
	TY_ASHR

	TY_EQ
	TY_NE
	TY_ULT
	TY_ULE
	TY_UGT
	TY_UGE
	TY_SLT
	TY_SLE
	TY_SGT
	TY_SGE
)

/*
 *   Public Interface
 */

// ExprPtr is a shared handle to an immutable expression node.
type ExprPtr struct {
	e internalExpr
}

func (p *ExprPtr) Kind() int {
	return p.e.kind()
}

func (p *ExprPtr) Width() uint {
	return p.e.width()
}

func (p *ExprPtr) Id() uintptr {
	return p.e.rawPtr()
}

func (p *ExprPtr) String() string {
	return p.e.String()
}

func (p *ExprPtr) IsConst() bool {
	return p.e.kind() == TY_CONST
}

func (p *ExprPtr) GetConst() (*BVConst, error) {
	if p.e.kind() != TY_CONST {
		return nil, fmt.Errorf("not a constant")
	}
	c := p.e.(*internalConst)
	return c.Value.Copy(), nil
}

// constVal returns the constant value or nil. The returned value is shared
// and must not be mutated (BVConst operations never mutate).
func (p *ExprPtr) constVal() *BVConst {
	if p.e.kind() != TY_CONST {
		return nil
	}
	return &p.e.(*internalConst).Value
}

func (p *ExprPtr) IsZero() bool {
	c := p.constVal()
	return c != nil && c.IsZero()
}

func (p *ExprPtr) IsOne() bool {
	c := p.constVal()
	return c != nil && c.IsOne()
}

func (p *ExprPtr) HasAllBitsSet() bool {
	c := p.constVal()
	return c != nil && c.HasAllBitsSet()
}

func (p *ExprPtr) IsTrue() bool {
	c := p.constVal()
	return c != nil && c.IsTrue()
}

func (p *ExprPtr) IsFalse() bool {
	c := p.constVal()
	return c != nil && c.IsFalse()
}

// StructEq reports recursive structural equality. Hash-consed subterms make
// the pointer fast path hit most of the time.
func (p *ExprPtr) StructEq(o *ExprPtr) bool {
	if p.e.rawPtr() == o.e.rawPtr() {
		return true
	}
	return p.e.deepEq(o.e)
}

/*
 *   Private Interface
 */

type internalExpr interface {
	String() string

	kind() int
	width() uint
	hash() uint64
	isLeaf() bool
	rawPtr() uintptr
	children() []*ExprPtr
	deepEq(internalExpr) bool
	shallowEq(internalExpr) bool
}

func hashChildren(h *xxhash.Digest, children ...*ExprPtr) {
	raw := make([]byte, 8)
	for _, c := range children {
		binary.BigEndian.PutUint64(raw, uint64(c.e.rawPtr()))
		h.Write(raw)
	}
}

func parenthesize(e *ExprPtr) string {
	if e.e.isLeaf() {
		return e.String()
	}
	return fmt.Sprintf("(%s)", e.String())
}

/*
 *  TY_CONST
 */

type internalConst struct {
	Value BVConst
}

func mkinternalConst(c *BVConst) *internalConst {
	return &internalConst{Value: *c}
}

func (e *internalConst) String() string {
	return fmt.Sprintf("0x%x", e.Value.value)
}

func (e *internalConst) kind() int {
	return TY_CONST
}

func (e *internalConst) width() uint {
	return e.Value.Size
}

func (e *internalConst) hash() uint64 {
	if !e.Value.FitsInULong() {
		return e.Value.TruncTo(64).AsULong()
	}
	return e.Value.AsULong()
}

func (e *internalConst) isLeaf() bool {
	return true
}

func (e *internalConst) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalConst) children() []*ExprPtr {
	return nil
}

func (e *internalConst) deepEq(other internalExpr) bool {
	if other.kind() != TY_CONST {
		return false
	}
	oe := other.(*internalConst)
	return e.Value.Size == oe.Value.Size && e.Value.Eq(&oe.Value)
}

func (e *internalConst) shallowEq(other internalExpr) bool {
	return e.deepEq(other)
}

/*
 *  TY_READ
 */

type internalRead struct {
	updates UpdateList
	index   *ExprPtr
}

func mkinternalRead(updates UpdateList, index *ExprPtr) *internalRead {
	return &internalRead{updates: updates, index: index}
}

func (e *internalRead) String() string {
	return fmt.Sprintf("%s[%s]", e.updates.String(), e.index.String())
}

func (e *internalRead) kind() int {
	return TY_READ
}

func (e *internalRead) width() uint {
	return e.updates.Root.Range
}

func (e *internalRead) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("read"))
	h.Write([]byte(e.updates.Root.Name))
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(uintptr(unsafe.Pointer(e.updates.Head))))
	h.Write(raw)
	hashChildren(h, e.index)
	return h.Sum64()
}

func (e *internalRead) isLeaf() bool {
	return true
}

func (e *internalRead) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalRead) children() []*ExprPtr {
	res := []*ExprPtr{e.index}
	for un := e.updates.Head; un != nil; un = un.Next {
		res = append(res, un.Index, un.Value)
	}
	return res
}

func (e *internalRead) deepEq(other internalExpr) bool {
	if other.kind() != TY_READ {
		return false
	}
	oe := other.(*internalRead)
	if e.updates.Root != oe.updates.Root {
		return false
	}
	if !e.index.e.deepEq(oe.index.e) {
		return false
	}
	a, b := e.updates.Head, oe.updates.Head
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if !a.Index.e.deepEq(b.Index.e) || !a.Value.e.deepEq(b.Value.e) {
			return false
		}
		a, b = a.Next, b.Next
	}
	return a == b
}

func (e *internalRead) shallowEq(other internalExpr) bool {
	if other.kind() != TY_READ {
		return false
	}
	oe := other.(*internalRead)
	return e.updates.Root == oe.updates.Root &&
		e.updates.Head == oe.updates.Head &&
		e.index.e.rawPtr() == oe.index.e.rawPtr()
}

/*
 *  TY_NOTOPT
 */

// internalNotOpt wraps a subterm whose shape must survive untouched. No
// rewrite rule inspects its payload.
type internalNotOpt struct {
	child *ExprPtr
}

func mkinternalNotOpt(child *ExprPtr) *internalNotOpt {
	return &internalNotOpt{child: child}
}

func (e *internalNotOpt) String() string {
	return fmt.Sprintf("N(%s)", e.child.String())
}

func (e *internalNotOpt) kind() int {
	return TY_NOTOPT
}

func (e *internalNotOpt) width() uint {
	return e.child.Width()
}

func (e *internalNotOpt) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("notopt"))
	hashChildren(h, e.child)
	return h.Sum64()
}

func (e *internalNotOpt) isLeaf() bool {
	return true
}

func (e *internalNotOpt) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalNotOpt) children() []*ExprPtr {
	return []*ExprPtr{e.child}
}

func (e *internalNotOpt) deepEq(other internalExpr) bool {
	if other.kind() != TY_NOTOPT {
		return false
	}
	return e.child.e.deepEq(other.(*internalNotOpt).child.e)
}

func (e *internalNotOpt) shallowEq(other internalExpr) bool {
	if other.kind() != TY_NOTOPT {
		return false
	}
	return e.child.e.rawPtr() == other.(*internalNotOpt).child.e.rawPtr()
}

/*
 *  TY_SELECT
 */

type internalSelect struct {
	cond    *ExprPtr
	iftrue  *ExprPtr
	iffalse *ExprPtr
}

func mkinternalSelect(cond, iftrue, iffalse *ExprPtr) *internalSelect {
	return &internalSelect{cond: cond, iftrue: iftrue, iffalse: iffalse}
}

func (e *internalSelect) String() string {
	return fmt.Sprintf("ITE(%s, %s, %s)", e.cond.String(), e.iftrue.String(), e.iffalse.String())
}

func (e *internalSelect) kind() int {
	return TY_SELECT
}

func (e *internalSelect) width() uint {
	return e.iftrue.Width()
}

func (e *internalSelect) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("ite"))
	hashChildren(h, e.cond, e.iftrue, e.iffalse)
	return h.Sum64()
}

func (e *internalSelect) isLeaf() bool {
	return false
}

func (e *internalSelect) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalSelect) children() []*ExprPtr {
	return []*ExprPtr{e.cond, e.iftrue, e.iffalse}
}

func (e *internalSelect) deepEq(other internalExpr) bool {
	if other.kind() != TY_SELECT {
		return false
	}
	oe := other.(*internalSelect)
	return e.cond.e.deepEq(oe.cond.e) &&
		e.iftrue.e.deepEq(oe.iftrue.e) &&
		e.iffalse.e.deepEq(oe.iffalse.e)
}

func (e *internalSelect) shallowEq(other internalExpr) bool {
	if other.kind() != TY_SELECT {
		return false
	}
	oe := other.(*internalSelect)
	return e.cond.e.rawPtr() == oe.cond.e.rawPtr() &&
		e.iftrue.e.rawPtr() == oe.iftrue.e.rawPtr() &&
		e.iffalse.e.rawPtr() == oe.iffalse.e.rawPtr()
}

/*
 *  TY_CONCAT
 */

type internalConcat struct {
	hi, lo *ExprPtr
}

func mkinternalConcat(hi, lo *ExprPtr) *internalConcat {
	return &internalConcat{hi: hi, lo: lo}
}

func (e *internalConcat) String() string {
	return fmt.Sprintf("%s .. %s", parenthesize(e.hi), parenthesize(e.lo))
}

func (e *internalConcat) kind() int {
	return TY_CONCAT
}

func (e *internalConcat) width() uint {
	return e.hi.Width() + e.lo.Width()
}

func (e *internalConcat) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("concat"))
	hashChildren(h, e.hi, e.lo)
	return h.Sum64()
}

func (e *internalConcat) isLeaf() bool {
	return false
}

func (e *internalConcat) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalConcat) children() []*ExprPtr {
	return []*ExprPtr{e.hi, e.lo}
}

func (e *internalConcat) deepEq(other internalExpr) bool {
	if other.kind() != TY_CONCAT {
		return false
	}
	oe := other.(*internalConcat)
	return e.hi.e.deepEq(oe.hi.e) && e.lo.e.deepEq(oe.lo.e)
}

func (e *internalConcat) shallowEq(other internalExpr) bool {
	if other.kind() != TY_CONCAT {
		return false
	}
	oe := other.(*internalConcat)
	return e.hi.e.rawPtr() == oe.hi.e.rawPtr() && e.lo.e.rawPtr() == oe.lo.e.rawPtr()
}

/*
 *  TY_EXTRACT
 */

type internalExtract struct {
	child *ExprPtr
	off   uint
	w     uint
}

func mkinternalExtract(child *ExprPtr, off, w uint) *internalExtract {
	return &internalExtract{child: child, off: off, w: w}
}

func (e *internalExtract) String() string {
	return fmt.Sprintf("%s[%d:%d]", parenthesize(e.child), e.off+e.w-1, e.off)
}

func (e *internalExtract) kind() int {
	return TY_EXTRACT
}

func (e *internalExtract) width() uint {
	return e.w
}

func (e *internalExtract) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("extract"))
	hashChildren(h, e.child)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.off))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.w))
	h.Write(raw)
	return h.Sum64()
}

func (e *internalExtract) isLeaf() bool {
	return false
}

func (e *internalExtract) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalExtract) children() []*ExprPtr {
	return []*ExprPtr{e.child}
}

func (e *internalExtract) deepEq(other internalExpr) bool {
	if other.kind() != TY_EXTRACT {
		return false
	}
	oe := other.(*internalExtract)
	return e.off == oe.off && e.w == oe.w && e.child.e.deepEq(oe.child.e)
}

func (e *internalExtract) shallowEq(other internalExpr) bool {
	if other.kind() != TY_EXTRACT {
		return false
	}
	oe := other.(*internalExtract)
	return e.off == oe.off && e.w == oe.w && e.child.e.rawPtr() == oe.child.e.rawPtr()
}

/*
 *  TY_ZEXT, TY_SEXT
 */

type internalExtend struct {
	signed bool
	w      uint
	child  *ExprPtr
}

func mkinternalExtend(child *ExprPtr, signed bool, w uint) *internalExtend {
	return &internalExtend{child: child, signed: signed, w: w}
}

func (e *internalExtend) String() string {
	name := "ZExt"
	if e.signed {
		name = "SExt"
	}
	return fmt.Sprintf("%s(%s, %d)", name, parenthesize(e.child), e.w)
}

func (e *internalExtend) kind() int {
	if e.signed {
		return TY_SEXT
	}
	return TY_ZEXT
}

func (e *internalExtend) width() uint {
	return e.w
}

func (e *internalExtend) hash() uint64 {
	h := xxhash.New()
	if e.signed {
		h.Write([]byte("sext"))
	} else {
		h.Write([]byte("zext"))
	}
	hashChildren(h, e.child)
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.w))
	h.Write(raw)
	return h.Sum64()
}

func (e *internalExtend) isLeaf() bool {
	return false
}

func (e *internalExtend) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalExtend) children() []*ExprPtr {
	return []*ExprPtr{e.child}
}

func (e *internalExtend) deepEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalExtend)
	return e.w == oe.w && e.child.e.deepEq(oe.child.e)
}

func (e *internalExtend) shallowEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalExtend)
	return e.w == oe.w && e.child.e.rawPtr() == oe.child.e.rawPtr()
}

/*
 *  TY_NOT
 */

type internalNot struct {
	child *ExprPtr
}

func mkinternalNot(child *ExprPtr) *internalNot {
	return &internalNot{child: child}
}

func (e *internalNot) String() string {
	return fmt.Sprintf("~%s", parenthesize(e.child))
}

func (e *internalNot) kind() int {
	return TY_NOT
}

func (e *internalNot) width() uint {
	return e.child.Width()
}

func (e *internalNot) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("~"))
	hashChildren(h, e.child)
	return h.Sum64()
}

func (e *internalNot) isLeaf() bool {
	return false
}

func (e *internalNot) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalNot) children() []*ExprPtr {
	return []*ExprPtr{e.child}
}

func (e *internalNot) deepEq(other internalExpr) bool {
	if other.kind() != TY_NOT {
		return false
	}
	return e.child.e.deepEq(other.(*internalNot).child.e)
}

func (e *internalNot) shallowEq(other internalExpr) bool {
	if other.kind() != TY_NOT {
		return false
	}
	return e.child.e.rawPtr() == other.(*internalNot).child.e.rawPtr()
}

/*
 * TY_ADD .. TY_ASHR
 */

type internalBin struct {
	knd      uint8
	lhs, rhs *ExprPtr
}

func mkinternalBin(kind int, lhs, rhs *ExprPtr) *internalBin {
	return &internalBin{knd: uint8(kind), lhs: lhs, rhs: rhs}
}

func (e *internalBin) String() string {
	return fmt.Sprintf("%s %s %s", parenthesize(e.lhs), kindSymbol(int(e.knd)), parenthesize(e.rhs))
}

func (e *internalBin) kind() int {
	return int(e.knd)
}

func (e *internalBin) width() uint {
	return e.lhs.Width()
}

func (e *internalBin) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(kindSymbol(int(e.knd))))
	hashChildren(h, e.lhs, e.rhs)
	return h.Sum64()
}

func (e *internalBin) isLeaf() bool {
	return false
}

func (e *internalBin) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalBin) children() []*ExprPtr {
	return []*ExprPtr{e.lhs, e.rhs}
}

func (e *internalBin) deepEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBin)
	return e.lhs.e.deepEq(oe.lhs.e) && e.rhs.e.deepEq(oe.rhs.e)
}

func (e *internalBin) shallowEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBin)
	return e.lhs.e.rawPtr() == oe.lhs.e.rawPtr() && e.rhs.e.rawPtr() == oe.rhs.e.rawPtr()
}

/*
 * TY_EQ .. TY_SGE
 */

type internalCmp struct {
	knd      uint8
	lhs, rhs *ExprPtr
}

func mkinternalCmp(kind int, lhs, rhs *ExprPtr) *internalCmp {
	return &internalCmp{knd: uint8(kind), lhs: lhs, rhs: rhs}
}

func (e *internalCmp) String() string {
	return fmt.Sprintf("%s %s %s", parenthesize(e.lhs), kindSymbol(int(e.knd)), parenthesize(e.rhs))
}

func (e *internalCmp) kind() int {
	return int(e.knd)
}

func (e *internalCmp) width() uint {
	return WidthBool
}

func (e *internalCmp) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(kindSymbol(int(e.knd))))
	hashChildren(h, e.lhs, e.rhs)
	return h.Sum64()
}

func (e *internalCmp) isLeaf() bool {
	return false
}

func (e *internalCmp) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func (e *internalCmp) children() []*ExprPtr {
	return []*ExprPtr{e.lhs, e.rhs}
}

func (e *internalCmp) deepEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalCmp)
	return e.lhs.e.deepEq(oe.lhs.e) && e.rhs.e.deepEq(oe.rhs.e)
}

func (e *internalCmp) shallowEq(other internalExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalCmp)
	return e.lhs.e.rawPtr() == oe.lhs.e.rawPtr() && e.rhs.e.rawPtr() == oe.rhs.e.rawPtr()
}

func kindSymbol(kind int) string {
	switch kind {
	case TY_ADD:
		return "+"
	case TY_SUB:
		return "-"
	case TY_MUL:
		return "*"
	case TY_UDIV:
		return "u/"
	case TY_SDIV:
		return "s/"
	case TY_UREM:
		return "u%"
	case TY_SREM:
		return "s%"
	case TY_AND:
		return "&"
	case TY_OR:
		return "|"
	case TY_XOR:
		return "^"
	case TY_SHL:
		return "<<"
	case TY_LSHR:
		return "l>>"
	case TY_ASHR:
		return "a>>"
	case TY_EQ:
		return "=="
	case TY_NE:
		return "!="
	case TY_ULT:
		return "u<"
	case TY_ULE:
		return "u<="
	case TY_UGT:
		return "u>"
	case TY_UGE:
		return "u>="
	case TY_SLT:
		return "s<"
	case TY_SLE:
		return "s<="
	case TY_SGT:
		return "s>"
	case TY_SGE:
		return "s>="
	}
	panic(fmt.Sprintf("kindSymbol: not a binary kind: %d", kind))
}

// isBinaryKind reports whether nodes of the kind carry left/right operands.
func isBinaryKind(kind int) bool {
	return kind >= TY_ADD && kind <= TY_SGE
}

// binArgs returns the operands of a binary arithmetic, bitwise or comparison
// node. Callers check the kind first.
func binArgs(p *ExprPtr) (lhs, rhs *ExprPtr) {
	switch e := p.e.(type) {
	case *internalBin:
		return e.lhs, e.rhs
	case *internalCmp:
		return e.lhs, e.rhs
	}
	panic("binArgs: not a binary expression")
}

func notArg(p *ExprPtr) *ExprPtr {
	return p.e.(*internalNot).child
}

func extendArg(p *ExprPtr) *ExprPtr {
	return p.e.(*internalExtend).child
}

func selectArgs(p *ExprPtr) (cond, iftrue, iffalse *ExprPtr) {
	e := p.e.(*internalSelect)
	return e.cond, e.iftrue, e.iffalse
}

func concatArgs(p *ExprPtr) (hi, lo *ExprPtr) {
	e := p.e.(*internalConcat)
	return e.hi, e.lo
}

func extractArgs(p *ExprPtr) (child *ExprPtr, off, w uint) {
	e := p.e.(*internalExtract)
	return e.child, e.off, e.w
}

func readArgs(p *ExprPtr) (UpdateList, *ExprPtr) {
	e := p.e.(*internalRead)
	return e.updates, e.index
}

func notOptArg(p *ExprPtr) *ExprPtr {
	return p.e.(*internalNotOpt).child
}
