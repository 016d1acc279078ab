package bvexpr

import (
	"fmt"
	"math/big"
)

var bigZero = big.NewInt(0)
var bigOne = big.NewInt(1)

// BVConst is an arbitrary-precision two's-complement bit-vector value.
// The stored integer is always non-negative and smaller than 2^Size; signed
// operations reinterpret the bit pattern on demand. All operations return a
// fresh value and leave their receiver untouched.
type BVConst struct {
	Size  uint
	value *big.Int
}

func modulus(size uint) *big.Int {
	m := big.NewInt(1)
	return m.Lsh(m, size)
}

func wrap(v *big.Int, size uint) *big.Int {
	r := new(big.Int)
	return r.Mod(v, modulus(size))
}

func MakeBVConst(value int64, size uint) *BVConst {
	if size == 0 {
		return nil
	}
	return &BVConst{Size: size, value: wrap(big.NewInt(value), size)}
}

func MakeBVConstFromBig(value *big.Int, size uint) *BVConst {
	if size == 0 {
		return nil
	}
	return &BVConst{Size: size, value: wrap(value, size)}
}

func MakeBoolConst(value bool) *BVConst {
	if value {
		return MakeBVConst(1, WidthBool)
	}
	return MakeBVConst(0, WidthBool)
}

func (bv *BVConst) Copy() *BVConst {
	return &BVConst{Size: bv.Size, value: new(big.Int).Set(bv.value)}
}

func (bv *BVConst) String() string {
	return fmt.Sprintf("<BV%d 0x%x>", bv.Size, bv.value)
}

func (bv *BVConst) IsNegative() bool {
	return bv.value.Bit(int(bv.Size)-1) == 1
}

func (bv *BVConst) IsZero() bool {
	return bv.value.Cmp(bigZero) == 0
}

func (bv *BVConst) IsOne() bool {
	return bv.value.Cmp(bigOne) == 0
}

func (bv *BVConst) HasAllBitsSet() bool {
	m := modulus(bv.Size)
	m.Sub(m, bigOne)
	return bv.value.Cmp(m) == 0
}

func (bv *BVConst) IsTrue() bool {
	return bv.Size == WidthBool && bv.IsOne()
}

func (bv *BVConst) IsFalse() bool {
	return bv.Size == WidthBool && bv.IsZero()
}

func (bv *BVConst) FitsInULong() bool {
	return bv.value.IsUint64()
}

func (bv *BVConst) AsULong() uint64 {
	// if it does not FitsInULong, result is undefined
	return bv.value.Uint64()
}

// signed returns the value reinterpreted as a signed integer.
func (bv *BVConst) signed() *big.Int {
	if !bv.IsNegative() {
		return new(big.Int).Set(bv.value)
	}
	return new(big.Int).Sub(bv.value, modulus(bv.Size))
}

func (bv *BVConst) checkSize(o *BVConst, op string) {
	if bv.Size != o.Size {
		panic(fmt.Sprintf("BVConst.%s: different sizes %d and %d", op, bv.Size, o.Size))
	}
}

func (bv *BVConst) Not() *BVConst {
	m := modulus(bv.Size)
	m.Sub(m, bigOne)
	return &BVConst{Size: bv.Size, value: new(big.Int).Xor(bv.value, m)}
}

func (bv *BVConst) Neg() *BVConst {
	r := new(big.Int).Neg(bv.value)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) Add(o *BVConst) *BVConst {
	bv.checkSize(o, "Add")
	r := new(big.Int).Add(bv.value, o.value)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) Sub(o *BVConst) *BVConst {
	bv.checkSize(o, "Sub")
	r := new(big.Int).Sub(bv.value, o.value)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) Mul(o *BVConst) *BVConst {
	bv.checkSize(o, "Mul")
	r := new(big.Int).Mul(bv.value, o.value)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) UDiv(o *BVConst) *BVConst {
	bv.checkSize(o, "UDiv")
	if o.IsZero() {
		panic("BVConst.UDiv: division by zero")
	}
	return &BVConst{Size: bv.Size, value: new(big.Int).Div(bv.value, o.value)}
}

func (bv *BVConst) SDiv(o *BVConst) *BVConst {
	bv.checkSize(o, "SDiv")
	if o.IsZero() {
		panic("BVConst.SDiv: division by zero")
	}
	r := new(big.Int).Quo(bv.signed(), o.signed())
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) URem(o *BVConst) *BVConst {
	bv.checkSize(o, "URem")
	if o.IsZero() {
		panic("BVConst.URem: division by zero")
	}
	return &BVConst{Size: bv.Size, value: new(big.Int).Rem(bv.value, o.value)}
}

func (bv *BVConst) SRem(o *BVConst) *BVConst {
	bv.checkSize(o, "SRem")
	if o.IsZero() {
		panic("BVConst.SRem: division by zero")
	}
	r := new(big.Int).Rem(bv.signed(), o.signed())
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) And(o *BVConst) *BVConst {
	bv.checkSize(o, "And")
	return &BVConst{Size: bv.Size, value: new(big.Int).And(bv.value, o.value)}
}

func (bv *BVConst) Or(o *BVConst) *BVConst {
	bv.checkSize(o, "Or")
	return &BVConst{Size: bv.Size, value: new(big.Int).Or(bv.value, o.value)}
}

func (bv *BVConst) Xor(o *BVConst) *BVConst {
	bv.checkSize(o, "Xor")
	return &BVConst{Size: bv.Size, value: new(big.Int).Xor(bv.value, o.value)}
}

func (bv *BVConst) Shl(n uint) *BVConst {
	if n >= bv.Size {
		return MakeBVConst(0, bv.Size)
	}
	r := new(big.Int).Lsh(bv.value, n)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

func (bv *BVConst) LShr(n uint) *BVConst {
	if n >= bv.Size {
		return MakeBVConst(0, bv.Size)
	}
	return &BVConst{Size: bv.Size, value: new(big.Int).Rsh(bv.value, n)}
}

func (bv *BVConst) AShr(n uint) *BVConst {
	if n >= bv.Size {
		n = bv.Size
	}
	r := new(big.Int).Rsh(bv.signed(), n)
	return &BVConst{Size: bv.Size, value: wrap(r, bv.Size)}
}

// ZExtTo widens to the target size filling with zeroes.
func (bv *BVConst) ZExtTo(size uint) *BVConst {
	if size < bv.Size {
		panic("BVConst.ZExtTo: target smaller than size")
	}
	return &BVConst{Size: size, value: new(big.Int).Set(bv.value)}
}

// SExtTo widens to the target size replicating the sign bit.
func (bv *BVConst) SExtTo(size uint) *BVConst {
	if size < bv.Size {
		panic("BVConst.SExtTo: target smaller than size")
	}
	return &BVConst{Size: size, value: wrap(bv.signed(), size)}
}

// TruncTo keeps the low size bits.
func (bv *BVConst) TruncTo(size uint) *BVConst {
	if size > bv.Size {
		panic("BVConst.TruncTo: target larger than size")
	}
	return &BVConst{Size: size, value: wrap(bv.value, size)}
}

// Extract returns bits [offset, offset+size).
func (bv *BVConst) Extract(offset, size uint) *BVConst {
	if offset+size > bv.Size {
		panic("BVConst.Extract: out of range")
	}
	r := new(big.Int).Rsh(bv.value, offset)
	return &BVConst{Size: size, value: wrap(r, size)}
}

// Concat returns the value with o appended as the low bits.
func (bv *BVConst) Concat(o *BVConst) *BVConst {
	r := new(big.Int).Lsh(bv.value, o.Size)
	r.Or(r, o.value)
	return &BVConst{Size: bv.Size + o.Size, value: r}
}

func (bv *BVConst) Eq(o *BVConst) bool {
	bv.checkSize(o, "Eq")
	return bv.value.Cmp(o.value) == 0
}

func (bv *BVConst) Ne(o *BVConst) bool {
	return !bv.Eq(o)
}

func (bv *BVConst) Ult(o *BVConst) bool {
	bv.checkSize(o, "Ult")
	return bv.value.Cmp(o.value) < 0
}

func (bv *BVConst) Ule(o *BVConst) bool {
	bv.checkSize(o, "Ule")
	return bv.value.Cmp(o.value) <= 0
}

func (bv *BVConst) Ugt(o *BVConst) bool {
	return !bv.Ule(o)
}

func (bv *BVConst) Uge(o *BVConst) bool {
	return !bv.Ult(o)
}

func (bv *BVConst) Slt(o *BVConst) bool {
	bv.checkSize(o, "Slt")
	return bv.signed().Cmp(o.signed()) < 0
}

func (bv *BVConst) Sle(o *BVConst) bool {
	bv.checkSize(o, "Sle")
	return bv.signed().Cmp(o.signed()) <= 0
}

func (bv *BVConst) Sgt(o *BVConst) bool {
	return !bv.Sle(o)
}

func (bv *BVConst) Sge(o *BVConst) bool {
	return !bv.Slt(o)
}
