// Package bigbv implements arbitrary-width two's-complement bit-vector
// arithmetic backed by math/big, shared by the expression universe
// (constant_int payloads) and the SMT conversion layer (bit-vector model
// values). The representation and operation set mirror BVConst from the
// gosmt expression library. Every operation returns a freshly allocated
// BV and leaves its receiver(s) untouched, matching the copy-on-write
// discipline the hash-consed expression pool relies on.
package bigbv

import (
	"fmt"
	"math/big"
)

var zero = big.NewInt(0)
var one = big.NewInt(1)

// BV is a fixed-width unsigned-storage, two's-complement-interpreted
// bit-vector constant.
type BV struct {
	Width uint
	mask  *big.Int
	value *big.Int
}

func makeMask(width uint) *big.Int {
	bytes := make([]byte, width/8)
	for i := uint(0); i < width/8; i++ {
		bytes[i] = 0xff
	}
	v := big.NewInt(0)
	v.SetBytes(bytes)
	for i := width / 8 * 8; i < width/8*8+width%8; i++ {
		v.SetBit(v, int(i), 1)
	}
	return v
}

// FromInt64 builds a BV of the given width from a signed Go integer,
// wrapping it into two's-complement range.
func FromInt64(value int64, width uint) *BV {
	if width == 0 {
		return nil
	}
	mask := makeMask(width)
	v := big.NewInt(value)
	if v.Cmp(zero) < 0 {
		v = v.Neg(v)
		v = v.Sub(v, one)
		v = v.Sub(mask, v)
		v = v.And(v, mask)
	}
	return &BV{Width: width, mask: mask, value: v}
}

// FromBigInt builds a BV of the given width from an arbitrary-precision
// signed integer, wrapping it into two's-complement range.
func FromBigInt(value *big.Int, width uint) *BV {
	if width == 0 {
		return nil
	}
	mask := makeMask(width)
	v := new(big.Int).Set(value)
	if v.Cmp(zero) < 0 {
		v = v.Neg(v)
		v = v.Sub(v, one)
		v = v.Sub(mask, v)
		v = v.And(v, mask)
	}
	return &BV{Width: width, mask: mask, value: v}
}

// FromString parses a base-`base` literal into a BV of the given width.
func FromString(s string, base int, width uint) *BV {
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil
	}
	return FromBigInt(v, width)
}

func (bv *BV) IsNegative() bool {
	return bv.value.Bit(int(bv.Width)-1) == 1
}

func (bv *BV) IsZero() bool {
	return bv.value.Cmp(zero) == 0
}

func (bv *BV) IsOne() bool {
	return bv.value.Cmp(one) == 0
}

func (bv *BV) HasAllBitsSet() bool {
	return bv.value.Cmp(bv.mask) == 0
}

func (bv *BV) Copy() *BV {
	return &BV{
		Width: bv.Width,
		mask:  new(big.Int).Set(bv.mask),
		value: new(big.Int).Set(bv.value),
	}
}

func (bv *BV) String() string {
	return fmt.Sprintf("<bv%d 0x%x>", bv.Width, bv.value)
}

// BigInt returns the raw unsigned-storage magnitude, used by the CRC
// rule to feed the serialized big-endian magnitude of a constant.
func (bv *BV) BigInt() *big.Int {
	return bv.value
}

func (bv *BV) FitsInUint64() bool {
	max := new(big.Int).Lsh(one, 64)
	max.Sub(max, one)
	return bv.value.Cmp(max) <= 0
}

func (bv *BV) AsUint64() uint64 {
	return bv.value.Uint64()
}

func (bv *BV) AsInt64() int64 {
	if !bv.IsNegative() {
		return bv.value.Int64()
	}
	notv, _ := bv.Not()
	sum, _ := notv.Add(FromInt64(1, bv.Width))
	return -int64(sum.AsUint64())
}

func sizeMismatch(a, b uint) error {
	return fmt.Errorf("bigbv: mismatched widths %d and %d", a, b)
}

// Not returns the bitwise complement of bv as a new value.
func (bv *BV) Not() (*BV, error) {
	v := new(big.Int).Not(bv.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

// Neg returns the two's-complement negation of bv as a new value.
func (bv *BV) Neg() (*BV, error) {
	v := new(big.Int).Sub(bv.value, one)
	v.Sub(bv.mask, v)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Add(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).Add(bv.value, o.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Sub(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).Sub(bv.value, o.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Mul(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).Mul(bv.value, o.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) UDiv(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	if o.IsZero() {
		return nil, fmt.Errorf("bigbv: division by zero")
	}
	v := new(big.Int).Div(bv.value, o.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

// signedMagnitude returns (magnitude, wasNegative).
func (bv *BV) signedMagnitude() (*big.Int, bool) {
	if !bv.IsNegative() {
		return new(big.Int).Set(bv.value), false
	}
	nv, _ := bv.Neg()
	return nv.value, true
}

func wrapSigned(width uint, mask, mag *big.Int, negative bool) *BV {
	if !negative || mag.Sign() == 0 {
		v := new(big.Int).And(mag, mask)
		return &BV{Width: width, mask: mask, value: v}
	}
	res := new(big.Int).Sub(mag, one)
	res.Sub(mask, res)
	res.And(res, mask)
	return &BV{Width: width, mask: mask, value: res}
}

func (bv *BV) SDiv(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	if o.IsZero() {
		return nil, fmt.Errorf("bigbv: division by zero")
	}
	c1, neg1 := bv.signedMagnitude()
	c2, neg2 := o.signedMagnitude()
	res := new(big.Int).Quo(c1, c2)
	return wrapSigned(bv.Width, bv.mask, res, neg1 != neg2), nil
}

func (bv *BV) URem(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	if o.IsZero() {
		return nil, fmt.Errorf("bigbv: division by zero")
	}
	v := new(big.Int).Rem(bv.value, o.value)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) SRem(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	if o.IsZero() {
		return nil, fmt.Errorf("bigbv: division by zero")
	}
	c1, neg1 := bv.signedMagnitude()
	c2, _ := o.signedMagnitude()
	res := new(big.Int).Rem(c1, c2)
	return wrapSigned(bv.Width, bv.mask, res, neg1), nil
}

func (bv *BV) And(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).And(bv.value, o.value)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Or(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).Or(bv.value, o.value)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Xor(o *BV) (*BV, error) {
	if bv.Width != o.Width {
		return nil, sizeMismatch(bv.Width, o.Width)
	}
	v := new(big.Int).Xor(bv.value, o.value)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) AShr(n uint) (*BV, error) {
	if n >= bv.Width {
		if bv.IsNegative() {
			return &BV{Width: bv.Width, mask: bv.mask, value: new(big.Int).Set(bv.mask)}, nil
		}
		return &BV{Width: bv.Width, mask: bv.mask, value: big.NewInt(0)}, nil
	}
	if n == 0 {
		return bv.Copy(), nil
	}
	v := new(big.Int).Rsh(bv.value, n)
	if bv.IsNegative() {
		topMask := makeMask(n)
		topMask.Lsh(topMask, bv.Width-n)
		v.Or(v, topMask)
	}
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) LShr(n uint) (*BV, error) {
	if n >= bv.Width {
		return &BV{Width: bv.Width, mask: bv.mask, value: big.NewInt(0)}, nil
	}
	if n == 0 {
		return bv.Copy(), nil
	}
	v := new(big.Int).Rsh(bv.value, n)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

func (bv *BV) Shl(n uint) (*BV, error) {
	if n >= bv.Width {
		return &BV{Width: bv.Width, mask: bv.mask, value: big.NewInt(0)}, nil
	}
	if n == 0 {
		return bv.Copy(), nil
	}
	v := new(big.Int).Lsh(bv.value, n)
	v.And(v, bv.mask)
	return &BV{Width: bv.Width, mask: bv.mask, value: v}, nil
}

// Concat returns o's bits appended below bv's, widening the result to
// Width+o.Width.
func (bv *BV) Concat(o *BV) (*BV, error) {
	oWide, err := o.ZExt(bv.Width)
	if err != nil {
		return nil, err
	}
	hiWide, err := bv.ZExt(o.Width)
	if err != nil {
		return nil, err
	}
	shifted, err := hiWide.Shl(o.Width)
	if err != nil {
		return nil, err
	}
	return shifted.Or(oWide)
}

// Truncate returns bits [high:low] as a new value, narrowing the width.
func (bv *BV) Truncate(high, low uint) (*BV, error) {
	if high < low {
		return nil, fmt.Errorf("bigbv: high %d lower than low %d", high, low)
	}
	if high >= bv.Width {
		return nil, fmt.Errorf("bigbv: high %d out of range for width %d", high, bv.Width)
	}
	return bv.Slice(high, low)
}

// Slice returns bits [high:low] as a freshly allocated BV, leaving bv
// untouched.
func (bv *BV) Slice(high, low uint) (*BV, error) {
	if high < low {
		return nil, fmt.Errorf("bigbv: high %d lower than low %d", high, low)
	}
	if high >= bv.Width {
		return nil, fmt.Errorf("bigbv: high %d out of range for width %d", high, bv.Width)
	}
	res := FromInt64(0, high-low+1)
	res.value.Or(res.value, bv.value)
	res.value.Rsh(res.value, low)
	res.value.And(res.value, res.mask)
	return res, nil
}

// ZExt widens bv by `bits` zero bits, returning a new value.
func (bv *BV) ZExt(bits uint) (*BV, error) {
	newWidth := bv.Width + bits
	return &BV{Width: newWidth, mask: makeMask(newWidth), value: new(big.Int).Set(bv.value)}, nil
}

// SExt widens bv by `bits` sign-extension bits, returning a new value.
func (bv *BV) SExt(bits uint) (*BV, error) {
	if !bv.IsNegative() {
		return bv.ZExt(bits)
	}
	newWidth := bv.Width + bits
	newBits := makeMask(bits)
	newBits.Lsh(newBits, bv.Width)
	v := new(big.Int).Or(bv.value, newBits)
	return &BV{Width: newWidth, mask: makeMask(newWidth), value: v}, nil
}

func (bv *BV) Eq(o *BV) (bool, error) {
	if bv.Width != o.Width {
		return false, sizeMismatch(bv.Width, o.Width)
	}
	return bv.value.Cmp(o.value) == 0, nil
}

func (bv *BV) Neq(o *BV) (bool, error) {
	eq, err := bv.Eq(o)
	return !eq, err
}

func (bv *BV) ULt(o *BV) (bool, error) {
	if bv.Width != o.Width {
		return false, sizeMismatch(bv.Width, o.Width)
	}
	return bv.value.Cmp(o.value) < 0, nil
}

func (bv *BV) ULe(o *BV) (bool, error) {
	if bv.Width != o.Width {
		return false, sizeMismatch(bv.Width, o.Width)
	}
	return bv.value.Cmp(o.value) <= 0, nil
}

func (bv *BV) UGt(o *BV) (bool, error) {
	lt, err := o.ULt(bv)
	return lt, err
}

func (bv *BV) UGe(o *BV) (bool, error) {
	le, err := o.ULe(bv)
	return le, err
}

func (bv *BV) SLt(o *BV) (bool, error) {
	if bv.Width != o.Width {
		return false, sizeMismatch(bv.Width, o.Width)
	}
	an, bn := bv.IsNegative(), o.IsNegative()
	if an && !bn {
		return true, nil
	}
	if !an && bn {
		return false, nil
	}
	return bv.value.Cmp(o.value) < 0, nil
}

func (bv *BV) SLe(o *BV) (bool, error) {
	eq, err := bv.Eq(o)
	if err != nil {
		return false, err
	}
	if eq {
		return true, nil
	}
	return bv.SLt(o)
}

func (bv *BV) SGt(o *BV) (bool, error) {
	le, err := bv.SLe(o)
	return !le, err
}

func (bv *BV) SGe(o *BV) (bool, error) {
	lt, err := bv.SLt(o)
	return !lt, err
}
