package irep

import (
	"fmt"
	"strings"
)

// Type is a tagged, hash-consed value: bool, empty, a symbol reference,
// struct, union, code, array, pointer, or one of the bitvector/string
// variants. Handles are produced and canonicalized exclusively by a
// Pool (pool.go); direct construction of a Type outside this package is
// not possible, mirroring internalBVExpr's discipline of funnelling
// every node through ExprBuilder.getOrCreateBV.
type Type struct {
	kind TypeKind

	// KindSymbolType
	symName string

	// KindStruct / KindUnion
	memberTypes []*Type
	memberNames []string
	aggName     string

	// KindArray
	elem     *Type
	arrSize  *Expr // nil means infinite (unbounded) array
	infinite bool

	// KindPointer
	pointee *Type

	// KindUnsignedBV / KindSignedBV
	bvWidth uint

	// KindFixedBV
	fixedWidth   uint
	fixedIntBits uint

	// KindString
	nElems uint
}

func newType(k TypeKind) *Type { return &Type{kind: k} }

func boolType() *Type  { return newType(KindBool) }
func emptyType() *Type { return newType(KindEmpty) }
func codeType() *Type  { return newType(KindCode) }

func symbolType(name string) *Type { return &Type{kind: KindSymbolType, symName: name} }

func unsignedBVType(width uint) *Type { return &Type{kind: KindUnsignedBV, bvWidth: width} }
func signedBVType(width uint) *Type   { return &Type{kind: KindSignedBV, bvWidth: width} }

func fixedBVType(width, intBits uint) *Type {
	return &Type{kind: KindFixedBV, fixedWidth: width, fixedIntBits: intBits}
}

func stringType(nElems uint) *Type { return &Type{kind: KindString, nElems: nElems} }

func structType(name string, members []*Type, memberNames []string) *Type {
	return &Type{kind: KindStruct, aggName: name, memberTypes: members, memberNames: memberNames}
}

func unionType(name string, members []*Type, memberNames []string) *Type {
	return &Type{kind: KindUnion, aggName: name, memberTypes: members, memberNames: memberNames}
}

func arrayType(elem *Type, size *Expr) *Type {
	if size == nil {
		return &Type{kind: KindArray, elem: elem, infinite: true}
	}
	return &Type{kind: KindArray, elem: elem, arrSize: size}
}

func pointerType(pointee *Type) *Type {
	return &Type{kind: KindPointer, pointee: pointee}
}

func (t *Type) Kind() TypeKind { return t.kind }

func (t *Type) SymbolName() string { return t.symName }

func (t *Type) Members() ([]*Type, []string) { return t.memberTypes, t.memberNames }

func (t *Type) AggregateName() string { return t.aggName }

func (t *Type) Elem() *Type { return t.elem }

func (t *Type) ArraySize() (*Expr, bool) { return t.arrSize, t.infinite }

func (t *Type) Pointee() *Type { return t.pointee }

func (t *Type) BVWidth() uint { return t.bvWidth }

func (t *Type) FixedIntBits() uint { return t.fixedIntBits }

func (t *Type) StringElems() uint { return t.nElems }

// Width returns the bit width of t, or a typed failure when the width
// is not statically determined.
func (t *Type) Width() (uint, error) {
	switch t.kind {
	case KindBool:
		return 1, nil
	case KindEmpty, KindCode, KindSymbolType:
		return 0, &ErrSymbolicType{Type: t}
	case KindString:
		return 8 * t.nElems, nil
	case KindStruct:
		total := uint(0)
		for _, m := range t.memberTypes {
			w, err := m.Width()
			if err != nil {
				return 0, err
			}
			total += w
		}
		return total, nil
	case KindUnion:
		max := uint(0)
		for _, m := range t.memberTypes {
			w, err := m.Width()
			if err != nil {
				return 0, err
			}
			if w > max {
				max = w
			}
		}
		return max, nil
	case KindArray:
		if t.infinite {
			return 0, &ErrDynSizedArray{Size: nil}
		}
		c, ok := t.arrSize.ConstantUint()
		if !ok {
			return 0, &ErrDynSizedArray{Size: t.arrSize}
		}
		ew, err := t.elem.Width()
		if err != nil {
			return 0, err
		}
		return ew * uint(c), nil
	case KindPointer, KindUnsignedBV, KindSignedBV:
		if t.kind == KindPointer {
			// Pointer width is a machine-word property owned by the SMT
			// conversion layer's address-space encoding, not the type
			// universe; callers needing it consult the converter config.
			return 0, &ErrSymbolicType{Type: t}
		}
		return t.bvWidth, nil
	case KindFixedBV:
		return t.fixedWidth, nil
	default:
		return 0, &ErrSymbolicType{Type: t}
	}
}

// Equal is total structural equality: tags and all fields must match,
// member order significant.
func (t *Type) Equal(o *Type) bool {
	return Compare(t, o) == 0
}

func (t *Type) String() string {
	switch t.kind {
	case KindBool:
		return "bool"
	case KindEmpty:
		return "void"
	case KindCode:
		return "code"
	case KindSymbolType:
		return "symbol(" + t.symName + ")"
	case KindStruct, KindUnion:
		b := strings.Builder{}
		if t.kind == KindStruct {
			b.WriteString("struct ")
		} else {
			b.WriteString("union ")
		}
		b.WriteString(t.aggName)
		b.WriteString(" { ")
		for i, m := range t.memberTypes {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(fmt.Sprintf("%s %s", m, t.memberNames[i]))
		}
		b.WriteString(" }")
		return b.String()
	case KindArray:
		if t.infinite {
			return fmt.Sprintf("%s[inf]", t.elem)
		}
		return fmt.Sprintf("%s[%s]", t.elem, t.arrSize)
	case KindPointer:
		return fmt.Sprintf("%s*", t.pointee)
	case KindUnsignedBV:
		return fmt.Sprintf("unsignedbv[%d]", t.bvWidth)
	case KindSignedBV:
		return fmt.Sprintf("signedbv[%d]", t.bvWidth)
	case KindFixedBV:
		return fmt.Sprintf("fixedbv[%d,%d]", t.fixedWidth, t.fixedIntBits)
	case KindString:
		return fmt.Sprintf("string[%d]", t.nElems)
	default:
		return "<unknown-type>"
	}
}
