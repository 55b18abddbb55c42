package irep

// TypeKind tags the sum-typed Type universe. Ordinal order is the
// primary key of the total order over types and must fit in a single
// byte to satisfy the CRC rule.
type TypeKind uint8

const (
	KindBool TypeKind = iota
	KindEmpty
	KindSymbolType
	KindStruct
	KindUnion
	KindCode
	KindArray
	KindPointer
	KindUnsignedBV
	KindSignedBV
	KindFixedBV
	KindString
)

func (k TypeKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindEmpty:
		return "empty"
	case KindSymbolType:
		return "symbol"
	case KindStruct:
		return "struct"
	case KindUnion:
		return "union"
	case KindCode:
		return "code"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindUnsignedBV:
		return "unsignedbv"
	case KindSignedBV:
		return "signedbv"
	case KindFixedBV:
		return "fixedbv"
	case KindString:
		return "string"
	default:
		return "<unknown-type-kind>"
	}
}

// ExprKind tags the sum-typed Expression universe. Declaration order
// fixes the ordinal used by the total order and must fit in a single
// byte for the CRC rule.
type ExprKind uint8

const (
	KindConstantInt ExprKind = iota
	KindConstantFixedbv
	KindConstantBool
	KindConstantString
	KindConstantStruct
	KindConstantUnion
	KindConstantArray
	KindConstantArrayOf
	KindSymbol
	KindTypecast
	KindIf
	KindEquality
	KindNotequal
	KindLessthan
	KindGreaterthan
	KindLessthanequal
	KindGreaterthanequal
	KindNot
	KindAnd
	KindOr
	KindXor
	KindImplies
	KindBitand
	KindBitor
	KindBitxor
	KindBitnand
	KindBitnor
	KindBitnxor
	KindLshr
	KindShl
	KindAshr
	KindNeg
	KindAbs
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindModulus
	KindDynamicObject
	KindSameObject
	KindPointerOffset
	KindPointerObject
	KindAddressOf
	KindByteExtract
	KindByteUpdate
	KindWith
	KindMember
	KindIndex
	KindZeroString
	KindZeroLengthString
	KindIsnan
	KindOverflow
	KindOverflowCast
	KindOverflowNeg
)

var exprKindNames = [...]string{
	"constant_int", "constant_fixedbv", "constant_bool", "constant_string",
	"constant_struct", "constant_union", "constant_array", "constant_array_of",
	"symbol", "typecast", "if",
	"equality", "notequal", "lessthan", "greaterthan", "lessthanequal", "greaterthanequal",
	"not", "and", "or", "xor", "implies",
	"bitand", "bitor", "bitxor", "bitnand", "bitnor", "bitnxor", "lshr", "shl", "ashr",
	"neg", "abs", "add", "sub", "mul", "div", "modulus",
	"dynamic_object", "same_object", "pointer_offset", "pointer_object", "address_of",
	"byte_extract", "byte_update", "with", "member", "index",
	"zero_string", "zero_length_string", "isnan",
	"overflow", "overflow_cast", "overflow_neg",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "<unknown-expr-kind>"
}

// RenameLevel is the SSA renaming level attached to every symbol
// expression.
type RenameLevel uint8

const (
	Level0 RenameLevel = iota
	Level1
	Level1Global
	Level2
	Level2Global
)

func (l RenameLevel) String() string {
	switch l {
	case Level0:
		return "L0"
	case Level1:
		return "L1"
	case Level1Global:
		return "L1G"
	case Level2:
		return "L2"
	case Level2Global:
		return "L2G"
	default:
		return "<unknown-level>"
	}
}
