package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tpl-lang/tplc/internal/ast"
)

// Kind discriminates the closed set of TPL types.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindStr
	KindVoid
	KindPointer
	KindArray
	KindFunction
)

// Type represents a type in the TPL type system. Types are compared
// structurally; Pointer and Array nest arbitrarily.
type Type struct {
	Kind   Kind
	Width  int     // KindInt: 8, 16, 32, 64, or 128
	Inner  *Type   // element type for KindPointer/KindArray
	Len    int     // element count for KindArray
	Params []*Type // KindFunction; nil means "params not yet inferred"
	Return *Type   // KindFunction
}

// Builtin type singletons
var (
	TypeInt8   = &Type{Kind: KindInt, Width: 8}
	TypeInt16  = &Type{Kind: KindInt, Width: 16}
	TypeInt32  = &Type{Kind: KindInt, Width: 32}
	TypeInt64  = &Type{Kind: KindInt, Width: 64}
	TypeInt128 = &Type{Kind: KindInt, Width: 128}
	TypeBool   = &Type{Kind: KindBool}
	TypeStr    = &Type{Kind: KindStr}
	TypeVoid   = &Type{Kind: KindVoid}
)

// IntType returns the singleton for a sized integer type.
func IntType(width int) *Type {
	switch width {
	case 8:
		return TypeInt8
	case 16:
		return TypeInt16
	case 32:
		return TypeInt32
	case 64:
		return TypeInt64
	case 128:
		return TypeInt128
	default:
		return nil
	}
}

// PointerTo returns a pointer type with the given referent.
func PointerTo(inner *Type) *Type {
	return &Type{Kind: KindPointer, Inner: inner}
}

// ArrayOf returns a fixed-length array type.
func ArrayOf(inner *Type, length int) *Type {
	return &Type{Kind: KindArray, Inner: inner, Len: length}
}

// FuncType returns a function type.
func FuncType(params []*Type, ret *Type) *Type {
	return &Type{Kind: KindFunction, Params: params, Return: ret}
}

// IsInt reports whether the type is a sized integer.
func (t *Type) IsInt() bool {
	return t != nil && t.Kind == KindInt
}

// Equal checks if two types are structurally equal
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case KindInt:
		return t.Width == other.Width
	case KindPointer:
		return t.Inner.Equal(other.Inner)
	case KindArray:
		return t.Len == other.Len && t.Inner.Equal(other.Inner)
	case KindFunction:
		if !t.Return.Equal(other.Return) {
			return false
		}
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// String returns the canonical name of the type, as reported by x.type().
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("int%d", t.Width)
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindVoid:
		return "void"
	case KindPointer:
		return t.Inner.String() + "*"
	case KindArray:
		return fmt.Sprintf("%s[%d]", t.Inner.String(), t.Len)
	case KindFunction:
		return "fn<" + t.Return.String() + ">"
	default:
		return "<invalid>"
	}
}

// Describe renders the type with full function signatures, for error messages.
func (t *Type) Describe() string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind == KindFunction && t.Params != nil {
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.Describe()
		}
		return "fn<" + t.Return.String() + ">(" + strings.Join(params, ", ") + ")"
	}
	return t.String()
}

// ResolveTypeRef resolves a surface type reference to a Type.
// Returns nil for `auto` (the caller infers from the initializer) and an
// error for malformed references such as a zero-length array.
func ResolveTypeRef(ref *ast.TypeRef) (*Type, error) {
	if ref == nil {
		return nil, fmt.Errorf("missing type")
	}
	switch ref.Kind {
	case ast.TypeAuto:
		return nil, nil
	case ast.TypeNamed:
		switch ref.Name {
		case "int8":
			return TypeInt8, nil
		case "int16":
			return TypeInt16, nil
		case "int32":
			return TypeInt32, nil
		case "int64":
			return TypeInt64, nil
		case "int128":
			return TypeInt128, nil
		case "bool":
			return TypeBool, nil
		case "str":
			return TypeStr, nil
		case "void":
			return TypeVoid, nil
		default:
			return nil, fmt.Errorf("unknown type %q", ref.Name)
		}
	case ast.TypePointer:
		inner, err := ResolveTypeRef(ref.Inner)
		if err != nil || inner == nil {
			return nil, fmt.Errorf("invalid pointer element type")
		}
		return PointerTo(inner), nil
	case ast.TypeArray:
		inner, err := ResolveTypeRef(ref.Inner)
		if err != nil || inner == nil {
			return nil, fmt.Errorf("invalid array element type")
		}
		length, err := strconv.Atoi(ref.Len)
		if err != nil || length < 1 {
			return nil, fmt.Errorf("invalid array length %q", ref.Len)
		}
		return ArrayOf(inner, length), nil
	case ast.TypeFunc:
		ret, err := ResolveTypeRef(ref.Return)
		if err != nil || ret == nil {
			return nil, fmt.Errorf("invalid function return type")
		}
		// params are inferred from the bound function value
		return &Type{Kind: KindFunction, Return: ret}, nil
	default:
		return nil, fmt.Errorf("invalid type reference")
	}
}
