// Package ir defines the expression-tree intermediate representation the
// Z80 back end consumes: a small closed type-tag enumeration, a binary
// tree node shape with bitset flags, and the opcode set (generic plus the
// target-synthetic opcodes the rewriter introduces).
package ir

import "fmt"

// Type is the closed primitive-type enumeration the front end decorates
// every node with. The low bits name a base type; TypePointer is an
// orthogonal flag since a pointer's representation (16-bit, unsigned
// arithmetic) doesn't depend on what it points to.
type Type uint16

const (
	TypeVoid Type = iota
	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16
	TypeInt32
	TypeUint32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64

	// TypePointer is ORed onto a base type to mark a pointer to it.
	// A pointer is always 16-bit regardless of what it points to.
	TypePointer Type = 1 << 15
)

// IsPointer reports whether t carries the pointer flag.
func (t Type) IsPointer() bool { return t&TypePointer != 0 }

// Base strips the pointer flag, leaving the underlying base type.
func (t Type) Base() Type { return t &^ TypePointer }

// IsUnsigned reports whether t's base type is one of the unsigned
// integer types. Signed/unsigned pairs are adjacent (IntN, UintN).
func (t Type) IsUnsigned() bool {
	switch t.Base() {
	case TypeUint8, TypeUint16, TypeUint32, TypeUint64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is a floating-point base type.
func (t Type) IsFloat() bool {
	switch t.Base() {
	case TypeFloat32, TypeFloat64:
		return true
	default:
		return false
	}
}

// Size returns the byte width of t. Pointers are always 2 bytes.
func (t Type) Size() int {
	if t.IsPointer() {
		return 2
	}
	switch t.Base() {
	case TypeVoid:
		return 0
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32, TypeFloat32:
		return 4
	case TypeInt64, TypeUint64, TypeFloat64:
		return 8
	default:
		panic(fmt.Sprintf("ir: unknown type %#x", uint16(t)))
	}
}

// StackSize returns the number of bytes t occupies once pushed: the
// machine pushes in 16-bit units, so a byte-wide value still costs 2
// bytes of stack.
func (t Type) StackSize() int {
	n := t.Size()
	if n == 1 {
		return 2
	}
	return n
}

func (t Type) String() string {
	ptr := ""
	if t.IsPointer() {
		ptr = "*"
	}
	switch t.Base() {
	case TypeVoid:
		return ptr + "void"
	case TypeInt8:
		return ptr + "int8"
	case TypeUint8:
		return ptr + "uint8"
	case TypeInt16:
		return ptr + "int16"
	case TypeUint16:
		return ptr + "uint16"
	case TypeInt32:
		return ptr + "int32"
	case TypeUint32:
		return ptr + "uint32"
	case TypeInt64:
		return ptr + "int64"
	case TypeUint64:
		return ptr + "uint64"
	case TypeFloat32:
		return ptr + "float32"
	case TypeFloat64:
		return ptr + "float64"
	default:
		return fmt.Sprintf("type(%#x)", uint16(t))
	}
}
