package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"z80cc/frame"
	"z80cc/ir"
)

// DecodeFunctions reads the line-oriented function/node description an
// external front end emits and returns the decoded translation unit.
// The format is deliberately minimal — this module's external-interface
// contract (see SPEC_FULL.md) only commits to *consuming* a decorated
// expression tree, not to owning the front end that produces one, so
// the decoder here is a reference harness rather than a stable wire
// format: each function is
//
//	func <name> <frameSize> <saves:letters b,x,y or -> <iyfree:0|1> <void:0|1>
//	<one body tree, one node per following line, in preorder>
//
// and each node line is
//
//	<opname> <type> <value> <val2> <snum>
//
// followed by its left and then its right child, each either a node
// (with its own two children) or a "-" line for absent, consumed
// recursively; leading whitespace is ignored. Blank lines are allowed
// only between functions.
func DecodeFunctions(r io.Reader) ([]Function, error) {
	sc := bufio.NewScanner(r)
	var funcs []Function
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] != "func" {
			return nil, fmt.Errorf("expected 'func', got %q", line)
		}
		if len(fields) != 6 {
			return nil, fmt.Errorf("malformed func header: %q", line)
		}
		frameSize, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, errParse("frame size", fields[2])
		}
		saves := parseSaves(fields[3])
		iyFree := fields[4] == "1"
		isVoid := fields[5] == "1"

		body, err := decodeNode(sc)
		if err != nil {
			return nil, err
		}

		funcs = append(funcs, Function{
			Name: fields[1], Body: body, FrameSize: frameSize,
			Saves: saves, IYFree: iyFree, Void: isVoid,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return funcs, nil
}

func parseSaves(s string) frame.RegSave {
	var r frame.RegSave
	if strings.Contains(s, "b") {
		r |= frame.RegBC
	}
	if strings.Contains(s, "x") {
		r |= frame.RegIX
	}
	if strings.Contains(s, "y") {
		r |= frame.RegIY
	}
	return r
}

func errParse(what, got string) error {
	return fmt.Errorf("invalid %s: %q", what, got)
}

var opByName = map[string]ir.Opcode{
	"const": ir.OpConstant, "name": ir.OpName, "label": ir.OpLabel,
	"local": ir.OpLocal, "argument": ir.OpArgument, "reg": ir.OpReg,
	"deref": ir.OpDeref, "assign": ir.OpAssign, "plus": ir.OpPlus,
	"minus": ir.OpMinus, "star": ir.OpStar, "slash": ir.OpSlash,
	"percent": ir.OpPercent, "and": ir.OpAnd, "or": ir.OpOr, "xor": ir.OpXor,
	"shl": ir.OpShiftLeft, "shr": ir.OpShiftRight, "eq": ir.OpEq, "ne": ir.OpNe,
	"lt": ir.OpLt, "le": ir.OpLe, "gt": ir.OpGt, "ge": ir.OpGe,
	"andand": ir.OpAndAnd, "oror": ir.OpOrOr, "bool": ir.OpBool,
	"not": ir.OpNot, "cast": ir.OpCast, "plusplus": ir.OpPlusPlus,
	"minusminus": ir.OpMinusMinus, "pluseq": ir.OpPlusEq, "minuseq": ir.OpMinusEq,
	"funccall": ir.OpFuncCall, "comma": ir.OpComma, "cleanup": ir.OpCleanup,
}

var typeByName = map[string]ir.Type{
	"void": ir.TypeVoid, "i8": ir.TypeInt8, "u8": ir.TypeUint8,
	"i16": ir.TypeInt16, "u16": ir.TypeUint16, "i32": ir.TypeInt32,
	"u32": ir.TypeUint32, "i64": ir.TypeInt64, "u64": ir.TypeUint64,
	"f32": ir.TypeFloat32, "f64": ir.TypeFloat64,
}

// decodeNode reads one node description, possibly recursing for a left
// and right child, returning nil if the next line is "-" (no node).
func decodeNode(sc *bufio.Scanner) (*ir.Node, error) {
	if !sc.Scan() {
		return nil, fmt.Errorf("unexpected end of input while decoding a node")
	}
	line := strings.TrimSpace(sc.Text())
	if line == "-" {
		return nil, nil
	}
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return nil, fmt.Errorf("malformed node line: %q", line)
	}
	op, ok := opByName[fields[0]]
	if !ok {
		return nil, fmt.Errorf("unknown opcode: %q", fields[0])
	}
	typ, ok := typeByName[fields[1]]
	if !ok {
		return nil, fmt.Errorf("unknown type: %q", fields[1])
	}
	value, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return nil, errParse("value", fields[2])
	}
	val2, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return nil, errParse("val2", fields[3])
	}
	snum, err := strconv.ParseInt(fields[4], 10, 32)
	if err != nil {
		return nil, errParse("snum", fields[4])
	}

	left, err := decodeNode(sc)
	if err != nil {
		return nil, err
	}
	right, err := decodeNode(sc)
	if err != nil {
		return nil, err
	}

	return &ir.Node{
		Op: op, Type: typ, Left: left, Right: right,
		Value: int32(value), Val2: int32(val2), Snum: int32(snum),
	}, nil
}
