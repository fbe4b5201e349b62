package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"spirv/internal/ir"
	"spirv/internal/spv"
)

// ParseError is a lexical or syntactic problem in the assembly input.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d: error: %s", e.Line, e.Msg)
}

// VerificationError is a structural problem detected after parsing, such
// as an id that is used but never defined. The line number names the
// first user-written instruction referencing the id.
type VerificationError struct {
	Line int
	Msg  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%d: error: %s", e.Line, e.Msg)
}

type parser struct {
	cur            *cursor
	module         *ir.Module
	typeNameToID   map[string]*ir.Id
	symbolNameToID map[string]*ir.Id
	// instToLine records the source line of each user-written
	// instruction. Instructions materialized by the parser itself (such
	// as the OpName for a symbolic id) have no entry, so verification
	// blames the user's instruction instead.
	instToLine map[*ir.Instruction]int
}

// parsed is the result of parsing one instruction line.
type parsed struct {
	inst     *ir.Instruction
	function *ir.Function
	block    *ir.BasicBlock
}

// errLine returns the line to blame for an error at the cursor.
func (p *parser) errLine() int {
	if p.cur.pos > 0 {
		return p.cur.toks[p.cur.pos-1].Pos.Line
	}
	return p.cur.line()
}

// getScalarValue converts a scalar constant token using the type.
func (p *parser) getScalarValue(tok lexer.Token, typeID *ir.Id) (ir.ConstantValue, error) {
	if tok.Type == tokInt {
		if typeID == nil || typeID.Inst() == nil || typeID.Inst().Op() != "OpTypeInt" {
			return nil, fmt.Errorf("type must be OpTypeInt")
		}
		min, max, err := ir.IntTypeRange(typeID)
		if err != nil {
			return nil, err
		}
		return getIntegerValue(tok.Value, min, max)
	}
	if tok.Value == "true" || tok.Value == "false" {
		if typeID == nil || typeID.Inst() == nil || typeID.Inst().Op() != "OpTypeBool" {
			return nil, fmt.Errorf("type must be OpTypeBool")
		}
		return tok.Value == "true", nil
	}
	return nil, fmt.Errorf("expected an integer or true/false")
}

// getIntegerValue parses an integer token (decimal, hex, or binary,
// optionally signed) and range checks it.
func getIntegerValue(token string, min int64, max uint64) (ir.ConstantValue, error) {
	neg := strings.HasPrefix(token, "-")
	if neg {
		token = token[1:]
	}
	value, err := strconv.ParseUint(token, 0, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer literal")
	}
	if neg {
		if min >= 0 || value > uint64(-(min+1))+1 {
			return nil, fmt.Errorf("value out of range")
		}
		return -int64(value - 1) - 1, nil
	}
	if value > max {
		return nil, fmt.Errorf("value out of range")
	}
	return value, nil
}

// createId turns an id token into the real id. Ids are generalized: type
// shorthands and scalar constant literals are accepted where an id is
// expected, and symbolic ids are materialized with an OpName.
func (p *parser) createId(tok lexer.Token, typeID *ir.Id) (*ir.Id, error) {
	if id, ok := p.symbolNameToID[tok.Value]; ok {
		return id, nil
	}
	switch {
	case tok.Type == tokId:
		body := tok.Value[1:]
		if body[0] < '0' || body[0] > '9' {
			id := p.module.NewTempId()
			p.symbolNameToID[tok.Value] = id
			nameInst, err := ir.NewInst(p.module, "OpName", nil,
				[]ir.Operand{id, ir.LiteralString(body)})
			if err != nil {
				return nil, err
			}
			if err := p.module.InsertGlobalInst(nameInst); err != nil {
				return nil, err
			}
			return id, nil
		}
		value, err := strconv.ParseUint(body, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid id %s", tok.Value)
		}
		return p.module.GetId(uint32(value))
	case tok.Type == tokInt || tok.Value == "true" || tok.Value == "false":
		value, err := p.getScalarValue(tok, typeID)
		if err != nil {
			return nil, err
		}
		inst, err := p.module.GetConstant(typeID, value)
		if err != nil {
			return nil, err
		}
		return inst.ResultID(), nil
	}
	if id, ok := p.typeNameToID[tok.Value]; ok {
		return id, nil
	}
	return p.getOrCreateType(tok.Value)
}

// parseVectorConst parses a "(1, 2, 3)" vector constant.
func (p *parser) parseVectorConst(typeID *ir.Id) (*ir.Id, error) {
	if typeID == nil || typeID.Inst() == nil || typeID.Inst().Op() != "OpTypeVector" {
		return nil, fmt.Errorf("type must be OpTypeVector")
	}
	elemTypeID := typeID.Inst().IdOperand(0)
	var elements []ir.ConstantValue
	for {
		tok, err := p.cur.next(false)
		if err != nil {
			return nil, err
		}
		element, err := p.getScalarValue(tok, elemTypeID)
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
		tok, err = p.cur.next(false)
		if err != nil {
			return nil, err
		}
		if tok.Value == ")" {
			break
		}
		if tok.Value != "," {
			return nil, fmt.Errorf("expected , or )")
		}
	}
	inst, err := p.module.GetConstant(typeID, elements)
	if err != nil {
		return nil, err
	}
	return inst.ResultID(), nil
}

// parseId parses one id operand, accepting the generalized forms.
func (p *parser) parseId(acceptEOL bool, typeID *ir.Id) (*ir.Id, error) {
	tok, err := p.cur.next(acceptEOL)
	if err != nil {
		return nil, err
	}
	if acceptEOL && tok.Type == tokEOL {
		return nil, nil
	}
	if tok.Value == "(" {
		return p.parseVectorConst(typeID)
	}
	return p.createId(tok, typeID)
}

// getOrCreateType returns the type instruction's id for a type
// shorthand, creating the type if needed.
func (p *parser) getOrCreateType(name string) (*ir.Id, error) {
	if id, ok := p.typeNameToID[name]; ok {
		return id, nil
	}
	var inst *ir.Instruction
	var err error
	switch {
	case name == "void":
		inst, err = p.module.GetGlobalInst("OpTypeVoid", nil, nil)
	case name == "bool":
		inst, err = p.module.GetGlobalInst("OpTypeBool", nil, nil)
	case name == "s8" || name == "s16" || name == "s32" || name == "s64":
		width, _ := strconv.Atoi(name[1:])
		inst, err = p.module.GetGlobalInst("OpTypeInt", nil,
			[]ir.Operand{ir.LiteralNumber(width), ir.LiteralNumber(1)})
	case name == "u8" || name == "u16" || name == "u32" || name == "u64":
		width, _ := strconv.Atoi(name[1:])
		inst, err = p.module.GetGlobalInst("OpTypeInt", nil,
			[]ir.Operand{ir.LiteralNumber(width), ir.LiteralNumber(0)})
	case name == "f16" || name == "f32" || name == "f64":
		width, _ := strconv.Atoi(name[1:])
		inst, err = p.module.GetGlobalInst("OpTypeFloat", nil,
			[]ir.Operand{ir.LiteralNumber(width)})
	case strings.HasPrefix(name, "<"):
		inner := strings.TrimSuffix(strings.TrimPrefix(name, "<"), ">")
		countStr, baseName, ok := strings.Cut(inner, " x ")
		if !ok {
			return nil, fmt.Errorf("not a valid type: %s", name)
		}
		baseTypeID, err := p.getOrCreateType(baseName)
		if err != nil {
			return nil, err
		}
		count, _ := strconv.Atoi(countStr)
		inst, err = p.module.GetGlobalInst("OpTypeVector", nil,
			[]ir.Operand{baseTypeID, ir.LiteralNumber(count)})
		if err != nil {
			return nil, err
		}
		p.typeNameToID[name] = inst.ResultID()
		return inst.ResultID(), nil
	default:
		return nil, fmt.Errorf("not a valid type: %s", name)
	}
	if err != nil {
		return nil, err
	}
	p.typeNameToID[name] = inst.ResultID()
	return inst.ResultID(), nil
}

// parseType parses one id that must name a type.
func (p *parser) parseType() (*ir.Id, error) {
	tok, err := p.cur.next(false)
	if err != nil {
		return nil, err
	}
	if tok.Type != tokId && tok.Type != tokName && tok.Type != tokVecType {
		return nil, fmt.Errorf("not a valid type: %s", tok.Value)
	}
	typeID, err := p.createId(tok, nil)
	if err != nil {
		return nil, err
	}
	if typeID.Inst() == nil {
		return nil, fmt.Errorf("%s used but not defined", tok.Value)
	}
	if !ir.TypeDeclarationInstructions[typeID.Inst().Op()] {
		return nil, fmt.Errorf("not a valid type: %s", tok.Value)
	}
	return typeID, nil
}

// parseLiteralNumber parses one LiteralNumber operand.
func (p *parser) parseLiteralNumber() (ir.LiteralNumber, error) {
	tok, err := p.cur.next(false)
	if err != nil {
		return 0, err
	}
	if tok.Type != tokInt {
		return 0, fmt.Errorf("expected an integer literal")
	}
	value, err := getIntegerValue(tok.Value, 0, 0xffffffff)
	if err != nil {
		return 0, err
	}
	return ir.LiteralNumber(value.(uint64)), nil
}

// parseMask parses mask tokens (names or numbers) joined by "|".
func (p *parser) parseMask(kind string) (ir.MaskList, error) {
	var value uint32
	for {
		if p.cur.peek().Type == tokInt {
			num, err := p.parseLiteralNumber()
			if err != nil {
				return nil, err
			}
			value |= uint32(num)
		} else {
			tok, err := p.cur.next(false)
			if err != nil {
				return nil, err
			}
			bit, ok := spv.Masks[kind][tok.Value]
			if !ok {
				return nil, fmt.Errorf("unknown mask value %s for %s", tok.Value, kind)
			}
			value |= bit
		}
		if p.cur.peek().Value != "|" {
			break
		}
		if err := p.cur.expect("|"); err != nil {
			return nil, err
		}
	}
	names, ok := spv.ExpandMask(kind, value)
	if !ok {
		return nil, fmt.Errorf("invalid mask value")
	}
	return ir.MaskList(names), nil
}

// parseVarOperand parses a var/optional operand, which may consist of
// several real operands.
func (p *parser) parseVarOperand(kind spv.OperandKind, typeID *ir.Id) ([]ir.Operand, error) {
	var group []spv.OperandKind
	switch kind {
	case spv.KindVariableLiterals, spv.KindOptionalLiteral:
		group = []spv.OperandKind{spv.KindLiteralNumber}
	case spv.KindVariableIds, spv.KindOptionalId:
		group = []spv.OperandKind{spv.KindId}
	case spv.KindVariableIdLiteralPair:
		group = []spv.OperandKind{spv.KindId, spv.KindLiteralNumber}
	case spv.KindVariableLiteralIdPair:
		group = []spv.OperandKind{spv.KindLiteralNumber, spv.KindId}
	default:
		return nil, fmt.Errorf("invalid kind %s", kind)
	}

	var operands []ir.Operand
	for {
		for i, elem := range group {
			if i > 0 {
				if err := p.cur.expect(","); err != nil {
					return nil, err
				}
			}
			switch elem {
			case spv.KindId:
				id, err := p.parseId(false, typeID)
				if err != nil {
					return nil, err
				}
				operands = append(operands, id)
			case spv.KindLiteralNumber:
				num, err := p.parseLiteralNumber()
				if err != nil {
					return nil, err
				}
				operands = append(operands, num)
			}
		}
		if p.cur.atEOL() {
			return operands, nil
		}
		if err := p.cur.expect(","); err != nil {
			return nil, err
		}
	}
}

// parseOperand parses one operand of the given kind.
func (p *parser) parseOperand(kind spv.OperandKind, typeID *ir.Id) ([]ir.Operand, error) {
	switch {
	case kind == spv.KindId:
		id, err := p.parseId(false, typeID)
		if err != nil {
			return nil, err
		}
		return []ir.Operand{id}, nil
	case kind == spv.KindLiteralNumber:
		num, err := p.parseLiteralNumber()
		if err != nil {
			return nil, err
		}
		return []ir.Operand{num}, nil
	case spv.IsMaskKind(kind):
		mask, err := p.parseMask(string(kind))
		if err != nil {
			return nil, err
		}
		return []ir.Operand{mask}, nil
	case kind.IsVariadic() && kind != spv.KindOptionalImage && kind != spv.KindOptionalString:
		return p.parseVarOperand(kind, typeID)
	case kind == spv.KindLiteralString || kind == spv.KindOptionalString:
		if kind == spv.KindOptionalString && p.cur.atEOL() {
			return nil, nil
		}
		tok, err := p.cur.next(false)
		if err != nil {
			return nil, err
		}
		if tok.Type != tokString {
			return nil, fmt.Errorf("expected a string literal")
		}
		return []ir.Operand{ir.LiteralString(strings.Trim(tok.Value, `"`))}, nil
	case kind == spv.KindOptionalImage:
		if p.cur.atEOL() {
			return nil, nil
		}
		num, err := p.parseLiteralNumber()
		if err != nil {
			return nil, err
		}
		operands := []ir.Operand{num}
		if p.cur.peek().Value == "," {
			if err := p.cur.expect(","); err != nil {
				return nil, err
			}
			rest, err := p.parseVarOperand(spv.KindVariableIds, typeID)
			if err != nil {
				return nil, err
			}
			operands = append(operands, rest...)
		}
		return operands, nil
	case spv.IsEnumKind(kind):
		tok, err := p.cur.next(false)
		if err != nil {
			return nil, err
		}
		if _, ok := spv.Enums[string(kind)][tok.Value]; !ok {
			return nil, fmt.Errorf("invalid value %s for %s", tok.Value, kind)
		}
		return []ir.Operand{ir.EnumName(tok.Value)}, nil
	}
	return nil, fmt.Errorf("unknown operand kind %q", kind)
}

// parseOperands parses the operands for one instruction per its format.
func (p *parser) parseOperands(format spv.InstFormat, typeID *ir.Id) ([]ir.Operand, error) {
	var operands []ir.Operand
	kinds := format.Operands
	for len(kinds) > 0 {
		kind := kinds[0]
		kinds = kinds[1:]
		parsed, err := p.parseOperand(kind, typeID)
		if err != nil {
			return nil, err
		}
		operands = append(operands, parsed...)
		if p.cur.atEOL() {
			break
		}
		if err := p.cur.expect(","); err != nil {
			return nil, err
		}
		if len(kinds) == 0 {
			return nil, fmt.Errorf(`spurious "," after last operand`)
		}
	}
	// Remaining operand kinds must all be optional.
	for _, kind := range kinds {
		if !kind.IsVariadic() {
			return nil, fmt.Errorf("missing operands")
		}
	}
	return operands, nil
}

// parseExtInstSet parses the set field of an OpExtInst instruction,
// either an id of an OpExtInstImport or the set name as a string.
func (p *parser) parseExtInstSet() (*ir.Id, error) {
	tok, err := p.cur.next(false)
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case tokId:
		setID, err := p.createId(tok, nil)
		if err != nil {
			return nil, err
		}
		if setID.Inst() == nil || setID.Inst().Op() != "OpExtInstImport" {
			return nil, fmt.Errorf("id is not an OpExtInstImport instruction")
		}
		return setID, nil
	case tokString:
		inst, err := p.module.GetGlobalInst("OpExtInstImport", nil,
			[]ir.Operand{ir.LiteralString(strings.Trim(tok.Value, `"`))})
		if err != nil {
			return nil, err
		}
		return inst.ResultID(), nil
	}
	return nil, fmt.Errorf("expected an extended instruction set id or string")
}

// parseExtInstNumber parses the instruction field of an OpExtInst, by
// number or by name from the set's metadata.
func (p *parser) parseExtInstNumber(setID *ir.Id) (ir.LiteralNumber, error) {
	if p.cur.peek().Type == tokInt {
		return p.parseLiteralNumber()
	}
	tok, err := p.cur.next(false)
	if err != nil {
		return 0, err
	}
	if tok.Type != tokName {
		return 0, fmt.Errorf("expected an integer or operation name")
	}
	setName := string(setID.Inst().Operands()[0].(ir.LiteralString))
	table, ok := spv.ExtInstSets[setName]
	if !ok {
		return 0, fmt.Errorf("unknown extended instruction set")
	}
	for number, format := range table {
		if format.Name == tok.Value {
			return ir.LiteralNumber(number), nil
		}
	}
	return 0, fmt.Errorf("unknown instruction %s", tok.Value)
}

// parseExtInstOperands parses the operands of an OpExtInst.
func (p *parser) parseExtInstOperands(typeID *ir.Id) ([]ir.Operand, error) {
	setID, err := p.parseExtInstSet()
	if err != nil {
		return nil, err
	}
	if err := p.cur.expect(","); err != nil {
		return nil, err
	}
	number, err := p.parseExtInstNumber(setID)
	if err != nil {
		return nil, err
	}
	if err := p.cur.expect(","); err != nil {
		return nil, err
	}
	rest, err := p.parseVarOperand(spv.KindVariableIds, typeID)
	if err != nil {
		return nil, err
	}
	return append([]ir.Operand{setID, number}, rest...), nil
}

// parseDecorations parses pretty-printed decorations following the
// result id, creating OpDecorate instructions for them.
func (p *parser) parseDecorations(resultID *ir.Id, opName string) error {
	for {
		tok := p.cur.peek()
		if tok.Type != tokName {
			return nil
		}
		if _, ok := spv.Enums["Decoration"][tok.Value]; !ok {
			return nil
		}
		// "Uniform" is both a decoration and a storage class; operations
		// whose first operand is a storage class must not eat it here.
		if (opName == "OpTypePointer" || opName == "OpVariable") && tok.Value == "Uniform" {
			return nil
		}
		if resultID == nil {
			return nil
		}
		decoration, err := p.cur.next(false)
		if err != nil {
			return err
		}
		operands := []ir.Operand{resultID, ir.EnumName(decoration.Value)}
		if p.cur.peek().Value == "(" {
			if err := p.cur.expect("("); err != nil {
				return err
			}
			for {
				num, err := p.parseLiteralNumber()
				if err != nil {
					return err
				}
				operands = append(operands, num)
				tok, err := p.cur.next(false)
				if err != nil {
					return err
				}
				if tok.Value == ")" {
					break
				}
				if tok.Value != "," {
					return fmt.Errorf("syntax error in decoration")
				}
			}
		}
		inst, err := ir.NewInst(p.module, "OpDecorate", nil, operands)
		if err != nil {
			return err
		}
		if err := p.module.InsertGlobalInst(inst); err != nil {
			return err
		}
	}
}

// parseInstruction parses one instruction line.
func (p *parser) parseInstruction() (parsed, error) {
	line := p.cur.line()
	var resultID *ir.Id
	if p.cur.peek().Type == tokId {
		var err error
		resultID, err = p.parseId(false, nil)
		if err != nil {
			return parsed{}, err
		}
		if resultID.Inst() != nil {
			return parsed{}, fmt.Errorf("%s is already defined", p.idName(resultID))
		}
		if err := p.cur.expect("="); err != nil {
			return parsed{}, err
		}
	}
	opTok, err := p.cur.next(false)
	if err != nil {
		return parsed{}, err
	}
	if opTok.Type != tokName {
		return parsed{}, fmt.Errorf("expected an operation name")
	}
	opName := opTok.Value
	format, ok := spv.Formats[opName]
	if !ok {
		return parsed{}, fmt.Errorf("invalid operation %s", opName)
	}
	var typeID *ir.Id
	if format.HasType {
		if typeID, err = p.parseType(); err != nil {
			return parsed{}, err
		}
	}
	if err := p.parseDecorations(resultID, opName); err != nil {
		return parsed{}, err
	}
	var operands []ir.Operand
	if opName == "OpExtInst" {
		operands, err = p.parseExtInstOperands(typeID)
	} else {
		operands, err = p.parseOperands(format, typeID)
	}
	if err != nil {
		return parsed{}, err
	}
	if err := p.cur.doneWithLine(); err != nil {
		return parsed{}, err
	}

	switch opName {
	case "OpFunction":
		function, err := ir.NewFunction(p.module,
			operands[0].(ir.MaskList), operands[1].(*ir.Id), resultID)
		if err != nil {
			return parsed{}, err
		}
		p.instToLine[function.Inst()] = line
		p.instToLine[function.EndInst()] = line
		return parsed{function: function}, nil
	case "OpLabel":
		bb, err := ir.NewBasicBlock(p.module, resultID)
		if err != nil {
			return parsed{}, err
		}
		p.instToLine[bb.Inst()] = line
		return parsed{block: bb}, nil
	}
	inst, err := ir.NewInstWithResult(p.module, opName, typeID, operands, resultID)
	if err != nil {
		return parsed{}, err
	}
	p.instToLine[inst] = line
	return parsed{inst: inst}, nil
}

// parseBasicBlockBody parses the instructions of one basic block, up to
// and including its terminator.
func (p *parser) parseBasicBlockBody(bb *ir.BasicBlock) error {
	for {
		if p.cur.atEOF() {
			return fmt.Errorf("unexpected end of file in basic block")
		}
		tok := p.cur.peek()
		switch {
		case tok.Type == tokEOL:
			if err := p.cur.doneWithLine(); err != nil {
				return err
			}
		case tok.Type == tokLabel:
			return fmt.Errorf("label without terminating previous basic block")
		case tok.Value == "}":
			return fmt.Errorf("ending function without terminating previous basic block")
		default:
			item, err := p.parseInstruction()
			if err != nil {
				return err
			}
			switch {
			case item.block != nil:
				return fmt.Errorf("label without terminating previous basic block")
			case item.function != nil:
				return fmt.Errorf("OpFunction within function")
			case item.inst.Op() == "OpFunctionEnd":
				return fmt.Errorf("OpFunctionEnd without terminating previous basic block")
			}
			if err := bb.AppendInst(item.inst); err != nil {
				return err
			}
			if ir.BranchInstructions[item.inst.Op()] {
				return nil
			}
		}
	}
}

// parseBasicBlock parses one pretty-printed basic block.
func (p *parser) parseBasicBlock(function *ir.Function) error {
	tok, err := p.cur.next(false)
	if err != nil {
		return err
	}
	if err := p.cur.doneWithLine(); err != nil {
		return err
	}
	labelTok := lexer.Token{Type: tokId, Value: strings.TrimSuffix(tok.Value, ":")}
	labelID, err := p.createId(labelTok, nil)
	if err != nil {
		return err
	}
	if labelID.Inst() != nil {
		return fmt.Errorf("%s is already defined", p.idName(labelID))
	}
	bb, err := ir.NewBasicBlock(p.module, labelID)
	if err != nil {
		return err
	}
	if err := p.parseBasicBlockBody(bb); err != nil {
		return err
	}
	function.AppendBasicBlock(bb)
	return nil
}

// parseFunctionRaw parses a function given its already parsed OpFunction
// instruction.
func (p *parser) parseFunctionRaw(function *ir.Function) (*ir.Function, error) {
	funcTypeInst := function.Inst().IdOperand(1).Inst()
	remainingParams := len(funcTypeInst.Operands()) - 1
	for {
		if p.cur.atEOF() {
			return nil, fmt.Errorf("unexpected end of file in function")
		}
		if p.cur.peek().Type == tokEOL {
			if err := p.cur.doneWithLine(); err != nil {
				return nil, err
			}
			continue
		}
		item, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		if remainingParams > 0 {
			if item.inst == nil || item.inst.Op() != "OpFunctionParameter" {
				return nil, fmt.Errorf("expected OpFunctionParameter")
			}
		}
		switch {
		case item.block != nil:
			if err := p.parseBasicBlockBody(item.block); err != nil {
				return nil, err
			}
			function.AppendBasicBlock(item.block)
		case item.function != nil:
			return nil, fmt.Errorf("OpFunction within function")
		case item.inst.Op() == "OpFunctionEnd":
			return function, nil
		case item.inst.Op() == "OpFunctionParameter":
			if remainingParams == 0 {
				return nil, fmt.Errorf("too many OpFunctionParameter")
			}
			remainingParams--
			if err := function.AppendParameter(item.inst); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("expected a new label or OpFunctionEnd")
		}
	}
}

// parseParameters parses the parameter list of a pretty-printed function
// definition.
func (p *parser) parseParameters() (types []*ir.Id, ids []*ir.Id, err error) {
	if err := p.cur.expect("("); err != nil {
		return nil, nil, err
	}
	if p.cur.peek().Value == "void" {
		if err := p.cur.expect("void"); err != nil {
			return nil, nil, err
		}
	} else {
		for p.cur.peek().Value != ")" {
			paramType, err := p.parseType()
			if err != nil {
				return nil, nil, err
			}
			paramID, err := p.parseId(false, nil)
			if err != nil {
				return nil, nil, err
			}
			types = append(types, paramType)
			ids = append(ids, paramID)
			if p.cur.peek().Value == "," {
				if err := p.cur.expect(","); err != nil {
					return nil, nil, err
				}
				if p.cur.peek().Value == ")" {
					return nil, nil, fmt.Errorf(`expected parameter after ","`)
				}
			}
		}
	}
	if err := p.cur.expect(")"); err != nil {
		return nil, nil, err
	}
	return types, ids, nil
}

// parseFunctionDefinition parses the "define" line of a pretty-printed
// function.
func (p *parser) parseFunctionDefinition() (*ir.Function, error) {
	line := p.cur.line()
	if err := p.cur.expect("define"); err != nil {
		return nil, err
	}
	returnType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	resultID, err := p.parseId(false, nil)
	if err != nil {
		return nil, err
	}
	paramTypes, paramIDs, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	if resultID.Inst() != nil {
		return nil, fmt.Errorf("%s is already defined", p.idName(resultID))
	}

	operands := []ir.Operand{returnType}
	for _, paramType := range paramTypes {
		operands = append(operands, paramType)
	}
	funcTypeInst, err := p.module.GetGlobalInst("OpTypeFunction", nil, operands)
	if err != nil {
		return nil, err
	}
	function, err := ir.NewFunction(p.module, ir.MaskList{},
		funcTypeInst.ResultID(), resultID)
	if err != nil {
		return nil, err
	}
	p.instToLine[function.Inst()] = line
	p.instToLine[function.EndInst()] = line
	for i, paramID := range paramIDs {
		paramInst, err := ir.NewInstWithResult(p.module, "OpFunctionParameter",
			paramTypes[i], nil, paramID)
		if err != nil {
			return nil, err
		}
		p.instToLine[paramInst] = line
		if err := function.AppendParameter(paramInst); err != nil {
			return nil, err
		}
	}
	return function, nil
}

// parseFunction parses a pretty-printed function.
func (p *parser) parseFunction() (*ir.Function, error) {
	function, err := p.parseFunctionDefinition()
	if err != nil {
		return nil, err
	}
	p.cur.skipBlankLines()
	if err := p.cur.expect("{"); err != nil {
		return nil, err
	}
	if err := p.cur.doneWithLine(); err != nil {
		return nil, err
	}
	for {
		tok := p.cur.peek()
		switch {
		case tok.Type == tokEOL && !p.cur.atEOF():
			if err := p.cur.doneWithLine(); err != nil {
				return nil, err
			}
		case tok.Value == "}":
			if err := p.cur.expect("}"); err != nil {
				return nil, err
			}
			if err := p.cur.doneWithLine(); err != nil {
				return nil, err
			}
			return function, nil
		case tok.Type == tokLabel:
			if err := p.parseBasicBlock(function); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("expected a label or }")
		}
	}
}

// parseTranslationUnit parses the whole input.
func (p *parser) parseTranslationUnit() error {
	for {
		if p.cur.atEOF() {
			return nil
		}
		tok := p.cur.peek()
		switch {
		case tok.Type == tokEOL:
			if err := p.cur.doneWithLine(); err != nil {
				return err
			}
		case tok.Value == "define":
			function, err := p.parseFunction()
			if err != nil {
				return err
			}
			p.module.AppendFunction(function)
		default:
			item, err := p.parseInstruction()
			if err != nil {
				return err
			}
			switch {
			case item.function != nil:
				function, err := p.parseFunctionRaw(item.function)
				if err != nil {
					return err
				}
				p.module.AppendFunction(function)
			case item.block != nil:
				return fmt.Errorf("basic block defined outside a function")
			default:
				if err := p.module.InsertGlobalInst(item.inst); err != nil {
					return err
				}
			}
		}
	}
}

// idName returns the symbolic name for an id if one exists, otherwise
// the numbered form.
func (p *parser) idName(id *ir.Id) string {
	for name, cur := range p.symbolNameToID {
		if cur == id {
			return name
		}
	}
	return id.String()
}

// verifyIdsAreDefined checks that every id referenced by a user-written
// instruction has a defining instruction. Instructions the parser
// materialized itself are skipped; the error is reported against the
// user's instruction.
func (p *parser) verifyIdsAreDefined() error {
	for _, inst := range p.module.Instructions() {
		line, userWritten := p.instToLine[inst]
		if !userWritten {
			continue
		}
		ids := make([]*ir.Id, 0, len(inst.Operands())+1)
		if inst.TypeID() != nil {
			ids = append(ids, inst.TypeID())
		}
		for _, operand := range inst.Operands() {
			if id, ok := operand.(*ir.Id); ok {
				ids = append(ids, id)
			}
		}
		for _, id := range ids {
			if id.Inst() == nil {
				return &VerificationError{
					Line: line,
					Msg:  fmt.Sprintf("%s used but not defined", p.idName(id)),
				}
			}
		}
	}
	return nil
}

// ReadModule creates a module from the assembly read from rd.
func ReadModule(rd io.Reader) (*ir.Module, error) {
	source, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	toks, err := tokens("input", string(source))
	if err != nil {
		if lexErr, ok := err.(participle.Error); ok {
			return nil, &ParseError{Line: lexErr.Position().Line, Msg: "syntax error"}
		}
		return nil, err
	}
	p := &parser{
		cur:            &cursor{toks: toks},
		module:         ir.NewModule(),
		typeNameToID:   map[string]*ir.Id{},
		symbolNameToID: map[string]*ir.Id{},
		instToLine:     map[*ir.Instruction]int{},
	}
	if err := p.parseTranslationUnit(); err != nil {
		if verr, ok := err.(*VerificationError); ok {
			return nil, verr
		}
		if perr, ok := err.(*ParseError); ok {
			return nil, perr
		}
		return nil, &ParseError{Line: p.errLine(), Msg: err.Error()}
	}
	if err := p.verifyIdsAreDefined(); err != nil {
		return nil, err
	}
	return p.module, nil
}
