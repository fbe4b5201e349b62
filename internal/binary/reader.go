// Package binary reads and writes the SPIR-V word-stream encoding.
package binary

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"spirv/internal/ir"
	"spirv/internal/spv"
)

// ParseError reports invalid SPIR-V constructs encountered while
// parsing a binary.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func parseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// stream holds the binary being parsed. The length field tracks the
// remaining words of the instruction being decoded.
type stream struct {
	words  []uint32
	idx    int
	length int
}

func newStream(data []byte) (*stream, error) {
	if len(data)%4 != 0 {
		return nil, parseErrorf("file length is not divisible by 4")
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if len(words) < 5 {
		return nil, parseErrorf("file length shorter than header size")
	}
	if words[0] != spv.Magic {
		// The words may be stored byte-swapped.
		for i := range words {
			words[i] = bits.ReverseBytes32(words[i])
		}
		if words[0] != spv.Magic {
			return nil, parseErrorf("incorrect magic: %#x", binary.LittleEndian.Uint32(data))
		}
	}
	if words[1] != spv.Version {
		return nil, parseErrorf("unknown version %#x", words[1])
	}
	return &stream{words: words, idx: 5}, nil
}

// nextOpcode starts decoding one instruction and returns its operation
// name. It returns "" at the end of the file when acceptEOF is set.
func (s *stream) nextOpcode(peek, acceptEOF bool) (string, error) {
	if s.idx == len(s.words) {
		if acceptEOF {
			return "", nil
		}
		return "", parseErrorf("unexpected end of file")
	}
	opcode := s.words[s.idx] & 0xffff
	wordCount := int(s.words[s.idx] >> 16)
	if wordCount == 0 {
		return "", parseErrorf("invalid instruction word count 0 at word %d", s.idx)
	}
	opName, ok := spv.OpName[opcode]
	if !ok {
		return "", parseErrorf("invalid opcode %d at word %d", opcode, s.idx)
	}
	if !peek {
		s.length = wordCount - 1
		s.idx++
	}
	return opName, nil
}

// nextWord returns the next word of the current instruction, or false
// at the end of the instruction when acceptEOL is set.
func (s *stream) nextWord(peek, acceptEOL bool) (uint32, bool, error) {
	if s.idx == len(s.words) || s.length == 0 {
		if acceptEOL {
			return 0, false, nil
		}
		if s.idx == len(s.words) {
			return 0, false, parseErrorf("unexpected end of file")
		}
		return 0, false, parseErrorf("incorrect instruction length")
	}
	word := s.words[s.idx]
	if !peek {
		s.idx++
		s.length--
	}
	return word, true, nil
}

// expectEOL checks that all words of the instruction were consumed.
func (s *stream) expectEOL() error {
	if s.length != 0 {
		return parseErrorf("spurious words after parsing instruction")
	}
	return nil
}

// parseLiteralString decodes a NUL-terminated string packed four bytes
// per word.
func (s *stream) parseLiteralString() (string, error) {
	var result []byte
	for {
		word, _, err := s.nextWord(false, false)
		if err != nil {
			return "", err
		}
		for i := 0; i < 4; i++ {
			octet := byte(word)
			if octet == 0 {
				return string(result), nil
			}
			result = append(result, octet)
			word >>= 8
		}
	}
}

type reader struct {
	stream *stream
	module *ir.Module
}

func (r *reader) parseId(acceptEOL bool) (*ir.Id, error) {
	word, ok, err := r.stream.nextWord(false, acceptEOL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	id, err := r.module.GetId(word)
	if err != nil {
		return nil, parseErrorf("%v", err)
	}
	return id, nil
}

// expandMask converts a mask value to an ordered list of mask names.
func expandMask(kind string, value uint32) (ir.MaskList, error) {
	names, ok := spv.ExpandMask(kind, value)
	if !ok {
		return nil, parseErrorf("invalid %s value", kind)
	}
	return ir.MaskList(names), nil
}

func enumName(kind string, value uint32) (string, error) {
	name, ok := spv.EnumName(kind, value)
	if !ok {
		return "", parseErrorf("unknown %s value %d", kind, value)
	}
	return name, nil
}

// parseOperand decodes one logical operand of the given kind. Variadic
// kinds may decode to several operands.
func (r *reader) parseOperand(kind spv.OperandKind) ([]ir.Operand, error) {
	switch kind {
	case spv.KindId:
		id, err := r.parseId(false)
		if err != nil {
			return nil, err
		}
		return []ir.Operand{id}, nil
	case spv.KindLiteralNumber:
		word, _, err := r.stream.nextWord(false, false)
		if err != nil {
			return nil, err
		}
		return []ir.Operand{ir.LiteralNumber(word)}, nil
	case spv.KindLiteralString:
		str, err := r.stream.parseLiteralString()
		if err != nil {
			return nil, err
		}
		return []ir.Operand{ir.LiteralString(str)}, nil
	case spv.KindOptionalString:
		if _, ok, _ := r.stream.nextWord(true, true); !ok {
			return nil, nil
		}
		str, err := r.stream.parseLiteralString()
		if err != nil {
			return nil, err
		}
		return []ir.Operand{ir.LiteralString(str)}, nil
	case spv.KindVariableLiterals, spv.KindOptionalLiteral:
		var operands []ir.Operand
		for {
			word, ok, err := r.stream.nextWord(false, true)
			if err != nil {
				return nil, err
			}
			if !ok {
				return operands, nil
			}
			operands = append(operands, ir.LiteralNumber(word))
		}
	case spv.KindVariableIds, spv.KindOptionalId:
		var operands []ir.Operand
		for {
			id, err := r.parseId(true)
			if err != nil {
				return nil, err
			}
			if id == nil {
				return operands, nil
			}
			operands = append(operands, id)
		}
	case spv.KindVariableIdLiteralPair:
		var operands []ir.Operand
		for {
			id, err := r.parseId(true)
			if err != nil {
				return nil, err
			}
			if id == nil {
				return operands, nil
			}
			word, _, err := r.stream.nextWord(false, false)
			if err != nil {
				return nil, err
			}
			operands = append(operands, id, ir.LiteralNumber(word))
		}
	case spv.KindVariableLiteralIdPair:
		var operands []ir.Operand
		for {
			word, ok, err := r.stream.nextWord(false, true)
			if err != nil {
				return nil, err
			}
			if !ok {
				return operands, nil
			}
			id, err := r.parseId(false)
			if err != nil {
				return nil, err
			}
			operands = append(operands, ir.LiteralNumber(word), id)
		}
	case spv.KindOptionalImage:
		word, ok, err := r.stream.nextWord(false, true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		operands := []ir.Operand{ir.LiteralNumber(word)}
		for {
			id, err := r.parseId(true)
			if err != nil {
				return nil, err
			}
			if id == nil {
				return operands, nil
			}
			operands = append(operands, id)
		}
	}
	if spv.IsMaskKind(kind) {
		word, _, err := r.stream.nextWord(false, false)
		if err != nil {
			return nil, err
		}
		mask, err := expandMask(string(kind), word)
		if err != nil {
			return nil, err
		}
		return []ir.Operand{mask}, nil
	}
	if spv.IsEnumKind(kind) {
		word, _, err := r.stream.nextWord(false, false)
		if err != nil {
			return nil, err
		}
		name, err := enumName(string(kind), word)
		if err != nil {
			return nil, err
		}
		return []ir.Operand{ir.EnumName(name)}, nil
	}
	return nil, parseErrorf("unknown operand kind %q", kind)
}

// parsedInst is the result of decoding one instruction: a plain
// instruction or a function header.
type parsedInst struct {
	inst     *ir.Instruction
	function *ir.Function
}

func (r *reader) parseInstruction() (parsedInst, error) {
	opName, err := r.stream.nextOpcode(false, false)
	if err != nil {
		return parsedInst{}, err
	}
	format := spv.Formats[opName]
	var typeID *ir.Id
	if format.HasType {
		if typeID, err = r.parseId(false); err != nil {
			return parsedInst{}, err
		}
	}
	var resultID *ir.Id
	if format.HasResult {
		if resultID, err = r.parseId(false); err != nil {
			return parsedInst{}, err
		}
		if resultID.Inst() != nil {
			return parsedInst{}, parseErrorf("%s is already defined", resultID)
		}
	}
	var operands []ir.Operand
	for _, kind := range format.Operands {
		parsed, err := r.parseOperand(kind)
		if err != nil {
			return parsedInst{}, err
		}
		operands = append(operands, parsed...)
	}
	if err := r.stream.expectEOL(); err != nil {
		return parsedInst{}, err
	}

	if opName == "OpFunction" {
		function, err := ir.NewFunction(r.module,
			operands[0].(ir.MaskList), operands[1].(*ir.Id), resultID)
		if err != nil {
			return parsedInst{}, parseErrorf("%v", err)
		}
		return parsedInst{function: function}, nil
	}
	inst, err := ir.NewInstWithResult(r.module, opName, typeID, operands, resultID)
	if err != nil {
		return parsedInst{}, parseErrorf("%v", err)
	}
	return parsedInst{inst: inst}, nil
}

// parseGlobalInstructions parses all instructions up to the first
// function.
func (r *reader) parseGlobalInstructions() error {
	for {
		opName, err := r.stream.nextOpcode(true, true)
		if err != nil {
			return err
		}
		if opName == "" || opName == "OpFunction" {
			return nil
		}
		parsed, err := r.parseInstruction()
		if err != nil {
			return err
		}
		if err := r.module.InsertGlobalInst(parsed.inst); err != nil {
			return parseErrorf("%v", err)
		}
	}
}

func (r *reader) parseBasicBlock(function *ir.Function) error {
	if _, err := r.stream.nextOpcode(false, false); err != nil {
		return err
	}
	labelID, err := r.parseId(false)
	if err != nil {
		return err
	}
	if err := r.stream.expectEOL(); err != nil {
		return err
	}
	bb, err := ir.NewBasicBlock(r.module, labelID)
	if err != nil {
		return parseErrorf("%v", err)
	}

	for {
		parsed, err := r.parseInstruction()
		if err != nil {
			return err
		}
		if parsed.function != nil {
			return parseErrorf("invalid opcode OpFunction in basic block")
		}
		if parsed.inst.Op() == "OpLabel" {
			return parseErrorf("invalid opcode OpLabel in basic block")
		}
		if err := bb.AppendInst(parsed.inst); err != nil {
			return parseErrorf("%v", err)
		}
		if ir.BranchInstructions[parsed.inst.Op()] {
			function.AppendBasicBlock(bb)
			return nil
		}
	}
}

func (r *reader) parseFunction() (*ir.Function, error) {
	parsed, err := r.parseInstruction()
	if err != nil {
		return nil, err
	}
	function := parsed.function

	for {
		opName, err := r.stream.nextOpcode(true, false)
		if err != nil {
			return nil, err
		}
		switch opName {
		case "OpLabel":
			if err := r.parseBasicBlock(function); err != nil {
				return nil, err
			}
		case "OpFunctionEnd":
			if _, err := r.stream.nextOpcode(false, false); err != nil {
				return nil, err
			}
			if err := r.stream.expectEOL(); err != nil {
				return nil, err
			}
			return function, nil
		case "OpFunctionParameter":
			parsed, err := r.parseInstruction()
			if err != nil {
				return nil, err
			}
			if err := function.AppendParameter(parsed.inst); err != nil {
				return nil, parseErrorf("%v", err)
			}
		default:
			return nil, parseErrorf("invalid opcode %s", opName)
		}
	}
}

func (r *reader) parseFunctions() error {
	for {
		opName, err := r.stream.nextOpcode(true, true)
		if err != nil {
			return err
		}
		if opName == "" {
			return nil
		}
		if opName != "OpFunction" {
			return parseErrorf("expected an OpFunction instruction")
		}
		function, err := r.parseFunction()
		if err != nil {
			return err
		}
		r.module.AppendFunction(function)
	}
}

// ReadModule creates a module from a SPIR-V binary read from rd.
func ReadModule(rd io.Reader) (*ir.Module, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	s, err := newStream(data)
	if err != nil {
		return nil, err
	}
	r := &reader{stream: s, module: ir.NewModule()}
	if err := r.parseGlobalInstructions(); err != nil {
		return nil, err
	}
	if err := r.parseFunctions(); err != nil {
		return nil, err
	}
	return r.module, nil
}
