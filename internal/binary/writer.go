package binary

import (
	"encoding/binary"
	"io"

	"spirv/internal/ir"
	"spirv/internal/spv"
)

// maskValue returns the value represented by a list of mask names.
func maskValue(kind string, mask ir.MaskList) uint32 {
	var value uint32
	for _, name := range mask {
		value |= spv.Masks[kind][name]
	}
	return value
}

// appendString packs a string four bytes per word, NUL-terminated and
// padded to the word boundary.
func appendString(words []uint32, s string) []uint32 {
	data := append([]byte(s), 0)
	for len(data)%4 != 0 {
		data = append(data, 0)
	}
	for i := 0; i < len(data); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(data[i:]))
	}
	return words
}

// instWords encodes one instruction as its word sequence.
func instWords(inst *ir.Instruction) ([]uint32, error) {
	words := []uint32{0}
	format := spv.Formats[inst.Op()]
	if format.HasType {
		words = append(words, inst.TypeID().Value())
	}
	if format.HasResult {
		words = append(words, inst.ResultID().Value())
	}

	operands := inst.Operands()
	idx := 0
	for _, kind := range format.Operands {
		if idx >= len(operands) {
			if !kind.IsVariadic() {
				return nil, ir.Errorf("missing operand for %s", inst.Op())
			}
			break
		}
		switch {
		case kind == spv.KindId:
			words = append(words, operands[idx].(*ir.Id).Value())
			idx++
		case kind == spv.KindLiteralNumber:
			words = append(words, uint32(operands[idx].(ir.LiteralNumber)))
			idx++
		case kind == spv.KindLiteralString || kind == spv.KindOptionalString:
			words = appendString(words, string(operands[idx].(ir.LiteralString)))
			idx++
		case spv.IsMaskKind(kind):
			words = append(words, maskValue(string(kind), operands[idx].(ir.MaskList)))
			idx++
		case spv.IsEnumKind(kind):
			words = append(words, spv.Enums[string(kind)][string(operands[idx].(ir.EnumName))])
			idx++
		default:
			// A variadic kind consumes the rest of the operand list;
			// the mixed pair kinds and OptionalImage interleave ids and
			// literals, which encode the same way word by word.
			for ; idx < len(operands); idx++ {
				switch operand := operands[idx].(type) {
				case *ir.Id:
					words = append(words, operand.Value())
				case ir.LiteralNumber:
					words = append(words, uint32(operand))
				default:
					return nil, ir.Errorf("unhandled operand in %s", inst.Op())
				}
			}
		}
	}
	words[0] = uint32(len(words))<<16 | spv.Opcode[inst.Op()]
	return words, nil
}

func writeWords(w io.Writer, words []uint32) error {
	data := make([]byte, 4*len(words))
	for i, word := range words {
		binary.LittleEndian.PutUint32(data[i*4:], word)
	}
	_, err := w.Write(data)
	return err
}

// WriteModule writes the module to w as a SPIR-V binary. Temporary ids
// are renumbered first.
func WriteModule(w io.Writer, m *ir.Module) error {
	if err := m.RenumberTempIds(); err != nil {
		return err
	}
	header := []uint32{spv.Magic, spv.Version, spv.GeneratorMagic, m.Bound(), 0}
	if err := writeWords(w, header); err != nil {
		return err
	}
	for _, inst := range m.Instructions() {
		words, err := instWords(inst)
		if err != nil {
			return err
		}
		if err := writeWords(w, words); err != nil {
			return err
		}
	}
	return nil
}
