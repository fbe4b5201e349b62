package asm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"spirv/internal/ir"
	"spirv/internal/spv"
)

// writer holds the pretty-printing state for one module.
type writer struct {
	out            *bufio.Writer
	module         *ir.Module
	raw            bool
	symbolNameToID map[string]*ir.Id
	idToSymbolName map[*ir.Id]string
	typeIDToName   map[*ir.Id]string
}

// WriteModule writes the module to w as assembly. In raw mode every
// instruction is written in its fully explicit form; otherwise types,
// names, and decorations are pretty-printed.
func WriteModule(w io.Writer, m *ir.Module, raw bool) error {
	if err := m.RenumberTempIds(); err != nil {
		return err
	}
	wr := &writer{
		out:            bufio.NewWriter(w),
		module:         m,
		raw:            raw,
		symbolNameToID: map[string]*ir.Id{},
		idToSymbolName: map[*ir.Id]string{},
		typeIDToName:   map[*ir.Id]string{},
	}
	if err := wr.generateTypeNames(); err != nil {
		return err
	}
	if !raw {
		wr.generateGlobalSymbols()
	}
	if err := wr.writeGlobals(); err != nil {
		return err
	}
	for _, f := range m.Functions() {
		if raw {
			wr.writeFunctionRaw(f)
		} else {
			wr.writeFunction(f)
		}
	}
	return wr.out.Flush()
}

// idName returns the pretty-printed name for an id. Raw mode is fully
// explicit: every id keeps its numeric form.
func (wr *writer) idName(id *ir.Id) string {
	if wr.raw {
		return id.String()
	}
	if name, ok := wr.idToSymbolName[id]; ok {
		return name
	}
	if name, ok := wr.typeIDToName[id]; ok {
		return name
	}
	return id.String()
}

func (wr *writer) typeName(id *ir.Id) string {
	if wr.raw {
		return id.String()
	}
	if name, ok := wr.typeIDToName[id]; ok {
		return name
	}
	return id.String()
}

// formatMask formats a mask list in the assembly syntax. An empty mask
// prints the mask kind's zero-valued name.
func formatMask(kind string, mask ir.MaskList) string {
	if len(mask) == 0 {
		for name, value := range spv.Masks[kind] {
			if value == 0 {
				return name
			}
		}
		return "0"
	}
	return strings.Join(mask, " | ")
}

// formatDecoration pretty-prints one decoration instruction.
func formatDecoration(inst *ir.Instruction) string {
	res := string(inst.Operands()[1].(ir.EnumName))
	if params := inst.Operands()[2:]; len(params) > 0 {
		var parts []string
		for _, param := range params {
			parts = append(parts, fmt.Sprintf("%d", param.(ir.LiteralNumber)))
		}
		res += "(" + strings.Join(parts, ", ") + ")"
	}
	return res
}

// decorationsFor returns the inline decoration text for an instruction.
func (wr *writer) decorationsFor(inst *ir.Instruction) string {
	if inst.ResultID() == nil {
		return ""
	}
	var sb strings.Builder
	for _, decoration := range inst.GetDecorations() {
		if decoration.Op() == "OpDecorate" {
			sb.WriteString(" ")
			sb.WriteString(formatDecoration(decoration))
		}
	}
	return sb.String()
}

// writeExtInst writes an OpExtInst instruction; the set and instruction
// are written by name when the set is known.
func (wr *writer) writeExtInst(inst *ir.Instruction, indent string) {
	line := indent
	if inst.ResultID() != nil {
		line += wr.idName(inst.ResultID()) + " = "
	}
	line += inst.Op()
	if inst.TypeID() != nil {
		line += " " + wr.typeName(inst.TypeID())
	}
	if !wr.raw {
		line += wr.decorationsFor(inst)
	}
	setID := inst.IdOperand(0)
	setName := string(setID.Inst().Operands()[0].(ir.LiteralString))
	if wr.raw {
		line += " " + wr.idName(setID) + ", "
	} else {
		line += " " + fmt.Sprintf("%q", setName) + ", "
	}
	number := uint32(inst.Operands()[1].(ir.LiteralNumber))
	if format, ok := spv.LookupExtInst(setName, number); ok {
		line += format.Name + ", "
	} else {
		line += fmt.Sprintf("%d, ", number)
	}
	var parts []string
	for _, operand := range inst.Operands()[2:] {
		parts = append(parts, wr.idName(operand.(*ir.Id)))
	}
	line += strings.Join(parts, ", ")
	fmt.Fprintln(wr.out, line)
}

// writeInst writes one instruction.
func (wr *writer) writeInst(inst *ir.Instruction, indent string) {
	if inst.Op() == "OpExtInst" {
		wr.writeExtInst(inst, indent)
		return
	}
	line := indent
	if inst.ResultID() != nil {
		line += wr.idName(inst.ResultID()) + " = "
	}
	line += inst.Op()
	if inst.TypeID() != nil {
		line += " " + wr.typeName(inst.TypeID())
	}
	if !wr.raw {
		line += wr.decorationsFor(inst)
	}

	format := spv.Formats[inst.Op()]
	operands := inst.Operands()
	var parts []string
	idx := 0
	for _, kind := range format.Operands {
		if idx >= len(operands) {
			break
		}
		switch {
		case kind == spv.KindId:
			parts = append(parts, wr.idName(operands[idx].(*ir.Id)))
			idx++
		case kind == spv.KindLiteralNumber:
			parts = append(parts, fmt.Sprintf("%d", operands[idx].(ir.LiteralNumber)))
			idx++
		case kind == spv.KindLiteralString || kind == spv.KindOptionalString:
			parts = append(parts, fmt.Sprintf("%q", string(operands[idx].(ir.LiteralString))))
			idx++
		case spv.IsMaskKind(kind):
			parts = append(parts, formatMask(string(kind), operands[idx].(ir.MaskList)))
			idx++
		case spv.IsEnumKind(kind):
			parts = append(parts, string(operands[idx].(ir.EnumName)))
			idx++
		default:
			// The variadic kinds are last and consume the remaining
			// operands.
			for ; idx < len(operands); idx++ {
				switch operand := operands[idx].(type) {
				case *ir.Id:
					parts = append(parts, wr.idName(operand))
				case ir.LiteralNumber:
					parts = append(parts, fmt.Sprintf("%d", operand))
				}
			}
		}
	}
	if len(parts) > 0 {
		line += " " + strings.Join(parts, ", ")
	}
	fmt.Fprintln(wr.out, line)
}

var symbolNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`)

// symbolName returns a pretty name for the id, derived from its OpName
// when one exists. Names are not unique in the input, so the first id
// wins a contested name and the rest keep their numeric form.
func (wr *writer) symbolName(id *ir.Id) string {
	if name, ok := wr.idToSymbolName[id]; ok {
		return name
	}
	symbol := id.String()
	for _, inst := range wr.module.Globals().Names() {
		if inst.Op() != "OpName" || inst.Operands()[0] != ir.Operand(id) {
			continue
		}
		name := string(inst.Operands()[1].(ir.LiteralString))
		// glslang tends to add type information to function names, such
		// as "foo(vf4;" for "foo(vec4)". Truncate those to fit the IL.
		match := symbolNameRe.FindString(name)
		if match != "" {
			candidate := "%" + match
			if _, taken := wr.symbolNameToID[candidate]; !taken {
				symbol = candidate
			}
		}
		break
	}
	wr.idToSymbolName[id] = symbol
	wr.symbolNameToID[symbol] = id
	return symbol
}

// generateGlobalSymbols names the functions and global variables.
func (wr *writer) generateGlobalSymbols() {
	for _, f := range wr.module.Functions() {
		wr.symbolName(f.Inst().ResultID())
	}
	for _, inst := range wr.module.Globals().Types() {
		if inst.Op() == "OpVariable" {
			wr.symbolName(inst.ResultID())
		}
	}
}

// formatTypeName formats a type instruction as its pretty-printed
// shorthand, when one exists.
func (wr *writer) formatTypeName(inst *ir.Instruction) (string, error) {
	switch inst.Op() {
	case "OpTypeVoid":
		return "void", nil
	case "OpTypeBool":
		return "bool", nil
	case "OpTypeInt":
		width := int(inst.Operands()[0].(ir.LiteralNumber))
		if width != 8 && width != 16 && width != 32 && width != 64 {
			return "", ir.Errorf("invalid OpTypeInt width %d", width)
		}
		signedness := int(inst.Operands()[1].(ir.LiteralNumber))
		if signedness != 0 && signedness != 1 {
			return "", ir.Errorf("invalid OpTypeInt signedness %d", signedness)
		}
		if signedness == 1 {
			return fmt.Sprintf("s%d", width), nil
		}
		return fmt.Sprintf("u%d", width), nil
	case "OpTypeFloat":
		width := int(inst.Operands()[0].(ir.LiteralNumber))
		if width != 16 && width != 32 && width != 64 {
			return "", ir.Errorf("invalid OpTypeFloat width %d", width)
		}
		return fmt.Sprintf("f%d", width), nil
	case "OpTypeVector":
		component := wr.typeName(inst.IdOperand(0))
		count := int(inst.Operands()[1].(ir.LiteralNumber))
		if count < 2 || count > 15 {
			return "", ir.Errorf("invalid OpTypeVector component count %d", count)
		}
		return fmt.Sprintf("<%d x %s>", count, component), nil
	}
	return inst.ResultID().String(), nil
}

// generateTypeNames populates the type name table.
func (wr *writer) generateTypeNames() error {
	for _, inst := range wr.module.Globals().Types() {
		if !ir.TypeDeclarationInstructions[inst.Op()] {
			continue
		}
		name, err := wr.formatTypeName(inst)
		if err != nil {
			return err
		}
		wr.typeIDToName[inst.ResultID()] = name
	}
	return nil
}

// addTypeIfNeeded adds a type to needed when it is used but cannot be
// pretty-printed, recursing through the types it references.
func (wr *writer) addTypeIfNeeded(inst *ir.Instruction, needed map[*ir.Instruction]bool) {
	if needed[inst] {
		return
	}
	if inst.Op() != "OpTypeFunction" &&
		wr.typeIDToName[inst.ResultID()] == inst.ResultID().String() {
		needed[inst] = true
	}
	for _, operand := range inst.Operands() {
		if id, ok := operand.(*ir.Id); ok {
			if id.Inst() != nil && ir.TypeDeclarationInstructions[id.Inst().Op()] {
				wr.addTypeIfNeeded(id.Inst(), needed)
			}
		}
	}
}

// neededTypes returns the type instructions that must be written in
// pretty mode.
func (wr *writer) neededTypes() map[*ir.Instruction]bool {
	needed := map[*ir.Instruction]bool{}
	for _, inst := range wr.module.Instructions() {
		if inst.TypeID() != nil {
			wr.addTypeIfNeeded(inst.TypeID().Inst(), needed)
		}
	}
	return needed
}

// writeSection writes a group of instructions, optionally preceded by a
// blank line.
func (wr *writer) writeSection(insts []*ir.Instruction, newline bool) {
	if len(insts) > 0 && newline {
		fmt.Fprintln(wr.out)
	}
	for _, inst := range insts {
		wr.writeInst(inst, "")
	}
}

// writeGlobals writes the global instructions, split into sections. In
// pretty mode the debug names are omitted (they are regenerated from
// the symbolic ids on input), decorations are printed inline, and only
// the types that cannot be pretty-printed are kept.
func (wr *writer) writeGlobals() error {
	globals := wr.module.Globals()
	wr.writeSection(globals.Capabilities(), false)
	wr.writeSection(globals.Extensions(), false)
	wr.writeSection(globals.MemoryModels(), false)
	wr.writeSection(globals.EntryPoints(), false)
	wr.writeSection(globals.ExecutionModes(), false)
	wr.writeSection(globals.ExtImports(), true)
	if wr.raw {
		wr.writeSection(globals.Strings(), true)
		wr.writeSection(globals.Names(), true)
		wr.writeSection(globals.Decorations(), true)
		wr.writeSection(globals.Types(), true)
		return nil
	}
	needed := wr.neededTypes()
	var typeInsts []*ir.Instruction
	for _, inst := range globals.Types() {
		if ir.TypeDeclarationInstructions[inst.Op()] && needed[inst] {
			typeInsts = append(typeInsts, inst)
		}
		if ir.ConstantInstructions[inst.Op()] || ir.SpecConstantInstructions[inst.Op()] {
			typeInsts = append(typeInsts, inst)
		}
	}
	wr.writeSection(typeInsts, true)
	var globalVars []*ir.Instruction
	for _, inst := range globals.Types() {
		if inst.Op() == "OpVariable" {
			globalVars = append(globalVars, inst)
		}
	}
	wr.writeSection(globalVars, true)
	return nil
}

// writeFunctionRaw writes one function in raw mode.
func (wr *writer) writeFunctionRaw(f *ir.Function) {
	fmt.Fprintln(wr.out)
	for _, inst := range f.Instructions() {
		indent := "  "
		switch inst.Op() {
		case "OpFunction", "OpLabel", "OpFunctionParameter", "OpFunctionEnd":
			indent = ""
		}
		wr.writeInst(inst, indent)
	}
}

// writeFunction writes one function in pretty-printed mode.
func (wr *writer) writeFunction(f *ir.Function) {
	fmt.Fprintln(wr.out)
	line := "define " + wr.typeName(f.Inst().TypeID()) + " " +
		wr.symbolName(f.Inst().ResultID()) + "("
	var params []string
	for _, inst := range f.Parameters() {
		params = append(params, wr.typeName(inst.TypeID())+" "+inst.ResultID().String())
	}
	line += strings.Join(params, ", ") + ") {"
	fmt.Fprintln(wr.out, line)

	for i, bb := range f.BasicBlocks() {
		if i > 0 {
			fmt.Fprintln(wr.out)
		}
		fmt.Fprintf(wr.out, "%s:\n", bb.Inst().ResultID())
		for _, inst := range bb.Insts() {
			wr.writeInst(inst, "  ")
		}
	}
	fmt.Fprintln(wr.out, "}")
}
