package asm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirv/internal/asm"
	"spirv/internal/ir"
)

const header = `OpCapability Shader
OpMemoryModel Logical, GLSL450
OpEntryPoint Fragment, %main, "main"
`

func parse(t *testing.T, source string) *ir.Module {
	t.Helper()
	m, err := asm.ReadModule(strings.NewReader(source))
	require.NoError(t, err)
	return m
}

func write(t *testing.T, m *ir.Module, raw bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, asm.WriteModule(&buf, m, raw))
	return buf.String()
}

func TestSymbolicIdsMaterializeNames(t *testing.T) {
	m := parse(t, header+`define void %main() {
%entry:
  OpReturn
}
`)
	var names []string
	for _, inst := range m.Globals().Names() {
		require.Equal(t, "OpName", inst.Op())
		names = append(names, string(inst.Operands()[1].(ir.LiteralString)))
	}
	assert.Contains(t, names, "main")
	assert.Contains(t, names, "entry")
}

func TestTypeShorthands(t *testing.T) {
	m := parse(t, header+`define void %main(u32 %a, s64 %b, f32 %c, bool %d, <4 x f32> %e) {
%entry:
  OpReturn
}
`)
	var ops []string
	for _, inst := range m.Globals().Types() {
		ops = append(ops, inst.Op())
	}
	assert.Contains(t, ops, "OpTypeInt")
	assert.Contains(t, ops, "OpTypeFloat")
	assert.Contains(t, ops, "OpTypeBool")
	assert.Contains(t, ops, "OpTypeVector")

	params := m.Functions()[0].Parameters()
	require.Len(t, params, 5)
	assert.Equal(t, "OpTypeInt", params[0].TypeID().Inst().Op())
	assert.Equal(t, []ir.Operand{ir.LiteralNumber(32), ir.LiteralNumber(0)},
		params[0].TypeID().Inst().Operands())
	assert.Equal(t, []ir.Operand{ir.LiteralNumber(64), ir.LiteralNumber(1)},
		params[1].TypeID().Inst().Operands())
}

func TestIntegerLiteralForms(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%a = OpConstant %u32t 0x10
%b = OpConstant %u32t 0b101
%c = OpConstant %u32t 0xfffffffe
%s32t = OpTypeInt 32, 1
define %s32t %main(%s32t %x) {
%entry:
  %r = OpIAdd %s32t %x, -2
  OpReturnValue %r
}
`)
	var found int
	for _, inst := range m.Globals().Types() {
		if inst.Op() != "OpConstant" {
			continue
		}
		found++
		switch inst.Operands()[0] {
		case ir.Operand(ir.LiteralNumber(16)), ir.Operand(ir.LiteralNumber(5)),
			ir.Operand(ir.LiteralNumber(0xfffffffe)):
		default:
			t.Errorf("unexpected constant %s", inst)
		}
	}
	assert.Equal(t, 4, found)

	// The signed literal in id position becomes an interned constant.
	add := m.Functions()[0].BasicBlocks()[0].Insts()[0]
	assert.True(t, add.Operands()[1].(*ir.Id).Inst().IsConstantValue(-2))
}

func TestInlineDecorations(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%x = OpConstant %u32t RelaxedPrecision 7
define void %main() {
%entry:
  OpReturn
}
`)
	var constant *ir.Instruction
	for _, inst := range m.Globals().Types() {
		if inst.Op() == "OpConstant" {
			constant = inst
		}
	}
	require.NotNil(t, constant)
	decorations := constant.GetDecorations()
	require.Len(t, decorations, 1)
	assert.Equal(t, ir.Operand(ir.EnumName("RelaxedPrecision")),
		decorations[0].Operands()[1])
}

func TestVectorConstantLiteral(t *testing.T) {
	m := parse(t, header+`define <2 x u32> %main(<2 x u32> %v) {
%entry:
  %r = OpIAdd <2 x u32> (1, 2), %v
  OpReturnValue %r
}
`)
	entry := m.Functions()[0].BasicBlocks()[0]
	add := entry.Insts()[0]
	require.Equal(t, "OpIAdd", add.Op())
	composite := add.Operands()[0].(*ir.Id).Inst()
	require.Equal(t, "OpConstantComposite", composite.Op())
	assert.True(t, composite.IsConstantValue([]ir.ConstantValue{1, 2}))
}

func TestExtInstByName(t *testing.T) {
	m := parse(t, header+`define f32 %main(f32 %x, f32 %y) {
%entry:
  %r = OpExtInst f32 "GLSL.std.450", FMax, %x, %y
  OpReturnValue %r
}
`)
	entry := m.Functions()[0].BasicBlocks()[0]
	ext := entry.Insts()[0]
	require.Equal(t, "OpExtInst", ext.Op())
	assert.Equal(t, ir.Operand(ir.LiteralNumber(40)), ext.Operands()[1])
	assert.True(t, ext.IsCommutative())
	assert.False(t, ext.HasSideEffects())
}

func TestUsedButNotDefinedIsVerificationError(t *testing.T) {
	_, err := asm.ReadModule(strings.NewReader(header + `define void %main() {
%entry:
  OpBranch %nowhere
}
`))
	require.Error(t, err)
	verr, ok := err.(*asm.VerificationError)
	require.True(t, ok, "got %T: %v", err, err)
	// The OpBranch line is blamed, not the materialized OpName.
	assert.Equal(t, 6, verr.Line)
	assert.Contains(t, verr.Msg, "%nowhere used but not defined")
	assert.Contains(t, err.Error(), "error:")
}

func TestAlreadyDefinedIsParseError(t *testing.T) {
	_, err := asm.ReadModule(strings.NewReader(`%u32t = OpTypeInt 32, 0
%u32t = OpTypeInt 32, 0
`))
	require.Error(t, err)
	perr, ok := err.(*asm.ParseError)
	require.True(t, ok, "got %T: %v", err, err)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Msg, "already defined")
}

func TestUnknownOperationIsParseError(t *testing.T) {
	_, err := asm.ReadModule(strings.NewReader("OpBogus\n"))
	require.Error(t, err)
	perr, ok := err.(*asm.ParseError)
	require.True(t, ok)
	assert.Equal(t, 1, perr.Line)
}

func TestLabelOutsideFunctionIsParseError(t *testing.T) {
	_, err := asm.ReadModule(strings.NewReader("%bb:\n  OpReturn\n"))
	require.Error(t, err)
}

func TestMissingTerminatorIsParseError(t *testing.T) {
	_, err := asm.ReadModule(strings.NewReader(header + `define void %main() {
%entry:
  %x = OpUndef bool
}
`))
	require.Error(t, err)
}

const roundTripSource = header + `%u32t = OpTypeInt 32, 0
%seven = OpConstant %u32t 7
define %u32t %main(%u32t %x) {
%entry:
  %sum = OpIAdd %u32t %x, %seven
  OpReturnValue %sum
}
`

func TestPrettyRoundTrip(t *testing.T) {
	m := parse(t, roundTripSource)
	text1 := write(t, m, false)

	m2, err := asm.ReadModule(strings.NewReader(text1))
	require.NoError(t, err, "rewritten text:\n%s", text1)
	text2 := write(t, m2, false)
	assert.Equal(t, text1, text2)
}

func TestRawRoundTrip(t *testing.T) {
	m := parse(t, roundTripSource)
	text1 := write(t, m, true)

	m2, err := asm.ReadModule(strings.NewReader(text1))
	require.NoError(t, err, "rewritten text:\n%s", text1)
	text2 := write(t, m2, true)
	assert.Equal(t, text1, text2)
}

func TestPrettyWriterPrunesTypesAndNames(t *testing.T) {
	m := parse(t, roundTripSource)
	text := write(t, m, false)

	// u32 pretty-prints, so no OpTypeInt line survives, and names are
	// regenerated from the symbolic ids rather than written out.
	assert.NotContains(t, text, "OpTypeInt")
	assert.NotContains(t, text, "OpName")
	assert.Contains(t, text, "define u32 %main(u32 ")
	assert.Contains(t, text, "OpConstant u32 7")
}

func TestRawWriterKeepsEverything(t *testing.T) {
	m := parse(t, roundTripSource)
	text := write(t, m, true)

	assert.Contains(t, text, "OpTypeInt")
	assert.Contains(t, text, "OpName")
	assert.Contains(t, text, "OpFunction")
	assert.Contains(t, text, "OpFunctionEnd")
}
