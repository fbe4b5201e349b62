package passes_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirv/internal/asm"
	"spirv/internal/ir"
	"spirv/internal/passes"
)

// parse builds a module from assembly text.
func parse(t *testing.T, source string) *ir.Module {
	t.Helper()
	m, err := asm.ReadModule(strings.NewReader(source))
	require.NoError(t, err)
	return m
}

// bodyOps returns the opcode names of a basic block's body.
func bodyOps(bb *ir.BasicBlock) []string {
	var ops []string
	for _, inst := range bb.Insts() {
		ops = append(ops, inst.Op())
	}
	return ops
}

const header = `OpCapability Shader
OpMemoryModel Logical, GLSL450
OpEntryPoint Fragment, %main, "main"
`

func TestSimplifyCFGConstantBranchFolding(t *testing.T) {
	m := parse(t, header+`%true = OpConstantTrue bool
define void %main() {
%entry:
  OpSelectionMerge %merge, None
  OpBranchConditional %true, %then, %else
%then:
  OpBranch %merge
%else:
  OpBranch %merge
%merge:
  OpReturn
}
`)
	require.NoError(t, passes.SimplifyCFG(m))

	f := m.Functions()[0]
	require.Len(t, f.BasicBlocks(), 1)
	entry := f.BasicBlocks()[0]
	// The conditional branch is folded, the merge instruction is gone,
	// and the reachable blocks collapse into the entry block.
	assert.Equal(t, []string{"OpReturn"}, bodyOps(entry))
}

func TestSimplifyCFGSameTargetConditional(t *testing.T) {
	m := parse(t, header+`define void %main(bool %c) {
%entry:
  OpBranchConditional %c, %next, %next
%next:
  OpReturn
}
`)
	require.NoError(t, passes.SimplifyCFG(m))

	f := m.Functions()[0]
	require.Len(t, f.BasicBlocks(), 1)
	assert.Equal(t, []string{"OpReturn"}, bodyOps(f.BasicBlocks()[0]))
}

func TestSimplifyCFGSwitchAllSameTargets(t *testing.T) {
	m := parse(t, header+`define void %main(u32 %x) {
%entry:
  OpSwitch %x, %next, 1, %next, 2, %next
%next:
  OpReturn
}
`)
	require.NoError(t, passes.SimplifyCFG(m))

	f := m.Functions()[0]
	require.Len(t, f.BasicBlocks(), 1)
	assert.Equal(t, []string{"OpReturn"}, bodyOps(f.BasicBlocks()[0]))
}

func TestSimplifyCFGKeepsMergeTargetDistinct(t *testing.T) {
	m := parse(t, header+`define void %main(bool %c) {
%entry:
  OpSelectionMerge %merge, None
  OpBranchConditional %c, %then, %merge
%then:
  OpBranch %merge
%merge:
  OpReturn
}
`)
	require.NoError(t, passes.SimplifyCFG(m))

	// Nothing is foldable and the merge target must stay distinct.
	f := m.Functions()[0]
	assert.Len(t, f.BasicBlocks(), 3)
}

func TestSimplifyCFGPhiCollapse(t *testing.T) {
	m := parse(t, header+`%true = OpConstantTrue bool
define bool %main(bool %c) {
%entry:
  OpBranchConditional %c, %then, %else
%then:
  OpBranch %merge
%else:
  OpBranch %merge
%merge:
  %phi = OpPhi bool %true, %then, %true, %else
  OpReturnValue %phi
}
`)
	require.NoError(t, passes.SimplifyCFG(m))

	f := m.Functions()[0]
	merge := f.BasicBlocks()[len(f.BasicBlocks())-1]
	ret := merge.Insts()[len(merge.Insts())-1]
	require.Equal(t, "OpReturnValue", ret.Op())
	// The phi's uses are redirected to the common value; the dead phi
	// itself is left for dead_inst_elim.
	retOperand := ret.Operands()[0].(*ir.Id)
	assert.Equal(t, "OpConstantTrue", retOperand.Inst().Op())
}

func TestMem2RegSingleAssignment(t *testing.T) {
	m := parse(t, header+`%f32 = OpTypeFloat 32
%ptr = OpTypePointer Function, %f32
%one = OpConstant %f32 1065353216
define %f32 %main() {
%entry:
  %p = OpVariable %ptr Function
  OpStore %p, %one
  %v = OpLoad %f32 %p
  OpReturnValue %v
}
`)
	require.NoError(t, passes.Mem2Reg(m))
	require.NoError(t, passes.DeadInstElim(m))

	f := m.Functions()[0]
	require.Len(t, f.BasicBlocks(), 1)
	entry := f.BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	returned := entry.Insts()[0].Operands()[0].(*ir.Id)
	assert.Equal(t, "OpConstant", returned.Inst().Op())
}

func TestMem2RegInsertsPhiAtJoin(t *testing.T) {
	m := parse(t, header+`%f32 = OpTypeFloat 32
%ptr = OpTypePointer Function, %f32
%one = OpConstant %f32 1065353216
%two = OpConstant %f32 1073741824
define %f32 %main(bool %c) {
%entry:
  %p = OpVariable %ptr Function
  OpBranchConditional %c, %then, %else
%then:
  OpStore %p, %one
  OpBranch %merge
%else:
  OpStore %p, %two
  OpBranch %merge
%merge:
  %v = OpLoad %f32 %p
  OpReturnValue %v
}
`)
	require.NoError(t, passes.Mem2Reg(m))

	f := m.Functions()[0]
	merge := f.BasicBlocks()[3]
	require.Equal(t, "OpPhi", merge.Insts()[0].Op())
	phi := merge.Insts()[0]
	require.Len(t, phi.Operands(), 4)
	ret := merge.Insts()[len(merge.Insts())-1]
	assert.Equal(t, ir.Operand(phi.ResultID()), ret.Operands()[0])

	// No loads or stores of the promoted variable remain.
	for _, inst := range f.Instructions() {
		assert.NotEqual(t, "OpLoad", inst.Op())
		assert.NotEqual(t, "OpStore", inst.Op())
		assert.NotEqual(t, "OpVariable", inst.Op())
	}
}

func TestMem2RegReadBeforeWriteGetsUndef(t *testing.T) {
	m := parse(t, header+`%f32 = OpTypeFloat 32
%ptr = OpTypePointer Function, %f32
define %f32 %main() {
%entry:
  %p = OpVariable %ptr Function
  %v = OpLoad %f32 %p
  OpReturnValue %v
}
`)
	require.NoError(t, passes.Mem2Reg(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpUndef", "OpReturnValue"}, bodyOps(entry))
}

func TestMem2RegSkipsEscapedVariable(t *testing.T) {
	m := parse(t, header+`%f32 = OpTypeFloat 32
%ptr = OpTypePointer Function, %f32
%u32t = OpTypeInt 32, 0
%zero = OpConstant %u32t 0
define %f32 %main() {
%entry:
  %p = OpVariable %ptr Function
  %q = OpAccessChain %ptr %p, %zero
  %v = OpLoad %f32 %q
  OpReturnValue %v
}
`)
	require.NoError(t, passes.Mem2Reg(m))

	ops := bodyOps(m.Functions()[0].BasicBlocks()[0])
	assert.Contains(t, ops, "OpVariable")
	assert.Contains(t, ops, "OpLoad")
}

func TestDeadFuncElim(t *testing.T) {
	m := parse(t, header+`define void %main() {
%entry:
  OpReturn
}
define void %helper() {
%entry2:
  OpReturn
}
`)
	require.Len(t, m.Functions(), 2)
	require.NoError(t, passes.DeadFuncElim(m))

	require.Len(t, m.Functions(), 1)
	entryPoint := m.Globals().EntryPoints()[0]
	assert.Equal(t, ir.Operand(m.Functions()[0].Inst().ResultID()),
		entryPoint.Operands()[1])
}

func TestDeadFuncElimKeepsCallees(t *testing.T) {
	m := parse(t, header+`%void = OpTypeVoid
define %void %main() {
%entry:
  %r = OpFunctionCall %void %helper
  OpReturn
}
define %void %helper() {
%entry2:
  OpReturn
}
define %void %unused() {
%entry3:
  OpReturn
}
`)
	require.Len(t, m.Functions(), 3)
	require.NoError(t, passes.DeadFuncElim(m))
	assert.Len(t, m.Functions(), 2)
}

func TestDeadInstElimRemovesUnused(t *testing.T) {
	m := parse(t, header+`define bool %main(bool %a) {
%entry:
  %dead = OpLogicalNot bool %a
  OpReturnValue %a
}
`)
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	assert.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
}

func TestDeadInstElimSweepsOrphanedDebug(t *testing.T) {
	m := parse(t, header+`define bool %main(bool %a) {
%entry:
  %dead = OpLogicalNot bool %a
  OpReturnValue %a
}
`)
	// %dead carries a materialized OpName; destroying the instruction
	// destroys that debug instruction with it, so no name is left
	// pointing at an undefined id, also after a second run.
	require.NoError(t, passes.DeadInstElim(m))
	require.NoError(t, passes.DeadInstElim(m))
	for _, inst := range m.Globals().Names() {
		if inst.Destroyed() {
			continue
		}
		target := inst.Operands()[0].(*ir.Id)
		assert.NotNil(t, target.Inst(), "dangling %s", inst)
	}
}

func TestDeadInstElimPhiIteration(t *testing.T) {
	m := parse(t, header+`define void %main(bool %c) {
%entry:
  OpBranch %loop
%loop:
  %phi = OpPhi bool %c, %entry, %y, %latch
  OpBranch %latch
%latch:
  %y = OpLogicalNot bool %c
  OpBranchConditional %c, %loop, %exit
%exit:
  OpReturn
}
`)
	require.NoError(t, passes.DeadInstElim(m))

	// The reverse walk destroys the unused phi after it has already
	// passed %y in the later block, so the sweep must run again to pick
	// %y up too.
	for _, f := range m.Functions() {
		for _, inst := range f.Instructions() {
			assert.NotEqual(t, "OpPhi", inst.Op())
			assert.NotEqual(t, "OpLogicalNot", inst.Op())
		}
	}
}

func TestInstCombineShuffleIdentity(t *testing.T) {
	m := parse(t, header+`define <4 x f32> %main(<4 x f32> %v) {
%entry:
  %s = OpVectorShuffle <4 x f32> %v, %v, 0, 1, 2, 3
  OpReturnValue %s
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	f := m.Functions()[0]
	entry := f.BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	param := f.Parameters()[0]
	assert.Equal(t, ir.Operand(param.ResultID()), entry.Insts()[0].Operands()[0])
}

func TestInstCombineConstructToShuffle(t *testing.T) {
	m := parse(t, header+`define <3 x f32> %main(<4 x f32> %v) {
%entry:
  %e0 = OpCompositeExtract f32 %v, 0
  %e1 = OpCompositeExtract f32 %v, 1
  %e2 = OpCompositeExtract f32 %v, 2
  %c = OpCompositeConstruct <3 x f32> %e0, %e1, %e2
  OpReturnValue %c
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpVectorShuffle", "OpReturnValue"}, bodyOps(entry))
	shuffle := entry.Insts()[0]
	param := m.Functions()[0].Parameters()[0]
	assert.Equal(t, ir.Operand(param.ResultID()), shuffle.Operands()[0])
	assert.Equal(t, ir.Operand(param.ResultID()), shuffle.Operands()[1])
	assert.Equal(t, []ir.Operand{
		ir.LiteralNumber(0), ir.LiteralNumber(1), ir.LiteralNumber(2),
	}, shuffle.Operands()[2:])
}

func TestInstCombineDeMorgan(t *testing.T) {
	m := parse(t, header+`define bool %main(bool %a, bool %b) {
%entry:
  %na = OpLogicalNot bool %a
  %nb = OpLogicalNot bool %b
  %and = OpLogicalAnd bool %na, %nb
  OpReturnValue %and
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpLogicalOr", "OpLogicalNot", "OpReturnValue"},
		bodyOps(entry))
	orInst := entry.Insts()[0]
	params := m.Functions()[0].Parameters()
	assert.Equal(t, ir.Operand(params[0].ResultID()), orInst.Operands()[0])
	assert.Equal(t, ir.Operand(params[1].ResultID()), orInst.Operands()[1])
}

func TestInstCombineAlgebraicIdentities(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%zero = OpConstant %u32t 0
define %u32t %main(%u32t %x) {
%entry:
  %a = OpIAdd %u32t %x, %zero
  OpReturnValue %a
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	param := m.Functions()[0].Parameters()[0]
	assert.Equal(t, ir.Operand(param.ResultID()), entry.Insts()[0].Operands()[0])
}

func TestInstCombineCanonicalizesConstantFirst(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%zero = OpConstant %u32t 0
define %u32t %main(%u32t %x) {
%entry:
  %a = OpIAdd %u32t %zero, %x
  OpReturnValue %a
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	// The swap puts the constant second, and x + 0 then folds to x.
	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	param := m.Functions()[0].Parameters()[0]
	assert.Equal(t, ir.Operand(param.ResultID()), entry.Insts()[0].Operands()[0])
}

func TestInstCombineMulByMinusOne(t *testing.T) {
	m := parse(t, header+`%s32t = OpTypeInt 32, 1
%minusone = OpConstant %s32t 4294967295
define %s32t %main(%s32t %x) {
%entry:
  %a = OpIMul %s32t %x, %minusone
  OpReturnValue %a
}
`)
	require.NoError(t, passes.InstCombine(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpSNegate", "OpReturnValue"}, bodyOps(entry))
}

func TestConstPropLogical(t *testing.T) {
	m := parse(t, header+`%true = OpConstantTrue bool
%false = OpConstantFalse bool
define bool %main() {
%entry:
  %r = OpLogicalAnd bool %true, %false
  OpReturnValue %r
}
`)
	require.NoError(t, passes.ConstProp(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	returned := entry.Insts()[0].Operands()[0].(*ir.Id)
	assert.Equal(t, "OpConstantFalse", returned.Inst().Op())
}

func TestConstPropCompositeExtract(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%v2 = OpTypeVector %u32t, 2
%seven = OpConstant %u32t 7
%nine = OpConstant %u32t 9
%c = OpConstantComposite %v2 %seven, %nine
define %u32t %main() {
%entry:
  %e = OpCompositeExtract %u32t %c, 1
  OpReturnValue %e
}
`)
	require.NoError(t, passes.ConstProp(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	returned := entry.Insts()[0].Operands()[0].(*ir.Id)
	assert.True(t, returned.Inst().IsConstantValue(9))
}

func TestConstPropShuffle(t *testing.T) {
	m := parse(t, header+`%u32t = OpTypeInt 32, 0
%v2 = OpTypeVector %u32t, 2
%c1 = OpConstant %u32t 1
%c2 = OpConstant %u32t 2
%c3 = OpConstant %u32t 3
%c4 = OpConstant %u32t 4
%a = OpConstantComposite %v2 %c1, %c2
%b = OpConstantComposite %v2 %c3, %c4
define %v2 %main() {
%entry:
  %s = OpVectorShuffle %v2 %a, %b, 1, 2
  OpReturnValue %s
}
`)
	require.NoError(t, passes.ConstProp(m))
	require.NoError(t, passes.DeadInstElim(m))

	entry := m.Functions()[0].BasicBlocks()[0]
	require.Equal(t, []string{"OpReturnValue"}, bodyOps(entry))
	returned := entry.Insts()[0].Operands()[0].(*ir.Id)
	assert.True(t, returned.Inst().IsConstantValue([]ir.ConstantValue{2, 3}))
}

func TestOptimizeIsIdempotent(t *testing.T) {
	source := header + `%f32 = OpTypeFloat 32
%ptr = OpTypePointer Function, %f32
%one = OpConstant %f32 1065353216
%true = OpConstantTrue bool
define %f32 %main() {
%entry:
  %p = OpVariable %ptr Function
  OpStore %p, %one
  OpSelectionMerge %merge, None
  OpBranchConditional %true, %then, %else
%then:
  OpBranch %merge
%else:
  OpBranch %merge
%merge:
  %v = OpLoad %f32 %p
  OpReturnValue %v
}
`
	m := parse(t, source)
	require.NoError(t, passes.Optimize(m))
	once := moduleOps(m)
	require.NoError(t, passes.Optimize(m))
	assert.Equal(t, once, moduleOps(m))
}

// moduleOps summarizes the module's instruction opcodes for comparing
// module shapes.
func moduleOps(m *ir.Module) []string {
	var ops []string
	for _, inst := range m.Instructions() {
		ops = append(ops, inst.Op())
	}
	return ops
}
