package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTypes creates a module with a few common types.
func newTestTypes(t *testing.T) (*Module, *Id, *Id, *Id) {
	t.Helper()
	m := NewModule()
	boolType, err := m.GetGlobalInst("OpTypeBool", nil, nil)
	require.NoError(t, err)
	u32Type, err := m.GetGlobalInst("OpTypeInt", nil,
		[]Operand{LiteralNumber(32), LiteralNumber(0)})
	require.NoError(t, err)
	f32Type, err := m.GetGlobalInst("OpTypeFloat", nil,
		[]Operand{LiteralNumber(32)})
	require.NoError(t, err)
	return m, boolType.ResultID(), u32Type.ResultID(), f32Type.ResultID()
}

func TestGetIdReturnsSameObject(t *testing.T) {
	m := NewModule()
	id1, err := m.GetId(4)
	require.NoError(t, err)
	id2, err := m.GetId(4)
	require.NoError(t, err)
	assert.Same(t, id1, id2)
	assert.Equal(t, uint32(5), m.Bound())

	_, err = m.GetId(0)
	assert.Error(t, err)
	_, err = m.GetId(0xffffffff)
	assert.Error(t, err)
}

func TestGetConstantIsInterned(t *testing.T) {
	m, boolType, u32Type, f32Type := newTestTypes(t)

	c1, err := m.GetConstant(u32Type, 42)
	require.NoError(t, err)
	c2, err := m.GetConstant(u32Type, 42)
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	b1, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	assert.Equal(t, "OpConstantTrue", b1.Op())

	f1, err := m.GetConstant(f32Type, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "OpConstant", f1.Op())
	assert.Equal(t, LiteralNumber(0x3f800000), f1.Operands()[0])
}

func TestGetConstant64BitSplitsWords(t *testing.T) {
	m := NewModule()
	u64Type, err := m.GetGlobalInst("OpTypeInt", nil,
		[]Operand{LiteralNumber(64), LiteralNumber(0)})
	require.NoError(t, err)

	c, err := m.GetConstant(u64Type.ResultID(), uint64(0x123456789abcdef0))
	require.NoError(t, err)
	assert.Equal(t, LiteralNumber(0x9abcdef0), c.Operands()[0])
	assert.Equal(t, LiteralNumber(0x12345678), c.Operands()[1])
}

func TestGetConstantClampsToWidth(t *testing.T) {
	m := NewModule()
	s8Type, err := m.GetGlobalInst("OpTypeInt", nil,
		[]Operand{LiteralNumber(8), LiteralNumber(1)})
	require.NoError(t, err)

	c, err := m.GetConstant(s8Type.ResultID(), -1)
	require.NoError(t, err)
	assert.Equal(t, LiteralNumber(0xff), c.Operands()[0])

	value, err := c.ValueSigned()
	require.NoError(t, err)
	assert.Equal(t, int64(-1), value)
	unsigned, err := c.ValueUnsigned()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xff), unsigned)
}

func TestGetConstantVectorBroadcast(t *testing.T) {
	m, _, u32Type, _ := newTestTypes(t)
	vecType, err := m.GetGlobalInst("OpTypeVector", nil,
		[]Operand{u32Type, LiteralNumber(3)})
	require.NoError(t, err)

	c, err := m.GetConstant(vecType.ResultID(), 7)
	require.NoError(t, err)
	assert.Equal(t, "OpConstantComposite", c.Op())
	require.Len(t, c.Operands(), 3)
	for _, operand := range c.Operands() {
		assert.Equal(t, c.Operands()[0], operand)
	}
	assert.True(t, c.IsConstantValue(7))
	assert.True(t, c.IsConstantValue([]ConstantValue{7, 7, 7}))
	assert.False(t, c.IsConstantValue([]ConstantValue{7, 7, 8}))
}

func TestUseDefSymmetry(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	trueInst, err := m.GetConstant(boolType, true)
	require.NoError(t, err)

	notInst, err := NewInst(m, "OpLogicalNot", boolType,
		[]Operand{trueInst.ResultID()})
	require.NoError(t, err)

	// Detached instructions have no use edges yet.
	assert.NotContains(t, trueInst.ResultID().Uses(), notInst)

	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)
	bb, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(bb)

	require.NoError(t, bb.AppendInst(notInst))
	assert.Contains(t, trueInst.ResultID().Uses(), notInst)
	assert.Contains(t, boolType.Uses(), notInst)

	require.NoError(t, notInst.Remove())
	assert.NotContains(t, trueInst.ResultID().Uses(), notInst)

	// The instruction can be re-inserted after a plain remove.
	require.NoError(t, bb.AppendInst(notInst))
	assert.Contains(t, trueInst.ResultID().Uses(), notInst)

	for _, inst := range m.Instructions() {
		for _, operand := range inst.Operands() {
			if id, ok := operand.(*Id); ok {
				assert.Contains(t, id.Uses(), inst)
			}
		}
	}
}

func TestReplaceUsesWith(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	trueInst, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	falseInst, err := m.GetConstant(boolType, false)
	require.NoError(t, err)

	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)
	bb, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(bb)
	notInst, err := NewInst(m, "OpLogicalNot", boolType,
		[]Operand{trueInst.ResultID()})
	require.NoError(t, err)
	require.NoError(t, bb.AppendInst(notInst))

	trueInst.ReplaceUsesWith(falseInst)
	assert.Empty(t, trueInst.Uses())
	assert.Equal(t, Operand(falseInst.ResultID()), notInst.Operands()[0])
	assert.Contains(t, falseInst.ResultID().Uses(), notInst)
}

func TestDoubleDefinitionFails(t *testing.T) {
	m := NewModule()
	id, err := m.GetId(7)
	require.NoError(t, err)
	_, err = NewInstWithResult(m, "OpTypeBool", nil, nil, id)
	require.NoError(t, err)
	_, err = NewInstWithResult(m, "OpTypeVoid", nil, nil, id)
	assert.Error(t, err)
}

func TestMisplacedInstructionFails(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)
	bb, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(bb)

	globalInst, err := NewInst(m, "OpTypeVoid", nil, nil)
	require.NoError(t, err)
	assert.Error(t, bb.AppendInst(globalInst))
}

func TestRenumberTempIds(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	trueInst, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	assert.True(t, trueInst.ResultID().IsTemp())

	notInst, err := NewInst(m, "OpLogicalNot", boolType,
		[]Operand{trueInst.ResultID()})
	require.NoError(t, err)
	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)
	bb, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(bb)
	require.NoError(t, bb.AppendInst(notInst))

	require.NoError(t, m.RenumberTempIds())
	for _, inst := range m.Instructions() {
		if inst.ResultID() != nil {
			assert.False(t, inst.ResultID().IsTemp(), "%s", inst)
		}
		if inst.TypeID() != nil {
			assert.False(t, inst.TypeID().IsTemp(), "%s", inst)
		}
		for _, operand := range inst.Operands() {
			if id, ok := operand.(*Id); ok {
				assert.False(t, id.IsTemp(), "%s", inst)
			}
		}
	}
	// The rewritten use edges still hold.
	newTrueID := trueInst.ResultID()
	assert.Contains(t, newTrueID.Uses(), notInst)
	assert.Equal(t, Operand(newTrueID), notInst.Operands()[0])
}

func TestDestroyCascadesDecorations(t *testing.T) {
	m, _, u32Type, _ := newTestTypes(t)
	c, err := m.GetConstant(u32Type, 1)
	require.NoError(t, err)

	decoration, err := NewInst(m, "OpDecorate", nil,
		[]Operand{c.ResultID(), EnumName("RelaxedPrecision")})
	require.NoError(t, err)
	require.NoError(t, m.InsertGlobalInst(decoration))
	require.Len(t, c.GetDecorations(), 1)

	id := c.ResultID()
	c.Destroy()
	assert.True(t, decoration.Destroyed())
	assert.Nil(t, id.Inst())
	assert.Empty(t, id.Uses())
}

func TestPhiOperations(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)

	bb1, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	bb2, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	merge, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(bb1)
	f.AppendBasicBlock(bb2)
	f.AppendBasicBlock(merge)

	trueInst, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	falseInst, err := m.GetConstant(boolType, false)
	require.NoError(t, err)

	phi, err := NewInst(m, "OpPhi", boolType, nil)
	require.NoError(t, err)
	require.NoError(t, merge.PrependInst(phi))
	phi.AddToPhi(trueInst, bb1.Inst())
	phi.AddToPhi(falseInst, bb2.Inst())
	require.Len(t, phi.Operands(), 4)
	assert.Contains(t, bb1.Inst().ResultID().Uses(), phi)

	phi.RemoveFromPhi(bb1.Inst().ResultID())
	require.Len(t, phi.Operands(), 2)
	assert.NotContains(t, bb1.Inst().ResultID().Uses(), phi)
	assert.NotContains(t, trueInst.ResultID().Uses(), phi)
	assert.Contains(t, falseInst.ResultID().Uses(), phi)
}

func TestBlockSuccessorsAndPredecessors(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	funcType, err := m.GetGlobalInst("OpTypeFunction", nil, []Operand{boolType})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)
	m.AppendFunction(f)

	entry, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	thenBB, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	elseBB, err := NewBasicBlock(m, nil)
	require.NoError(t, err)
	f.AppendBasicBlock(entry)
	f.AppendBasicBlock(thenBB)
	f.AppendBasicBlock(elseBB)

	cond, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	branch, err := NewInst(m, "OpBranchConditional", nil, []Operand{
		cond.ResultID(), thenBB.Inst().ResultID(), elseBB.Inst().ResultID(),
	})
	require.NoError(t, err)
	require.NoError(t, entry.AppendInst(branch))

	assert.Equal(t, []*BasicBlock{thenBB, elseBB}, entry.GetSuccessors())
	assert.Equal(t, []*BasicBlock{entry}, thenBB.Predecessors())
	assert.Equal(t, []*BasicBlock{entry}, elseBB.Predecessors())
}

func TestHasSideEffects(t *testing.T) {
	m, boolType, _, _ := newTestTypes(t)
	trueInst, err := m.GetConstant(boolType, true)
	require.NoError(t, err)
	assert.False(t, trueInst.HasSideEffects())

	notInst, err := NewInst(m, "OpLogicalNot", boolType,
		[]Operand{trueInst.ResultID()})
	require.NoError(t, err)
	assert.False(t, notInst.HasSideEffects())

	ret, err := NewInst(m, "OpReturn", nil, nil)
	require.NoError(t, err)
	assert.True(t, ret.HasSideEffects())
}

func TestExtInstMetadata(t *testing.T) {
	m, _, _, f32Type := newTestTypes(t)
	importInst, err := m.GetGlobalInst("OpExtInstImport", nil,
		[]Operand{LiteralString("GLSL.std.450")})
	require.NoError(t, err)
	x, err := m.GetConstant(f32Type, 1.5)
	require.NoError(t, err)
	y, err := m.GetConstant(f32Type, 2.5)
	require.NoError(t, err)

	// 40 is FMax: pure and commutative.
	fmax, err := NewInst(m, "OpExtInst", f32Type, []Operand{
		importInst.ResultID(), LiteralNumber(40), x.ResultID(), y.ResultID(),
	})
	require.NoError(t, err)
	assert.False(t, fmax.HasSideEffects())
	assert.True(t, fmax.IsCommutative())

	// An unknown instruction set is conservatively side-effecting.
	unknownImport, err := m.GetGlobalInst("OpExtInstImport", nil,
		[]Operand{LiteralString("Vendor.ext")})
	require.NoError(t, err)
	vendorInst, err := NewInst(m, "OpExtInst", f32Type, []Operand{
		unknownImport.ResultID(), LiteralNumber(1), x.ResultID(),
	})
	require.NoError(t, err)
	assert.True(t, vendorInst.HasSideEffects())
	assert.False(t, vendorInst.IsCommutative())
}

func TestGlobalBucketOrdering(t *testing.T) {
	m := NewModule()
	capability, err := NewInst(m, "OpCapability", nil, []Operand{EnumName("Shader")})
	require.NoError(t, err)
	require.NoError(t, m.InsertGlobalInst(capability))
	boolType, err := m.GetGlobalInst("OpTypeBool", nil, nil)
	require.NoError(t, err)
	memoryModel, err := NewInst(m, "OpMemoryModel", nil,
		[]Operand{EnumName("Logical"), EnumName("GLSL450")})
	require.NoError(t, err)
	require.NoError(t, m.InsertGlobalInst(memoryModel))

	insts := m.Globals().Instructions()
	require.Len(t, insts, 3)
	assert.Equal(t, "OpCapability", insts[0].Op())
	assert.Equal(t, "OpMemoryModel", insts[1].Op())
	assert.Equal(t, "OpTypeBool", insts[2].Op())
	assert.Equal(t, boolType, insts[2])

	// A body instruction never lands in a global bucket.
	label, err := NewInst(m, "OpNop", nil, nil)
	require.NoError(t, err)
	assert.Error(t, m.InsertGlobalInst(label))
}

func TestFunctionParameterTypeCheck(t *testing.T) {
	m, boolType, u32Type, _ := newTestTypes(t)
	funcType, err := m.GetGlobalInst("OpTypeFunction", nil,
		[]Operand{boolType, u32Type})
	require.NoError(t, err)
	f, err := NewFunction(m, MaskList{}, funcType.ResultID(), nil)
	require.NoError(t, err)

	wrong, err := NewInst(m, "OpFunctionParameter", boolType, nil)
	require.NoError(t, err)
	assert.Error(t, f.AppendParameter(wrong))

	right, err := NewInst(m, "OpFunctionParameter", u32Type, nil)
	require.NoError(t, err)
	assert.NoError(t, f.AppendParameter(right))

	extra, err := NewInst(m, "OpFunctionParameter", u32Type, nil)
	require.NoError(t, err)
	assert.Error(t, f.AppendParameter(extra))
}
