package binary_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spirv/internal/asm"
	spvbinary "spirv/internal/binary"
	"spirv/internal/ir"
	"spirv/internal/spv"
)

const source = `OpCapability Shader
OpMemoryModel Logical, GLSL450
OpEntryPoint Fragment, %main, "main"
%u32t = OpTypeInt 32, 0
%seven = OpConstant %u32t 7
define %u32t %main(%u32t %x) {
%entry:
  %sum = OpIAdd %u32t %x, %seven
  OpReturnValue %sum
}
`

func buildModule(t *testing.T) *ir.Module {
	t.Helper()
	m, err := asm.ReadModule(strings.NewReader(source))
	require.NoError(t, err)
	return m
}

func writeBinary(t *testing.T, m *ir.Module) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, spvbinary.WriteModule(&buf, m))
	return buf.Bytes()
}

func TestHeader(t *testing.T) {
	data := writeBinary(t, buildModule(t))
	require.GreaterOrEqual(t, len(data), 20)
	assert.Equal(t, uint32(spv.Magic), binary.LittleEndian.Uint32(data[0:]))
	assert.Equal(t, uint32(spv.Version), binary.LittleEndian.Uint32(data[4:]))
	assert.Equal(t, uint32(spv.GeneratorMagic), binary.LittleEndian.Uint32(data[8:]))
	assert.NotZero(t, binary.LittleEndian.Uint32(data[12:]))
	assert.Zero(t, binary.LittleEndian.Uint32(data[16:]))
}

func TestRoundTrip(t *testing.T) {
	data := writeBinary(t, buildModule(t))

	m, err := spvbinary.ReadModule(bytes.NewReader(data))
	require.NoError(t, err)
	again := writeBinary(t, m)
	assert.Equal(t, data, again)
}

func TestRoundTripPreservesStructure(t *testing.T) {
	data := writeBinary(t, buildModule(t))

	m, err := spvbinary.ReadModule(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, m.Functions(), 1)
	f := m.Functions()[0]
	require.Len(t, f.Parameters(), 1)
	require.Len(t, f.BasicBlocks(), 1)
	assert.Equal(t, "OpIAdd", f.BasicBlocks()[0].Insts()[0].Op())
	assert.Equal(t, "OpReturnValue", f.BasicBlocks()[0].Insts()[1].Op())

	// The use-def web is rebuilt by the reader.
	add := f.BasicBlocks()[0].Insts()[0]
	for _, operand := range add.Operands() {
		assert.Contains(t, operand.(*ir.Id).Uses(), add)
	}
}

func TestByteSwappedInput(t *testing.T) {
	data := writeBinary(t, buildModule(t))

	swapped := make([]byte, len(data))
	for i := 0; i < len(data); i += 4 {
		swapped[i] = data[i+3]
		swapped[i+1] = data[i+2]
		swapped[i+2] = data[i+1]
		swapped[i+3] = data[i]
	}
	m, err := spvbinary.ReadModule(bytes.NewReader(swapped))
	require.NoError(t, err)
	assert.Equal(t, data, writeBinary(t, m))
}

func TestLiteralStringPadding(t *testing.T) {
	m := ir.NewModule()
	importInst, err := m.GetGlobalInst("OpExtInstImport", nil,
		[]ir.Operand{ir.LiteralString("GLSL.std.450")})
	require.NoError(t, err)
	require.NotNil(t, importInst)

	data := writeBinary(t, m)
	// Header followed by the import: word count 1 + result + 4 words of
	// string ("GLSL.std.450" is 12 bytes, plus NUL padding to 16).
	require.Len(t, data, 20+4*6)
	first := binary.LittleEndian.Uint32(data[20:])
	assert.Equal(t, uint32(6)<<16|spv.Opcode["OpExtInstImport"], first)
	assert.Equal(t, byte('G'), data[28])
	assert.Zero(t, data[28+12])

	m2, err := spvbinary.ReadModule(bytes.NewReader(data))
	require.NoError(t, err)
	back := m2.Globals().ExtImports()[0]
	assert.Equal(t, ir.Operand(ir.LiteralString("GLSL.std.450")), back.Operands()[0])
}

func TestTruncatedFile(t *testing.T) {
	data := writeBinary(t, buildModule(t))

	_, err := spvbinary.ReadModule(bytes.NewReader(data[:8]))
	assert.Error(t, err)

	_, err = spvbinary.ReadModule(bytes.NewReader(data[:len(data)-4]))
	assert.Error(t, err)

	_, err = spvbinary.ReadModule(bytes.NewReader(data[:len(data)-1]))
	assert.Error(t, err)
}

func TestBadMagicAndVersion(t *testing.T) {
	data := writeBinary(t, buildModule(t))

	bad := append([]byte{}, data...)
	bad[0] = 0x42
	bad[3] = 0x42
	_, err := spvbinary.ReadModule(bytes.NewReader(bad))
	assert.Error(t, err)

	bad = append([]byte{}, data...)
	binary.LittleEndian.PutUint32(bad[4:], 0x00990000)
	_, err = spvbinary.ReadModule(bytes.NewReader(bad))
	assert.Error(t, err)
}
