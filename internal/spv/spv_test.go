package spv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryFormatHasAnOpcode(t *testing.T) {
	for name := range Formats {
		_, ok := Opcode[name]
		assert.True(t, ok, "no opcode for %s", name)
	}
	for name := range Opcode {
		_, ok := Formats[name]
		assert.True(t, ok, "no format for %s", name)
	}
}

func TestOpNameIsInverseOfOpcode(t *testing.T) {
	for name, code := range Opcode {
		assert.Equal(t, name, OpName[code])
	}
	assert.Len(t, OpName, len(Opcode))
}

func TestEnumAndMaskKindsResolve(t *testing.T) {
	for name, format := range Formats {
		for _, kind := range format.Operands {
			switch kind {
			case KindId, KindLiteralNumber, KindLiteralString, KindVariableIds,
				KindVariableLiterals, KindVariableIdLiteralPair,
				KindVariableLiteralIdPair, KindOptionalId, KindOptionalLiteral,
				KindOptionalString, KindOptionalImage:
				continue
			}
			ok := IsEnumKind(kind) || IsMaskKind(kind)
			assert.True(t, ok, "%s: unresolvable operand kind %q", name, kind)
		}
	}
}

func TestVariadicKindsAreLast(t *testing.T) {
	// The codecs rely on variadic operand kinds terminating the format.
	for name, format := range Formats {
		for i, kind := range format.Operands {
			if i == len(format.Operands)-1 {
				continue
			}
			switch kind {
			case KindVariableIds, KindVariableLiterals,
				KindVariableIdLiteralPair, KindVariableLiteralIdPair:
				t.Errorf("%s: variadic %s is not last", name, kind)
			case KindOptionalId, KindOptionalLiteral, KindOptionalImage:
				t.Errorf("%s: optional %s is not last", name, kind)
			}
		}
		_ = name
	}
}

func TestMasksHaveZeroName(t *testing.T) {
	for kind, table := range Masks {
		found := false
		for _, value := range table {
			if value == 0 {
				found = true
			}
		}
		assert.True(t, found, "mask %s has no zero-valued name", kind)
	}
}

func TestExpandMask(t *testing.T) {
	names, ok := ExpandMask("FunctionControlMask", 0)
	require.True(t, ok)
	assert.Empty(t, names)

	names, ok = ExpandMask("FunctionControlMask", 1|4)
	require.True(t, ok)
	assert.Equal(t, []string{"Inline", "Pure"}, names)

	_, ok = ExpandMask("FunctionControlMask", 1<<30)
	assert.False(t, ok)
}

func TestEnumNameLookup(t *testing.T) {
	name, ok := EnumName("StorageClass", 7)
	require.True(t, ok)
	assert.Equal(t, "Function", name)

	_, ok = EnumName("StorageClass", 999)
	assert.False(t, ok)
}

func TestLookupExtInst(t *testing.T) {
	format, ok := LookupExtInst("GLSL.std.450", 40)
	require.True(t, ok)
	assert.Equal(t, "FMax", format.Name)
	assert.True(t, format.IsCommutative)
	assert.False(t, format.HasSideEffects)

	format, ok = LookupExtInst("OpenCL.std", 184)
	require.True(t, ok)
	assert.Equal(t, "printf", format.Name)
	assert.True(t, format.HasSideEffects)

	_, ok = LookupExtInst("Vendor.ext", 1)
	assert.False(t, ok)
}

func TestCoreOpcodeValues(t *testing.T) {
	// A few well-known values, as written in the binary.
	assert.Equal(t, uint32(54), Opcode["OpFunction"])
	assert.Equal(t, uint32(248), Opcode["OpLabel"])
	assert.Equal(t, uint32(249), Opcode["OpBranch"])
	assert.Equal(t, uint32(245), Opcode["OpPhi"])
	assert.Equal(t, uint32(43), Opcode["OpConstant"])
}
