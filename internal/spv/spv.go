// Package spv holds the static SPIR-V tables: opcode numbers, enumeration
// and mask values, per-opcode operand formats, and the extended instruction
// sets. Everything in here is data; the IR and the codecs interpret it.
package spv

import "sort"

const (
	// Magic is the first word of every SPIR-V binary.
	Magic = 0x07230203
	// Version is the only binary version this tool reads and writes.
	Version = 0x00010000
	// GeneratorMagic identifies the producer in the binary header.
	GeneratorMagic = 0
)

// Opcode maps operation names to their binary opcode.
var Opcode = map[string]uint32{
	"OpNop":                          0,
	"OpUndef":                        1,
	"OpSourceContinued":              2,
	"OpSource":                       3,
	"OpSourceExtension":              4,
	"OpName":                         5,
	"OpMemberName":                   6,
	"OpString":                       7,
	"OpLine":                         8,
	"OpExtension":                    10,
	"OpExtInstImport":                11,
	"OpExtInst":                      12,
	"OpMemoryModel":                  14,
	"OpEntryPoint":                   15,
	"OpExecutionMode":                16,
	"OpCapability":                   17,
	"OpTypeVoid":                     19,
	"OpTypeBool":                     20,
	"OpTypeInt":                      21,
	"OpTypeFloat":                    22,
	"OpTypeVector":                   23,
	"OpTypeMatrix":                   24,
	"OpTypeImage":                    25,
	"OpTypeSampler":                  26,
	"OpTypeSampledImage":             27,
	"OpTypeArray":                    28,
	"OpTypeRuntimeArray":             29,
	"OpTypeStruct":                   30,
	"OpTypeOpaque":                   31,
	"OpTypePointer":                  32,
	"OpTypeFunction":                 33,
	"OpTypeEvent":                    34,
	"OpTypeDeviceEvent":              35,
	"OpTypeReserveId":                36,
	"OpTypeQueue":                    37,
	"OpTypePipe":                     38,
	"OpConstantTrue":                 41,
	"OpConstantFalse":                42,
	"OpConstant":                     43,
	"OpConstantComposite":            44,
	"OpConstantSampler":              45,
	"OpConstantNull":                 46,
	"OpSpecConstantTrue":             48,
	"OpSpecConstantFalse":            49,
	"OpSpecConstant":                 50,
	"OpSpecConstantComposite":        51,
	"OpSpecConstantOp":               52,
	"OpFunction":                     54,
	"OpFunctionParameter":            55,
	"OpFunctionEnd":                  56,
	"OpFunctionCall":                 57,
	"OpVariable":                     59,
	"OpImageTexelPointer":            60,
	"OpLoad":                         61,
	"OpStore":                        62,
	"OpCopyMemory":                   63,
	"OpCopyMemorySized":              64,
	"OpAccessChain":                  65,
	"OpInBoundsAccessChain":          66,
	"OpPtrAccessChain":               67,
	"OpArrayLength":                  68,
	"OpGenericPtrMemSemantics":       69,
	"OpInBoundsPtrAccessChain":       70,
	"OpDecorate":                     71,
	"OpMemberDecorate":               72,
	"OpDecorationGroup":              73,
	"OpGroupDecorate":                74,
	"OpGroupMemberDecorate":          75,
	"OpVectorExtractDynamic":         77,
	"OpVectorInsertDynamic":          78,
	"OpVectorShuffle":                79,
	"OpCompositeConstruct":           80,
	"OpCompositeExtract":             81,
	"OpCompositeInsert":              82,
	"OpCopyObject":                   83,
	"OpTranspose":                    84,
	"OpSampledImage":                 86,
	"OpImageSampleImplicitLod":       87,
	"OpImageSampleExplicitLod":       88,
	"OpConvertFToU":                  109,
	"OpConvertFToS":                  110,
	"OpConvertSToF":                  111,
	"OpConvertUToF":                  112,
	"OpUConvert":                     113,
	"OpSConvert":                     114,
	"OpFConvert":                     115,
	"OpQuantizeToF16":                116,
	"OpBitcast":                      124,
	"OpSNegate":                      126,
	"OpFNegate":                      127,
	"OpIAdd":                         128,
	"OpFAdd":                         129,
	"OpISub":                         130,
	"OpFSub":                         131,
	"OpIMul":                         132,
	"OpFMul":                         133,
	"OpUDiv":                         134,
	"OpSDiv":                         135,
	"OpFDiv":                         136,
	"OpUMod":                         137,
	"OpSRem":                         138,
	"OpSMod":                         139,
	"OpFRem":                         140,
	"OpFMod":                         141,
	"OpVectorTimesScalar":            142,
	"OpMatrixTimesScalar":            143,
	"OpVectorTimesMatrix":            144,
	"OpMatrixTimesVector":            145,
	"OpMatrixTimesMatrix":            146,
	"OpOuterProduct":                 147,
	"OpDot":                          148,
	"OpAny":                          154,
	"OpAll":                          155,
	"OpIsNan":                        156,
	"OpIsInf":                        157,
	"OpLogicalEqual":                 164,
	"OpLogicalNotEqual":              165,
	"OpLogicalOr":                    166,
	"OpLogicalAnd":                   167,
	"OpLogicalNot":                   168,
	"OpSelect":                       169,
	"OpIEqual":                       170,
	"OpINotEqual":                    171,
	"OpUGreaterThan":                 172,
	"OpSGreaterThan":                 173,
	"OpUGreaterThanEqual":            174,
	"OpSGreaterThanEqual":            175,
	"OpULessThan":                    176,
	"OpSLessThan":                    177,
	"OpULessThanEqual":               178,
	"OpSLessThanEqual":               179,
	"OpFOrdEqual":                    180,
	"OpFOrdNotEqual":                 182,
	"OpFOrdLessThan":                 184,
	"OpFOrdGreaterThan":              186,
	"OpFOrdLessThanEqual":            188,
	"OpFOrdGreaterThanEqual":         190,
	"OpShiftRightLogical":            194,
	"OpShiftRightArithmetic":         195,
	"OpShiftLeftLogical":             196,
	"OpBitwiseOr":                    197,
	"OpBitwiseXor":                   198,
	"OpBitwiseAnd":                   199,
	"OpNot":                          200,
	"OpBitFieldInsert":               201,
	"OpBitFieldSExtract":             202,
	"OpBitFieldUExtract":             203,
	"OpBitReverse":                   204,
	"OpBitCount":                     205,
	"OpControlBarrier":               224,
	"OpMemoryBarrier":                225,
	"OpAtomicLoad":                   227,
	"OpAtomicStore":                  228,
	"OpAtomicExchange":               229,
	"OpAtomicCompareExchange":        230,
	"OpAtomicCompareExchangeWeak":    231,
	"OpAtomicIIncrement":             232,
	"OpAtomicIDecrement":             233,
	"OpAtomicIAdd":                   234,
	"OpAtomicISub":                   235,
	"OpAtomicSMin":                   236,
	"OpAtomicUMin":                   237,
	"OpAtomicSMax":                   238,
	"OpAtomicUMax":                   239,
	"OpAtomicAnd":                    240,
	"OpAtomicOr":                     241,
	"OpAtomicXor":                    242,
	"OpPhi":                          245,
	"OpLoopMerge":                    246,
	"OpSelectionMerge":               247,
	"OpLabel":                        248,
	"OpBranch":                       249,
	"OpBranchConditional":            250,
	"OpSwitch":                       251,
	"OpKill":                         252,
	"OpReturn":                       253,
	"OpReturnValue":                  254,
	"OpUnreachable":                  255,
	"OpGroupAsyncCopy":               259,
	"OpGroupWaitEvents":              260,
	"OpGroupAll":                     261,
	"OpGroupAny":                     262,
	"OpGroupBroadcast":               263,
	"OpGroupIAdd":                    264,
	"OpGroupFAdd":                    265,
	"OpGroupFMin":                    266,
	"OpGroupUMin":                    267,
	"OpGroupSMin":                    268,
	"OpGroupFMax":                    269,
	"OpGroupUMax":                    270,
	"OpGroupSMax":                    271,
	"OpReadPipe":                     274,
	"OpWritePipe":                    275,
	"OpReservedReadPipe":             276,
	"OpReservedWritePipe":            277,
	"OpReserveReadPipePackets":       278,
	"OpReserveWritePipePackets":      279,
	"OpCommitReadPipe":               280,
	"OpCommitWritePipe":              281,
	"OpIsValidReserveId":             282,
	"OpGetNumPipePackets":            283,
	"OpGetMaxPipePackets":            284,
	"OpGroupReserveReadPipePackets":  285,
	"OpGroupReserveWritePipePackets": 286,
	"OpGroupCommitReadPipe":          287,
	"OpGroupCommitWritePipe":         288,
	"OpEnqueueMarker":                291,
	"OpEnqueueKernel":                292,
	"OpCreateUserEvent":              299,
	"OpIsValidEvent":                 300,
	"OpSetUserEventStatus":           301,
	"OpCaptureEventProfilingInfo":    302,
	"OpGetDefaultQueue":              303,
	"OpBuildNDRange":                 304,
}

// OpName maps binary opcodes back to operation names.
var OpName = map[uint32]string{}

func init() {
	for name, code := range Opcode {
		OpName[code] = name
	}
}

// Enums maps an enumeration kind name to its value table. The writer
// translates enumerator names to numbers, the reader does the reverse.
var Enums = map[string]map[string]uint32{
	"SourceLanguage": {
		"Unknown":    0,
		"ESSL":       1,
		"GLSL":       2,
		"OpenCL_C":   3,
		"OpenCL_CPP": 4,
	},
	"ExecutionModel": {
		"Vertex":                 0,
		"TessellationControl":    1,
		"TessellationEvaluation": 2,
		"Geometry":               3,
		"Fragment":               4,
		"GLCompute":              5,
		"Kernel":                 6,
	},
	"AddressingModel": {
		"Logical":    0,
		"Physical32": 1,
		"Physical64": 2,
	},
	"MemoryModel": {
		"Simple":  0,
		"GLSL450": 1,
		"OpenCL":  2,
	},
	"ExecutionMode": {
		"Invocations":            0,
		"SpacingEqual":           1,
		"SpacingFractionalEven":  2,
		"SpacingFractionalOdd":   3,
		"VertexOrderCw":          4,
		"VertexOrderCcw":         5,
		"PixelCenterInteger":     6,
		"OriginUpperLeft":        7,
		"OriginLowerLeft":        8,
		"EarlyFragmentTests":     9,
		"PointMode":              10,
		"Xfb":                    11,
		"DepthReplacing":         12,
		"DepthGreater":           14,
		"DepthLess":              15,
		"DepthUnchanged":         16,
		"LocalSize":              17,
		"LocalSizeHint":          18,
		"InputPoints":            19,
		"InputLines":             20,
		"InputLinesAdjacency":    21,
		"Triangles":              22,
		"InputTrianglesAdjacency": 23,
		"Quads":                  24,
		"Isolines":               25,
		"OutputVertices":         26,
		"OutputPoints":           27,
		"OutputLineStrip":        28,
		"OutputTriangleStrip":    29,
		"VecTypeHint":            30,
		"ContractionOff":         31,
	},
	"StorageClass": {
		"UniformConstant": 0,
		"Input":           1,
		"Uniform":         2,
		"Output":          3,
		"Workgroup":       4,
		"CrossWorkgroup":  5,
		"Private":         6,
		"Function":        7,
		"Generic":         8,
		"PushConstant":    9,
		"AtomicCounter":   10,
		"Image":           11,
	},
	"Dim": {
		"1D":          0,
		"2D":          1,
		"3D":          2,
		"Cube":        3,
		"Rect":        4,
		"Buffer":      5,
		"SubpassData": 6,
	},
	"SamplerAddressingMode": {
		"None":           0,
		"ClampToEdge":    1,
		"Clamp":          2,
		"Repeat":         3,
		"RepeatMirrored": 4,
	},
	"SamplerFilterMode": {
		"Nearest": 0,
		"Linear":  1,
	},
	"ImageFormat": {
		"Unknown":      0,
		"Rgba32f":      1,
		"Rgba16f":      2,
		"R32f":         3,
		"Rgba8":        4,
		"Rgba8Snorm":   5,
		"Rg32f":        6,
		"Rg16f":        7,
		"R11fG11fB10f": 8,
		"R16f":         9,
		"Rgba16":       10,
		"Rgb10A2":      11,
		"Rg16":         12,
		"Rg8":          13,
		"R16":          14,
		"R8":           15,
		"Rgba16Snorm":  16,
		"Rg16Snorm":    17,
		"Rg8Snorm":     18,
		"R16Snorm":     19,
		"R8Snorm":      20,
		"Rgba32i":      21,
		"Rgba16i":      22,
		"Rgba8i":       23,
		"R32i":         24,
		"Rg32i":        25,
		"Rg16i":        26,
		"Rg8i":         27,
		"R16i":         28,
		"R8i":          29,
		"Rgba32ui":     30,
		"Rgba16ui":     31,
		"Rgba8ui":      32,
		"R32ui":        33,
		"Rgb10a2ui":    34,
		"Rg32ui":       35,
		"Rg16ui":       36,
		"Rg8ui":        37,
		"R16ui":        38,
		"R8ui":         39,
	},
	"AccessQualifier": {
		"ReadOnly":  0,
		"WriteOnly": 1,
		"ReadWrite": 2,
	},
	"FPRoundingMode": {
		"RTE": 0,
		"RTZ": 1,
		"RTP": 2,
		"RTN": 3,
	},
	"Decoration": {
		"RelaxedPrecision":     0,
		"SpecId":               1,
		"Block":                2,
		"BufferBlock":          3,
		"RowMajor":             4,
		"ColMajor":             5,
		"ArrayStride":          6,
		"MatrixStride":         7,
		"GLSLShared":           8,
		"GLSLPacked":           9,
		"CPacked":              10,
		"BuiltIn":              11,
		"NoPerspective":        13,
		"Flat":                 14,
		"Patch":                15,
		"Centroid":             16,
		"Sample":               17,
		"Invariant":            18,
		"Restrict":             19,
		"Aliased":              20,
		"Volatile":             21,
		"Constant":             22,
		"Coherent":             23,
		"NonWritable":          24,
		"NonReadable":          25,
		"Uniform":              26,
		"SaturatedConversion":  28,
		"Stream":               29,
		"Location":             30,
		"Component":            31,
		"Index":                32,
		"Binding":              33,
		"DescriptorSet":        34,
		"Offset":               35,
		"XfbBuffer":            36,
		"XfbStride":            37,
		"FuncParamAttr":        38,
		"FPRoundingMode":       39,
		"FPFastMathMode":       40,
		"LinkageAttributes":    41,
		"NoContraction":        42,
		"InputAttachmentIndex": 43,
		"Alignment":            44,
	},
	"Scope": {
		"CrossDevice": 0,
		"Device":      1,
		"Workgroup":   2,
		"Subgroup":    3,
		"Invocation":  4,
	},
	"GroupOperation": {
		"Reduce":        0,
		"InclusiveScan": 1,
		"ExclusiveScan": 2,
	},
	"Capability": {
		"Matrix":                           0,
		"Shader":                           1,
		"Geometry":                         2,
		"Tessellation":                     3,
		"Addresses":                        4,
		"Linkage":                          5,
		"Kernel":                           6,
		"Vector16":                         7,
		"Float16Buffer":                    8,
		"Float16":                          9,
		"Float64":                          10,
		"Int64":                            11,
		"Int64Atomics":                     12,
		"ImageBasic":                       13,
		"ImageReadWrite":                   14,
		"ImageMipmap":                      15,
		"Pipes":                            17,
		"Groups":                           18,
		"DeviceEnqueue":                    19,
		"LiteralSampler":                   20,
		"AtomicStorage":                    21,
		"Int16":                            22,
		"TessellationPointSize":            23,
		"GeometryPointSize":                24,
		"ImageGatherExtended":              25,
		"StorageImageMultisample":          27,
		"UniformBufferArrayDynamicIndexing": 28,
		"SampledImageArrayDynamicIndexing":  29,
		"StorageBufferArrayDynamicIndexing": 30,
		"StorageImageArrayDynamicIndexing":  31,
		"ClipDistance":                     32,
		"CullDistance":                     33,
		"ImageCubeArray":                   34,
		"SampleRateShading":                35,
		"ImageRect":                        36,
		"SampledRect":                      37,
		"GenericPointer":                   38,
		"Int8":                             39,
		"InputAttachment":                  40,
		"SparseResidency":                  41,
		"MinLod":                           42,
		"Sampled1D":                        43,
		"Image1D":                          44,
		"SampledCubeArray":                 45,
		"SampledBuffer":                    46,
		"ImageBuffer":                      47,
		"ImageMSArray":                     48,
		"StorageImageExtendedFormats":      49,
		"ImageQuery":                       50,
		"DerivativeControl":                51,
		"InterpolationFunction":            52,
		"TransformFeedback":                53,
		"GeometryStreams":                  54,
		"StorageImageReadWithoutFormat":    55,
		"StorageImageWriteWithoutFormat":   56,
		"MultiViewport":                    57,
	},
}

// Masks maps a mask kind name to its bit-value table. Every mask kind has
// a zero-valued "None" entry so an empty mask list can be pretty-printed.
var Masks = map[string]map[string]uint32{
	"FunctionControlMask": {
		"None":       0,
		"Inline":     1,
		"DontInline": 2,
		"Pure":       4,
		"Const":      8,
	},
	"SelectionControlMask": {
		"None":        0,
		"Flatten":     1,
		"DontFlatten": 2,
	},
	"LoopControlMask": {
		"None":       0,
		"Unroll":     1,
		"DontUnroll": 2,
	},
	"MemorySemanticsMask": {
		"None":                   0,
		"Acquire":                2,
		"Release":                4,
		"AcquireRelease":         8,
		"SequentiallyConsistent": 16,
		"UniformMemory":          64,
		"SubgroupMemory":         128,
		"WorkgroupMemory":        256,
		"CrossWorkgroupMemory":   512,
		"AtomicCounterMemory":    1024,
		"ImageMemory":            2048,
	},
	"MemoryAccessMask": {
		"None":        0,
		"Volatile":    1,
		"Aligned":     2,
		"Nontemporal": 4,
	},
	"ImageOperandsMask": {
		"None":         0,
		"Bias":         1,
		"Lod":          2,
		"Grad":         4,
		"ConstOffset":  8,
		"Offset":       16,
		"ConstOffsets": 32,
		"Sample":       64,
		"MinLod":       128,
	},
}

// ExpandMask converts a mask value to the list of mask names, ordered by
// bit value. It reports false when bits remain that no name covers.
func ExpandMask(kind string, value uint32) ([]string, bool) {
	if value == 0 {
		return nil, true
	}
	table := Masks[kind]
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return table[names[i]] < table[names[j]]
	})
	var result []string
	for _, name := range names {
		if bit := table[name]; bit != 0 && value&bit != 0 {
			result = append(result, name)
			value ^= bit
		}
	}
	return result, value == 0
}

// EnumName returns the name of an enumeration value.
func EnumName(kind string, value uint32) (string, bool) {
	for name, cur := range Enums[kind] {
		if cur == value {
			return name, true
		}
	}
	return "", false
}

// IsEnumKind reports whether the operand kind names an enumeration.
func IsEnumKind(kind OperandKind) bool {
	_, ok := Enums[string(kind)]
	return ok
}

// IsMaskKind reports whether the operand kind names a mask.
func IsMaskKind(kind OperandKind) bool {
	_, ok := Masks[string(kind)]
	return ok
}
