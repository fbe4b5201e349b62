package ir

// Instruction category sets. Category membership is a pure function of the
// operation name (plus OpVariable's storage class, handled in IsGlobal).

// BranchInstructions is the set of basic block terminators.
var BranchInstructions = map[string]bool{
	"OpReturnValue":       true,
	"OpBranch":            true,
	"OpBranchConditional": true,
	"OpReturn":            true,
	"OpKill":              true,
	"OpUnreachable":       true,
	"OpSwitch":            true,
}

// InitialInstructions are the instructions in the first part of the binary
// (before debug and annotation instructions).
var InitialInstructions = map[string]bool{
	"OpCapability":    true,
	"OpExtension":     true,
	"OpExtInstImport": true,
	"OpMemoryModel":   true,
	"OpEntryPoint":    true,
	"OpExecutionMode": true,
}

// DebugInstructions are the debug (string/name) instructions.
var DebugInstructions = map[string]bool{
	"OpString":          true,
	"OpSourceExtension": true,
	"OpSource":          true,
	"OpSourceContinued": true,
	"OpName":            true,
	"OpMemberName":      true,
}

// DecorationInstructions are the annotation instructions.
var DecorationInstructions = map[string]bool{
	"OpDecorate":            true,
	"OpMemberDecorate":      true,
	"OpGroupDecorate":       true,
	"OpGroupMemberDecorate": true,
	"OpDecorationGroup":     true,
}

// TypeDeclarationInstructions are the type declaration instructions.
var TypeDeclarationInstructions = map[string]bool{
	"OpTypeVoid":         true,
	"OpTypeBool":         true,
	"OpTypeInt":          true,
	"OpTypeFloat":        true,
	"OpTypeVector":       true,
	"OpTypeMatrix":       true,
	"OpTypeImage":        true,
	"OpTypeSampler":      true,
	"OpTypeSampledImage": true,
	"OpTypeArray":        true,
	"OpTypeRuntimeArray": true,
	"OpTypeStruct":       true,
	"OpTypeOpaque":       true,
	"OpTypePointer":      true,
	"OpTypeFunction":     true,
	"OpTypeEvent":        true,
	"OpTypeDeviceEvent":  true,
	"OpTypeReserveId":    true,
	"OpTypeQueue":        true,
	"OpTypePipe":         true,
}

// ConstantInstructions are the constant-creation instructions.
var ConstantInstructions = map[string]bool{
	"OpConstantTrue":      true,
	"OpConstantFalse":     true,
	"OpConstant":          true,
	"OpConstantComposite": true,
	"OpConstantSampler":   true,
	"OpConstantNull":      true,
}

// SpecConstantInstructions are the specialization-constant instructions.
var SpecConstantInstructions = map[string]bool{
	"OpSpecConstantTrue":      true,
	"OpSpecConstantFalse":     true,
	"OpSpecConstant":          true,
	"OpSpecConstantComposite": true,
	"OpSpecConstantOp":        true,
}

// GlobalVariableInstructions are the variable declaration instructions;
// only non-Function storage classes live in the global buckets.
var GlobalVariableInstructions = map[string]bool{
	"OpVariable": true,
}

// hasSideEffect lists operations that may have side effects even though
// they produce a result id.
var hasSideEffect = map[string]bool{
	"OpFunction":                     true,
	"OpFunctionParameter":            true,
	"OpFunctionCall":                 true,
	"OpExtInst":                      true,
	"OpAtomicExchange":               true,
	"OpAtomicCompareExchange":        true,
	"OpAtomicCompareExchangeWeak":    true,
	"OpAtomicIIncrement":             true,
	"OpAtomicIDecrement":             true,
	"OpAtomicIAdd":                   true,
	"OpAtomicISub":                   true,
	"OpAtomicSMin":                   true,
	"OpAtomicUMin":                   true,
	"OpAtomicSMax":                   true,
	"OpAtomicUMax":                   true,
	"OpAtomicAnd":                    true,
	"OpAtomicOr":                     true,
	"OpAtomicXor":                    true,
	"OpLabel":                        true,
	"OpGroupAsyncCopy":               true,
	"OpGroupWaitEvents":              true,
	"OpGroupAll":                     true,
	"OpGroupAny":                     true,
	"OpGroupBroadcast":               true,
	"OpGroupIAdd":                    true,
	"OpGroupFAdd":                    true,
	"OpGroupFMin":                    true,
	"OpGroupUMin":                    true,
	"OpGroupSMin":                    true,
	"OpGroupFMax":                    true,
	"OpGroupUMax":                    true,
	"OpGroupSMax":                    true,
	"OpReadPipe":                     true,
	"OpWritePipe":                    true,
	"OpReservedReadPipe":             true,
	"OpReservedWritePipe":            true,
	"OpReserveReadPipePackets":       true,
	"OpReserveWritePipePackets":      true,
	"OpGroupReserveReadPipePackets":  true,
	"OpGroupReserveWritePipePackets": true,
	"OpEnqueueMarker":                true,
	"OpEnqueueKernel":                true,
	"OpCreateUserEvent":              true,
	"OpSetUserEventStatus":           true,
	"OpCaptureEventProfilingInfo":    true,
}

// isCommutative lists the commutative core operations.
var isCommutative = map[string]bool{
	"OpLogicalAnd":      true,
	"OpFAdd":            true,
	"OpIMul":            true,
	"OpBitwiseOr":       true,
	"OpFMul":            true,
	"OpBitwiseAnd":      true,
	"OpLogicalOr":       true,
	"OpBitwiseXor":      true,
	"OpIAdd":            true,
	"OpLogicalEqual":    true,
	"OpLogicalNotEqual": true,
}
