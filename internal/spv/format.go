package spv

// OperandKind names the encoding of one logical operand slot. The fixed
// kinds below are joined by enumeration names ("StorageClass", ...) and
// mask names ("FunctionControlMask", ...) from the Enums and Masks tables.
type OperandKind string

const (
	KindId                    OperandKind = "Id"
	KindLiteralNumber         OperandKind = "LiteralNumber"
	KindLiteralString         OperandKind = "LiteralString"
	KindVariableIds           OperandKind = "VariableIds"
	KindVariableLiterals      OperandKind = "VariableLiterals"
	KindVariableIdLiteralPair OperandKind = "VariableIdLiteralPair"
	KindVariableLiteralIdPair OperandKind = "VariableLiteralIdPair"
	KindOptionalId            OperandKind = "OptionalId"
	KindOptionalLiteral       OperandKind = "OptionalLiteral"
	KindOptionalString        OperandKind = "OptionalLiteralString"
	KindOptionalImage         OperandKind = "OptionalImage"
)

// IsVariadic reports whether the kind may consume zero or more trailing
// operands (so it is allowed to be absent in the input).
func (k OperandKind) IsVariadic() bool {
	switch k {
	case KindVariableIds, KindVariableLiterals, KindVariableIdLiteralPair,
		KindVariableLiteralIdPair, KindOptionalId, KindOptionalLiteral,
		KindOptionalString, KindOptionalImage:
		return true
	}
	return false
}

// InstFormat describes the operand layout of one opcode.
type InstFormat struct {
	HasType   bool
	HasResult bool
	Operands  []OperandKind
}

func ops(kinds ...OperandKind) []OperandKind { return kinds }

// Formats is the per-opcode operand layout table.
var Formats = map[string]InstFormat{
	"OpNop":                          {false, false, nil},
	"OpUndef":                        {true, true, nil},
	"OpSourceContinued":              {false, false, ops(KindLiteralString)},
	"OpSource":                       {false, false, ops("SourceLanguage", KindLiteralNumber)},
	"OpSourceExtension":              {false, false, ops(KindLiteralString)},
	"OpName":                         {false, false, ops(KindId, KindLiteralString)},
	"OpMemberName":                   {false, false, ops(KindId, KindLiteralNumber, KindLiteralString)},
	"OpString":                       {false, true, ops(KindLiteralString)},
	"OpLine":                         {false, false, ops(KindId, KindLiteralNumber, KindLiteralNumber)},
	"OpExtension":                    {false, false, ops(KindLiteralString)},
	"OpExtInstImport":                {false, true, ops(KindLiteralString)},
	"OpExtInst":                      {true, true, ops(KindId, KindLiteralNumber, KindVariableIds)},
	"OpMemoryModel":                  {false, false, ops("AddressingModel", "MemoryModel")},
	"OpEntryPoint":                   {false, false, ops("ExecutionModel", KindId, KindLiteralString, KindVariableIds)},
	"OpExecutionMode":                {false, false, ops(KindId, "ExecutionMode", KindOptionalLiteral)},
	"OpCapability":                   {false, false, ops("Capability")},
	"OpTypeVoid":                     {false, true, nil},
	"OpTypeBool":                     {false, true, nil},
	"OpTypeInt":                      {false, true, ops(KindLiteralNumber, KindLiteralNumber)},
	"OpTypeFloat":                    {false, true, ops(KindLiteralNumber)},
	"OpTypeVector":                   {false, true, ops(KindId, KindLiteralNumber)},
	"OpTypeMatrix":                   {false, true, ops(KindId, KindLiteralNumber)},
	"OpTypeImage":                    {false, true, ops(KindId, "Dim", KindLiteralNumber, KindLiteralNumber, KindLiteralNumber, KindLiteralNumber, "ImageFormat", KindOptionalLiteral)},
	"OpTypeSampler":                  {false, true, nil},
	"OpTypeSampledImage":             {false, true, ops(KindId)},
	"OpTypeArray":                    {false, true, ops(KindId, KindId)},
	"OpTypeRuntimeArray":             {false, true, ops(KindId)},
	"OpTypeStruct":                   {false, true, ops(KindVariableIds)},
	"OpTypeOpaque":                   {false, true, ops(KindLiteralString)},
	"OpTypePointer":                  {false, true, ops("StorageClass", KindId)},
	"OpTypeFunction":                 {false, true, ops(KindId, KindVariableIds)},
	"OpTypeEvent":                    {false, true, nil},
	"OpTypeDeviceEvent":              {false, true, nil},
	"OpTypeReserveId":                {false, true, nil},
	"OpTypeQueue":                    {false, true, nil},
	"OpTypePipe":                     {false, true, ops(KindId, "AccessQualifier")},
	"OpConstantTrue":                 {true, true, nil},
	"OpConstantFalse":                {true, true, nil},
	"OpConstant":                     {true, true, ops(KindVariableLiterals)},
	"OpConstantComposite":            {true, true, ops(KindVariableIds)},
	"OpConstantSampler":              {true, true, ops("SamplerAddressingMode", KindLiteralNumber, "SamplerFilterMode")},
	"OpConstantNull":                 {true, true, nil},
	"OpSpecConstantTrue":             {true, true, nil},
	"OpSpecConstantFalse":            {true, true, nil},
	"OpSpecConstant":                 {true, true, ops(KindVariableLiterals)},
	"OpSpecConstantComposite":        {true, true, ops(KindVariableIds)},
	"OpSpecConstantOp":               {true, true, ops(KindLiteralNumber, KindVariableIds)},
	"OpFunction":                     {true, true, ops("FunctionControlMask", KindId)},
	"OpFunctionParameter":            {true, true, nil},
	"OpFunctionEnd":                  {false, false, nil},
	"OpFunctionCall":                 {true, true, ops(KindId, KindVariableIds)},
	"OpVariable":                     {true, true, ops("StorageClass", KindOptionalId)},
	"OpImageTexelPointer":            {true, true, ops(KindId, KindId, KindId)},
	"OpLoad":                         {true, true, ops(KindId, KindOptionalLiteral)},
	"OpStore":                        {false, false, ops(KindId, KindId, KindOptionalLiteral)},
	"OpCopyMemory":                   {false, false, ops(KindId, KindId, KindOptionalLiteral)},
	"OpCopyMemorySized":              {false, false, ops(KindId, KindId, KindId, KindOptionalLiteral)},
	"OpAccessChain":                  {true, true, ops(KindId, KindVariableIds)},
	"OpInBoundsAccessChain":          {true, true, ops(KindId, KindVariableIds)},
	"OpPtrAccessChain":               {true, true, ops(KindId, KindId, KindVariableIds)},
	"OpArrayLength":                  {true, true, ops(KindId, KindLiteralNumber)},
	"OpGenericPtrMemSemantics":       {true, true, ops(KindId)},
	"OpInBoundsPtrAccessChain":       {true, true, ops(KindId, KindId, KindVariableIds)},
	"OpDecorate":                     {false, false, ops(KindId, "Decoration", KindVariableLiterals)},
	"OpMemberDecorate":               {false, false, ops(KindId, KindLiteralNumber, "Decoration", KindVariableLiterals)},
	"OpDecorationGroup":              {false, true, nil},
	"OpGroupDecorate":                {false, false, ops(KindId, KindVariableIds)},
	"OpGroupMemberDecorate":          {false, false, ops(KindId, KindVariableIdLiteralPair)},
	"OpVectorExtractDynamic":         {true, true, ops(KindId, KindId)},
	"OpVectorInsertDynamic":          {true, true, ops(KindId, KindId, KindId)},
	"OpVectorShuffle":                {true, true, ops(KindId, KindId, KindVariableLiterals)},
	"OpCompositeConstruct":           {true, true, ops(KindVariableIds)},
	"OpCompositeExtract":             {true, true, ops(KindId, KindVariableLiterals)},
	"OpCompositeInsert":              {true, true, ops(KindId, KindId, KindVariableLiterals)},
	"OpCopyObject":                   {true, true, ops(KindId)},
	"OpTranspose":                    {true, true, ops(KindId)},
	"OpSampledImage":                 {true, true, ops(KindId, KindId)},
	"OpImageSampleImplicitLod":       {true, true, ops(KindId, KindId, KindOptionalImage)},
	"OpImageSampleExplicitLod":       {true, true, ops(KindId, KindId, KindOptionalImage)},
	"OpConvertFToU":                  {true, true, ops(KindId)},
	"OpConvertFToS":                  {true, true, ops(KindId)},
	"OpConvertSToF":                  {true, true, ops(KindId)},
	"OpConvertUToF":                  {true, true, ops(KindId)},
	"OpUConvert":                     {true, true, ops(KindId)},
	"OpSConvert":                     {true, true, ops(KindId)},
	"OpFConvert":                     {true, true, ops(KindId)},
	"OpQuantizeToF16":                {true, true, ops(KindId)},
	"OpBitcast":                      {true, true, ops(KindId)},
	"OpSNegate":                      {true, true, ops(KindId)},
	"OpFNegate":                      {true, true, ops(KindId)},
	"OpIAdd":                         {true, true, ops(KindId, KindId)},
	"OpFAdd":                         {true, true, ops(KindId, KindId)},
	"OpISub":                         {true, true, ops(KindId, KindId)},
	"OpFSub":                         {true, true, ops(KindId, KindId)},
	"OpIMul":                         {true, true, ops(KindId, KindId)},
	"OpFMul":                         {true, true, ops(KindId, KindId)},
	"OpUDiv":                         {true, true, ops(KindId, KindId)},
	"OpSDiv":                         {true, true, ops(KindId, KindId)},
	"OpFDiv":                         {true, true, ops(KindId, KindId)},
	"OpUMod":                         {true, true, ops(KindId, KindId)},
	"OpSRem":                         {true, true, ops(KindId, KindId)},
	"OpSMod":                         {true, true, ops(KindId, KindId)},
	"OpFRem":                         {true, true, ops(KindId, KindId)},
	"OpFMod":                         {true, true, ops(KindId, KindId)},
	"OpVectorTimesScalar":            {true, true, ops(KindId, KindId)},
	"OpMatrixTimesScalar":            {true, true, ops(KindId, KindId)},
	"OpVectorTimesMatrix":            {true, true, ops(KindId, KindId)},
	"OpMatrixTimesVector":            {true, true, ops(KindId, KindId)},
	"OpMatrixTimesMatrix":            {true, true, ops(KindId, KindId)},
	"OpOuterProduct":                 {true, true, ops(KindId, KindId)},
	"OpDot":                          {true, true, ops(KindId, KindId)},
	"OpAny":                          {true, true, ops(KindId)},
	"OpAll":                          {true, true, ops(KindId)},
	"OpIsNan":                        {true, true, ops(KindId)},
	"OpIsInf":                        {true, true, ops(KindId)},
	"OpLogicalEqual":                 {true, true, ops(KindId, KindId)},
	"OpLogicalNotEqual":              {true, true, ops(KindId, KindId)},
	"OpLogicalOr":                    {true, true, ops(KindId, KindId)},
	"OpLogicalAnd":                   {true, true, ops(KindId, KindId)},
	"OpLogicalNot":                   {true, true, ops(KindId)},
	"OpSelect":                       {true, true, ops(KindId, KindId, KindId)},
	"OpIEqual":                       {true, true, ops(KindId, KindId)},
	"OpINotEqual":                    {true, true, ops(KindId, KindId)},
	"OpUGreaterThan":                 {true, true, ops(KindId, KindId)},
	"OpSGreaterThan":                 {true, true, ops(KindId, KindId)},
	"OpUGreaterThanEqual":            {true, true, ops(KindId, KindId)},
	"OpSGreaterThanEqual":            {true, true, ops(KindId, KindId)},
	"OpULessThan":                    {true, true, ops(KindId, KindId)},
	"OpSLessThan":                    {true, true, ops(KindId, KindId)},
	"OpULessThanEqual":               {true, true, ops(KindId, KindId)},
	"OpSLessThanEqual":               {true, true, ops(KindId, KindId)},
	"OpFOrdEqual":                    {true, true, ops(KindId, KindId)},
	"OpFOrdNotEqual":                 {true, true, ops(KindId, KindId)},
	"OpFOrdLessThan":                 {true, true, ops(KindId, KindId)},
	"OpFOrdGreaterThan":              {true, true, ops(KindId, KindId)},
	"OpFOrdLessThanEqual":            {true, true, ops(KindId, KindId)},
	"OpFOrdGreaterThanEqual":         {true, true, ops(KindId, KindId)},
	"OpShiftRightLogical":            {true, true, ops(KindId, KindId)},
	"OpShiftRightArithmetic":         {true, true, ops(KindId, KindId)},
	"OpShiftLeftLogical":             {true, true, ops(KindId, KindId)},
	"OpBitwiseOr":                    {true, true, ops(KindId, KindId)},
	"OpBitwiseXor":                   {true, true, ops(KindId, KindId)},
	"OpBitwiseAnd":                   {true, true, ops(KindId, KindId)},
	"OpNot":                          {true, true, ops(KindId)},
	"OpBitFieldInsert":               {true, true, ops(KindId, KindId, KindId, KindId)},
	"OpBitFieldSExtract":             {true, true, ops(KindId, KindId, KindId)},
	"OpBitFieldUExtract":             {true, true, ops(KindId, KindId, KindId)},
	"OpBitReverse":                   {true, true, ops(KindId)},
	"OpBitCount":                     {true, true, ops(KindId)},
	"OpControlBarrier":               {false, false, ops("Scope", "Scope", "MemorySemanticsMask")},
	"OpMemoryBarrier":                {false, false, ops("Scope", "MemorySemanticsMask")},
	"OpAtomicLoad":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask")},
	"OpAtomicStore":                  {false, false, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicExchange":               {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicCompareExchange":        {true, true, ops(KindId, "Scope", "MemorySemanticsMask", "MemorySemanticsMask", KindId, KindId)},
	"OpAtomicCompareExchangeWeak":    {true, true, ops(KindId, "Scope", "MemorySemanticsMask", "MemorySemanticsMask", KindId, KindId)},
	"OpAtomicIIncrement":             {true, true, ops(KindId, "Scope", "MemorySemanticsMask")},
	"OpAtomicIDecrement":             {true, true, ops(KindId, "Scope", "MemorySemanticsMask")},
	"OpAtomicIAdd":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicISub":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicSMin":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicUMin":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicSMax":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicUMax":                   {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicAnd":                    {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicOr":                     {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpAtomicXor":                    {true, true, ops(KindId, "Scope", "MemorySemanticsMask", KindId)},
	"OpPhi":                          {true, true, ops(KindVariableIds)},
	"OpLoopMerge":                    {false, false, ops(KindId, KindId, "LoopControlMask")},
	"OpSelectionMerge":               {false, false, ops(KindId, "SelectionControlMask")},
	"OpLabel":                        {false, true, nil},
	"OpBranch":                       {false, false, ops(KindId)},
	"OpBranchConditional":            {false, false, ops(KindId, KindId, KindId, KindVariableLiterals)},
	"OpSwitch":                       {false, false, ops(KindId, KindId, KindVariableLiteralIdPair)},
	"OpKill":                         {false, false, nil},
	"OpReturn":                       {false, false, nil},
	"OpReturnValue":                  {false, false, ops(KindId)},
	"OpUnreachable":                  {false, false, nil},
	"OpGroupAsyncCopy":               {true, true, ops("Scope", KindId, KindId, KindId, KindId, KindId)},
	"OpGroupWaitEvents":              {false, false, ops("Scope", KindId, KindId)},
	"OpGroupAll":                     {true, true, ops("Scope", KindId)},
	"OpGroupAny":                     {true, true, ops("Scope", KindId)},
	"OpGroupBroadcast":               {true, true, ops("Scope", KindId, KindId)},
	"OpGroupIAdd":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupFAdd":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupFMin":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupUMin":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupSMin":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupFMax":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupUMax":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpGroupSMax":                    {true, true, ops("Scope", "GroupOperation", KindId)},
	"OpReadPipe":                     {true, true, ops(KindId, KindId)},
	"OpWritePipe":                    {true, true, ops(KindId, KindId)},
	"OpReservedReadPipe":             {true, true, ops(KindId, KindId, KindId, KindId)},
	"OpReservedWritePipe":            {true, true, ops(KindId, KindId, KindId, KindId)},
	"OpReserveReadPipePackets":       {true, true, ops(KindId, KindId)},
	"OpReserveWritePipePackets":      {true, true, ops(KindId, KindId)},
	"OpCommitReadPipe":               {false, false, ops(KindId, KindId)},
	"OpCommitWritePipe":              {false, false, ops(KindId, KindId)},
	"OpIsValidReserveId":             {true, true, ops(KindId)},
	"OpGetNumPipePackets":            {true, true, ops(KindId)},
	"OpGetMaxPipePackets":            {true, true, ops(KindId)},
	"OpGroupReserveReadPipePackets":  {true, true, ops("Scope", KindId, KindId)},
	"OpGroupReserveWritePipePackets": {true, true, ops("Scope", KindId, KindId)},
	"OpGroupCommitReadPipe":          {false, false, ops("Scope", KindId, KindId)},
	"OpGroupCommitWritePipe":         {false, false, ops("Scope", KindId, KindId)},
	"OpEnqueueMarker":                {true, true, ops(KindId, KindId, KindId, KindId)},
	"OpEnqueueKernel":                {true, true, ops(KindId, KindId, KindId, KindId, KindId, KindId, KindId, KindId, KindId, KindId, KindVariableIds)},
	"OpCreateUserEvent":              {true, true, nil},
	"OpIsValidEvent":                 {true, true, ops(KindId)},
	"OpSetUserEventStatus":           {false, false, ops(KindId, KindId)},
	"OpCaptureEventProfilingInfo":    {false, false, ops(KindId, KindId, KindId)},
	"OpGetDefaultQueue":              {true, true, nil},
	"OpBuildNDRange":                 {true, true, ops(KindId, KindId, KindId)},
}
