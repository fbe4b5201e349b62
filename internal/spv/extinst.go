package spv

// ExtInstFormat describes one instruction of an extended instruction set.
type ExtInstFormat struct {
	Name           string
	Operands       []OperandKind
	HasSideEffects bool
	IsCommutative  bool
}

// ExtInstSets maps an extended instruction set name (the OpExtInstImport
// string) to its per-number instruction table.
var ExtInstSets = map[string]map[uint32]ExtInstFormat{
	"GLSL.std.450": glslStd450,
	"OpenCL.std":   openclStd,
}

// LookupExtInst returns the format for an instruction of a known extended
// instruction set, or false when the set or the number is unknown.
func LookupExtInst(set string, number uint32) (ExtInstFormat, bool) {
	table, ok := ExtInstSets[set]
	if !ok {
		return ExtInstFormat{}, false
	}
	format, ok := table[number]
	return format, ok
}

func ext1(name string) ExtInstFormat {
	return ExtInstFormat{Name: name, Operands: ops(KindId)}
}

func ext2(name string) ExtInstFormat {
	return ExtInstFormat{Name: name, Operands: ops(KindId, KindId)}
}

func ext3(name string) ExtInstFormat {
	return ExtInstFormat{Name: name, Operands: ops(KindId, KindId, KindId)}
}

func commutative(f ExtInstFormat) ExtInstFormat {
	f.IsCommutative = true
	return f
}

// sideEffects marks instructions with effects beyond their result: writes
// through a pointer operand, image writes, printf and prefetch.
func sideEffects(f ExtInstFormat) ExtInstFormat {
	f.HasSideEffects = true
	return f
}

var glslStd450 = map[uint32]ExtInstFormat{
	1:  ext1("Round"),
	2:  ext1("RoundEven"),
	3:  ext1("Trunc"),
	4:  ext1("FAbs"),
	5:  ext1("SAbs"),
	6:  ext1("FSign"),
	7:  ext1("SSign"),
	8:  ext1("Floor"),
	9:  ext1("Ceil"),
	10: ext1("Fract"),
	11: ext1("Radians"),
	12: ext1("Degrees"),
	13: ext1("Sin"),
	14: ext1("Cos"),
	15: ext1("Tan"),
	16: ext1("Asin"),
	17: ext1("Acos"),
	18: ext1("Atan"),
	19: ext1("Sinh"),
	20: ext1("Cosh"),
	21: ext1("Tanh"),
	22: ext1("Asinh"),
	23: ext1("Acosh"),
	24: ext1("Atanh"),
	25: ext2("Atan2"),
	26: ext2("Pow"),
	27: ext1("Exp"),
	28: ext1("Log"),
	29: ext1("Exp2"),
	30: ext1("Log2"),
	31: ext1("Sqrt"),
	32: ext1("InverseSqrt"),
	33: ext1("Determinant"),
	34: ext1("MatrixInverse"),
	35: sideEffects(ext2("Modf")),
	36: ext1("ModfStruct"),
	37: commutative(ext2("FMin")),
	38: commutative(ext2("UMin")),
	39: commutative(ext2("SMin")),
	40: commutative(ext2("FMax")),
	41: commutative(ext2("UMax")),
	42: commutative(ext2("SMax")),
	43: ext3("FClamp"),
	44: ext3("UClamp"),
	45: ext3("SClamp"),
	46: ext3("FMix"),
	47: ext3("IMix"),
	48: ext2("Step"),
	49: ext3("SmoothStep"),
	50: ext3("Fma"),
	51: sideEffects(ext2("Frexp")),
	52: ext1("FrexpStruct"),
	53: ext2("Ldexp"),
	54: ext1("PackSnorm4x8"),
	55: ext1("PackUnorm4x8"),
	56: ext1("PackSnorm2x16"),
	57: ext1("PackUnorm2x16"),
	58: ext1("PackHalf2x16"),
	59: ext1("PackDouble2x32"),
	60: ext1("UnpackSnorm2x16"),
	61: ext1("UnpackUnorm2x16"),
	62: ext1("UnpackHalf2x16"),
	63: ext1("UnpackSnorm4x8"),
	64: ext1("UnpackUnorm4x8"),
	65: ext1("UnpackDouble2x32"),
	66: ext1("Length"),
	67: commutative(ext2("Distance")),
	68: ext2("Cross"),
	69: ext1("Normalize"),
	70: ext3("FaceForward"),
	71: ext2("Reflect"),
	72: ext3("Refract"),
	73: ext1("FindILsb"),
	74: ext1("FindSMsb"),
	75: ext1("FindUMsb"),
	76: ext1("InterpolateAtCentroid"),
	77: ext2("InterpolateAtSample"),
	78: ext2("InterpolateAtOffset"),
	79: commutative(ext2("NMin")),
	80: commutative(ext2("NMax")),
	81: ext3("NClamp"),
}

var openclStd = map[uint32]ExtInstFormat{
	0:   ext1("acos"),
	1:   ext1("acosh"),
	2:   ext1("acospi"),
	3:   ext1("asin"),
	4:   ext1("asinh"),
	5:   ext1("asinpi"),
	6:   ext1("atan"),
	7:   ext2("atan2"),
	8:   ext1("atanh"),
	9:   ext1("atanpi"),
	10:  ext2("atan2pi"),
	11:  ext1("cbrt"),
	12:  ext1("ceil"),
	13:  ext2("copysign"),
	14:  ext1("cos"),
	15:  ext1("cosh"),
	16:  ext1("cospi"),
	17:  ext1("erfc"),
	18:  ext1("erf"),
	19:  ext1("exp"),
	20:  ext1("exp2"),
	21:  ext1("exp10"),
	22:  ext1("expm1"),
	23:  ext1("fabs"),
	24:  ext2("fdim"),
	25:  ext1("floor"),
	26:  ext3("fma"),
	27:  commutative(ext2("fmax")),
	28:  commutative(ext2("fmin")),
	29:  ext2("fmod"),
	30:  ext2("fract"),
	31:  sideEffects(ext2("frexp")),
	32:  commutative(ext2("hypot")),
	33:  ext1("ilogb"),
	34:  ext2("ldexp"),
	35:  ext1("lgamma"),
	36:  sideEffects(ext2("lgamma_r")),
	37:  ext1("log"),
	38:  ext1("log2"),
	39:  ext1("log10"),
	40:  ext1("log1p"),
	41:  ext1("logb"),
	42:  ext3("mad"),
	43:  commutative(ext2("maxmag")),
	44:  commutative(ext2("minmag")),
	45:  sideEffects(ext2("modf")),
	46:  ext1("nan"),
	47:  ext2("nextafter"),
	48:  ext2("pow"),
	49:  ext2("pown"),
	50:  ext2("powr"),
	51:  ext2("remainder"),
	52:  sideEffects(ext3("remquo")),
	53:  ext1("rint"),
	54:  ext2("rootn"),
	55:  ext1("round"),
	56:  ext1("rsqrt"),
	57:  ext1("sin"),
	58:  sideEffects(ext2("sincos")),
	59:  ext1("sinh"),
	60:  ext1("sinpi"),
	61:  ext1("sqrt"),
	62:  ext1("tan"),
	63:  ext1("tanh"),
	64:  ext1("tanpi"),
	65:  ext1("tgamma"),
	66:  ext1("trunc"),
	67:  ext2("half_cos"),
	68:  ext2("half_divide"),
	69:  ext1("half_exp"),
	70:  ext1("half_exp2"),
	71:  ext1("half_exp10"),
	72:  ext1("half_log"),
	73:  ext1("half_log2"),
	74:  ext1("half_log10"),
	75:  ext2("half_powr"),
	76:  ext1("half_recip"),
	77:  ext1("half_rsqrt"),
	78:  ext1("half_sin"),
	79:  ext1("half_sqrt"),
	80:  ext1("half_tan"),
	81:  ext1("native_cos"),
	82:  ext2("native_divide"),
	83:  ext1("native_exp"),
	84:  ext1("native_exp2"),
	85:  ext1("native_exp10"),
	86:  ext1("native_log"),
	87:  ext1("native_log2"),
	88:  ext1("native_log10"),
	89:  ext2("native_powr"),
	90:  ext1("native_recip"),
	91:  ext1("native_rsqrt"),
	92:  ext1("native_sin"),
	93:  ext1("native_sqrt"),
	94:  ext1("native_tan"),
	95:  ext3("fclamp"),
	96:  ext1("degrees"),
	97:  commutative(ext2("fmax_common")),
	98:  commutative(ext2("fmin_common")),
	99:  ext3("mix"),
	100: ext1("radians"),
	101: ext2("step"),
	102: ext3("smoothstep"),
	103: ext1("sign"),
	104: ext2("cross"),
	105: commutative(ext2("distance")),
	106: ext1("length"),
	107: ext1("normalize"),
	108: commutative(ext2("fast_distance")),
	109: ext1("fast_length"),
	110: ext1("fast_normalize"),
	129: sideEffects(ExtInstFormat{Name: "write_imagef_mipmap_lod", Operands: ops(KindId, KindId, KindId, KindId)}),
	130: sideEffects(ExtInstFormat{Name: "write_imagei_mipmap_lod", Operands: ops(KindId, KindId, KindId, KindId)}),
	131: sideEffects(ExtInstFormat{Name: "write_imageui_mipmap_lod", Operands: ops(KindId, KindId, KindId, KindId)}),
	141: ext1("s_abs"),
	142: ext2("s_abs_diff"),
	143: commutative(ext2("s_add_sat")),
	144: commutative(ext2("u_add_sat")),
	145: commutative(ext2("s_hadd")),
	146: commutative(ext2("u_hadd")),
	147: ext2("s_rhadd"),
	148: ext2("u_rhadd"),
	149: ext3("s_clamp"),
	150: ext3("u_clamp"),
	151: ext1("clz"),
	152: ext1("ctz"),
	153: ext3("s_mad_hi"),
	156: commutative(ext2("s_max")),
	157: commutative(ext2("u_max")),
	158: commutative(ext2("s_min")),
	159: commutative(ext2("u_min")),
	160: commutative(ext2("s_mul_hi")),
	161: ext2("rotate"),
	162: ext2("s_sub_sat"),
	163: ext2("u_sub_sat"),
	164: ext2("u_upsample"),
	165: ext2("s_upsample"),
	166: ext1("popcount"),
	167: ext3("s_mad24"),
	168: ext3("u_mad24"),
	170: ext2("u_mul24"),
	171: ExtInstFormat{Name: "vloadn", Operands: ops(KindId, KindId, KindLiteralNumber)},
	172: sideEffects(ext3("vstoren")),
	173: ext2("vload_half"),
	174: ExtInstFormat{Name: "vload_halfn", Operands: ops(KindId, KindId, KindLiteralNumber)},
	175: sideEffects(ext3("vstore_half")),
	176: sideEffects(ExtInstFormat{Name: "vstore_half_r", Operands: ops(KindId, KindId, KindId, "FPRoundingMode")}),
	177: sideEffects(ext3("vstore_halfn")),
	178: sideEffects(ExtInstFormat{Name: "vstore_halfn_r", Operands: ops(KindId, KindId, KindId, "FPRoundingMode")}),
	179: ExtInstFormat{Name: "vloada_halfn", Operands: ops(KindId, KindId, KindLiteralNumber)},
	180: sideEffects(ext3("vstorea_halfn")),
	181: sideEffects(ExtInstFormat{Name: "vstorea_halfn_r", Operands: ops(KindId, KindId, KindId, "FPRoundingMode")}),
	182: ext2("shuffle"),
	183: ext3("shuffle2"),
	184: sideEffects(ExtInstFormat{Name: "printf", Operands: ops(KindId, KindVariableIds)}),
	185: sideEffects(ext2("prefetch")),
	186: ext3("bitselect"),
	187: ext3("select"),
	201: ext1("u_abs"),
	202: ext2("u_abs_diff"),
	203: commutative(ext2("u_mul_hi")),
	204: ext3("u_mad_hi"),
}
