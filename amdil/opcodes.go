package amdil

// Opcode identifies an AMDIL instruction. Values follow the ordering AMD's
// IL ISA documentation assigns them; only relative distinctness matters to
// this decoder, since every consumer goes through OpcodeInfo/opcode name
// lookups rather than comparing against the vendor's numeric table.
type Opcode uint16

const (
	OpAbs Opcode = iota
	OpAcos
	OpAdd
	OpAsin
	OpAtan
	OpBreak
	OpContinue
	OpDiv
	OpDp2
	OpDp3
	OpDp4
	OpDsx
	OpDsy
	OpElse
	OpEnd
	OpEndIf
	OpEndLoop
	OpSwitch
	OpCase
	OpDefault
	OpEndSwitch
	OpEndMain
	OpFrc
	OpMad
	OpMax
	OpMin
	OpMov
	OpMul
	OpBreakLogicalZ
	OpBreakLogicalNZ
	OpIfLogicalZ
	OpIfLogicalNZ
	OpWhile
	OpRetDyn
	OpDclConstBuffer
	OpDclIndexedTempArray
	OpDclLiteral
	OpDclOutput
	OpDclInput
	OpDclResource
	OpDiscardLogicalNZ
	OpLoad
	OpResInfo
	OpSample
	OpSampleB
	OpSampleG
	OpSampleL
	OpSampleC
	OpSampleCB
	OpSampleCG
	OpSampleCL
	OpSampleCLZ
	OpFetch4
	OpFetch4C
	OpFetch4PO
	OpFetch4POC
	OpINot
	OpIOr
	OpIAdd
	OpIMad
	OpIMul
	OpIEq
	OpIGe
	OpILt
	OpINegate
	OpINe
	OpIShl
	OpUShr
	OpUDiv
	OpUMod
	OpULt
	OpUGe
	OpFtoI
	OpFtoU
	OpIToF
	OpUToF
	OpAnd
	OpCmovLogical
	OpEq
	OpExpVec
	OpGe
	OpLogVec
	OpLt
	OpNe
	OpRoundNear
	OpRoundNegInf
	OpRoundPlusInf
	OpRoundZero
	OpRsqVec
	OpSinVec
	OpCosVec
	OpSqrtVec
	OpDclNumThreadPerGroup
	OpFence
	OpLdsLoadVec
	OpLdsStoreVec
	OpDclUAV
	OpDclStructUAV
	OpDclRawUAV
	OpUAVStructLoad
	OpUAVRawLoad
	OpUAVLoad
	OpUAVStore
	OpUAVStructStore
	OpUAVRawStore
	OpUAVAdd
	OpUAVReadAdd
	OpDclStructSRV
	OpDclRawSRV
	OpSrvStructLoad
	OpDclGlobalFlags
	OpUBitExtract

	opLast // sentinel: count of known opcodes
)

// OpcodeInfo is the static per-opcode shape consulted by the decoder:
// destination/source/extra word counts plus whether the opcode carries an
// indexed resource/sampler pair. Grounded in amdilc_decoder.c's
// mOpcodeInfos table.
type OpcodeInfo struct {
	Opcode                   Opcode
	DstCount                 int
	SrcCount                 int
	ExtraCount               int
	HasIndexedResourceSampler bool
}

var opcodeInfos = buildOpcodeInfos()

func info(op Opcode, dst, src, extra int, indexed bool) OpcodeInfo {
	return OpcodeInfo{Opcode: op, DstCount: dst, SrcCount: src, ExtraCount: extra, HasIndexedResourceSampler: indexed}
}

func buildOpcodeInfos() []OpcodeInfo {
	t := make([]OpcodeInfo, opLast)
	set := func(op Opcode, dst, src, extra int, indexed bool) {
		t[op] = info(op, dst, src, extra, indexed)
	}

	set(OpAbs, 1, 1, 0, false)
	set(OpAcos, 1, 1, 0, false)
	set(OpAdd, 1, 2, 0, false)
	set(OpAsin, 1, 1, 0, false)
	set(OpAtan, 1, 1, 0, false)
	set(OpBreak, 0, 0, 0, false)
	set(OpContinue, 0, 0, 0, false)
	set(OpDiv, 1, 2, 0, false)
	set(OpDp2, 1, 2, 0, false)
	set(OpDp3, 1, 2, 0, false)
	set(OpDp4, 1, 2, 0, false)
	set(OpDsx, 1, 1, 0, false)
	set(OpDsy, 1, 1, 0, false)
	set(OpElse, 0, 0, 0, false)
	set(OpEnd, 0, 0, 0, false)
	set(OpEndIf, 0, 0, 0, false)
	set(OpEndLoop, 0, 0, 0, false)
	set(OpSwitch, 0, 1, 0, false)
	set(OpCase, 0, 1, 0, false)
	set(OpDefault, 0, 0, 0, false)
	set(OpEndSwitch, 0, 0, 0, false)
	set(OpEndMain, 0, 0, 0, false)
	set(OpFrc, 1, 1, 0, false)
	set(OpMad, 1, 3, 0, false)
	set(OpMax, 1, 2, 0, false)
	set(OpMin, 1, 2, 0, false)
	set(OpMov, 1, 1, 0, false)
	set(OpMul, 1, 2, 0, false)
	set(OpBreakLogicalZ, 0, 1, 0, false)
	set(OpBreakLogicalNZ, 0, 1, 0, false)
	set(OpIfLogicalZ, 0, 1, 0, false)
	set(OpIfLogicalNZ, 0, 1, 0, false)
	set(OpWhile, 0, 0, 0, false)
	set(OpRetDyn, 0, 0, 0, false)
	set(OpDclConstBuffer, 0, 0, 0, false)
	set(OpDclIndexedTempArray, 0, 1, 0, false)
	set(OpDclLiteral, 0, 1, 4, false)
	set(OpDclOutput, 1, 0, 0, false)
	set(OpDclInput, 1, 0, 0, false)
	set(OpDclResource, 0, 0, 1, false)
	set(OpDiscardLogicalNZ, 0, 1, 0, false)
	set(OpLoad, 1, 1, 0, true)
	set(OpResInfo, 1, 1, 0, false)
	set(OpSample, 1, 1, 0, true)
	set(OpSampleB, 1, 2, 0, true)
	set(OpSampleG, 1, 3, 0, true)
	set(OpSampleL, 1, 2, 0, true)
	set(OpSampleC, 1, 2, 0, true)
	set(OpSampleCB, 1, 3, 0, true)
	set(OpSampleCG, 1, 4, 0, true)
	set(OpSampleCL, 1, 3, 0, true)
	set(OpSampleCLZ, 1, 2, 0, true)
	set(OpFetch4, 1, 1, 0, true)
	set(OpFetch4C, 1, 2, 0, true)
	set(OpFetch4PO, 1, 2, 0, true)
	set(OpFetch4POC, 1, 3, 0, true)
	set(OpINot, 1, 1, 0, false)
	set(OpIOr, 1, 2, 0, false)
	set(OpIAdd, 1, 2, 0, false)
	set(OpIMad, 1, 3, 0, false)
	set(OpIMul, 1, 2, 0, false)
	set(OpIEq, 1, 2, 0, false)
	set(OpIGe, 1, 2, 0, false)
	set(OpILt, 1, 2, 0, false)
	set(OpINegate, 1, 1, 0, false)
	set(OpINe, 1, 2, 0, false)
	set(OpIShl, 1, 2, 0, false)
	set(OpUShr, 1, 2, 0, false)
	set(OpUDiv, 1, 2, 0, false)
	set(OpUMod, 1, 2, 0, false)
	set(OpULt, 1, 2, 0, false)
	set(OpUGe, 1, 2, 0, false)
	set(OpFtoI, 1, 1, 0, false)
	set(OpFtoU, 1, 1, 0, false)
	set(OpIToF, 1, 1, 0, false)
	set(OpUToF, 1, 1, 0, false)
	set(OpAnd, 1, 2, 0, false)
	set(OpCmovLogical, 1, 3, 0, false)
	set(OpEq, 1, 2, 0, false)
	set(OpExpVec, 1, 1, 0, false)
	set(OpGe, 1, 2, 0, false)
	set(OpLogVec, 1, 1, 0, false)
	set(OpLt, 1, 2, 0, false)
	set(OpNe, 1, 2, 0, false)
	set(OpRoundNear, 1, 1, 0, false)
	set(OpRoundNegInf, 1, 1, 0, false)
	set(OpRoundPlusInf, 1, 1, 0, false)
	set(OpRoundZero, 1, 1, 0, false)
	set(OpRsqVec, 1, 1, 0, false)
	set(OpSinVec, 1, 1, 0, false)
	set(OpCosVec, 1, 1, 0, false)
	set(OpSqrtVec, 1, 1, 0, false)
	set(OpDclNumThreadPerGroup, 0, 0, 0, false)
	set(OpFence, 0, 0, 0, false)
	set(OpLdsLoadVec, 1, 2, 0, false)
	set(OpLdsStoreVec, 1, 3, 0, false)
	set(OpDclUAV, 0, 0, 0, false)
	set(OpDclStructUAV, 0, 0, 1, false)
	set(OpDclRawUAV, 0, 0, 0, false)
	set(OpUAVStructLoad, 1, 1, 0, false)
	set(OpUAVRawLoad, 1, 1, 0, true)
	set(OpUAVLoad, 1, 1, 0, true)
	set(OpUAVStore, 0, 2, 0, true)
	set(OpUAVStructStore, 1, 2, 0, false)
	set(OpUAVRawStore, 1, 2, 0, true)
	set(OpUAVAdd, 0, 2, 0, false)
	set(OpUAVReadAdd, 1, 2, 0, false)
	set(OpDclStructSRV, 0, 0, 1, false)
	set(OpDclRawSRV, 0, 0, 0, false)
	set(OpSrvStructLoad, 1, 1, 0, false)
	set(OpDclGlobalFlags, 0, 0, 0, false)
	set(OpUBitExtract, 1, 3, 0, false)

	return t
}

// LookupOpcodeInfo returns the static shape for op and whether it is known.
func LookupOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	if int(op) < 0 || int(op) >= len(opcodeInfos) {
		return OpcodeInfo{}, false
	}
	_, named := opcodeNames[op]
	return opcodeInfos[op], named
}

// isUAVOrSRVOperation reports whether op is a raw/structured/typed UAV or
// SRV memory access, per amdilc_decoder.c's isUavOrSrvOperation.
func isUAVOrSRVOperation(op Opcode) bool {
	switch op {
	case OpUAVRawLoad, OpUAVLoad, OpUAVStore, OpUAVRawStore, OpUAVStructLoad, OpUAVStructStore, OpSrvStructLoad:
		return true
	default:
		return false
	}
}

var opcodeNames = map[Opcode]string{
	OpAbs: "abs", OpAcos: "acos", OpAdd: "add", OpAsin: "asin", OpAtan: "atan",
	OpBreak: "break", OpContinue: "continue", OpDiv: "div", OpDp2: "dp2", OpDp3: "dp3", OpDp4: "dp4",
	OpDsx: "dsx", OpDsy: "dsy", OpElse: "else", OpEnd: "end", OpEndIf: "endif", OpEndLoop: "endloop",
	OpSwitch: "switch", OpCase: "case", OpDefault: "default", OpEndSwitch: "endswitch", OpEndMain: "endmain",
	OpFrc: "frc", OpMad: "mad", OpMax: "max", OpMin: "min", OpMov: "mov", OpMul: "mul",
	OpBreakLogicalZ: "break_logicalz", OpBreakLogicalNZ: "break_logicalnz",
	OpIfLogicalZ: "if_logicalz", OpIfLogicalNZ: "if_logicalnz", OpWhile: "whileloop", OpRetDyn: "ret_dyn",
	OpDclConstBuffer: "dcl_cb", OpDclIndexedTempArray: "dcl_indexed_temp_array",
	OpDclLiteral: "dcl_literal", OpDclOutput: "dcl_output", OpDclInput: "dcl_input",
	OpDclResource: "dcl_resource", OpDiscardLogicalNZ: "discard_logicalnz",
	OpLoad: "load", OpResInfo: "resinfo",
	OpSample: "sample", OpSampleB: "sample_b", OpSampleG: "sample_g", OpSampleL: "sample_l",
	OpSampleC: "sample_c", OpSampleCB: "sample_c_b", OpSampleCG: "sample_c_g", OpSampleCL: "sample_c_l",
	OpSampleCLZ: "sample_c_lz",
	OpFetch4: "fetch4", OpFetch4C: "fetch4_c", OpFetch4PO: "fetch4_po", OpFetch4POC: "fetch4_po_c",
	OpINot: "i_not", OpIOr: "i_or", OpIAdd: "i_add", OpIMad: "i_mad", OpIMul: "i_mul",
	OpIEq: "i_eq", OpIGe: "i_ge", OpILt: "i_lt", OpINegate: "i_negate", OpINe: "i_ne",
	OpIShl: "i_shl", OpUShr: "u_shr", OpUDiv: "u_div", OpUMod: "u_mod", OpULt: "u_lt", OpUGe: "u_ge",
	OpFtoI: "ftoi", OpFtoU: "ftou", OpIToF: "itof", OpUToF: "utof", OpAnd: "and",
	OpCmovLogical: "cmov_logical", OpEq: "eq", OpExpVec: "exp_vec", OpGe: "ge", OpLogVec: "log_vec",
	OpLt: "lt", OpNe: "ne", OpRoundNear: "round_near", OpRoundNegInf: "round_neg_inf",
	OpRoundPlusInf: "round_plus_inf", OpRoundZero: "round_zero", OpRsqVec: "rsq_vec",
	OpSinVec: "sin_vec", OpCosVec: "cos_vec", OpSqrtVec: "sqrt_vec",
	OpDclNumThreadPerGroup: "dcl_num_thread_per_group", OpFence: "fence",
	OpLdsLoadVec: "lds_load_vec", OpLdsStoreVec: "lds_store_vec",
	OpDclUAV: "dcl_uav", OpDclStructUAV: "dcl_struct_uav", OpDclRawUAV: "dcl_raw_uav",
	OpUAVStructLoad: "uav_struct_load", OpUAVRawLoad: "uav_raw_load", OpUAVLoad: "uav_load",
	OpUAVStore: "uav_store", OpUAVStructStore: "uav_struct_store", OpUAVRawStore: "uav_raw_store",
	OpUAVAdd: "uav_add", OpUAVReadAdd: "uav_read_add",
	OpDclStructSRV: "dcl_struct_srv", OpDclRawSRV: "dcl_raw_srv", OpSrvStructLoad: "srv_struct_load",
	OpDclGlobalFlags: "dcl_global_flags", OpUBitExtract: "u_bit_extract",
}

// String returns the idiomatic AMDIL mnemonic for op, or "unknown" for an
// opcode with no entry in the name table.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}
