package modapi

// Disassembler is the external instruction-decoding collaborator
// `disasm(addr, out_result)` is built on (spec.md §4.9, §5 Non-goals: "the
// disassembler used only to satisfy a mod-API call" is out of scope). On
// ARM64, every instruction is a fixed 4 bytes and a real implementation may
// skip decoding the mnemonic entirely; on x86/x64 it must walk prefixes,
// opcode and ModRM/SIB/displacement/immediate bytes.
type Disassembler interface {
	// Decode reads the instruction at addr in the calling process's own
	// address space and returns its length in bytes plus a short mnemonic
	// the mod can log (e.g. "mov", "jmp"); mnemonic is best-effort and may
	// be empty.
	Decode(addr uintptr) (length int, mnemonic string, err error)
}

// Disasm implements the mod-facing `disasm(addr, out_result)` contract:
// decode one instruction via the configured Disassembler.
func (m *LoadedMod) Disasm(d Disassembler, addr uintptr) (length int, mnemonic string, err error) {
	return d.Decode(addr)
}
