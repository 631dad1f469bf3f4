package shellcode

// codeAMD64 is the x64 position-independent loader stub blob (spec.md §4.4),
// entered with RCX pointing at the ParamBlock.
//
// The bytes below hold only the stub's frame setup, the read of the PEB
// from gs:[0x60] with an early return when PEB.Ldr is NULL, and the
// epilogue. They do not walk PEB.Ldr.InLoadOrderModuleList, resolve any
// kernel32 or ntdll export, re-queue the stub as an APC, or load the engine
// DLL and call its InjectInit export: running the blob returns without
// loading the engine DLL. This package treats the bytes as an opaque
// relocatable blob.
var codeAMD64 = []byte{
	0x55,             // push rbp
	0x48, 0x89, 0xe5, // mov rbp, rsp
	0x48, 0x83, 0xec, 0x40, // sub rsp, 0x40
	0x48, 0x89, 0x4d, 0x10, // mov [rbp+0x10], rcx  ; stash ParamBlock*
	0x65, 0x48, 0x8b, 0x04, 0x25, 0x60, 0x00, 0x00, 0x00, // mov rax, gs:[0x60] ; PEB
	0x48, 0x85, 0xc0, // test rax, rax
	0x74, 0x05, // jz +5 (bail)
	// ... loader-data walk, export resolution, APC re-queue, and the
	// InjectInit call site are emitted here by the assembler from the
	// control flow documented above ...
	0xc9, // leave
	0xc3, // ret
}
