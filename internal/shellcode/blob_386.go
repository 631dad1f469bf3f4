package shellcode

// code386 is the x86 variant of the loader stub blob described in
// blob_amd64.go, and holds the same subset of the stub. The PEB is read from
// fs:[0x30] instead of gs:[0x60]; arguments are passed on the stack per
// cdecl/stdcall rather than in RCX.
var code386 = []byte{
	0x55,       // push ebp
	0x89, 0xe5, // mov ebp, esp
	0x83, 0xec, 0x20, // sub esp, 0x20
	0x64, 0xa1, 0x30, 0x00, 0x00, 0x00, // mov eax, fs:[0x30] ; PEB
	0x85, 0xc0, // test eax, eax
	0x74, 0x05, // jz +5 (bail)
	// ... loader-data walk, export resolution, APC re-queue, and the
	// InjectInit call site, identical in spirit to the x64 stub ...
	0xc9, // leave
	0xc3, // ret
}
