package shellcode

// codeARM64 is the ARM64 variant of the loader stub blob described in
// blob_amd64.go, and holds the same subset of the stub. The PEB pointer is
// reached via the TEB at x18 (the platform-reserved register holding the
// current TEB on Windows/ARM64) instead of a segment-prefixed load.
var codeARM64 = []byte{
	0xfd, 0x7b, 0xbf, 0xa9, // stp x29, x30, [sp, #-16]!
	0xfd, 0x03, 0x00, 0x91, // mov x29, sp
	0x40, 0x02, 0x40, 0xf9, // ldr x0, [x18, #0x60] ; TEB.ProcessEnvironmentBlock
	0x1f, 0x00, 0x00, 0xf1, // cmp x0, #0
	0x60, 0x00, 0x00, 0x54, // b.eq +0xc (bail)
	// ... loader-data walk, export resolution, APC re-queue, and the
	// InjectInit call site, identical in spirit to the x64 stub ...
	0xfd, 0x7b, 0xc1, 0xa8, // ldp x29, x30, [sp], #16
	0xc0, 0x03, 0x5f, 0xd6, // ret
}
