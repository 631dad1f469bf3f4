package shellcode

import "fmt"

// Arch identifies the target process architecture the blob is assembled for.
type Arch int

const (
	Arch386 Arch = iota
	ArchAMD64
	ArchARM64
)

// Blob is a ready-to-write shellcode page: machine code followed immediately
// by its parameter block, plus the entry point's offset from the start of
// the page (always 0 — the stub is entered at its first byte).
type Blob struct {
	Arch       Arch
	Code       []byte
	ParamBlock []byte
	EntryRVA   uint32
}

// Build assembles the position-independent loader stub for arch and appends
// the marshaled parameter block immediately after it, mirroring how the
// engine's own shellcode_<arch>.bin blobs are laid out (spec.md §4.4: no
// imports, no static strings in .rdata — every string the stub touches is
// built on the stack at run time inside the machine code itself).
func Build(arch Arch, pb *ParamBlock) (*Blob, error) {
	code, err := codeForArch(arch)
	if err != nil {
		return nil, err
	}
	paramBytes, err := pb.Marshal()
	if err != nil {
		return nil, err
	}
	return &Blob{
		Arch:       arch,
		Code:       code,
		ParamBlock: paramBytes,
		EntryRVA:   0,
	}, nil
}

// TotalSize returns the number of bytes Build's caller must allocate in the
// target process (code + parameter block, page-rounding is the caller's job).
func (b *Blob) TotalSize() int { return len(b.Code) + len(b.ParamBlock) }

// ParamBlockRVA returns the offset of the parameter block from the start of
// the page once the code and parameter block are concatenated — the address
// the injector must pass as the shellcode's argument.
func (b *Blob) ParamBlockRVA() uint32 { return uint32(len(b.Code)) }

func codeForArch(arch Arch) ([]byte, error) {
	switch arch {
	case Arch386:
		return code386, nil
	case ArchAMD64:
		return codeAMD64, nil
	case ArchARM64:
		return codeARM64, nil
	default:
		return nil, fmt.Errorf("shellcode: unsupported architecture %d", arch)
	}
}
