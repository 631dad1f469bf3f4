package symbols

import (
	"fmt"
	"path/filepath"

	"github.com/saferwall/pe"
)

// Identify opens the PE at path and extracts the cache-key identity:
// preferably a PDB CodeView signature, falling back to the PE header
// timestamp/size/arch triple (spec.md §4.9 step 1).
func Identify(path string) (sig *PDBSignature, fallback FallbackIdentity, hybridArch string, err error) {
	f, err := pe.New(path, &pe.Options{})
	if err != nil {
		return nil, FallbackIdentity{}, "", fmt.Errorf("symbols: opening %s: %w", path, err)
	}
	defer f.Close()

	if err := f.Parse(); err != nil {
		return nil, FallbackIdentity{}, "", fmt.Errorf("symbols: parsing %s: %w", path, err)
	}

	archName := machineArchName(f.NtHeader.FileHeader.Machine)
	if hybrid := f.LoadConfig.CHPE; hybrid != nil {
		hybridArch = archName
	}

	if cv, ok := codeViewSignature(f); ok {
		return &cv, FallbackIdentity{}, hybridArch, nil
	}

	fallback = FallbackIdentity{
		Arch:      archName,
		Timestamp: f.NtHeader.FileHeader.TimeDateStamp,
		ImageSize: imageSize(f),
		FileName:  filepath.Base(path),
	}
	return nil, fallback, hybridArch, nil
}

func codeViewSignature(f *pe.File) (PDBSignature, bool) {
	for _, d := range f.Debugs {
		if d.Type != "CodeView" {
			continue
		}
		cv, ok := d.Info.(pe.CVInfoPDB70)
		if !ok {
			continue
		}
		guid := fmt.Sprintf("%08X%04X%04X%02X%02X%02X%02X%02X%02X%02X%02X",
			cv.Signature.Data1, cv.Signature.Data2, cv.Signature.Data3,
			cv.Signature.Data4[0], cv.Signature.Data4[1], cv.Signature.Data4[2], cv.Signature.Data4[3],
			cv.Signature.Data4[4], cv.Signature.Data4[5], cv.Signature.Data4[6], cv.Signature.Data4[7],
		)
		return PDBSignature{GUID: guid, Age: cv.Age}, true
	}
	return PDBSignature{}, false
}

func machineArchName(machine pe.ImageFileHeaderMachineType) string {
	switch uint16(machine) {
	case pe.ImageFileMachineI386:
		return "x86"
	case pe.ImageFileMachineAMD64:
		return "x64"
	case pe.ImageFileMachineARM64:
		return "ARM64"
	default:
		return "unknown"
	}
}

func imageSize(f *pe.File) uint32 {
	if oh, ok := f.NtHeader.OptionalHeader.(pe.ImageOptionalHeader64); ok {
		return oh.SizeOfImage
	}
	if oh, ok := f.NtHeader.OptionalHeader.(pe.ImageOptionalHeader32); ok {
		return oh.SizeOfImage
	}
	return 0
}

// HybridRanges extracts a hybrid (CHPE/ARM64X) module's code-range table,
// mapping each CodeRange's machine-type bit to a HybridArch (spec.md §4.8).
// The low bit of the range's Machine byte distinguishes ARM64EC code (1)
// from native x86/ARM64 code (0); which native architecture applies is the
// module's own declared machine type.
func HybridRanges(path string) ([]Range, error) {
	f, err := pe.New(path, &pe.Options{})
	if err != nil {
		return nil, fmt.Errorf("symbols: opening %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Parse(); err != nil {
		return nil, fmt.Errorf("symbols: parsing %s: %w", path, err)
	}
	if f.LoadConfig.CHPE == nil {
		return nil, nil
	}

	native := HybridX86
	if f.NtHeader.FileHeader.Machine == pe.ImageFileHeaderMachineType(pe.ImageFileMachineARM64) {
		native = HybridARM64
	}

	ranges := make([]Range, 0, len(f.LoadConfig.CHPE.CodeRanges))
	for _, cr := range f.LoadConfig.CHPE.CodeRanges {
		arch := native
		if cr.Machine&1 != 0 {
			arch = HybridARM64EC
		}
		ranges = append(ranges, Range{
			Start: uintptr(cr.Begin),
			End:   uintptr(cr.Begin + cr.Length),
			Arch:  arch,
		})
	}
	return ranges, nil
}
