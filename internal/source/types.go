package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM was stripped on load and must be
	// re-emitted on write.
	FileHadBOM
	// FileNormalizedCRLF indicates CRLF line endings were normalized to LF on
	// load and must be re-emitted on write.
	FileNormalizedCRLF
)

// File captures metadata and content for a single source file.
// Content is always BOM-free and LF-normalized; Flags record what was
// stripped so Restore can reproduce the original byte stream.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
