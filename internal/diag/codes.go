package diag

import "fmt"

// Code is a compact, stable identifier for a diagnostic kind.
type Code uint16

const (
	// UnknownCode is the zero value; real diagnostics never carry it.
	UnknownCode Code = 0

	// Input and interchange (1000-1999)
	IOInfo           Code = 1000
	IOLoadFileError  Code = 1001
	IOWriteFileError Code = 1002
	ASTDecodeError   Code = 1003
	ASTUnknownKind   Code = 1004

	// Polyfill catalog (2000-2999)
	CatalogInfo           Code = 2000
	CatalogBadTableLine   Code = 2001
	CatalogUnknownVersion Code = 2002
	CatalogUnsortedTable  Code = 2003

	// Injection pass (3000-3999)
	InjectInfo Code = 3000
	// InjectInsufficientOutputVersion reports a usage of a built-in whose
	// hand-written shim cannot be expressed at the requested output level.
	// Registered default-off: the compilation proceeds either way.
	InjectInsufficientOutputVersion Code = 3001
	InjectMalformedRegistration     Code = 3002
	InjectUnknownLibrary            Code = 3003
)

func (c Code) String() string {
	return fmt.Sprintf("SHIM%04d", uint16(c))
}

// defaultOff lists codes that are recognised but suppressed unless the
// configuration enables them explicitly.
var defaultOff = map[Code]bool{
	InjectInsufficientOutputVersion: true,
}

// DefaultOff reports whether code is suppressed by default.
func DefaultOff(c Code) bool {
	return defaultOff[c]
}
