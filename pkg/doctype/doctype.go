package doctype

import "strings"

// Canonical document types for construction paperwork.
const (
	Contract      = "contract"
	Specification = "specification"
	RFI           = "rfi"
	Submittal     = "submittal"
	Drawing       = "drawing"
	Unknown       = "unknown"
)

var known = map[string]bool{
	Contract:      true,
	Specification: true,
	RFI:           true,
	Submittal:     true,
	Drawing:       true,
	Unknown:       true,
}

// IsValid reports whether t is a canonical type.
func IsValid(t string) bool {
	return known[t]
}

// Normalize lowercases and validates an externally supplied type, mapping
// anything unrecognized to Unknown.
func Normalize(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" || !known[t] {
		return Unknown
	}
	return t
}

// InferFromFilename classifies a document by keywords in its filename.
// Checks run in a fixed order so a name matching several keywords gets a
// deterministic answer ("contract_spec.pdf" is a contract).
func InferFromFilename(filename string) string {
	name := strings.ToLower(filename)

	switch {
	case strings.Contains(name, "contract"):
		return Contract
	case strings.Contains(name, "spec"):
		return Specification
	case strings.Contains(name, "rfi"):
		return RFI
	case strings.Contains(name, "submittal"):
		return Submittal
	case strings.Contains(name, "drawing"), strings.Contains(name, "dwg"):
		return Drawing
	default:
		return Unknown
	}
}
