package types

// ContentStatus records what happened when a requested document was
// resolved and read.
type ContentStatus string

const (
	// ContentStatusExtracted means text was extracted
	ContentStatusExtracted ContentStatus = "extracted"
	// ContentStatusSizeOnly means the artifact exists but only its size is reported
	ContentStatusSizeOnly ContentStatus = "size_only"
	// ContentStatusNotFound means no artifact matched the requested name
	ContentStatusNotFound ContentStatus = "not_found"
)

// String returns the string representation of the status
func (s ContentStatus) String() string {
	return string(s)
}
