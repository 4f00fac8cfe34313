package omni

import "fmt"

// ExtractionError indicates the archive could not be read or produced no
// usable files through either extraction path.
type ExtractionError struct {
	Message string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

// ArchiveTooLargeError is returned at construction when the archive exceeds
// the configured size ceiling, before any entry is read.
type ArchiveTooLargeError struct {
	Actual int64
	Limit  int64
}

func (e *ArchiveTooLargeError) Error() string {
	return fmt.Sprintf("archive is too large (%d bytes, limit %d bytes); raise the limit only if you trust the file", e.Actual, e.Limit)
}
