package fileops

import "fmt"

// PathEscapeError reports a requested path that resolves outside the
// configured root. It is a security boundary violation and is never
// retried automatically.
type PathEscapeError struct {
	Root string
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path %q escapes root %q", e.Path, e.Root)
}

// RangeError reports an edit whose range is malformed or falls outside the
// bounds of the file's original content.
type RangeError struct {
	Start  int
	End    int
	Length int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid edit range [%d,%d) over %d bytes: %s", e.Start, e.End, e.Length, e.Reason)
}

// OverlapError reports two requested edits that share at least one byte of
// the original content. Touching ranges (one ends where the next starts)
// are not overlaps.
type OverlapError struct {
	First  Edit
	Second Edit
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("edit range [%d,%d) overlaps [%d,%d)",
		e.First.Start, e.First.End, e.Second.Start, e.Second.End)
}
