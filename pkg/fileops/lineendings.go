package fileops

import (
	"bytes"
	"os"
	"strings"
)

// Line-ending styles preserved by write operations.
const (
	LineEndingLF   = "\n"
	LineEndingCRLF = "\r\n"
)

// NormalizeToLF rewrites CRLF and lone CR line endings to LF.
func NormalizeToLF(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

// ApplyLineEndings converts LF-normalized content to the requested style.
func ApplyLineEndings(content, lineEnding string) string {
	if lineEnding != LineEndingCRLF {
		return content
	}
	return strings.ReplaceAll(content, "\n", "\r\n")
}

// DetectLineEndings reports the line-ending style of an existing file.
// Files that cannot be read or contain no CRLF sequences report LF.
func DetectLineEndings(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return LineEndingLF
	}
	if bytes.Contains(content, []byte("\r\n")) {
		return LineEndingCRLF
	}
	return LineEndingLF
}
