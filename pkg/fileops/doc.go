// Package fileops provides secure, atomic file operations for mcpforge.
//
// The package is built around three cooperating pieces:
//
// 1. **Resolver** - canonicalizes every requested path against a configured
// root directory and rejects anything that escapes it (path traversal,
// symlink hops). All reads, writes, edits, and removals go through it.
//
// 2. **Edit planner** - turns a set of byte-range edits over a file's
// original content into a validated, conflict-free application plan.
// Overlapping ranges are a hard error, never a silent merge.
//
// 3. **Writer** - performs crash-safe whole-file writes and planned range
// edits using write-to-temp-then-rename semantics. A concurrent reader
// observes either the old complete content or the new complete content,
// never a partial write. Writes to the same path are serialized by a
// per-path lock.
//
// # Example: applying range edits
//
//	w := fileops.NewWriter()
//	res, err := w.ApplyEdits(path, []fileops.Edit{
//	    {Start: 0, End: 5, Replacement: "HELLO"},
//	})
//	// On any failure the file keeps its prior content.
//
// Error taxonomy: *PathEscapeError marks a security boundary violation,
// *RangeError and *OverlapError mark malformed edit requests (both carry the
// offending range), and everything environmental is a wrapped os error that
// callers may retry since no partial state is left behind.
package fileops
