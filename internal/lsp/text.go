package lsp

import (
	"strings"
	"unicode/utf8"
)

// applyChanges applies document edits in order. A change without a range
// replaces the whole buffer; ranged changes splice at UTF-16 positions,
// the protocol's default encoding.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := clampOffset(text, offsetForPosition(text, change.Range.Start))
		end := clampOffset(text, offsetForPosition(text, change.Range.End))
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func clampOffset(text string, off int) int {
	if off < 0 {
		return 0
	}
	if off > len(text) {
		return len(text)
	}
	return off
}

// offsetForPosition maps a protocol position to a byte offset. Positions
// past the end of a line or of the document clamp to the nearest valid
// offset.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	off := lineStart(text, pos.Line)
	if off < 0 {
		return len(text)
	}
	return advanceUTF16(text, off, pos.Character)
}

// lineStart returns the byte offset where the zero-based line begins, or
// -1 when the document has fewer lines.
func lineStart(text string, line int) int {
	off := 0
	for ; line > 0; line-- {
		nl := strings.IndexByte(text[off:], '\n')
		if nl < 0 {
			return -1
		}
		off += nl + 1
	}
	return off
}

// advanceUTF16 walks forward from off by want UTF-16 code units, stopping
// at the end of the line. A position that would split a surrogate pair
// resolves to the offset before the rune.
func advanceUTF16(text string, off, want int) int {
	units := 0
	for off < len(text) && units < want {
		if text[off] == '\n' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[off:])
		units++
		if r > 0xFFFF {
			units++
		}
		if units > want {
			break
		}
		off += size
	}
	return off
}
