package source

import (
	"bytes"
	"path/filepath"
	"slices"

	"golang.org/x/text/encoding/unicode"
)

// normalizeCRLF rewrites every \r\n to \n, leaving lone \r untouched.
// The second result reports whether anything changed.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// decodeUTF16 transcodes UTF-16 content (either endianness, BOM required)
// to UTF-8. Editors on Windows regularly save scripts as UTF-16LE, so disk
// loads have to accept it. Content without a UTF-16 BOM is returned as is.
func decodeUTF16(content []byte) ([]byte, bool) {
	if len(content) < 2 {
		return content, false
	}
	le := content[0] == 0xFF && content[1] == 0xFE
	be := content[0] == 0xFE && content[1] == 0xFF
	if !le && !be {
		return content, false
	}
	endian := unicode.LittleEndian
	if be {
		endian = unicode.BigEndian
	}
	dec := unicode.UTF16(endian, unicode.UseBOM).NewDecoder()
	out, err := dec.Bytes(content)
	if err != nil {
		// Broken surrogate pairs and the like: keep the raw bytes rather
		// than failing the load.
		return content, false
	}
	return out, true
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// toLineCol converts a byte offset into a 1-based line/column pair.
// A newline byte belongs to the line it terminates.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Binary search for the largest lineIdx[i] strictly below off; the
	// offset then sits on line i+1 (0-based).
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	startOff := lineIdx[hi] + 1
	return LineCol{Line: uint32(hi) + 2, Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// One canonical spelling for cross-platform diffs and map keys.
	return filepath.ToSlash(filepath.Clean(p))
}
