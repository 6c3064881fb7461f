package folding

import (
	"psls/internal/source"
	"psls/internal/token"
)

// hereStringSpan records one here-string: the opening delimiter token and,
// when the literal is terminated, its closing delimiter.
type hereStringSpan struct {
	open   token.Token
	closer token.Token
	closed bool
	end    uint32 // exclusive mask end; EOF offset when unterminated
}

// hereStringMask is the set of byte spans later matchers must not look
// inside. Interiors of multi-line string literals frequently contain
// unbalanced brackets and stray '#' that are prose, not code.
type hereStringMask []hereStringSpan

// covers reports whether the offset falls inside a masked span. Delimiter
// tokens themselves are part of the span.
func (m hereStringMask) covers(off uint32) bool {
	for _, s := range m {
		masked := source.Span{File: s.open.Span.File, Start: s.open.Span.Start, End: s.end}
		if masked.Contains(off) {
			return true
		}
	}
	return false
}

// buildHereStringMask walks the token stream and pairs each here-string
// opener with the first closer of the matching quote kind that starts its
// line. Nesting is impossible by construction: the interior of an open
// literal can only ever be ended, not reopened. An opener with no closer
// masks through end of input and emits no fold.
func buildHereStringMask(toks []token.Token) hereStringMask {
	var mask hereStringMask
	for i := 0; i < len(toks); i++ {
		open := toks[i]
		if !open.Kind.IsHereStringOpen() {
			continue
		}
		span := hereStringSpan{open: open}
		for j := i + 1; j < len(toks); j++ {
			if toks[j].Kind.ClosesHereString(open.Kind) && toks[j].FirstOnLine {
				span.closer = toks[j]
				span.closed = true
				span.end = toks[j].Span.End
				i = j
				break
			}
		}
		if !span.closed {
			span.end = ^uint32(0)
			i = len(toks)
		}
		mask = append(mask, span)
	}
	return mask
}

// hereStringRanges emits one generic fold per terminated here-string,
// covering the interior only: from just past the opening delimiter to just
// before the closer's first character. Unterminated literals are not
// folds.
func hereStringRanges(file *source.File, mask hereStringMask) []Range {
	ranges := make([]Range, 0, len(mask))
	for _, s := range mask {
		if !s.closed {
			continue
		}
		startLine, startChar := pos(file, s.open.Span.End)
		endLine, endChar := pos(file, s.closer.Span.Start-1)
		if startLine >= endLine {
			continue
		}
		ranges = append(ranges, Range{
			StartLine:      startLine,
			StartCharacter: startChar,
			EndLine:        endLine,
			EndCharacter:   endChar,
		})
	}
	return ranges
}
