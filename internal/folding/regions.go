package folding

import (
	"psls/internal/source"
	"psls/internal/token"
)

// matchRegions pairs #region/#endregion marker comments into "region"
// folds. Markers get their own stack: they never interact with syntactic
// brackets, and ordinary LIFO semantics give nested regions one fold per
// pair. A dangling #endregion is dropped without disturbing the stack;
// unmatched opens are dropped at end of input.
func matchRegions(file *source.File, toks []token.Token, mask hereStringMask) []Range {
	var stack []token.Token
	ranges := make([]Range, 0, 4)
	for _, tok := range toks {
		if mask.covers(tok.Span.Start) {
			continue
		}
		switch tok.Kind {
		case token.RegionOpen:
			stack = append(stack, tok)
		case token.RegionClose:
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			marked := open.Span.Cover(tok.Span)
			startLine, startChar := pos(file, marked.Start)
			endLine, endChar := pos(file, marked.End)
			if startLine >= endLine {
				continue
			}
			ranges = append(ranges, Range{
				StartLine:      startLine,
				StartCharacter: startChar,
				EndLine:        endLine,
				EndCharacter:   endChar,
				Kind:           KindRegion,
			})
		}
	}
	return ranges
}
