package folding

import (
	"psls/internal/source"
	"psls/internal/token"
)

type bracketEntry struct {
	line uint32
	char uint32
}

// matchBrackets pairs open and close delimiters into generic folds with a
// single LIFO stack. Matching is purely by stack order, never by spelling:
// '@{' and '{' both close on a bare '}', and which closer ends which
// opener falls out of nesting alone. A stray closer is discarded, and
// opens still pending at end of input never fold.
func matchBrackets(file *source.File, toks []token.Token, mask hereStringMask) []Range {
	stack := make([]bracketEntry, 0, 8)
	ranges := make([]Range, 0, 8)
	for _, tok := range toks {
		if mask.covers(tok.Span.Start) {
			continue
		}
		switch {
		case tok.Kind.IsOpenBracket():
			// The fold starts just past the opener's last character.
			line, char := pos(file, tok.Span.End)
			stack = append(stack, bracketEntry{line: line, char: char})
		case tok.Kind.IsCloseBracket():
			if len(stack) == 0 {
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			endLine, endChar := pos(file, tok.Span.Start)
			if open.line >= endLine {
				continue
			}
			ranges = append(ranges, Range{
				StartLine:      open.line,
				StartCharacter: open.char,
				EndLine:        endLine,
				EndCharacter:   endChar,
			})
		}
	}
	return ranges
}
