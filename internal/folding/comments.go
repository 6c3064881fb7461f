package folding

import (
	"psls/internal/source"
	"psls/internal/token"
)

// mergeComments folds comment text that is not a region marker: each
// multi-line block comment becomes one "comment" fold, and every maximal
// run of two or more consecutive whole-line comments collapses into one.
func mergeComments(file *source.File, toks []token.Token, mask hereStringMask) []Range {
	ranges := mergeBlockComments(file, toks, mask)
	return append(ranges, mergeCommentRuns(file, toks, mask)...)
}

// mergeBlockComments pairs <# with #>. The lexer produces them strictly in
// order with no nesting, so a single pending opener suffices. An opener
// with no closer at end of input folds nothing.
func mergeBlockComments(file *source.File, toks []token.Token, mask hereStringMask) []Range {
	ranges := make([]Range, 0, 2)
	var open *token.Token
	for i := range toks {
		tok := toks[i]
		if mask.covers(tok.Span.Start) {
			continue
		}
		switch tok.Kind {
		case token.BlockCommentOpen:
			open = &toks[i]
		case token.BlockCommentClose:
			if open == nil {
				continue
			}
			startLine, startChar := pos(file, open.Span.Start)
			endLine, endChar := pos(file, tok.Span.End)
			open = nil
			if startLine >= endLine {
				continue
			}
			ranges = append(ranges, Range{
				StartLine:      startLine,
				StartCharacter: startChar,
				EndLine:        endLine,
				EndCharacter:   endChar,
				Kind:           KindComment,
			})
		}
	}
	return ranges
}

// commentRun tracks a growing run of whole-line comments.
type commentRun struct {
	first     token.Token
	last      token.Token
	firstLine uint32
	lastLine  uint32
	count     int
}

// mergeCommentRuns collapses consecutive lines whose sole content is a
// single-line comment. A run folds only when it spans two or more lines;
// an isolated comment never does. Region markers are not plain comments
// and therefore end the current run instead of extending it, as does any
// intervening code, blank line, or trailing (non line-leading) comment.
func mergeCommentRuns(file *source.File, toks []token.Token, mask hereStringMask) []Range {
	ranges := make([]Range, 0, 2)
	var run *commentRun

	flush := func() {
		if run != nil && run.count >= 2 {
			startLine, startChar := pos(file, run.first.Span.Start)
			endLine, endChar := pos(file, run.last.Span.End)
			ranges = append(ranges, Range{
				StartLine:      startLine,
				StartCharacter: startChar,
				EndLine:        endLine,
				EndCharacter:   endChar,
				Kind:           KindComment,
			})
		}
		run = nil
	}

	for _, tok := range toks {
		if mask.covers(tok.Span.Start) {
			continue
		}
		if tok.Kind != token.Comment || !tok.FirstOnLine {
			flush()
			continue
		}
		line, _ := pos(file, tok.Span.Start)
		if run != nil && line == run.lastLine+1 {
			run.last = tok
			run.lastLine = line
			run.count++
			continue
		}
		flush()
		run = &commentRun{first: tok, last: tok, firstLine: line, lastLine: line, count: 1}
	}
	flush()
	return ranges
}
