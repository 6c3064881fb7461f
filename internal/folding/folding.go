// Package folding computes foldable regions of a script from its token
// stream: bracket blocks, explicit #region markers, comment blocks, and
// here-strings. All matching is tolerant: orphan delimiters are data, not
// errors, and malformed mid-edit sources still produce a best-effort
// result.
package folding

import (
	"errors"
	"fmt"

	"psls/internal/source"
	"psls/internal/token"
)

// Fold kinds understood by LSP clients. Generic blocks carry no kind.
const (
	KindRegion  = "region"
	KindComment = "comment"
)

// Range is one foldable span, zero-based lines and characters.
type Range struct {
	StartLine      uint32 `json:"startLine"`
	StartCharacter uint32 `json:"startCharacter"`
	EndLine        uint32 `json:"endLine"`
	EndCharacter   uint32 `json:"endCharacter"`
	Kind           string `json:"kind,omitempty"`
}

// Options configures folding computation.
type Options struct {
	// IncludeLastLine keeps a fold's closing line inside the collapsed
	// span. When false, every range's EndLine is shifted up by one so the
	// closing delimiter stays visible in the editor.
	IncludeLastLine bool
}

// ErrMalformedTokens reports a token stream that violates the lexer
// contract. The engine does not try to repair such input.
var ErrMalformedTokens = errors.New("malformed token stream")

// Compute returns the ordered, deduplicated folding ranges for one file.
// It is a pure function: no state survives the call, and identical input
// always yields identical output.
func Compute(file *source.File, toks []token.Token, opts Options) ([]Range, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: nil file", ErrMalformedTokens)
	}
	if err := validateTokens(file, toks); err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return []Range{}, nil
	}

	mask := buildHereStringMask(toks)

	ranges := make([]Range, 0, 16)
	ranges = append(ranges, matchBrackets(file, toks, mask)...)
	ranges = append(ranges, matchRegions(file, toks, mask)...)
	ranges = append(ranges, mergeComments(file, toks, mask)...)
	ranges = append(ranges, hereStringRanges(file, mask)...)

	ranges = dedupeAndSort(ranges)

	if !opts.IncludeLastLine {
		for i := range ranges {
			// Keep the closing delimiter's line visible. The character
			// offset intentionally stays on the original line.
			ranges[i].EndLine--
		}
	}
	return ranges, nil
}

func validateTokens(file *source.File, toks []token.Token) error {
	limit := uint32(len(file.Content))
	for i, tok := range toks {
		if tok.Span.File != file.ID {
			return fmt.Errorf("%w: token %d belongs to file %d, want %d", ErrMalformedTokens, i, tok.Span.File, file.ID)
		}
		if tok.Span.Start > tok.Span.End || tok.Span.End > limit {
			return fmt.Errorf("%w: token %d has span %v outside content of %d bytes", ErrMalformedTokens, i, tok.Span, limit)
		}
	}
	return nil
}

// pos converts a byte offset into a zero-based line/character pair.
func pos(file *source.File, off uint32) (line, char uint32) {
	lc := file.LineCol(off)
	return lc.Line - 1, lc.Col - 1
}
