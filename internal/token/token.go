package token

import (
	"psls/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
	// FirstOnLine is set when nothing but whitespace precedes the token on
	// its line. Comment-run detection and here-string closers depend on it.
	FirstOnLine bool
}

// IsComment reports whether the token is comment text of any flavor,
// including region markers.
func (t Token) IsComment() bool {
	switch t.Kind {
	case Comment, BlockCommentOpen, BlockCommentClose, RegionOpen, RegionClose:
		return true
	default:
		return false
	}
}

// IsBracket reports whether the token opens or closes a syntactic block.
func (t Token) IsBracket() bool {
	return t.Kind.IsOpenBracket() || t.Kind.IsCloseBracket()
}
