package lexer

import (
	"psls/internal/source"
	"psls/internal/token"
)

// Lexer is a shallow scanner over a script file. It classifies the
// delimiters and comments the folding engine cares about and coalesces
// everything else into Text runs. Here-string interiors are scanned
// naively on purpose; the folding engine masks them out afterwards. The
// one thing the scanner must not do inside an interior is open a block
// comment, since that consumes across lines.
type Lexer struct {
	cursor      Cursor
	opts        Options
	look        *token.Token // 1-token buffer for block comment closers
	firstOnLine bool
	// hereOpen is the opener kind of the here-string currently in flight,
	// or Invalid. While a literal is open, '<#' must stay inert: a block
	// comment scan would run across lines and swallow the closer.
	hereOpen token.Kind
}

// New creates a lexer for the provided file.
func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		cursor:      NewCursor(file),
		opts:        opts,
		firstOnLine: true,
	}
}

// Scan tokenizes the whole file. The trailing EOF token is not included.
func Scan(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	toks := make([]token.Token, 0, 64)
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// Next returns the next significant token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()

		switch ch {
		case '\n':
			lx.cursor.Bump()
			lx.firstOnLine = true
			continue
		case ' ', '\t', '\r':
			lx.cursor.Bump()
			continue
		}

		first := lx.firstOnLine
		lx.firstOnLine = false

		switch {
		case ch == '#':
			return lx.scanComment(first)

		case ch == '<' && lx.cursor.PeekAt(1) == '#' && lx.hereOpen == token.Invalid:
			return lx.scanBlockComment(first)

		case ch == '@':
			if tok, ok := lx.scanAtSigil(first); ok {
				return tok
			}

		case ch == '$':
			switch lx.cursor.PeekAt(1) {
			case '(':
				return lx.scanDelim(token.SubexprParen, 2, first)
			case '{':
				return lx.scanDelim(token.VarBrace, 2, first)
			}

		case ch == '"':
			if first && lx.cursor.PeekAt(1) == '@' {
				return lx.scanHereStringClose(token.HereStringCloseDouble, first)
			}
			if tok, ok := lx.scanStringLiteral('"', first); ok {
				return tok
			}
			continue

		case ch == '\'':
			if first && lx.cursor.PeekAt(1) == '@' {
				return lx.scanHereStringClose(token.HereStringCloseSingle, first)
			}
			if tok, ok := lx.scanStringLiteral('\'', first); ok {
				return tok
			}
			continue

		case ch == '(':
			return lx.scanDelim(token.LParen, 1, first)
		case ch == '{':
			return lx.scanDelim(token.LBrace, 1, first)
		case ch == '[':
			return lx.scanDelim(token.LBracket, 1, first)
		case ch == ')':
			return lx.scanDelim(token.RParen, 1, first)
		case ch == '}':
			return lx.scanDelim(token.RBrace, 1, first)
		case ch == ']':
			return lx.scanDelim(token.RBracket, 1, first)
		}

		if tok, ok := lx.scanText(first); ok {
			return tok
		}
	}

	return token.Token{
		Kind: token.EOF,
		Span: lx.cursor.SpanFrom(lx.cursor.Mark()),
		Text: "",
	}
}

func (lx *Lexer) scanDelim(kind token.Kind, width uint32, first bool) token.Token {
	mark := lx.cursor.Mark()
	for i := uint32(0); i < width; i++ {
		lx.cursor.Bump()
	}
	return lx.tokenFrom(kind, mark, first)
}

// scanComment consumes '#' to end of line and classifies region markers.
func (lx *Lexer) scanComment(first bool) token.Token {
	mark := lx.cursor.Mark()
	lx.cursor.Bump() // '#'

	word := make([]byte, 0, len("endregion"))
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if !isLetter(b) || len(word) == len("endregion") {
			break
		}
		word = append(word, lx.cursor.Bump())
	}
	boundary := lx.cursor.EOF() || !isWordByte(lx.cursor.Peek())

	kind := token.Comment
	switch {
	case boundary && equalFold(word, "region"):
		kind = token.RegionOpen
	case boundary && equalFold(word, "endregion"):
		kind = token.RegionClose
	}

	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		lx.cursor.Bump()
	}
	return lx.tokenFrom(kind, mark, first)
}

// scanBlockComment consumes '<#' .. '#>' as a unit. The opener is returned
// now; a found closer is stashed in the lookahead buffer. Interior text
// never reaches the token stream. An unterminated comment simply produces
// no closer token.
func (lx *Lexer) scanBlockComment(first bool) token.Token {
	mark := lx.cursor.Mark()
	lx.cursor.Bump() // '<'
	lx.cursor.Bump() // '#'
	open := lx.tokenFrom(token.BlockCommentOpen, mark, first)

	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '\n' {
			lx.cursor.Bump()
			lx.firstOnLine = true
			continue
		}
		if lx.cursor.Peek() == '#' && lx.cursor.PeekAt(1) == '>' {
			closeFirst := lx.firstOnLine
			lx.firstOnLine = false
			closeMark := lx.cursor.Mark()
			lx.cursor.Bump()
			lx.cursor.Bump()
			closeTok := lx.tokenFrom(token.BlockCommentClose, closeMark, closeFirst)
			lx.look = &closeTok
			return open
		}
		if lx.cursor.Peek() != ' ' && lx.cursor.Peek() != '\t' && lx.cursor.Peek() != '\r' {
			lx.firstOnLine = false
		}
		lx.cursor.Bump()
	}
	return open
}

// scanAtSigil handles the '@' family: @( @{ and here-string openers. A
// here-string opener only counts when nothing but whitespace follows it on
// the line. The second result is false when '@' is plain text.
func (lx *Lexer) scanAtSigil(first bool) (token.Token, bool) {
	switch lx.cursor.PeekAt(1) {
	case '(':
		return lx.scanDelim(token.ArrayParen, 2, first), true
	case '{':
		return lx.scanDelim(token.HashBrace, 2, first), true
	case '"':
		if lx.restOfLineBlank(2) {
			return lx.scanHereStringOpen(token.HereStringOpenDouble, first), true
		}
	case '\'':
		if lx.restOfLineBlank(2) {
			return lx.scanHereStringOpen(token.HereStringOpenSingle, first), true
		}
	}
	return token.Token{}, false
}

// scanHereStringOpen emits an opener and arms the interior state. An opener
// seen while another literal is already open is emitted but does not take
// over: the first closer of the outer kind ends the literal, the same
// pairing the folding mask applies.
func (lx *Lexer) scanHereStringOpen(kind token.Kind, first bool) token.Token {
	tok := lx.scanDelim(kind, 2, first)
	if lx.hereOpen == token.Invalid {
		lx.hereOpen = kind
	}
	return tok
}

// scanHereStringClose emits a closer and, when it ends the literal in
// flight, disarms the interior state.
func (lx *Lexer) scanHereStringClose(kind token.Kind, first bool) token.Token {
	tok := lx.scanDelim(kind, 2, first)
	if kind.ClosesHereString(lx.hereOpen) {
		lx.hereOpen = token.Invalid
	}
	return tok
}

// scanStringLiteral consumes a single-line quoted string so its interior
// cannot leak bracket tokens. Doubled quotes escape themselves; backtick
// escapes the next byte inside double quotes. An unterminated string runs
// to end of line. The result is a Text token, emitted only when EmitText
// is set.
func (lx *Lexer) scanStringLiteral(quote byte, first bool) (token.Token, bool) {
	mark := lx.cursor.Mark()
	lx.cursor.Bump() // opening quote
	for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
		b := lx.cursor.Bump()
		if b == '`' && quote == '"' && !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
			continue
		}
		if b == quote {
			if lx.cursor.Peek() == quote {
				lx.cursor.Bump()
				continue
			}
			break
		}
	}
	if !lx.opts.EmitText {
		return token.Token{}, false
	}
	return lx.tokenFrom(token.Text, mark, first), true
}

func (lx *Lexer) scanText(first bool) (token.Token, bool) {
	mark := lx.cursor.Mark()
	lx.cursor.Bump()
	for !lx.cursor.EOF() && !isTextBreak(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if !lx.opts.EmitText {
		return token.Token{}, false
	}
	return lx.tokenFrom(token.Text, mark, first), true
}

func (lx *Lexer) tokenFrom(kind token.Kind, mark Mark, first bool) token.Token {
	span := lx.cursor.SpanFrom(mark)
	return token.Token{
		Kind:        kind,
		Span:        span,
		Text:        string(lx.cursor.File.Content[span.Start:span.End]),
		FirstOnLine: first,
	}
}

// restOfLineBlank reports whether only whitespace remains between the
// offset (relative to the cursor) and the end of the line.
func (lx *Lexer) restOfLineBlank(from uint32) bool {
	for i := from; lx.cursor.Off+i < uint32(len(lx.cursor.File.Content)); i++ {
		switch lx.cursor.File.Content[lx.cursor.Off+i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			// keep looking
		default:
			return false
		}
	}
	return true
}

func isLetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isWordByte(b byte) bool {
	return isLetter(b) || b >= '0' && b <= '9' || b == '_'
}

func isTextBreak(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n',
		'(', ')', '{', '}', '[', ']',
		'#', '<', '@', '$', '"', '\'':
		return true
	}
	return false
}

func equalFold(word []byte, keyword string) bool {
	if len(word) != len(keyword) {
		return false
	}
	for i := 0; i < len(word); i++ {
		b := word[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if b != keyword[i] {
			return false
		}
	}
	return true
}
