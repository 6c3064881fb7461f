package lexer

// Options configures lexer behavior.
type Options struct {
	// EmitText includes plain Text tokens in the output. The folding engine
	// does not need them; the tokenize debug command does.
	EmitText bool
}
