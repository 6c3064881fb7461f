package driver

import (
	"psls/internal/lexer"
	"psls/internal/source"
	"psls/internal/token"
)

// TokenizeResult holds the token stream of a single file together with the
// FileSet that owns the file, so callers can resolve spans.
type TokenizeResult struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
}

// Tokenize loads a file from disk and scans it into tokens. Token text is
// materialized so callers can print a debug dump without re-slicing content.
func Tokenize(path string) (*TokenizeResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	tokens := lexer.Scan(file, lexer.Options{EmitText: true})

	return &TokenizeResult{
		FileSet: fs,
		File:    file,
		Tokens:  tokens,
	}, nil
}
