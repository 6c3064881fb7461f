package lsp

import (
	"encoding/json"

	"psls/internal/folding"
	"psls/internal/lexer"
	"psls/internal/source"
)

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, -32602, "invalid params")
		}
	}
	uri := canonicalURI(params.TextDocument.URI)
	text, ok := s.documentText(uri)
	if !ok {
		return s.sendResponse(msg.ID, []folding.Range{})
	}
	ranges, err := computeFoldingRanges(uri, text, s.currentFoldingOptions())
	if err != nil {
		s.logf("foldingRange failed: uri=%s err=%v", uri, err)
		return s.sendError(msg.ID, -32603, "folding computation failed")
	}
	return s.sendResponse(msg.ID, ranges)
}

// computeFoldingRanges tokenizes one document snapshot and runs the folding
// engine over it. Each call builds its own file set, so concurrent requests
// for different documents never share state.
func computeFoldingRanges(uri, text string, opts folding.Options) ([]folding.Range, error) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(uri, []byte(text)))
	toks := lexer.Scan(file, lexer.Options{})
	ranges, err := folding.Compute(file, toks, opts)
	if err != nil {
		return nil, err
	}
	if ranges == nil {
		ranges = []folding.Range{}
	}
	return ranges, nil
}
