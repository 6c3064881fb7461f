package lsp

import "encoding/json"

type foldingConfig struct {
	includeLastLine bool
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	s.applySettings(params.Settings)
	return nil
}

func (s *Server) applySettings(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if settings.Psls.Folding.IncludeLastLine != nil {
		s.folding.includeLastLine = *settings.Psls.Folding.IncludeLastLine
	}
	if settings.Psls.LSP.Trace != nil {
		s.traceLSP = *settings.Psls.LSP.Trace
	}
}
