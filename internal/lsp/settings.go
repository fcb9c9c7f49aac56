package lsp

import "encoding/json"

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return nil
	}
	if s.applySettings(params.Settings) {
		s.scheduleDiagnostics()
	}
	return nil
}

// applySettings overlays {"lectic": {...}} on the live settings and
// reports whether anything changed.
func (s *Server) applySettings(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var settings lspSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return false
	}
	in := settings.Lectic
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.settings
	if in.DebounceMS != nil && *in.DebounceMS >= 0 {
		s.settings.DebounceMS = *in.DebounceMS
	}
	if in.MaxDiagnostics != nil && *in.MaxDiagnostics >= 0 {
		s.settings.MaxDiagnostics = *in.MaxDiagnostics
	}
	if in.FetchModels != nil {
		s.settings.FetchModels = *in.FetchModels
	}
	if in.PreviewBytes != nil && *in.PreviewBytes > 0 {
		s.settings.PreviewBytes = *in.PreviewBytes
	}
	if in.GlobLimit != nil && *in.GlobLimit > 0 {
		s.settings.GlobLimit = *in.GlobLimit
	}
	return s.settings != before
}
