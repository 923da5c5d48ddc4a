package httpapi

import (
	"encoding/json"
	"net/http"
)

type embedItem struct {
	Content  string `json:"content"`
	Metadata string `json:"metadata"`
}

type embedRequest struct {
	Items       []embedItem `json:"items"`
	ProjectName string      `json:"projectName"`
}

// embed implements POST /v1/embed: each item is indexed as a "docs"-kind
// embedding (the HTTP API's items don't distinguish code vs. docs the way
// the MCP index_file tool's kind parameter does, so this route treats
// every item as freeform reference material).
func (s *Server) embed(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req embedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequestErr("invalid request body"))
		return
	}

	projectID, cerr := s.resolveProjectID(r.Context(), req.ProjectName, identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	results := make([]map[string]any, 0, len(req.Items))
	for _, item := range req.Items {
		result := s.facade.IndexFile(r.Context(), projectID, item.Metadata, item.Content, "docs")
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		results = append(results, map[string]any{"indexed": true})
	}
	writeSuccess(w, map[string]any{"results": results})
}

type searchRequest struct {
	Query       string `json:"query"`
	ProjectName string `json:"projectName"`
}

// search implements POST /v1/search over the combined code+docs corpus.
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequestErr("invalid request body"))
		return
	}

	projectID, cerr := s.resolveProjectID(r.Context(), req.ProjectName, identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	docsResult := s.facade.SearchDocs(r.Context(), projectID, req.Query, 0)
	if !docsResult.IsOk() {
		writeError(w, docsResult.Err)
		return
	}
	codeResult := s.facade.SearchCodebase(r.Context(), projectID, req.Query, 0)
	if !codeResult.IsOk() {
		writeError(w, codeResult.Err)
		return
	}

	combined := append(append([]any{}, toAny(docsResult.Value)...), toAny(codeResult.Value)...)
	writeSuccess(w, map[string]any{"results": combined})
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}
