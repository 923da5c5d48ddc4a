package httpapi

import (
	"encoding/json"
	"net/http"
)

type locksActionRequest struct {
	Action     string `json:"action"`
	FilePath   string `json:"filePath"`
	AgentID    string `json:"agentId"`
	Intent     string `json:"intent"`
	UserPrompt string `json:"userPrompt"`
}

func (s *Server) listLocks(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	projectID, cerr := s.resolveProjectID(r.Context(), r.URL.Query().Get("projectName"), identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}
	result := s.facade.ListLocks(r.Context(), projectID)
	if !result.IsOk() {
		writeError(w, result.Err)
		return
	}
	writeSuccess(w, map[string]any{"locks": result.Value})
}

func (s *Server) postLocksAction(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req locksActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequestErr("invalid request body"))
		return
	}

	projectID, cerr := s.resolveProjectID(r.Context(), r.URL.Query().Get("projectName"), identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	switch req.Action {
	case "lock":
		result := s.facade.ProposeFileAccess(r.Context(), projectID, req.AgentID, req.FilePath, req.Intent, req.UserPrompt)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, result.Value)
	case "unlock":
		result := s.facade.ReleaseLock(r.Context(), projectID, req.FilePath)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, map[string]any{"success": true})
	default:
		writeError(w, badRequestErr("unknown action: "+req.Action))
	}
}
