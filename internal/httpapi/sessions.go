package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nervecenter/nerve-center/internal/store"
)

type sessionSyncRequest struct {
	Title       string `json:"title"`
	Context     string `json:"context"`
	Metadata    string `json:"metadata"`
	ProjectName string `json:"projectName"`
}

// syncSession appends the caller's running session context to the
// project's notepad and hands back a correlation id for the client's own
// bookkeeping — there's no persisted "session" row until finalize.
func (s *Server) syncSession(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req sessionSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequestErr("invalid request body"))
		return
	}

	projectID, cerr := s.resolveProjectID(r.Context(), req.ProjectName, identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	text := req.Context
	if req.Title != "" {
		text = fmt.Sprintf("%s: %s", req.Title, req.Context)
	}
	agentID := identity.AgentID
	result := s.facade.UpdateSharedContext(r.Context(), projectID, agentID, text, "")
	if !result.IsOk() {
		writeError(w, result.Err)
		return
	}

	writeSuccess(w, map[string]any{
		"success":   true,
		"sessionId": store.GeneratePrefixedID("sync"),
		"projectId": projectID,
	})
}

type sessionFinalizeRequest struct {
	ProjectName string `json:"projectName"`
	Content     string `json:"content"`
}

// finalizeSession runs the archive-reset-purge sequence. The request's
// content field, when set, is appended to the notepad before archiving, so
// a caller's final summary is captured in the archive rather than lost.
func (s *Server) finalizeSession(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req sessionFinalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, badRequestErr("invalid request body"))
		return
	}

	projectID, cerr := s.resolveProjectID(r.Context(), req.ProjectName, identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}

	if req.Content != "" {
		agentID := identity.AgentID
		if appendResult := s.facade.UpdateSharedContext(r.Context(), projectID, agentID, req.Content, ""); !appendResult.IsOk() {
			writeError(w, appendResult.Err)
			return
		}
	}

	result := s.facade.FinalizeSession(r.Context(), projectID, req.ProjectName)
	if !result.IsOk() {
		writeError(w, result.Err)
		return
	}
	writeSuccess(w, map[string]any{"success": true})
}
