package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/nervecenter/nerve-center/internal/models"
	"github.com/nervecenter/nerve-center/internal/store"
)

type jobsActionRequest struct {
	Action       string             `json:"action"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Priority     models.JobPriority `json:"priority"`
	Dependencies []string           `json:"dependencies"`
	AgentID      string             `json:"agentId"`
	JobID        string             `json:"jobId"`
	Status       *models.JobStatus  `json:"status"`
	AssignedTo   *string            `json:"assigned_to"`
	CancelReason *string            `json:"cancel_reason"`
	// RequestID is an optional idempotency key for post and for an update
	// that cancels (the HTTP API has no complete action): a
	// retried call with the same (caller, requestId) replays the original
	// result instead of double-posting a job or double-cancelling.
	RequestID string `json:"requestId"`
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	projectID, cerr := s.resolveProjectID(r.Context(), r.URL.Query().Get("projectName"), identity)
	if cerr != nil {
		writeError(w, cerr)
		return
	}
	result := s.facade.ListJobs(r.Context(), projectID, false)
	if !result.IsOk() {
		writeError(w, result.Err)
		return
	}
	writeSuccess(w, map[string]any{"jobs": result.Value})
}

func (s *Server) postJobsAction(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	var req jobsActionRequest
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
	case "post":
		agentID := req.AgentID
		if agentID == "" {
			agentID = identity.AgentID
		}
		result := s.facade.PostJob(r.Context(), projectID, agentID, req.Title, req.Description, req.Priority, req.Dependencies, req.RequestID)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, result.Value)
	case "claim":
		result := s.facade.ClaimNextJob(r.Context(), projectID, req.AgentID)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, result.Value)
	case "update":
		s.updateJob(w, r, projectID, identity, req)
	default:
		writeError(w, badRequestErr("unknown action: "+req.Action))
	}
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request, projectID string, identity Identity, req jobsActionRequest) {
	if req.JobID == "" {
		writeError(w, badRequestErr("jobId is required"))
		return
	}

	switch {
	case req.Status != nil && *req.Status == models.JobStatusCancelled:
		reason := ""
		if req.CancelReason != nil {
			reason = *req.CancelReason
		}
		agentID := req.AgentID
		if agentID == "" {
			agentID = identity.AgentID
		}
		result := s.facade.CancelJob(r.Context(), projectID, agentID, req.JobID, reason, req.RequestID)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, result.Value)
	default:
		update := buildJobUpdate(req)
		result := s.facade.UpdateJob(r.Context(), projectID, req.JobID, update)
		if !result.IsOk() {
			writeError(w, result.Err)
			return
		}
		writeSuccess(w, result.Value)
	}
}

func buildJobUpdate(req jobsActionRequest) store.JobUpdate {
	update := store.JobUpdate{}
	if req.Status != nil {
		update.SetStatus = req.Status
	}
	if req.AssignedTo != nil {
		update.SetAssignee = req.AssignedTo
	}
	if req.Priority != "" {
		p := req.Priority
		update.SetPriority = &p
	}
	return update
}
