package coordination

import "github.com/nervecenter/nerve-center/internal/models"

// Status string constants returned in facade responses, matching
// spec.md's operation contracts verbatim.
const (
	StatusPosted                = "POSTED"
	StatusClaimed                = "CLAIMED"
	StatusNoJobsAvailable        = "NO_JOBS_AVAILABLE"
	StatusCompleted              = "COMPLETED"
	StatusCancelled              = "CANCELLED"
	StatusGranted                = "GRANTED"
	StatusRequiresOrchestration  = "REQUIRES_ORCHESTRATION"
	StatusUnlocked               = "UNLOCKED"
	StatusSessionFinalized       = "SESSION_FINALIZED"
)

// PostJobResult is post_job's return value.
type PostJobResult struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	CompletionKey string `json:"completion_key"`
}

// ClaimNextJobResult is claim_next_job's return value.
type ClaimNextJobResult struct {
	Status string      `json:"status"`
	Job    *models.Job `json:"job,omitempty"`
}

// CompleteJobResult is complete_job's return value.
type CompleteJobResult struct {
	Status string `json:"status"`
}

// CancelJobResult is cancel_job's return value.
type CancelJobResult struct {
	Status string `json:"status"`
}

// ProposeFileAccessResult is propose_file_access's return value.
type ProposeFileAccessResult struct {
	Status      string       `json:"status"`
	CurrentLock *models.Lock `json:"current_lock,omitempty"`
}

// ForceUnlockResult is force_unlock's return value.
type ForceUnlockResult struct {
	Status string `json:"status"`
}

// FinalizeSessionResult is finalize_session's return value.
type FinalizeSessionResult struct {
	Status      string `json:"status"`
	ArchivePath string `json:"archive_path,omitempty"`
}
