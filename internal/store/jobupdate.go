package store

import "github.com/nervecenter/nerve-center/internal/models"

// JobUpdate is a tagged variant of the fields a caller may change on a job.
// The source this system is modeled after passed around untyped record
// maps; this reframes that as an allow-list the store will accept, per the
// "dynamic-record shapes" design note in SPEC_FULL.md §9.
type JobUpdate struct {
	SetStatus       *models.JobStatus
	SetAssignee     *string // empty string clears the assignee
	SetPriority     *models.JobPriority
	SetCancelReason *string
}

// SetStatusUpdate returns a JobUpdate that only changes status.
func SetStatusUpdate(s models.JobStatus) JobUpdate {
	return JobUpdate{SetStatus: &s}
}

// SetAssigneeUpdate returns a JobUpdate that only changes the assignee.
func SetAssigneeUpdate(agentID string) JobUpdate {
	return JobUpdate{SetAssignee: &agentID}
}

// ClaimUpdate returns a JobUpdate moving a job to in_progress under agentID,
// the composite update ClaimNextJob's conditional statement performs.
func ClaimUpdate(agentID string) JobUpdate {
	status := models.JobStatusInProgress
	return JobUpdate{SetStatus: &status, SetAssignee: &agentID}
}

// CompleteUpdate returns a JobUpdate moving a job to done.
func CompleteUpdate() JobUpdate {
	status := models.JobStatusDone
	return JobUpdate{SetStatus: &status}
}

// CancelUpdate returns a JobUpdate moving a job to cancelled with a reason.
func CancelUpdate(reason string) JobUpdate {
	status := models.JobStatusCancelled
	return JobUpdate{SetStatus: &status, SetCancelReason: &reason}
}

// PriorityUpdate returns a JobUpdate that only changes priority.
func PriorityUpdate(p models.JobPriority) JobUpdate {
	return JobUpdate{SetPriority: &p}
}
