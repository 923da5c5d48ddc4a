// Package models defines the entities shared by the store and coordination
// layers: projects, jobs, locks, session archives, and agent cursors.
package models

import "time"

// ID strategy: projects use google/uuid (opaque, created rarely); jobs and
// session archives use a prefixed timestamp+random scheme (created at CLI/
// agent scale, sortable by creation order at a glance).

// JobPriority is the enumerated priority of a job.
type JobPriority string

// Job priority constants, ordered critical > high > medium > low.
const (
	PriorityCritical JobPriority = "critical"
	PriorityHigh     JobPriority = "high"
	PriorityMedium   JobPriority = "medium"
	PriorityLow      JobPriority = "low"
)

// Rank returns the selection-order rank of the priority: lower sorts first.
// Unknown priorities rank last, after low.
func (p JobPriority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether p is one of the enumerated priorities.
func (p JobPriority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// JobStatus is the enumerated lifecycle state of a job.
type JobStatus string

// Job status constants.
const (
	JobStatusTodo       JobStatus = "todo"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether the status is a sink state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusCancelled
}

// Valid reports whether s is one of the enumerated statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusTodo, JobStatusInProgress, JobStatusDone, JobStatusCancelled:
		return true
	}
	return false
}

// Job is a unit of work on the project's job board.
type Job struct {
	ID             string      `json:"id"`
	ProjectID      string      `json:"project_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Priority       JobPriority `json:"priority"`
	Status         JobStatus   `json:"status"`
	Assignee       string      `json:"assignee,omitempty"`
	Dependencies   []string    `json:"dependencies,omitempty"`
	CompletionKey  string      `json:"completion_key,omitempty"`
	CancelReason   string      `json:"cancel_reason,omitempty"`
	Version        int         `json:"version"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsAssigned reports whether the job currently has an assignee.
func (j *Job) IsAssigned() bool {
	return j.Assignee != ""
}

// Project is the coordination scope all jobs, locks, and notepad entries
// belong to.
type Project struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

// Lock is an advisory, project-scoped claim on a file path.
type Lock struct {
	ProjectID  string    `json:"project_id"`
	FilePath   string    `json:"file_path"`
	AgentID    string    `json:"agent_id"`
	Intent     string    `json:"intent"`
	UserPrompt string    `json:"user_prompt"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Age returns how long ago the lock was last refreshed, relative to now.
func (l *Lock) Age(now time.Time) time.Duration {
	return now.Sub(l.UpdatedAt)
}

// Live reports whether the lock has not yet exceeded ttl.
func (l *Lock) Live(now time.Time, ttl time.Duration) bool {
	return l.Age(now) <= ttl
}

// SessionArchive is a write-once snapshot of a finalized session's notepad.
type SessionArchive struct {
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Content   string    `json:"content"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryRuneLimit is the number of characters of notepad content kept in a
// session archive's summary field.
const SummaryRuneLimit = 500

// Summarize truncates content to the archive summary length, at a rune
// boundary.
func Summarize(content string) string {
	r := []rune(content)
	if len(r) <= SummaryRuneLimit {
		return content
	}
	return string(r[:SummaryRuneLimit])
}

// AgentCursor tracks an agent's last-known focus pointers, so a
// reconnecting agent can resume context without re-reading the whole
// notepad. This is a continuity convenience, not part of the coordination
// invariants.
type AgentCursor struct {
	AgentID        string    `json:"agent_id"`
	FocusJobID     string    `json:"focus_job_id,omitempty"`
	FocusProjectID string    `json:"focus_project_id,omitempty"`
	LastActiveAt   time.Time `json:"last_active_at"`
}

// Embedding is a single RAG-indexed content chunk.
type Embedding struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	Content   string    `json:"content"`
	Vector    []float32 `json:"-"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchResult pairs an embedding with its similarity score.
type SearchResult struct {
	Content    string  `json:"content"`
	Metadata   string  `json:"metadata,omitempty"`
	Similarity float64 `json:"similarity"`
}
