// Package localstore implements the Local Store: a single process's
// coordination state, held in memory and mirrored in full to one JSON file
// after every mutation. There is no second reader — "hosted" semantics come
// from sqlstore instead — so a mutex is sufficient for safety; the file
// exists purely so state survives a restart.
package localstore

import (
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/models"
)

// fileState is the full on-disk representation. Every field must be
// exported so encoding/json can (de)serialize it; Store keeps a *fileState
// in memory and rewrites the whole thing on every mutating call.
type fileState struct {
	Projects    map[string]*models.Project  `json:"projects"`
	Notepads    map[string]string           `json:"notepads"`
	Jobs        map[string]*jobRecord       `json:"jobs"`
	Locks       map[string]*models.Lock     `json:"locks"` // key: projectID + "\x00" + filePath
	Sessions    []*models.SessionArchive    `json:"sessions"`
	Idempotency  map[string]idempotencyEntry `json:"idempotency"` // key: agentID + "\x00" + requestID
	Embeddings   []*embeddingRecord          `json:"embeddings"`
	AgentCursors map[string]*models.AgentCursor `json:"agent_cursors"` // key: projectID + "\x00" + agentID
}

// jobRecord mirrors models.Job but keeps Dependencies as a plain slice, same
// as the in-memory model — kept as its own type in case persisted shape
// ever needs to diverge from the API-facing one.
type jobRecord struct {
	ID            string             `json:"id"`
	ProjectID     string             `json:"project_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Priority      models.JobPriority `json:"priority"`
	Status        models.JobStatus   `json:"status"`
	Assignee      string             `json:"assignee,omitempty"`
	Dependencies  []string           `json:"dependencies,omitempty"`
	CompletionKey string             `json:"completion_key"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	Version       int                `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (j *jobRecord) toModel() *models.Job {
	return &models.Job{
		ID:            j.ID,
		ProjectID:     j.ProjectID,
		Title:         j.Title,
		Description:   j.Description,
		Priority:      j.Priority,
		Status:        j.Status,
		Assignee:      j.Assignee,
		Dependencies:  append([]string(nil), j.Dependencies...),
		CompletionKey: j.CompletionKey,
		CancelReason:  j.CancelReason,
		Version:       j.Version,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

type idempotencyEntry struct {
	Command    string `json:"command"`
	ResultJSON string `json:"result_json"`
}

type embeddingRecord struct {
	ID        int64     `json:"id"`
	ProjectID string    `json:"project_id"`
	Content   string    `json:"content"`
	Vector    []float32 `json:"vector"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newFileState() *fileState {
	return &fileState{
		Projects:     make(map[string]*models.Project),
		Notepads:     make(map[string]string),
		Jobs:         make(map[string]*jobRecord),
		Locks:        make(map[string]*models.Lock),
		Idempotency:  make(map[string]idempotencyEntry),
		AgentCursors: make(map[string]*models.AgentCursor),
	}
}

func lockKey(projectID, filePath string) string {
	return projectID + "\x00" + filePath
}

func idempotencyKey(agentID, requestID string) string {
	return agentID + "\x00" + requestID
}

func agentCursorKey(projectID, agentID string) string {
	return projectID + "\x00" + agentID
}

// Store is the Local Store: an in-memory mirror of fileState guarded by mu,
// flushed in full to path on every mutating call via fs.
type Store struct {
	mu    sync.Mutex
	fs    afero.Fs
	path  string
	state *fileState
}
