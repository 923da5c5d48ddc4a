package coordination

import (
	"context"

	"github.com/nervecenter/nerve-center/internal/models"
)

// ResolveProject resolves a (name, owner) pair to a stable project id,
// creating the project (and its empty notepad) on first reference.
func (f *Facade) ResolveProject(ctx context.Context, name, owner string) Result[*models.Project] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if name == "" {
		return Err[*models.Project](badRequestErr("project name is required"))
	}
	if owner == "" {
		return Err[*models.Project](badRequestErr("project owner is required"))
	}

	project, err := f.store.ResolveProject(ctx, name, owner)
	if err != nil {
		return Err[*models.Project](storeErr(err))
	}
	return Ok(project)
}
