package coordination

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nervecenter/nerve-center/internal/models"
)

// Embedder is the outbound side of the thin RAG facility. embeddings.Client
// satisfies it; tests substitute a fake that returns deterministic vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// defaultSearchTopK bounds the brute-force cosine scan's result set when a
// caller doesn't specify one.
const defaultSearchTopK = 5

// kindCode and kindDocs tag an embedding's metadata so search_codebase and
// search_docs can each see only their own corpus despite sharing one table.
const (
	kindCode = "code"
	kindDocs = "docs"
)

// SetEmbedder wires the outbound embedding client used by index_file and the
// search tools. A Facade with no embedder configured answers every RAG
// operation with NotConfigured, per SPEC_FULL.md §6.
func (f *Facade) SetEmbedder(e Embedder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embedder = e
}

// IndexFile implements index_file: embeds content and stores it tagged with
// kind ("code" or "docs") and path metadata.
func (f *Facade) IndexFile(ctx context.Context, projectID, path, content, kind string) Result[struct{}] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.embedder == nil {
		return Err[struct{}](notConfiguredErr("embeddings"))
	}
	if path == "" {
		return Err[struct{}](badRequestErr("path is required"))
	}
	if kind != kindCode && kind != kindDocs {
		return Err[struct{}](badRequestErr(fmt.Sprintf("invalid kind: %q", kind)))
	}

	vectors, err := f.embedder.Embed(ctx, []string{content})
	if err != nil {
		return Err[struct{}](embedderErr(err))
	}
	if len(vectors) != 1 {
		return Err[struct{}](embedderErr(errors.New("embedding provider returned an unexpected result count")))
	}

	metadata := fmt.Sprintf(`{"kind":%q,"path":%q}`, kind, path)
	e := &models.Embedding{
		ProjectID: projectID,
		Content:   content,
		Vector:    vectors[0],
		Metadata:  metadata,
	}
	if _, err := f.store.InsertEmbedding(ctx, e); err != nil {
		return Err[struct{}](storeErr(err))
	}
	return Ok(struct{}{})
}

// SearchCodebase implements search_codebase: a query against embeddings
// tagged kind=code.
func (f *Facade) SearchCodebase(ctx context.Context, projectID, query string, topK int) Result[[]models.SearchResult] {
	return f.search(ctx, projectID, query, kindCode, topK)
}

// SearchDocs implements search_docs: a query against embeddings tagged
// kind=docs.
func (f *Facade) SearchDocs(ctx context.Context, projectID, query string, topK int) Result[[]models.SearchResult] {
	return f.search(ctx, projectID, query, kindDocs, topK)
}

func (f *Facade) search(ctx context.Context, projectID, query, kind string, topK int) Result[[]models.SearchResult] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.embedder == nil {
		return Err[[]models.SearchResult](notConfiguredErr("embeddings"))
	}
	if query == "" {
		return Err[[]models.SearchResult](badRequestErr("query is required"))
	}
	if topK <= 0 {
		topK = defaultSearchTopK
	}

	vectors, err := f.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Err[[]models.SearchResult](embedderErr(err))
	}
	if len(vectors) != 1 {
		return Err[[]models.SearchResult](embedderErr(errors.New("embedding provider returned an unexpected result count")))
	}

	// Over-fetch, then filter by kind client-side: the Store's scan doesn't
	// know about the kind tag baked into metadata's free-form JSON.
	results, err := f.store.SearchEmbeddings(ctx, projectID, vectors[0], topK*4)
	if err != nil {
		return Err[[]models.SearchResult](storeErr(err))
	}

	filtered := make([]models.SearchResult, 0, topK)
	needle := fmt.Sprintf(`"kind":%q`, kind)
	for _, r := range results {
		if !strings.Contains(r.Metadata, needle) {
			continue
		}
		filtered = append(filtered, r)
		if len(filtered) == topK {
			break
		}
	}
	return Ok(filtered)
}
