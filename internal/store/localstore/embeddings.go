package localstore

import (
	"context"
	"math"
	"sort"

	"github.com/nervecenter/nerve-center/internal/models"
)

// InsertEmbedding implements store.Store.
func (s *Store) InsertEmbedding(_ context.Context, e *models.Embedding) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(len(s.state.Embeddings) + 1)
	s.state.Embeddings = append(s.state.Embeddings, &embeddingRecord{
		ID:        id,
		ProjectID: e.ProjectID,
		Content:   e.Content,
		Vector:    append([]float32(nil), e.Vector...),
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	})
	if err := s.save(); err != nil {
		return 0, err
	}
	return id, nil
}

// SearchEmbeddings implements store.Store.
func (s *Store) SearchEmbeddings(_ context.Context, projectID string, query []float32, topK int) ([]models.SearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []models.SearchResult
	for _, e := range s.state.Embeddings {
		if e.ProjectID != projectID {
			continue
		}
		results = append(results, models.SearchResult{
			Content:    e.Content,
			Metadata:   e.Metadata,
			Similarity: cosineSimilarity(query, e.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
