package sqlstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/nervecenter/nerve-center/internal/models"
)

// InsertEmbedding implements store.Store. The vector is stored as a flat
// little-endian float32 BLOB; SQLite has no native vector type, and this
// system's RAG facility is thin enough that a brute-force cosine scan at
// search time (see SearchEmbeddings) is within budget for the corpus sizes
// a single project realistically indexes.
func (s *Store) InsertEmbedding(ctx context.Context, e *models.Embedding) (int64, error) {
	var id int64
	err := Transact(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO embeddings (project_id, content, vector, metadata)
			VALUES (?, ?, ?, ?)
		`, e.ProjectID, e.Content, encodeVector(e.Vector), e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to insert embedding: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read embedding id: %w", err)
		}
		return nil
	})
	return id, err
}

// SearchEmbeddings implements store.Store: cosine similarity over every
// embedding in the project, ranked descending, truncated to topK.
func (s *Store) SearchEmbeddings(ctx context.Context, projectID string, query []float32, topK int) ([]models.SearchResult, error) {
	var results []models.SearchResult
	err := RetryWithBackoff(ctx, func() error {
		results = nil
		rows, err := s.db.QueryContext(ctx, `
			SELECT content, vector, metadata FROM embeddings WHERE project_id = ?
		`, projectID)
		if err != nil {
			return fmt.Errorf("failed to query embeddings: %w", err)
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			var content, metadata string
			var raw []byte
			if err := rows.Scan(&content, &raw, &metadata); err != nil {
				return fmt.Errorf("failed to scan embedding: %w", err)
			}
			vec := decodeVector(raw)
			sim := cosineSimilarity(query, vec)
			results = append(results, models.SearchResult{
				Content:    content,
				Metadata:   metadata,
				Similarity: sim,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Similarity > results[j].Similarity })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) []float32 {
	n := len(raw) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return v
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
