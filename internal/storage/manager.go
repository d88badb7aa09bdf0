/**
 * Storage manager coordinating PostgreSQL (documents, pages, extractions)
 * and Qdrant (document embeddings).
 */

package storage

import (
	"context"
	"fmt"
)

// Manager coordinates PostgreSQL and Qdrant operations.
type Manager struct {
	postgres *PostgresClient
	qdrant   *QdrantClient
}

// DocumentResult is the output of a completed processing pipeline, ready for
// persistence.
type DocumentResult struct {
	DocumentID string
	Engine     string
	Pages      []Page
	Embedding  []float32 // optional; empty skips vector indexing
	Filename   string
}

// NewManager connects both storage backends. Qdrant is optional: an empty
// address disables similarity indexing without failing startup.
func NewManager(postgresURL, qdrantAddress, qdrantCollection string) (*Manager, error) {
	postgres, err := NewPostgresClient(postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL client: %w", err)
	}

	var qc *QdrantClient
	if qdrantAddress != "" {
		qc, err = NewQdrantClient(qdrantAddress, qdrantCollection)
		if err != nil {
			postgres.Close()
			return nil, fmt.Errorf("failed to initialize Qdrant client: %w", err)
		}
	}

	return &Manager{postgres: postgres, qdrant: qc}, nil
}

// Postgres exposes the relational client for direct document operations.
func (m *Manager) Postgres() *PostgresClient {
	return m.postgres
}

// StoreResult persists a completed processing result: page texts and status
// in PostgreSQL, embedding in Qdrant when present. The vector write happens
// last so a vector never points at missing page data.
func (m *Manager) StoreResult(ctx context.Context, result *DocumentResult) error {
	if result == nil || result.DocumentID == "" {
		return fmt.Errorf("document ID is required")
	}

	if err := m.postgres.SavePages(ctx, result.DocumentID, result.Pages); err != nil {
		return fmt.Errorf("failed to store pages: %w", err)
	}

	if err := m.postgres.UpdateDocument(ctx, &DocumentUpdate{
		DocumentID: result.DocumentID,
		Status:     StatusCompleted,
		Engine:     result.Engine,
		PageCount:  len(result.Pages),
	}); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if m.qdrant != nil && len(result.Embedding) > 0 {
		err := m.qdrant.UpsertDocument(ctx, &DocumentVector{
			DocumentID: result.DocumentID,
			Vector:     result.Embedding,
			Filename:   result.Filename,
			Engine:     result.Engine,
			PageCount:  len(result.Pages),
		})
		if err != nil {
			return fmt.Errorf("failed to index embedding: %w", err)
		}
	}
	return nil
}

// FindSimilar searches for documents with embeddings close to the given
// document's. The source document itself is filtered from the hits.
func (m *Manager) FindSimilar(ctx context.Context, documentID string, limit int) ([]SimilarDocument, error) {
	if m.qdrant == nil {
		return nil, fmt.Errorf("similarity search is not configured")
	}

	vector, err := m.qdrant.GetDocumentVector(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// Fetch one extra hit since the document matches itself at score 1.
	hits, err := m.qdrant.SearchSimilar(ctx, vector, limit+1)
	if err != nil {
		return nil, err
	}

	filtered := make([]SimilarDocument, 0, len(hits))
	for _, hit := range hits {
		if hit.DocumentID == documentID {
			continue
		}
		filtered = append(filtered, hit)
		if len(filtered) == limit {
			break
		}
	}
	return filtered, nil
}

// Ping checks connectivity of the relational store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.postgres.Ping(ctx)
}

// Close releases both backends.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.postgres.Close(); err != nil {
		firstErr = err
	}
	if m.qdrant != nil {
		if err := m.qdrant.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
