/**
 * Qdrant client for document embedding storage and similarity search.
 *
 * One point per document, keyed by the document ID, payload carrying the
 * metadata needed to render similar-invoice results without a Postgres
 * round trip. Uses Qdrant's native gRPC API.
 */

package storage

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// embeddingDimensions matches the voyage-3 embedding model.
const embeddingDimensions = 1024

// QdrantClient handles vector database operations.
type QdrantClient struct {
	points         qdrant.PointsClient
	collections    qdrant.CollectionsClient
	conn           *grpc.ClientConn
	collectionName string
}

// DocumentVector is a document embedding with search payload.
type DocumentVector struct {
	DocumentID string
	Vector     []float32
	Filename   string
	Engine     string
	PageCount  int
}

// SimilarDocument is one similarity search hit.
type SimilarDocument struct {
	DocumentID string  `json:"documentId"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}

// NewQdrantClient connects to Qdrant and ensures the collection exists.
func NewQdrantClient(address string, collectionName string) (*QdrantClient, error) {
	if address == "" {
		return nil, fmt.Errorf("qdrant address is required")
	}
	if collectionName == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	conn, err := grpc.Dial(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant: %w", err)
	}

	qc := &QdrantClient{
		points:         qdrant.NewPointsClient(conn),
		collections:    qdrant.NewCollectionsClient(conn),
		conn:           conn,
		collectionName: collectionName,
	}

	if err := qc.ensureCollection(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ensure collection: %w", err)
	}
	return qc, nil
}

func (q *QdrantClient) ensureCollection(ctx context.Context) error {
	listResp, err := q.collections.List(ctx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	for _, col := range listResp.Collections {
		if col.Name == q.collectionName {
			return nil
		}
	}

	_, err = q.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     embeddingDimensions,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// UpsertDocument stores or replaces a document embedding.
func (q *QdrantClient) UpsertDocument(ctx context.Context, doc *DocumentVector) error {
	if doc == nil || doc.DocumentID == "" {
		return fmt.Errorf("document ID is required")
	}
	if len(doc.Vector) != embeddingDimensions {
		return fmt.Errorf("invalid vector dimensions: expected %d, got %d",
			embeddingDimensions, len(doc.Vector))
	}

	payload := map[string]*qdrant.Value{
		"document_id": {Kind: &qdrant.Value_StringValue{StringValue: doc.DocumentID}},
		"filename":    {Kind: &qdrant.Value_StringValue{StringValue: doc.Filename}},
		"engine":      {Kind: &qdrant.Value_StringValue{StringValue: doc.Engine}},
		"page_count":  {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(doc.PageCount)}},
	}

	point := &qdrant.PointStruct{
		Id: &qdrant.PointId{
			PointIdOptions: &qdrant.PointId_Uuid{Uuid: doc.DocumentID},
		},
		Vectors: &qdrant.Vectors{
			VectorsOptions: &qdrant.Vectors_Vector{
				Vector: &qdrant.Vector{Data: doc.Vector},
			},
		},
		Payload: payload,
	}

	_, err := q.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert document vector: %w", err)
	}
	return nil
}

// GetDocumentVector retrieves a stored embedding by document ID.
func (q *QdrantClient) GetDocumentVector(ctx context.Context, documentID string) ([]float32, error) {
	resp, err := q.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.collectionName,
		Ids: []*qdrant.PointId{
			{PointIdOptions: &qdrant.PointId_Uuid{Uuid: documentID}},
		},
		WithVectors: &qdrant.WithVectorsSelector{
			SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document vector: %w", err)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("no embedding stored for document %s", documentID)
	}

	vectors := resp.Result[0].Vectors
	if vectors == nil || vectors.GetVector() == nil {
		return nil, fmt.Errorf("document %s has no vector data", documentID)
	}
	return vectors.GetVector().Data, nil
}

// SearchSimilar returns documents whose embeddings are closest to the query
// vector. The document carrying the query vector itself is included when it
// is in the collection; callers filter it out.
func (q *QdrantClient) SearchSimilar(ctx context.Context, queryVector []float32, limit int) ([]SimilarDocument, error) {
	if len(queryVector) != embeddingDimensions {
		return nil, fmt.Errorf("invalid query vector dimensions: expected %d, got %d",
			embeddingDimensions, len(queryVector))
	}
	if limit <= 0 {
		limit = 5
	}

	results, err := q.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: q.collectionName,
		Vector:         queryVector,
		Limit:          uint64(limit),
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	hits := make([]SimilarDocument, 0, len(results.Result))
	for _, result := range results.Result {
		hit := SimilarDocument{Score: float64(result.Score)}
		if result.Payload != nil {
			if v, ok := result.Payload["document_id"]; ok {
				hit.DocumentID = v.GetStringValue()
			}
			if v, ok := result.Payload["filename"]; ok {
				hit.Filename = v.GetStringValue()
			}
		}
		if hit.DocumentID == "" && result.Id != nil {
			hit.DocumentID = result.Id.GetUuid()
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Close closes the gRPC connection.
func (q *QdrantClient) Close() error {
	return q.conn.Close()
}
