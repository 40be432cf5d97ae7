package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Payload field names used in the product collection.
const (
	payloadDocument = "document"
	payloadReviews  = "reviews"
	payloadPrice    = "price"
	payloadRating   = "rating"
	payloadTags     = "tags"
)

// QdrantConfig holds connection parameters for the Qdrant product collection.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the product collection name.
	Collection string

	// VectorSize is the dimensionality of the stored embeddings.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant collection of
// product points.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore connects to Qdrant, ensures the product collection exists
// (creating it with cosine distance if necessary), and returns a
// ready-to-use store.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the product collection if it does not exist yet.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w", s.cfg.Collection, err)
	}

	return nil
}

// Upsert stores or updates a batch of products with their embeddings.
// embeddings[i] is the vector for products[i].
func (s *QdrantStore) Upsert(ctx context.Context, products []Product, embeddings [][]float32) error {
	if len(products) != len(embeddings) {
		return fmt.Errorf("qdrant: %d products but %d embeddings", len(products), len(embeddings))
	}

	points := make([]*qdrant.PointStruct, 0, len(products))
	for i, p := range products {
		tags := make([]any, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, t)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadDocument: p.Document,
				payloadReviews:  p.Reviews,
				payloadPrice:    p.Price,
				payloadRating:   p.Rating,
				payloadTags:     tags,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w", err)
	}

	return nil
}

// Search performs a cosine similarity search restricted by the optional tag
// filter and maps each hit's stored payload onto a Result. Missing price or
// rating payload fields default to 0.
func (s *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, filterTags []string, topK int) ([]Result, error) {
	limit := uint64(topK)
	hits, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         TagFilter(filterTags),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search failed: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		r := Result{VectorScore: float64(hit.Score)}
		if p := hit.Payload; p != nil {
			if v, ok := p[payloadDocument]; ok {
				r.Document = v.GetStringValue()
			}
			if v, ok := p[payloadReviews]; ok {
				r.Reviews = v.GetStringValue()
			}
			if v, ok := p[payloadPrice]; ok {
				r.Price = v.GetDoubleValue()
			}
			if v, ok := p[payloadRating]; ok {
				r.Rating = v.GetDoubleValue()
			}
		}
		results = append(results, r)
	}

	return results, nil
}

// TagFilter builds the disjunctive metadata filter for a tag list: one
// lowercase equality condition per non-empty tag, OR-combined, matched
// against the stored "tags" payload field. An empty list yields nil —
// unrestricted search.
func TagFilter(tags []string) *qdrant.Filter {
	conditions := make([]*qdrant.Condition, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		conditions = append(conditions, qdrant.NewMatch(payloadTags, tag))
	}
	if len(conditions) == 0 {
		return nil
	}
	return &qdrant.Filter{Should: conditions}
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
