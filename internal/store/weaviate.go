// Package store implements the evidence store on Weaviate: vector-similarity
// retrieval for claims and asynchronous ingestion of backfilled evidence.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"claimlens/internal/fetch"
	"claimlens/internal/model"
)

// ingestNamespace makes object IDs deterministic per evidence text, so
// re-ingesting the same claim upserts instead of duplicating.
var ingestNamespace = uuid.MustParse("8f0f41d2-9c5e-4a07-b8a3-2a4f0f6f9a11")

// EvidenceStore is a Weaviate-backed vector store for claim evidence
type EvidenceStore struct {
	client             *weaviate.Client
	class              string
	consistencyTimeout time.Duration
	logger             *slog.Logger
}

// New creates an evidence store client
func New(cfg model.StoreConfig, logger *slog.Logger) (*EvidenceStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Scheme: cfg.Scheme,
		Host:   cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	return &EvidenceStore{
		client:             client,
		class:              cfg.Class,
		consistencyTimeout: cfg.ConsistencyTimeout,
		logger:             logger.With("component", "evidence_store"),
	}, nil
}

// schema returns the evidence class definition
func (s *EvidenceStore) schema() *models.Class {
	return &models.Class{
		Class:       s.class,
		Description: "Evidence snippets for claim verification",
		Vectorizer:  "text2vec-transformers",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "Evidence text",
				Tokenization: "word",
			},
			{
				Name:         "sourceUrl",
				DataType:     []string{"text"},
				Description:  "URL of the evidence source",
				Tokenization: "field",
			},
			{
				Name:         "source",
				DataType:     []string{"text"},
				Description:  "Publisher or claimant name",
				Tokenization: "field",
			},
			{
				Name:         "language",
				DataType:     []string{"text"},
				Description:  "BCP-47 language code",
				Tokenization: "field",
			},
		},
	}
}

// EnsureSchema creates the evidence class if it does not exist. Idempotent.
func (s *EvidenceStore) EnsureSchema(ctx context.Context) error {
	_, err := s.client.Schema().ClassGetter().WithClassName(s.class).Do(ctx)
	if err == nil {
		return nil
	}

	s.logger.Info("creating evidence class", "class", s.class)
	if err := s.client.Schema().ClassCreator().WithClass(s.schema()).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", s.class, err)
	}
	return nil
}

// Retrieve returns the k nearest evidence items for the query. Scores are
// vector distances: lower is better. Order from the store is not assumed;
// callers sort and filter themselves.
func (s *EvidenceStore) Retrieve(ctx context.Context, query string, k int) ([]model.EvidenceItem, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "sourceUrl"},
		{Name: "_additional { distance }"},
	}

	result, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(fields...).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve evidence: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("retrieve evidence: %s", result.Errors[0].Message)
	}

	return s.parseItems(result), nil
}

// parseItems converts a GraphQL response into evidence items
func (s *EvidenceStore) parseItems(result *models.GraphQLResponse) []model.EvidenceItem {
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, ok := data[s.class].([]interface{})
	if !ok {
		return nil
	}

	items := make([]model.EvidenceItem, 0, len(objects))
	for _, obj := range objects {
		m, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		item := model.EvidenceItem{
			Text: getString(m, "content"),
			URL:  getString(m, "sourceUrl"),
		}
		if additional, ok := m["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				item.Score = d
			}
		}
		items = append(items, item)
	}
	return items
}

// Ingest writes backfilled claims into the store and returns the number
// accepted. Indexing is asynchronous relative to the caller; use
// AwaitIndexed before re-querying.
func (s *EvidenceStore) Ingest(ctx context.Context, claims []fetch.Claim) (int, error) {
	objects := make([]*models.Object, 0, len(claims))
	for _, claim := range claims {
		if claim.Text == "" {
			continue
		}
		objects = append(objects, &models.Object{
			ID:    strfmt.UUID(uuid.NewSHA1(ingestNamespace, []byte(claim.Text)).String()),
			Class: s.class,
			Properties: map[string]interface{}{
				"content":   claim.Text,
				"sourceUrl": claim.URL(),
				"source":    claim.Source,
				"language":  claim.LanguageCode,
			},
		})
	}
	if len(objects) == 0 {
		return 0, nil
	}

	result, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("batch ingest: %w", err)
	}

	accepted := 0
	for _, obj := range result {
		if obj.Result != nil && obj.Result.Errors == nil {
			accepted++
		}
	}

	s.logger.Info("ingested evidence", "submitted", len(objects), "accepted", accepted)
	return accepted, nil
}

// Count returns the number of objects in the evidence class
func (s *EvidenceStore) Count(ctx context.Context) (int, error) {
	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{
			Name: "meta",
			Fields: []graphql.Field{
				{Name: "count"},
			},
		}).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("aggregate count: %w", err)
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("aggregate count: %s", result.Errors[0].Message)
	}

	data, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	rows, ok := data[s.class].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, nil
	}
	count, _ := meta["count"].(float64)
	return int(count), nil
}

// AwaitIndexed polls the object count until it reaches want or the
// consistency timeout elapses. Timing out is not an error: callers proceed
// with whatever is queryable, which may be stale.
func (s *EvidenceStore) AwaitIndexed(ctx context.Context, want int) error {
	deadline := time.Now().Add(s.consistencyTimeout)
	backoff := 250 * time.Millisecond

	for {
		count, err := s.Count(ctx)
		if err == nil && count >= want {
			return nil
		}

		if time.Now().After(deadline) {
			s.logger.Warn("indexing wait timed out, proceeding with stale results",
				"want", want, "have", count)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
