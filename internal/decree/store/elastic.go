package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"decree-workers/internal/common/database"
	"decree-workers/internal/models"
)

// DefaultIndex is the Elasticsearch index for decree documents.
const DefaultIndex = database.DecreeIndex

// ElasticIndexer makes issued decrees searchable.
type ElasticIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticIndexer(client *elasticsearch.Client, index string) *ElasticIndexer {
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticIndexer{client: client, index: index}
}

type decreeDoc struct {
	ID            string `json:"id"`
	CandidateID   string `json:"candidate_id"`
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`
	OwnerName     string `json:"owner_name"`
	Number        string `json:"number"`
	Unit          string `json:"unit"`
	IssuedAt      string `json:"issued_at"`
	Status        string `json:"status"`
	BatchID       string `json:"batch_id,omitempty"`
}

// Index upserts d under its id.
func (e *ElasticIndexer) Index(ctx context.Context, d models.Decree) error {
	body, err := json.Marshal(decreeDoc{
		ID:            d.ID,
		CandidateID:   d.CandidateID,
		Category:      string(d.Category),
		CategoryLabel: d.Category.Label(),
		OwnerName:     d.OwnerName,
		Number:        d.Number,
		Unit:          d.Unit,
		IssuedAt:      d.IssuedAt.Format("2006-01-02"),
		Status:        d.Status,
		BatchID:       d.BatchID,
	})
	if err != nil {
		return fmt.Errorf("marshal decree doc: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: d.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("index decree %s: %w", d.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index decree %s: %s: %s", d.ID, res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
