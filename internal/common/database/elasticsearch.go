package database

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"decree-workers/internal/common/config"
)

// DecreeIndex is used when the configuration names no index.
const DecreeIndex = "decrees"

const decreeMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "candidate_id":   {"type": "keyword"},
      "category":       {"type": "keyword"},
      "category_label": {"type": "text"},
      "owner_name":     {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "number":         {"type": "keyword"},
      "unit":           {"type": "text"},
      "issued_at":      {"type": "date", "format": "yyyy-MM-dd"},
      "status":         {"type": "keyword"},
      "batch_id":       {"type": "keyword"}
    }
  }
}`

// ElasticsearchClient is the search connection together with the index
// that decree documents are written to.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
	Index  string
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{Addresses: cfg.Addresses}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = DecreeIndex
	}
	return &ElasticsearchClient{Client: es, Index: index}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the decree index with its mapping when it is missing.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{c.Index}}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", c.Index, err)
	}
	exists.Body.Close()
	switch exists.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", c.Index, exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{
		Index: c.Index,
		Body:  strings.NewReader(decreeMapping),
	}.Do(ctx, c.Client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", c.Index, err)
	}
	defer res.Body.Close()
	if !res.IsError() {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	// created concurrently by another instance
	if bytes.Contains(msg, []byte("resource_already_exists_exception")) {
		return nil
	}
	return fmt.Errorf("create index %s: %s: %s", c.Index, res.Status(), bytes.TrimSpace(msg))
}
