package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

// Index is the product search index.
type Index struct {
	Client *elasticsearch.Client
	Name   string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	return &Index{Client: client, Name: name}
}

// IndexProducts writes products into the index, keyed by product id, and
// refreshes it so they are searchable at once.
func (ix *Index) IndexProducts(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		doc, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product %s: %w", p.ID, err)
		}
		res, err := ix.Client.Index(ix.Name, bytes.NewReader(doc),
			ix.Client.Index.WithContext(ctx),
			ix.Client.Index.WithDocumentID(p.ID),
		)
		if err != nil {
			return fmt.Errorf("index product %s: %w", p.ID, err)
		}
		err = checkResponse(res.IsError(), res.Status(), res.Body)
		res.Body.Close()
		if err != nil {
			return fmt.Errorf("index product %s: %w", p.ID, err)
		}
	}

	res, err := ix.Client.Indices.Refresh(
		ix.Client.Indices.Refresh.WithContext(ctx),
		ix.Client.Indices.Refresh.WithIndex(ix.Name),
	)
	if err != nil {
		return fmt.Errorf("refresh index: %w", err)
	}
	defer res.Body.Close()
	return checkResponse(res.IsError(), res.Status(), res.Body)
}

// Search runs a fuzzy multi_match over name and description.
func (ix *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := ix.Client.Search(
		ix.Client.Search.WithContext(ctx),
		ix.Client.Search.WithIndex(ix.Name),
		ix.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if err := checkResponse(res.IsError(), res.Status(), res.Body); err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func checkResponse(isErr bool, status string, body io.Reader) error {
	if !isErr {
		return nil
	}
	msg, _ := io.ReadAll(body)
	return fmt.Errorf("%s: %s", status, msg)
}
