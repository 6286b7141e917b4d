// Package search is the optional product full-text index. When an
// Elasticsearch host is configured, refreshed products are indexed so
// the dashboard can find a part number across catalogs without walking
// every tree.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"

	"pricewatch.GO/catalog"
)

var (
	serviceInstance *Service
	serviceOnce     sync.Once
)

// GetService returns the singleton search service.
func GetService() *Service {
	serviceOnce.Do(func() {
		serviceInstance = NewService()
	})
	return serviceInstance
}

type Service struct {
	client *elasticsearch.Client
	prefix string
}

// NewService builds a service from ELASTICSEARCH_HOST. A missing or
// unreachable host leaves the client nil; calls then return
// "not configured" instead of failing startup.
func NewService() *Service {
	host := os.Getenv("ELASTICSEARCH_HOST")
	prefix := os.Getenv("ELASTICSEARCH_INDEX_PREFIX")
	if prefix == "" {
		prefix = "pricewatch"
	}
	if host == "" {
		return &Service{prefix: prefix}
	}

	cfg := elasticsearch.Config{
		Addresses: []string{host},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return &Service{prefix: prefix}
	}
	return &Service{client: client, prefix: prefix}
}

// Enabled reports whether an index is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

func (s *Service) indexName(catalogID int) string {
	return fmt.Sprintf("%s_product_%d", s.prefix, catalogID)
}

// IndexProduct upserts one product document, keyed by its id.
func (s *Service) IndexProduct(ctx context.Context, catalogID int, p *catalog.Product) error {
	if s.client == nil {
		return fmt.Errorf("elasticsearch not configured")
	}
	doc := map[string]interface{}{
		"entity_id":    p.ID,
		"part_number":  p.PartNumber,
		"name":         p.Name,
		"manufacturer": p.Manufacturer,
		"category_id":  p.CategoryID,
		"source_count": len(p.Sources),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := s.client.Index(
		s.indexName(catalogID),
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(strconv.Itoa(p.ID)),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}
	return nil
}

// Hit is one product match from the index.
type Hit struct {
	EntityID    int    `json:"entity_id"`
	PartNumber  string `json:"part_number"`
	Name        string `json:"name"`
	CategoryID  int    `json:"category_id"`
	SourceCount int    `json:"source_count"`
}

// Result is one page of matches.
type Result struct {
	Hits       []Hit
	TotalCount int
	TotalPages int
}

// Search queries the product index for a catalog.
func (s *Service) Search(ctx context.Context, catalogID int, query string, pageSize, currentPage int) (*Result, error) {
	if s.client == nil {
		return nil, fmt.Errorf("elasticsearch not configured")
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if currentPage <= 0 {
		currentPage = 1
	}

	body := map[string]interface{}{
		"from": (currentPage - 1) * pageSize,
		"size": pageSize,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"part_number^3", "name^2", "manufacturer"},
			},
		},
	}
	bodyBytes, _ := json.Marshal(body)

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName(catalogID)),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch error: %s", res.String())
	}

	var esResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source struct {
					EntityID    int    `json:"entity_id"`
					PartNumber  string `json:"part_number"`
					Name        string `json:"name"`
					CategoryID  int    `json:"category_id"`
					SourceCount int    `json:"source_count"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(esResp.Hits.Hits))
	for _, h := range esResp.Hits.Hits {
		hits = append(hits, Hit{
			EntityID:    h.Source.EntityID,
			PartNumber:  h.Source.PartNumber,
			Name:        h.Source.Name,
			CategoryID:  h.Source.CategoryID,
			SourceCount: h.Source.SourceCount,
		})
	}

	total := esResp.Hits.Total.Value
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return &Result{Hits: hits, TotalCount: total, TotalPages: totalPages}, nil
}
