package search

import (
	"context"
	"os"
	"testing"
)

func TestNotConfigured(t *testing.T) {
	os.Unsetenv("ELASTICSEARCH_HOST")
	s := NewService()
	if s.Enabled() {
		t.Fatal("service should be disabled without ELASTICSEARCH_HOST")
	}
	if _, err := s.Search(context.Background(), 1, "cable", 0, 0); err == nil {
		t.Fatal("expected not-configured error from Search")
	}
	if err := s.IndexProduct(context.Background(), 1, nil); err == nil {
		t.Fatal("expected not-configured error from IndexProduct")
	}
}

func TestIndexName(t *testing.T) {
	s := &Service{prefix: "pricewatch"}
	if got := s.indexName(3); got != "pricewatch_product_3" {
		t.Fatalf("indexName = %q", got)
	}
}
