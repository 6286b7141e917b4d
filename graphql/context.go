package graphql

import (
	"context"
	"encoding/json"
	"net/http"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeyCatalog contextKey = "catalog"

// CatalogFromContext returns the catalog name for the current request,
// "" when none was supplied.
func CatalogFromContext(ctx context.Context) string {
	if v := ctx.Value(CtxKeyCatalog); v != nil {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// WithCatalog attaches the catalog name to context.
func WithCatalog(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, CtxKeyCatalog, name)
}

// Catalog resolution for requests that don't pass it as a query arg.
// Priority: Catalog header > __Catalog query param > variables.__Catalog
const (
	HeaderCatalog     = "Catalog"
	QueryParamCatalog = "__Catalog"
	VarCatalog        = "__Catalog"
)

// GetCatalog extracts the catalog name from header or query param.
func GetCatalog(r *http.Request) string {
	if h := r.Header.Get(HeaderCatalog); h != "" {
		return h
	}
	return r.URL.Query().Get(QueryParamCatalog)
}

// ParseCatalogFromVariables reads variables.__Catalog from a POST body.
func ParseCatalogFromVariables(body []byte) (string, bool) {
	var payload struct {
		Variables map[string]interface{} `json:"variables"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Variables == nil {
		return "", false
	}
	if v, ok := payload.Variables[VarCatalog]; ok {
		if name, ok := v.(string); ok && name != "" {
			return name, true
		}
	}
	return "", false
}
