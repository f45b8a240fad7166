// Package pagination normalizes AIP-158 page parameters for list endpoints.
package pagination

import "fmt"

// PageSizeConfig bounds a list endpoint's page size.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig restricts order_by to a known set of sort expressions.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize resolves a requested page size against the endpoint's bounds.
// Non-positive requests take the default; anything above Max is capped.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// NormalizeOrderBy validates order_by against the allowed sort expressions,
// falling back to the default when the request leaves it empty.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	if orderBy == "" {
		return cfg.Default, nil
	}
	for _, allowed := range cfg.Allowed {
		if orderBy == allowed {
			return orderBy, nil
		}
	}
	return "", fmt.Errorf("invalid order_by: %s", orderBy)
}
