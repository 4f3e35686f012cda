package db

import (
	"fmt"

	"storefront/internal/domain"
)

// OrderBy renders an ORDER BY clause for page. sortable maps the public sort
// field names to column expressions; an empty SortBy uses fallback. The id
// column is always appended so paging is stable.
func OrderBy(page domain.PageRequest, sortable map[string]string, fallback string) (string, error) {
	col := fallback
	if page.SortBy != "" {
		c, ok := sortable[page.SortBy]
		if !ok {
			return "", fmt.Errorf("cannot sort by %q: %w", page.SortBy, domain.ErrInvalidInput)
		}
		col = c
	}
	dir := "ASC"
	if page.SortOrder == "desc" {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id %s", col, dir, dir), nil
}
