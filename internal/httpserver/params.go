package httpserver

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func pathID(c *gin.Context, name string) (int64, error) {
	return parseID(name, c.Param(name))
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s %q is not a valid id: %w", name, raw, domain.ErrInvalidInput)
	}
	return id, nil
}

// pageRequest reads pageNumber, pageSize, sortBy and sortOrder.
func pageRequest(c *gin.Context) (domain.PageRequest, error) {
	var p domain.PageRequest
	if v := c.Query("pageNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("pageNumber %q: %w", v, domain.ErrInvalidInput)
		}
		p.Number = n
	}
	if v := c.Query("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("pageSize %q: %w", v, domain.ErrInvalidInput)
		}
		p.Size = n
	}
	p.SortBy = c.Query("sortBy")
	p.SortOrder = c.Query("sortOrder")
	return p.Normalize(), nil
}

func bindError(err error) error {
	return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
}
