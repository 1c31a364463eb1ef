package handler

import (
	"strconv"
	"strings"

	"github.com/quillpress/blog-api/internal/repository"
)

// parseListParams reads startIndex and limit the way every listing does; bad
// numbers fall back to the defaults. The repository caps limit.
func parseListParams(rawStart, rawLimit, rawDirection string, defaultDirection repository.SortDirection) repository.ListParams {
	params := repository.ListParams{
		Limit:         repository.DefaultLimit,
		SortDirection: defaultDirection,
	}

	if start, err := strconv.Atoi(strings.TrimSpace(rawStart)); err == nil && start >= 0 {
		params.StartIndex = start
	}
	if limit, err := strconv.Atoi(strings.TrimSpace(rawLimit)); err == nil && limit > 0 {
		params.Limit = limit
	}

	switch strings.ToLower(strings.TrimSpace(rawDirection)) {
	case string(repository.SortAsc):
		params.SortDirection = repository.SortAsc
	case string(repository.SortDesc):
		params.SortDirection = repository.SortDesc
	}

	return params
}
