package handler

import (
	"testing"

	"github.com/quillpress/blog-api/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestParseListParams(t *testing.T) {
	testCases := []struct {
		name      string
		start     string
		limit     string
		direction string
		fallback  repository.SortDirection
		expected  repository.ListParams
	}{
		{"defaults", "", "", "", repository.SortDesc, repository.ListParams{Limit: 9, SortDirection: repository.SortDesc}},
		{"explicit", "10", "5", "asc", repository.SortDesc, repository.ListParams{StartIndex: 10, Limit: 5, SortDirection: repository.SortAsc}},
		{"negative_start", "-3", "5", "", repository.SortAsc, repository.ListParams{Limit: 5, SortDirection: repository.SortAsc}},
		{"garbage", "abc", "zero", "sideways", repository.SortAsc, repository.ListParams{Limit: 9, SortDirection: repository.SortAsc}},
		{"zero_limit", "0", "0", "DESC", repository.SortAsc, repository.ListParams{Limit: 9, SortDirection: repository.SortDesc}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseListParams(tc.start, tc.limit, tc.direction, tc.fallback))
		})
	}
}
