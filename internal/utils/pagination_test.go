package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaginationFromQuery(t *testing.T) {
	page, pageSize := ParsePaginationFromQuery("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	page, pageSize = ParsePaginationFromQuery("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	// out-of-range values fall back to the defaults
	page, pageSize = ParsePaginationFromQuery("-1", "500")
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)
}

func TestValidateAndNormalizePagination(t *testing.T) {
	page, pageSize := ValidateAndNormalizePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, pageSize)

	_, pageSize = ValidateAndNormalizePagination(1, 250)
	assert.Equal(t, 100, pageSize)
}

func TestCalculatePaginationInfo(t *testing.T) {
	info := CalculatePaginationInfo(45, 2, 20)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.True(t, info.HasPrevious)

	empty := CalculatePaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
