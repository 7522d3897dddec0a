package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
)

func TestValidatePagination(t *testing.T) {
	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantPage     int
		wantPageSize int
	}{
		{"valid values", 2, 20, 2, 20},
		{"page below one", 0, 20, constants.DefaultPage, 20},
		{"negative page", -1, 20, constants.DefaultPage, 20},
		{"page size below one", 1, 0, 1, constants.DefaultPageSize},
		{"page size capped", 1, 500, 1, constants.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidatePagination(tt.page, tt.pageSize)
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantPageSize, got.PageSize)
		})
	}
}

func newQueryContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tickets?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", constants.DefaultPage, constants.DefaultPageSize},
		{"page=3&page_size=15", 3, 15},
		{"page=abc&page_size=-4", constants.DefaultPage, constants.DefaultPageSize},
		{"page_size=1000", constants.DefaultPage, constants.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := ParsePagination(newQueryContext(tt.query))
			assert.Equal(t, tt.wantPage, got.Page)
			assert.Equal(t, tt.wantPageSize, got.PageSize)
		})
	}
}

func TestParseSort(t *testing.T) {
	got := ParseSort(newQueryContext("sort_by=priority&sort_order=ASC"))
	assert.Equal(t, Sort{By: "priority", Order: constants.SortOrderAsc}, got)

	assert.Equal(t, Sort{}, ParseSort(newQueryContext("")))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 20))
	assert.Equal(t, 1, TotalPages(20, 20))
	assert.Equal(t, 2, TotalPages(21, 20))
	assert.Equal(t, 1, TotalPages(5, 0))
}
