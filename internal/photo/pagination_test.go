package photo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name              string
		page, limit, total int
		want              Pagination
	}{
		{"empty", 1, 20, 0, Pagination{CurrentPage: 1, TotalPages: 0, TotalPhotos: 0}},
		{"single partial page", 1, 20, 5, Pagination{CurrentPage: 1, TotalPages: 1, TotalPhotos: 5}},
		{"exact boundary", 2, 10, 20, Pagination{CurrentPage: 2, TotalPages: 2, TotalPhotos: 20, HasPrev: true}},
		{"middle page", 2, 10, 35, Pagination{CurrentPage: 2, TotalPages: 4, TotalPhotos: 35, HasNext: true, HasPrev: true}},
		{"past the end", 9, 10, 35, Pagination{CurrentPage: 9, TotalPages: 4, TotalPhotos: 35, HasPrev: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, &tt.want, paginate(tt.page, tt.limit, tt.total))
		})
	}
}

func TestPaginateInvariants(t *testing.T) {
	for page := 1; page <= 8; page++ {
		for limit := 1; limit <= 25; limit += 6 {
			for total := 0; total <= 60; total += 7 {
				got := paginate(page, limit, total)
				assert.Equal(t, page*limit < total, got.HasNext, "page=%d limit=%d total=%d", page, limit, total)
				assert.Equal(t, page > 1, got.HasPrev)
				assert.Equal(t, (total+limit-1)/limit, got.TotalPages)
			}
		}
	}
}
