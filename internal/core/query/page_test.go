package query_test

import (
	"math"
	"testing"

	"github.com/samirrijal/echoadmin/internal/core/query"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		offset, limit int
		want          []int
	}{
		{0, 2, []int{1, 2}},
		{4, 2, []int{5}},
		{10, 2, []int{}},
		{-3, 0, []int{1, 2, 3, 4, 5}},
		{2, 0, []int{3, 4, 5}},
		{1, math.MaxInt, []int{2, 3, 4, 5}},
		{math.MaxInt, math.MaxInt, []int{}},
	}
	for _, tt := range tests {
		got, page := query.Paginate(items, tt.offset, tt.limit)
		if len(got) != len(tt.want) {
			t.Fatalf("offset=%d limit=%d: got %v, want %v", tt.offset, tt.limit, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("offset=%d limit=%d: got %v, want %v", tt.offset, tt.limit, got, tt.want)
			}
		}
		if page.Total != 5 {
			t.Errorf("expected total 5, got %d", page.Total)
		}
	}
}
