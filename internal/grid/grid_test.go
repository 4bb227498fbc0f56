package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowify(t *testing.T) {
	tests := []struct {
		name     string
		items    []int
		width    int
		expected [][]int
	}{
		{"empty", []int{}, 3, [][]int{}},
		{"single short row", []int{1, 2}, 3, [][]int{{1, 2}}},
		{"exact single row", []int{1, 2, 3}, 3, [][]int{{1, 2, 3}}},
		{"one full one short", []int{1, 2, 3, 4}, 3, [][]int{{1, 2, 3}, {4}}},
		{"two full rows", []int{1, 2, 3, 4, 5, 6}, 3, [][]int{{1, 2, 3}, {4, 5, 6}}},
		{"full page of nine", []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3, [][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}},
		{"width one", []int{1, 2, 3}, 1, [][]int{{1}, {2}, {3}}},
		{"zero width collapses to one row", []int{1, 2, 3, 4}, 0, [][]int{{1, 2, 3, 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Rowify(tt.items, tt.width))
		})
	}
}

// Row count must be ceil(N/width), order and total element count preserved,
// and no row may be empty or wider than width.
func TestRowifyProperties(t *testing.T) {
	const width = 3
	for n := 0; n <= 25; n++ {
		items := make([]int, n)
		for i := range items {
			items[i] = i
		}

		rows := Rowify(items, width)

		wantRows := (n + width - 1) / width
		assert.Len(t, rows, wantRows, "N=%d", n)

		var flat []int
		for _, row := range rows {
			assert.NotEmpty(t, row, "N=%d has an empty row", n)
			assert.LessOrEqual(t, len(row), width, "N=%d has an oversized row", n)
			flat = append(flat, row...)
		}
		assert.Equal(t, items, append([]int{}, flat...), "N=%d order/count not preserved", n)
	}
}
