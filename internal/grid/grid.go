// Package grid groups ordered collections into fixed-width rows for grid display.
package grid

// Rowify splits items into consecutive rows of up to width elements, preserving
// order. The last row may be short; no empty trailing rows are produced. A
// non-positive width returns everything as a single row.
func Rowify[T any](items []T, width int) [][]T {
	if len(items) == 0 {
		return [][]T{}
	}
	if width <= 0 {
		return [][]T{items}
	}

	rows := make([][]T, 0, (len(items)+width-1)/width)
	for start := 0; start < len(items); start += width {
		end := start + width
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[start:end])
	}
	return rows
}
