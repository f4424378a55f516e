// Package report partitions enriched records into fixed-size pages for
// rendering.
package report

// DefaultPageSize is used when the configured page size is invalid.
const DefaultPageSize = 100

// Page is one consecutive chunk of records. Index is 1-based and
// TotalPages is fixed at partition time so a renderer can show
// "page X of Y" without recomputation.
type Page[T any] struct {
	Index      int
	TotalPages int
	Records    []T
}

// Paginate splits records into consecutive pages of pageSize elements,
// the final page holding the remainder. Zero records yield zero pages.
// A page size of zero or less falls back to DefaultPageSize; validation
// and reporting of that condition belongs to the caller.
func Paginate[T any](records []T, pageSize int) []Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	if len(records) == 0 {
		return nil
	}

	total := (len(records) + pageSize - 1) / pageSize
	pages := make([]Page[T], 0, total)

	for start := 0; start < len(records); start += pageSize {
		end := start + pageSize
		if end > len(records) {
			end = len(records)
		}
		pages = append(pages, Page[T]{
			Index:      len(pages) + 1,
			TotalPages: total,
			Records:    records[start:end],
		})
	}

	return pages
}
