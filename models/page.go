package models

// DefaultLimit is the page size used when callers have no preference.
const DefaultLimit = 100

// PageInfo describes one page of a search result.
type PageInfo struct {
	// Offset is the number of matching rows skipped.
	Offset int
	// Limit is the maximum number of rows the page may hold.
	Limit int
	// Returned is the number of rows actually in the page.
	Returned int
	// Total is the number of rows matching the filter, regardless of paging.
	Total int
}

// PageEnvelope pairs one page of records with its PageInfo.
type PageEnvelope[T any] struct {
	Data     []T
	PageInfo PageInfo
}

// NewPageEnvelope builds an envelope for data fetched with offset and limit
// out of total matching rows.
func NewPageEnvelope[T any](data []T, offset, limit, total int) *PageEnvelope[T] {
	if data == nil {
		data = []T{}
	}
	return &PageEnvelope[T]{
		Data: data,
		PageInfo: PageInfo{
			Offset:   offset,
			Limit:    limit,
			Returned: len(data),
			Total:    total,
		},
	}
}
