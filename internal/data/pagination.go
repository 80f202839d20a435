package data

// PageRequest describes the page a caller is asking for. Pages are
// 1-indexed; out-of-range values are clamped, never rejected.
type PageRequest struct {
	Page     int
	PageSize int
}

// PageInfo describes the page a query actually produced.
type PageInfo struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Resolve clamps the requested page against the given total item count and
// returns the final page metadata plus the LIMIT/OFFSET values to use.
// A total of zero still yields a single, empty page.
func (p PageRequest) Resolve(total int64) (PageInfo, int, int) {
	size := p.PageSize
	if size < 1 {
		size = 10
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	info := PageInfo{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
	return info, size, (page - 1) * size
}

// NextPage and PrevPage are template conveniences.
func (i PageInfo) NextPage() int { return i.Page + 1 }
func (i PageInfo) PrevPage() int { return i.Page - 1 }
