//go:build unit

package data

import "testing"

func TestPageRequest_Resolve(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		size       int
		total      int64
		wantPage   int
		wantPages  int
		wantOffset int
		wantNext   bool
		wantPrev   bool
	}{
		{"first page", 1, 10, 25, 1, 3, 0, true, false},
		{"middle page", 2, 10, 25, 2, 3, 10, true, true},
		{"last page", 3, 10, 25, 3, 3, 20, false, true},
		{"page past the end clamps to last", 99, 10, 25, 3, 3, 20, false, true},
		{"zero page clamps to first", 0, 10, 25, 1, 3, 0, true, false},
		{"negative page clamps to first", -5, 10, 25, 1, 3, 0, true, false},
		{"empty set still yields one page", 1, 10, 0, 1, 1, 0, false, false},
		{"page past the end of an empty set", 7, 10, 0, 1, 1, 0, false, false},
		{"exact multiple of page size", 3, 10, 30, 3, 3, 20, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, limit, offset := PageRequest{Page: tt.page, PageSize: tt.size}.Resolve(tt.total)
			if info.Page != tt.wantPage {
				t.Errorf("expected page %d, got %d", tt.wantPage, info.Page)
			}
			if info.TotalPages != tt.wantPages {
				t.Errorf("expected %d total pages, got %d", tt.wantPages, info.TotalPages)
			}
			if limit != tt.size {
				t.Errorf("expected limit %d, got %d", tt.size, limit)
			}
			if offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, offset)
			}
			if info.HasNext != tt.wantNext {
				t.Errorf("expected HasNext=%v, got %v", tt.wantNext, info.HasNext)
			}
			if info.HasPrev != tt.wantPrev {
				t.Errorf("expected HasPrev=%v, got %v", tt.wantPrev, info.HasPrev)
			}
			if info.TotalItems != tt.total {
				t.Errorf("expected TotalItems %d, got %d", tt.total, info.TotalItems)
			}
		})
	}
}

func TestPageRequest_Resolve_DefaultsPageSize(t *testing.T) {
	info, limit, _ := PageRequest{Page: 1}.Resolve(5)
	if limit != 10 {
		t.Errorf("expected default limit 10, got %d", limit)
	}
	if info.PageSize != 10 {
		t.Errorf("expected default page size 10, got %d", info.PageSize)
	}
}
