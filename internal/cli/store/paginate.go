package store

// PageInfo describes a page cut out of a list.
type PageInfo struct {
	Page  int
	Size  int
	Total int
	Pages int
}

// Paginate returns the 1-based page of items. size <= 0 yields everything on one page;
// page is clamped into [1, Pages]. items is never modified.
func Paginate[T any](items []T, page, size int) ([]T, PageInfo) {
	total := len(items)
	if size <= 0 {
		size = total
	}
	info := PageInfo{Size: size, Total: total, Pages: 1}
	if total == 0 || size == 0 {
		info.Page = 1
		return nil, info
	}
	info.Pages = (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if page > info.Pages {
		page = info.Pages
	}
	info.Page = page
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return append([]T(nil), items[start:end]...), info
}
