package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, info := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, PageInfo{Page: 2, Size: 2, Total: 5, Pages: 3}, info)

	page, info = Paginate(items, 9, 2)
	assert.Equal(t, []int{5}, page)
	assert.Equal(t, 3, info.Page)

	page, info = Paginate(items, 0, 0)
	assert.Equal(t, items, page)
	assert.Equal(t, 1, info.Pages)

	page, info = Paginate([]int(nil), 1, 10)
	assert.Empty(t, page)
	assert.Equal(t, PageInfo{Page: 1, Size: 10, Total: 0, Pages: 1}, info)

	page, _ = Paginate(items, 1, 2)
	page[0] = 99
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
}
