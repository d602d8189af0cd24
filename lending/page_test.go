package lending_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hellobooks/lending-api/lending"
)

func Test_PageRequest_Normalized_AppliesDefaults(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 0, Limit: 0}

	// act
	normalized := req.Normalized()

	// assert
	assert.Equal(t, 1, normalized.Page)
	assert.Equal(t, lending.DefaultPageLimit, normalized.Limit)
}

func Test_PageRequest_Offset(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 3, Limit: 10}

	// act
	offset := req.Offset()

	// assert
	assert.Equal(t, 20, offset)
}

func Test_TotalPages(t *testing.T) {
	testCases := []struct {
		name     string
		total    int64
		limit    int
		expected int
	}{
		{name: "zero rows means zero pages", total: 0, limit: 10, expected: 0},
		{name: "exact multiple", total: 20, limit: 10, expected: 2},
		{name: "partial last page", total: 21, limit: 10, expected: 3},
		{name: "single row", total: 1, limit: 10, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, lending.TotalPages(tc.total, tc.limit))
		})
	}
}

func Test_BuildLoanPage_FirstOfThree(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 1, Limit: 10}

	// act
	page := lending.BuildLoanPage(nil, req, 25)

	// assert
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)
	assert.Equal(t, 2, page.NextPage)
	assert.Equal(t, 0, page.PrevPage)
}

func Test_BuildLoanPage_MiddlePage(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 2, Limit: 10}

	// act
	page := lending.BuildLoanPage(nil, req, 25)

	// assert
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 3, page.NextPage)
	assert.Equal(t, 1, page.PrevPage)
}

func Test_BuildLoanPage_LastPage(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 3, Limit: 10}

	// act
	page := lending.BuildLoanPage(nil, req, 25)

	// assert
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 0, page.NextPage)
	assert.Equal(t, 2, page.PrevPage)
}

func Test_BuildLoanPage_PageBeyondRange_IsEmptyButNavigable(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 9, Limit: 10}

	// act
	page := lending.BuildLoanPage(nil, req, 25)

	// assert
	assert.Empty(t, page.Loans)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)
	assert.Equal(t, 3, page.PrevPage, "prev page is clamped to the last real page")
}

func Test_BuildLoanPage_EmptyResult_HasNoNavigation(t *testing.T) {
	// arrange
	req := lending.PageRequest{Page: 1, Limit: 10}

	// act
	page := lending.BuildLoanPage(nil, req, 0)

	// assert
	assert.Zero(t, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}
