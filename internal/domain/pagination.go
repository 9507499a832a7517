package domain

// DefaultAmount is the default page size when none is requested.
const DefaultAmount = 100

// MaxAmount is the maximum allowed page size.
const MaxAmount = 1000

// ListParams holds pagination parameters for list operations.
// After is an exclusive lower bound on the sort key (the id of the last
// entry of the previous page); Prefix restricts results to ids starting
// with the given string.
type ListParams struct {
	Prefix string
	After  string
	Amount int
}

// Limit returns the effective page size, clamped to [1, MaxAmount].
func (p ListParams) Limit() int {
	if p.Amount <= 0 {
		return DefaultAmount
	}
	if p.Amount > MaxAmount {
		return MaxAmount
	}
	return p.Amount
}

// Pagination describes the continuation state of a list response.
// NextOffset is the value to pass as After to fetch the next page; it is
// empty when HasMore is false.
type Pagination struct {
	HasMore    bool
	NextOffset string
	MaxPerPage int
	Results    int
}

// PaginationFor builds the Pagination envelope for a page of results.
// lastID is the sort key of the final entry in the page.
func PaginationFor(hasMore bool, results int, lastID string) Pagination {
	p := Pagination{
		HasMore:    hasMore,
		MaxPerPage: MaxAmount,
		Results:    results,
	}
	if hasMore {
		p.NextOffset = lastID
	}
	return p
}
