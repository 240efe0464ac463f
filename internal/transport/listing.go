package transport

import (
	"context"
	"net/http"
	"strconv"

	"beststore/internal/catalog"
)

// ProductLister runs catalog listings for a view
type ProductLister interface {
	ListProducts(ctx context.Context, view catalog.View, raw catalog.RawQuery) (*catalog.ListingResult, error)
}

// ListingResponse is one listing page plus the normalized request state, so
// clients can render pagination and sort links without re-deriving it
type ListingResponse struct {
	Search     string            `json:"search"`
	Brand      string            `json:"brand"`
	Category   string            `json:"category"`
	Sort       string            `json:"sort"`
	Column     string            `json:"column"`
	OrderBy    string            `json:"orderby"`
	PageIndex  int               `json:"pageIndex"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
	TotalCount int               `json:"totalCount"`
	Products   []ProductResponse `json:"products"`
}

// parseRawQuery copies listing parameters off the query string untouched.
// A pageIndex that is not an integer counts as 0.
func parseRawQuery(r *http.Request) catalog.RawQuery {
	q := r.URL.Query()

	pageIndex, err := strconv.Atoi(q.Get("pageIndex"))
	if err != nil {
		pageIndex = 0
	}

	return catalog.RawQuery{
		Search:    q.Get("search"),
		Brand:     q.Get("brand"),
		Category:  q.Get("category"),
		Sort:      q.Get("sort"),
		Column:    q.Get("column"),
		OrderBy:   q.Get("orderby"),
		PageIndex: pageIndex,
	}
}

func toListingResponse(result *catalog.ListingResult) ListingResponse {
	return ListingResponse{
		Search:     result.SearchText,
		Brand:      result.Filters["brand"],
		Category:   result.Filters["category"],
		Sort:       result.Sort,
		Column:     string(result.Column),
		OrderBy:    string(result.Direction),
		PageIndex:  result.PageIndex,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		TotalCount: result.TotalCount,
		Products:   toProductResponses(result.Items),
	}
}
