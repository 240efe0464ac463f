package catalog

import (
	"errors"
	"fmt"
	"math"

	"beststore/internal/domain"
)

var (
	ErrStorageUnavailable = errors.New("product storage unavailable")
	ErrUnknownView        = errors.New("unknown catalog view")
	ErrInvalidPage        = errors.New("invalid page window")
)

// View identifies the surface a listing is produced for
type View string

const (
	ViewPublic View = "public"
	ViewAdmin  View = "admin"
)

// Column is a sortable product column
type Column string

const (
	ColumnID        Column = "id"
	ColumnName      Column = "name"
	ColumnBrand     Column = "brand"
	ColumnCategory  Column = "category"
	ColumnPrice     Column = "price"
	ColumnCreatedAt Column = "createdAt"
)

// Direction is the sort direction of a listing
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Defaults applied when a request names an unknown column or direction
const (
	DefaultColumn    = ColumnID
	DefaultDirection = Descending
)

// Field is a product text field that substring predicates match against
type Field string

const (
	FieldName     Field = "name"
	FieldBrand    Field = "brand"
	FieldCategory Field = "category"
)

// RawQuery carries untrusted listing parameters exactly as they arrived.
// Empty strings mean the parameter was absent.
type RawQuery struct {
	Search    string
	Brand     string
	Category  string
	Sort      string
	Column    string
	OrderBy   string
	PageIndex int
}

// Param returns the raw value of a named filter parameter
func (r RawQuery) Param(name string) string {
	switch name {
	case "brand":
		return r.Brand
	case "category":
		return r.Category
	default:
		return ""
	}
}

// Predicate matches a product when any of Fields contains Text, ignoring case.
// Text is always bound as a parameter by storage implementations.
type Predicate struct {
	Fields []Field
	Text   string
}

// Order is the single active ordering of a listing
type Order struct {
	Column    Column
	Direction Direction
}

// Spec is what storage needs to run one listing: all predicates ANDed,
// one ordering, and the page window.
type Spec struct {
	Predicates []Predicate
	Order      Order
	Skip       int
	Take       int
}

// CheckWindow rejects a negative skip or an empty take. Storage must not
// reinterpret either as the first page.
func (s Spec) CheckWindow() error {
	if s.Skip < 0 || s.Take < 1 {
		return fmt.Errorf("%w: skip=%d take=%d", ErrInvalidPage, s.Skip, s.Take)
	}
	return nil
}

// ListingQuery is a fully normalized listing request. Only Builder creates one.
type ListingQuery struct {
	View       View
	SearchText string
	Filters    map[string]string
	Sort       string
	Order      Order
	PageIndex  int
	PageSize   int
	Predicates []Predicate
}

// Offset is the number of rows skipped before the requested page. It
// saturates at math.MaxInt instead of wrapping for huge page indexes.
func (q ListingQuery) Offset() int {
	if q.PageIndex < 1 || q.PageSize < 1 {
		return 0
	}
	if q.PageIndex-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.PageIndex - 1) * q.PageSize
}

// Spec converts the query into the storage contract
func (q ListingQuery) Spec() Spec {
	return Spec{
		Predicates: q.Predicates,
		Order:      q.Order,
		Skip:       q.Offset(),
		Take:       q.PageSize,
	}
}

// ListingResult is one page of products plus the normalized state to echo back
type ListingResult struct {
	Items      []domain.Product
	PageIndex  int
	PageSize   int
	TotalPages int
	TotalCount int
	SearchText string
	Filters    map[string]string
	Sort       string
	Column     Column
	Direction  Direction
}
