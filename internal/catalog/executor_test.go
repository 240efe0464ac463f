package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"beststore/internal/catalog"
	"beststore/internal/catalog/catalogtest"
	"beststore/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

func product(id int64, name, brand, category string, price string) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Brand:     brand,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		CreatedAt: baseTime.Add(time.Duration(id) * time.Hour),
	}
}

func numberedProducts(n int) []domain.Product {
	products := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		products = append(products, product(
			int64(i),
			fmt.Sprintf("P%d", i),
			fmt.Sprintf("Brand%d", i%3),
			fmt.Sprintf("Category%d", i%2),
			fmt.Sprintf("%d.50", (i*37)%100),
		))
	}
	return products
}

func newService(store catalog.ProductQuerier) *catalog.Service {
	return catalog.NewService(store, zap.NewNop(),
		catalog.PublicView(catalog.DefaultPublicPageSize, false),
		catalog.AdminView(catalog.DefaultAdminPageSize),
	)
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestExecutor_SecondPublicPageHoldsRemainder(t *testing.T) {
	svc := newService(catalogtest.NewStore(numberedProducts(9)...))

	result, err := svc.ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{PageIndex: 2})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 9, result.TotalCount)
	assert.Equal(t, 2, result.PageIndex)
	// newest first: the oldest product lands on the last page
	assert.Equal(t, "P1", result.Items[0].Name)
}

func TestExecutor_AdminSearchMatchesNameOrBrand(t *testing.T) {
	store := catalogtest.NewStore(
		product(1, "Running Shoe", "Acme", "Sports", "50"),
		product(2, "Sandal", "ShoeCo", "Summer", "20"),
		product(3, "Laptop", "Acme", "shoes", "900"),
		product(4, "SHOEHORN", "Tools Inc", "Home", "5"),
	)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewAdmin, catalog.RawQuery{Search: "shoe"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2, 4}, ids(result.Items), "category is not searched")
	assert.Equal(t, "shoe", result.SearchText)
}

func TestExecutor_PublicSearchIsNameOnly(t *testing.T) {
	store := catalogtest.NewStore(
		product(1, "Running Shoe", "Acme", "Sports", "50"),
		product(2, "Sandal", "ShoeCo", "Summer", "20"),
	)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{Search: "shoe"})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, ids(result.Items))
}

func TestExecutor_LeadingSpaceNarrowsSearch(t *testing.T) {
	store := catalogtest.NewStore(
		product(1, "Snowshoe", "Peak", "Outdoor", "80.00"),
		product(2, "Running shoe", "Acme", "Sports", "50.00"),
	)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{Search: " shoe"})
	require.NoError(t, err)

	assert.Equal(t, " shoe", result.SearchText)
	assert.Equal(t, 1, result.TotalCount)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Running shoe", result.Items[0].Name)
}

func TestExecutor_PublicBrandFilter(t *testing.T) {
	store := catalogtest.NewStore(
		product(1, "Phone", "Acme", "Phones", "100"),
		product(2, "Acme Case", "Other", "Accessories", "10"),
		product(3, "Tablet", "Acme Labs", "Tablets", "300"),
		product(4, "Watch", "Globex", "Watches", "150"),
	)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{Brand: "Acme"})
	require.NoError(t, err)

	for _, p := range result.Items {
		assert.Contains(t, p.Brand, "Acme")
	}
	assert.ElementsMatch(t, []int64{1, 3}, ids(result.Items))
	assert.Equal(t, map[string]string{"brand": "Acme"}, result.Filters)
}

func TestExecutor_PublicFiltersAreAnded(t *testing.T) {
	store := catalogtest.NewStore(
		product(1, "Phone X", "Acme", "Phones", "100"),
		product(2, "Phone Y", "Acme", "Refurbished", "80"),
		product(3, "Phone Z", "Globex", "Phones", "90"),
	)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{
		Search:   "phone",
		Brand:    "acme",
		Category: "phones",
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, ids(result.Items))
}

func TestExecutor_PriceAscendingIsNonDecreasing(t *testing.T) {
	svc := newService(catalogtest.NewStore(numberedProducts(20)...))

	result, err := svc.ListProducts(context.Background(), catalog.ViewAdmin, catalog.RawQuery{
		Column:  "price",
		OrderBy: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, catalog.ColumnPrice, result.Column)
	assert.Equal(t, catalog.Ascending, result.Direction)
	for i := 1; i < len(result.Items); i++ {
		assert.False(t, result.Items[i].Price.LessThan(result.Items[i-1].Price),
			"price decreased at position %d", i)
	}
}

func TestExecutor_PageBeyondLastIsEmpty(t *testing.T) {
	svc := newService(catalogtest.NewStore(numberedProducts(7)...))

	result, err := svc.ListProducts(context.Background(), catalog.ViewAdmin, catalog.RawQuery{PageIndex: 40})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, 40, result.PageIndex)
}

func TestExecutor_MaxPageIndexIsEmpty(t *testing.T) {
	svc := newService(catalogtest.NewStore(numberedProducts(9)...))

	result, err := svc.ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{PageIndex: math.MaxInt})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Equal(t, 9, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	assert.Equal(t, math.MaxInt, result.PageIndex)
}

func TestStore_RejectsNegativeSkip(t *testing.T) {
	store := catalogtest.NewStore(numberedProducts(3)...)

	_, _, err := store.QueryProducts(context.Background(), catalog.Spec{
		Order: catalog.Order{Column: catalog.ColumnID, Direction: catalog.Descending},
		Skip:  -8,
		Take:  8,
	})

	assert.ErrorIs(t, err, catalog.ErrInvalidPage)
}

func TestExecutor_EmptyCollectionHasNoPages(t *testing.T) {
	result, err := newService(catalogtest.NewStore()).ListProducts(context.Background(), catalog.ViewPublic, catalog.RawQuery{})
	require.NoError(t, err)

	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 1, result.PageIndex)
}

func TestExecutor_StorageFailureIsSurfaced(t *testing.T) {
	store := catalogtest.NewStore(numberedProducts(3)...)
	cause := errors.New("connection refused")
	store.FailWith(cause)

	result, err := newService(store).ListProducts(context.Background(), catalog.ViewAdmin, catalog.RawQuery{})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, catalog.ErrStorageUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestService_UnknownView(t *testing.T) {
	store := catalogtest.NewStore()

	_, err := newService(store).ListProducts(context.Background(), catalog.View("partner"), catalog.RawQuery{})

	assert.ErrorIs(t, err, catalog.ErrUnknownView)
	assert.Zero(t, store.Calls())
}

func TestExecutor_EchoesNormalizedState(t *testing.T) {
	svc := newService(catalogtest.NewStore(numberedProducts(3)...))

	result, err := svc.ListProducts(context.Background(), catalog.ViewAdmin, catalog.RawQuery{
		Search:    "  P ",
		Column:    "DROP TABLE products",
		OrderBy:   "sideways",
		PageIndex: -4,
	})
	require.NoError(t, err)

	assert.Equal(t, "P", result.SearchText)
	assert.Equal(t, catalog.ColumnID, result.Column)
	assert.Equal(t, catalog.Descending, result.Direction)
	assert.Equal(t, 1, result.PageIndex)
	assert.Equal(t, catalog.DefaultAdminPageSize, result.PageSize)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		count, pageSize, want int
	}{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{10, 5, 2},
		{11, 5, 3},
		{3, 0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, catalog.TotalPages(tt.count, tt.pageSize), "count=%d pageSize=%d", tt.count, tt.pageSize)
	}
}

// Property: totalPages is the ceiling of count over page size
func TestProperty_TotalPagesIsCeiling(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("totalPages == ceil(count/pageSize)", prop.ForAll(
		func(count, pageSize int) bool {
			got := catalog.TotalPages(count, pageSize)
			if count == 0 {
				return got == 0
			}
			return (got-1)*pageSize < count && count <= got*pageSize
		},
		gen.IntRange(0, 10000),
		gen.IntRange(1, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: walking every page returns each matching product exactly once
func TestProperty_PaginationIsComplete(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("pages 1..totalPages cover the filtered set", prop.ForAll(
		func(n, pageSize int, column, orderBy, search string) bool {
			store := catalogtest.NewStore(numberedProducts(n)...)
			svc := catalog.NewService(store, zap.NewNop(), catalog.AdminView(pageSize))
			ctx := context.Background()

			raw := catalog.RawQuery{Search: search, Column: column, OrderBy: orderBy}
			first, err := svc.ListProducts(ctx, catalog.ViewAdmin, raw)
			if err != nil {
				return false
			}

			seen := make(map[int64]bool)
			collected := 0
			for page := 1; page <= first.TotalPages; page++ {
				raw.PageIndex = page
				result, err := svc.ListProducts(ctx, catalog.ViewAdmin, raw)
				if err != nil || result.TotalCount != first.TotalCount {
					return false
				}
				if len(result.Items) > pageSize {
					return false
				}
				for _, p := range result.Items {
					if seen[p.ID] {
						return false
					}
					seen[p.ID] = true
					collected++
				}
			}

			expected := 0
			for _, p := range numberedProducts(n) {
				if search == "" || strings.Contains(strings.ToLower(p.Name+"|"+p.Brand), strings.ToLower(search)) {
					expected++
				}
			}

			return collected == first.TotalCount && collected == expected
		},
		gen.IntRange(0, 40),
		gen.IntRange(1, 10),
		gen.OneConstOf("id", "name", "brand", "category", "price", "createdAt", "bogus"),
		gen.OneConstOf("asc", "desc", ""),
		gen.OneConstOf("", "P1", "brand2", "p"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: identical requests against an unchanged collection give identical results
func TestProperty_ListingIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	svc := newService(catalogtest.NewStore(numberedProducts(25)...))

	properties.Property("listing twice returns the same page", prop.ForAll(
		func(pageIndex int, column, orderBy string) bool {
			raw := catalog.RawQuery{PageIndex: pageIndex, Column: column, OrderBy: orderBy}
			a, errA := svc.ListProducts(context.Background(), catalog.ViewAdmin, raw)
			b, errB := svc.ListProducts(context.Background(), catalog.ViewAdmin, raw)
			if errA != nil || errB != nil {
				return false
			}
			return fmt.Sprint(ids(a.Items)) == fmt.Sprint(ids(b.Items)) &&
				a.TotalPages == b.TotalPages &&
				a.PageIndex == b.PageIndex &&
				a.Column == b.Column &&
				a.Direction == b.Direction
		},
		gen.IntRange(-3, 8),
		gen.OneConstOf("id", "price", "name", "nope"),
		gen.OneConstOf("asc", "desc", "up"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
