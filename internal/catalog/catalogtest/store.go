// Package catalogtest provides an in-memory product store for tests. Store
// satisfies both catalog.ProductQuerier and repository.ProductRepository.
package catalogtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"beststore/internal/catalog"
	"beststore/internal/domain"
	"beststore/internal/repository"
)

// Store is an in-memory product repository. Products keep insertion
// order, which is also the tie order for equal sort keys.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	nextID   int64
	err      error
	calls    int
}

// NewStore creates a Store holding the given products
func NewStore(products ...domain.Product) *Store {
	s := &Store{nextID: 1}
	for _, p := range products {
		s.Add(p)
	}
	return s
}

// Add appends a product to the store as is
func (s *Store) Add(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
}

// Products returns a snapshot of every stored product
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product{}, s.products...)
}

// Create stores a product under the next free id
func (s *Store) Create(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	product.ID = s.nextID
	s.nextID++
	s.products = append(s.products, *product)
	return nil
}

// Update replaces a product but keeps its creation time
func (s *Store) Update(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	i := s.indexOf(product.ID)
	if i < 0 {
		return repository.ErrProductNotFound
	}
	updated := *product
	updated.CreatedAt = s.products[i].CreatedAt
	s.products[i] = updated
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	i := s.indexOf(id)
	if i < 0 {
		return repository.ErrProductNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	i := s.indexOf(id)
	if i < 0 {
		return nil, repository.ErrProductNotFound
	}
	found := s.products[i]
	return &found, nil
}

// Latest returns up to n products, highest id first
func (s *Store) Latest(ctx context.Context, n int) ([]domain.Product, error) {
	if n < 1 {
		return []domain.Product{}, nil
	}
	items, _, err := s.QueryProducts(ctx, catalog.Spec{
		Order: catalog.Order{Column: catalog.ColumnID, Direction: catalog.Descending},
		Take:  n,
	})
	return items, err
}

func (s *Store) indexOf(id int64) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// FailWith makes every following query return err
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many queries were run
func (s *Store) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// QueryProducts filters, sorts, counts and slices the stored products
func (s *Store) QueryProducts(ctx context.Context, spec catalog.Spec) ([]domain.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.err != nil {
		return nil, 0, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if err := spec.CheckWindow(); err != nil {
		return nil, 0, err
	}

	items := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if matchesAll(p, spec.Predicates) {
			items = append(items, p)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j], spec.Order.Column)
		if spec.Order.Direction == catalog.Ascending {
			return c < 0
		}
		return c > 0
	})

	total := len(items)
	start := spec.Skip
	if start > total {
		start = total
	}
	end := total
	if spec.Take < total-start {
		end = start + spec.Take
	}

	return append([]domain.Product{}, items[start:end]...), total, nil
}

func matchesAll(p domain.Product, predicates []catalog.Predicate) bool {
	for _, predicate := range predicates {
		if !matches(p, predicate) {
			return false
		}
	}
	return true
}

func matches(p domain.Product, predicate catalog.Predicate) bool {
	needle := strings.ToLower(predicate.Text)
	for _, field := range predicate.Fields {
		if strings.Contains(strings.ToLower(FieldValue(p, field)), needle) {
			return true
		}
	}
	return false
}

// FieldValue returns the text of a searchable product field
func FieldValue(p domain.Product, field catalog.Field) string {
	switch field {
	case catalog.FieldName:
		return p.Name
	case catalog.FieldBrand:
		return p.Brand
	case catalog.FieldCategory:
		return p.Category
	default:
		return ""
	}
}

func compare(a, b domain.Product, column catalog.Column) int {
	switch column {
	case catalog.ColumnName:
		return strings.Compare(a.Name, b.Name)
	case catalog.ColumnBrand:
		return strings.Compare(a.Brand, b.Brand)
	case catalog.ColumnCategory:
		return strings.Compare(a.Category, b.Category)
	case catalog.ColumnPrice:
		return a.Price.Cmp(b.Price)
	case catalog.ColumnCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	}
}
