package catalog

import "strings"

// Builder normalizes raw listing parameters for one view
type Builder struct {
	view ViewConfig
}

// NewBuilder creates a Builder for the given view configuration
func NewBuilder(view ViewConfig) *Builder {
	return &Builder{view: view}
}

// View returns the configuration the builder normalizes against
func (b *Builder) View() ViewConfig {
	return b.view
}

// Build turns raw parameters into a ListingQuery. It never fails: every
// invalid value degrades to its default.
func (b *Builder) Build(raw RawQuery) ListingQuery {
	query := ListingQuery{
		View:      b.view.View,
		Filters:   make(map[string]string),
		PageIndex: NormalizePageIndex(raw.PageIndex),
		PageSize:  b.view.PageSize,
	}

	// Search first, then filters in table order
	if text := raw.Search; !isBlank(text) && len(b.view.SearchFields) > 0 {
		query.SearchText = text
		query.Predicates = append(query.Predicates, Predicate{
			Fields: b.view.SearchFields,
			Text:   text,
		})
	}

	for _, filter := range b.view.Filters {
		text := raw.Param(filter.Name)
		if isBlank(text) {
			continue
		}
		query.Filters[filter.Name] = text
		query.Predicates = append(query.Predicates, Predicate{
			Fields: []Field{filter.Field},
			Text:   text,
		})
	}

	if order, ok := b.view.SortAliases[raw.Sort]; ok {
		query.Sort = raw.Sort
		query.Order = order
		return query
	}

	query.Order = Order{
		Column:    b.resolveColumn(raw.Column),
		Direction: ResolveDirection(raw.OrderBy),
	}

	return query
}

// isBlank reports text that carries no filter. Non-blank text is matched as sent.
func isBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func (b *Builder) resolveColumn(raw string) Column {
	column := Column(raw)
	if b.view.allowsColumn(column) {
		return column
	}
	return DefaultColumn
}

// ResolveDirection maps the two recognized tokens and sends everything else to descending
func ResolveDirection(raw string) Direction {
	switch Direction(raw) {
	case Ascending:
		return Ascending
	case Descending:
		return Descending
	default:
		return DefaultDirection
	}
}

// NormalizePageIndex clamps page indexes below 1 to the first page
func NormalizePageIndex(pageIndex int) int {
	if pageIndex < 1 {
		return 1
	}
	return pageIndex
}
