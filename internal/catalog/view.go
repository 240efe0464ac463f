package catalog

// FilterParam binds a request parameter to the product field it filters on
type FilterParam struct {
	Name  string
	Field Field
}

// ViewConfig is the per-view field mapping table the builder works from
type ViewConfig struct {
	View         View
	PageSize     int
	SearchFields []Field
	Filters      []FilterParam
	Columns      []Column
	SortAliases  map[string]Order
}

const (
	DefaultPublicPageSize = 8
	DefaultAdminPageSize  = 5
)

// PublicView describes the storefront listing: search on name, brand and
// category filters, sortable by price or newest first.
//
// legacyNameFilters reproduces the variant where both filters match the
// product name instead of their own fields.
func PublicView(pageSize int, legacyNameFilters bool) ViewConfig {
	if pageSize < 1 {
		pageSize = DefaultPublicPageSize
	}

	brandField, categoryField := FieldBrand, FieldCategory
	if legacyNameFilters {
		brandField, categoryField = FieldName, FieldName
	}

	return ViewConfig{
		View:         ViewPublic,
		PageSize:     pageSize,
		SearchFields: []Field{FieldName},
		Filters: []FilterParam{
			{Name: "brand", Field: brandField},
			{Name: "category", Field: categoryField},
		},
		Columns: []Column{ColumnID, ColumnPrice},
		SortAliases: map[string]Order{
			"price_asc":  {Column: ColumnPrice, Direction: Ascending},
			"price_desc": {Column: ColumnPrice, Direction: Descending},
		},
	}
}

// AdminView describes the back-office product table: search on name or
// brand, any product column sortable.
func AdminView(pageSize int) ViewConfig {
	if pageSize < 1 {
		pageSize = DefaultAdminPageSize
	}

	return ViewConfig{
		View:         ViewAdmin,
		PageSize:     pageSize,
		SearchFields: []Field{FieldName, FieldBrand},
		Columns: []Column{
			ColumnID,
			ColumnName,
			ColumnBrand,
			ColumnCategory,
			ColumnPrice,
			ColumnCreatedAt,
		},
	}
}

func (c ViewConfig) allowsColumn(column Column) bool {
	for _, allowed := range c.Columns {
		if allowed == column {
			return true
		}
	}
	return false
}
