package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortSpec whitelists the columns a listing may be ordered by. Anything the
// client sends outside the set falls back to the default.
type sortSpec struct {
	columns     map[string]bool
	defaultCol  string
	defaultDesc bool
}

func newSortSpec(defaultCol string, defaultDesc bool, columns ...string) sortSpec {
	set := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, c := range columns {
		set[c] = true
	}
	return sortSpec{columns: set, defaultCol: defaultCol, defaultDesc: defaultDesc}
}

var (
	productSort = newSortSpec("name", false,
		"name", "price", "rating", "stock_quantity", "category", "is_active")
	orderSort   = newSortSpec("created_at", true, "customer_name", "status", "total_amount")
	articleSort = newSortSpec("published_at", true, "title", "published_at")
)

// allows reports whether column is sortable
func (s sortSpec) allows(column string) bool {
	return s.columns[column]
}

// column returns the requested column when whitelisted, else the default
func (s sortSpec) column(requested string) string {
	if c := strings.TrimSpace(requested); s.columns[c] {
		return c
	}
	return s.defaultCol
}

// descending reads "asc"/"desc" in any case. Empty means the default;
// anything else is DESC.
func (s sortSpec) descending(dir string) bool {
	switch strings.ToUpper(strings.TrimSpace(dir)) {
	case "":
		return s.defaultDesc
	case "ASC":
		return false
	}
	return true
}

// orderBy builds the ORDER BY clause, with id ascending as tie-breaker so
// offset pagination is stable.
func (s sortSpec) orderBy(requested, dir string) clause.OrderBy {
	col := s.column(requested)
	cols := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: s.descending(dir)}}
	if col != "id" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
	return clause.OrderBy{Columns: cols}
}
