package persistence

import (
	"strings"
)

// orderSpec maps the sort keys a listing accepts onto table columns.
// Anything else falls back to the default column, so user input never
// reaches the ORDER BY clause.
type orderSpec struct {
	columns  map[string]string
	fallback string
}

var tramiteOrdering = orderSpec{
	columns: map[string]string{
		"filing_number":     "filing_number",
		"status":            "status",
		"filed_at":          "filed_at",
		"status_changed_at": "status_changed_at",
		"created_at":        "created_at",
		"updated_at":        "updated_at",
	},
	fallback: "filed_at",
}

// clause renders the ORDER BY clause. The id tiebreak keeps page
// boundaries stable when many rows share a timestamp.
func (o orderSpec) clause(key, dir string) string {
	column, ok := o.columns[strings.TrimSpace(key)]
	if !ok {
		column = o.fallback
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(dir), "asc") {
		direction = "ASC"
	}
	return column + " " + direction + ", id " + direction
}
