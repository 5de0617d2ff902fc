// Package sqlxrepos implements the core repositories on PostgreSQL
// using sqlx for scanning and squirrel for query building.
package sqlxrepos

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/kelasi/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func orderByClauses(ordering []core.DBOrdering) []string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return clauses
}

// searchPattern turns a raw search term into a case-insensitive LIKE pattern.
func searchPattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}
