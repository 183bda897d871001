package persistence

import "strings"

// likePattern builds a lower-cased substring pattern for LOWER(col) LIKE ?,
// which behaves the same on postgres and sqlite. Wildcards in the input are escaped.
func likePattern(search string) string {
	s := strings.ToLower(strings.TrimSpace(search))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
