package sqlbuilder

import (
	"fmt"
	"strings"
)

// Condition is a WHERE fragment. next is the number of the first free
// positional placeholder; the returned args fill $next, $next+1, ...
type Condition interface {
	SQL(next int) (string, []any)
}

type eqCondition struct {
	field string
	value any
}

// Eq creates an equality condition: Eq("id", 7) renders "id = $1"
func Eq(field string, value any) Condition {
	return &eqCondition{field: field, value: value}
}

func (c *eqCondition) SQL(next int) (string, []any) {
	return fmt.Sprintf("%s = $%d", c.field, next), []any{c.value}
}

type containsFoldCondition struct {
	fields []string
	text   string
}

// ContainsFold matches rows where any of fields contains text, ignoring case.
// The pattern is bound once and shared by every field in the OR group:
// ContainsFold([]string{"name", "brand"}, "x") renders
// "(name ILIKE $1 ESCAPE '\' OR brand ILIKE $1 ESCAPE '\')".
func ContainsFold(fields []string, text string) Condition {
	return &containsFoldCondition{fields: fields, text: text}
}

func (c *containsFoldCondition) SQL(next int) (string, []any) {
	if len(c.fields) == 0 {
		return "TRUE", nil
	}

	parts := make([]string, 0, len(c.fields))
	for _, field := range c.fields {
		parts = append(parts, fmt.Sprintf(`%s ILIKE $%d ESCAPE '\'`, field, next))
	}

	fragment := strings.Join(parts, " OR ")
	if len(parts) > 1 {
		fragment = "(" + fragment + ")"
	}

	return fragment, []any{"%" + EscapeLike(c.text) + "%"}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so text matches literally
func EscapeLike(text string) string {
	return likeEscaper.Replace(text)
}
