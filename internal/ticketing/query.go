package ticketing

import (
	"strings"
	"time"
)

// timeLayout is the backend's date-time format for encoded queries and sys fields.
const timeLayout = "2006-01-02 15:04:05"

// Query builds an encoded sysparm_query. Terms are ANDed in insertion order.
// Values are escaped so they cannot introduce extra clauses.
type Query struct {
	terms []string
	order []string
}

// NewQuery starts an empty query.
func NewQuery() *Query {
	return &Query{}
}

func escapeValue(v string) string {
	v = strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
	return strings.ReplaceAll(v, "^", "^^")
}

// Equals adds field=value.
func (q *Query) Equals(field, value string) *Query {
	q.terms = append(q.terms, field+"="+escapeValue(value))
	return q
}

// Like adds fieldLIKEvalue (substring match).
func (q *Query) Like(field, value string) *Query {
	q.terms = append(q.terms, field+"LIKE"+escapeValue(value))
	return q
}

// In adds field=v1^ORfield=v2... as one term. An empty list adds nothing.
func (q *Query) In(field string, values ...string) *Query {
	if len(values) == 0 {
		return q
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, field+"="+escapeValue(v))
	}
	q.terms = append(q.terms, strings.Join(parts, "^OR"))
	return q
}

// Since adds field>=t, rendered in UTC.
func (q *Query) Since(field string, t time.Time) *Query {
	q.terms = append(q.terms, field+">="+t.UTC().Format(timeLayout))
	return q
}

// OrderBy sorts ascending by field.
func (q *Query) OrderBy(field string) *Query {
	q.order = append(q.order, "ORDERBY"+field)
	return q
}

// OrderByDesc sorts descending by field.
func (q *Query) OrderByDesc(field string) *Query {
	q.order = append(q.order, "ORDERBYDESC"+field)
	return q
}

// String renders the unencoded query. URL encoding is applied by the client.
func (q *Query) String() string {
	all := make([]string, 0, len(q.terms)+len(q.order))
	all = append(all, q.terms...)
	all = append(all, q.order...)
	return strings.Join(all, "^")
}
