// Package groq models the small set of queries the site issues against the
// content store. A Query renders to GROQ for the hosted store and can be
// evaluated in-process against decoded documents for the local store.
package groq

import (
	"strconv"
	"strings"
)

// Params binds $name placeholders used in conditions.
type Params map[string]any

// Cond is an equality condition `Path == $Param`.
type Cond struct {
	Path  string
	Param string
}

// Ordering sorts results by an attribute path.
type Ordering struct {
	Path string
	Desc bool
}

// Field is one entry of a projection. Path defaults to Name. Paths use the
// GROQ attribute syntax: `a.b`, `a->b` (dereference) and `a[]` (traverse).
type Field struct {
	Name   string
	Path   string
	Fields []Field
}

// Query selects documents of a single _type.
type Query struct {
	Type   string
	Where  []Cond
	Order  []Ordering
	First  bool
	Count  bool
	Pluck  string
	Fields []Field
}

// F is shorthand for plain projected attributes.
func F(names ...string) []Field {
	fields := make([]Field, 0, len(names))
	for _, n := range names {
		fields = append(fields, Field{Name: n})
	}
	return fields
}

// String renders the query as GROQ.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(`*[_type == `)
	b.WriteString(strconv.Quote(q.Type))
	for _, c := range q.Where {
		b.WriteString(" && ")
		b.WriteString(c.Path)
		b.WriteString(" == $")
		b.WriteString(c.Param)
	}
	b.WriteString("]")

	if q.Count {
		return "count(" + b.String() + ")"
	}

	if len(q.Order) > 0 {
		b.WriteString(" | order(")
		for i, o := range q.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(o.Path)
			if o.Desc {
				b.WriteString(" desc")
			} else {
				b.WriteString(" asc")
			}
		}
		b.WriteString(")")
	}
	if q.First {
		b.WriteString("[0]")
	}
	if q.Pluck != "" {
		b.WriteString(".")
		b.WriteString(q.Pluck)
	}
	if len(q.Fields) > 0 {
		writeProjection(&b, q.Fields)
	}
	return b.String()
}

func writeProjection(b *strings.Builder, fields []Field) {
	b.WriteString("{")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		if f.Path == "" || f.Path == f.Name {
			b.WriteString(f.Name)
		} else {
			b.WriteString(strconv.Quote(f.Name))
			b.WriteString(": ")
			b.WriteString(f.Path)
		}
		if len(f.Fields) > 0 {
			writeProjection(b, f.Fields)
		}
	}
	b.WriteString("}")
}
