package groq

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Resolver loads a referenced document by id. It returns nil, nil when the
// document does not exist.
type Resolver func(id string) (map[string]any, error)

// Eval runs q over docs, which must be JSON-decoded documents carrying their
// system attributes (_id, _type, _createdAt, ...). The result has the same
// shape the hosted store would return.
func Eval(q Query, params Params, docs []map[string]any, resolve Resolver) (any, error) {
	norm, err := normalizeParams(params)
	if err != nil {
		return nil, err
	}
	for _, c := range q.Where {
		if _, ok := norm[c.Param]; !ok {
			return nil, fmt.Errorf("param $%s referenced but not provided", c.Param)
		}
	}

	e := &evaluator{resolve: resolve}

	var matched []map[string]any
	for _, doc := range docs {
		if doc["_type"] != q.Type {
			continue
		}
		ok := true
		for _, c := range q.Where {
			v, err := e.path(doc, tokenize(c.Path))
			if err != nil {
				return nil, err
			}
			if !reflect.DeepEqual(v, norm[c.Param]) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, doc)
		}
	}

	if q.Count {
		return float64(len(matched)), nil
	}

	if len(q.Order) > 0 {
		keys := make([][]any, len(matched))
		for i, doc := range matched {
			keys[i] = make([]any, len(q.Order))
			for j, o := range q.Order {
				v, err := e.path(doc, tokenize(o.Path))
				if err != nil {
					return nil, err
				}
				keys[i][j] = v
			}
		}
		idx := make([]int, len(matched))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			for j, o := range q.Order {
				c := compare(keys[idx[a]][j], keys[idx[b]][j])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		sorted := make([]map[string]any, len(matched))
		for i, k := range idx {
			sorted[i] = matched[k]
		}
		matched = sorted
	}

	shape := func(doc map[string]any) (any, error) {
		if q.Pluck != "" {
			return e.path(doc, tokenize(q.Pluck))
		}
		if len(q.Fields) > 0 {
			return e.project(doc, q.Fields)
		}
		return doc, nil
	}

	if q.First {
		if len(matched) == 0 {
			return nil, nil
		}
		return shape(matched[0])
	}

	out := make([]any, 0, len(matched))
	for _, doc := range matched {
		v, err := shape(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type evaluator struct {
	resolve Resolver
}

func (e *evaluator) path(v any, toks []string) (any, error) {
	if len(toks) == 0 {
		return v, nil
	}
	tok, rest := toks[0], toks[1:]
	switch tok {
	case "[]":
		arr, ok := v.([]any)
		if !ok {
			return nil, nil
		}
		out := make([]any, 0, len(arr))
		for _, el := range arr {
			r, err := e.path(el, rest)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
		return out, nil
	case "->":
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil
		}
		ref, _ := m["_ref"].(string)
		if ref == "" || e.resolve == nil {
			return nil, nil
		}
		doc, err := e.resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
		if doc == nil {
			return nil, nil
		}
		return e.path(doc, rest)
	default:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, nil
		}
		return e.path(m[tok], rest)
	}
}

func (e *evaluator) project(v any, fields []Field) (any, error) {
	switch t := v.(type) {
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			p, err := e.project(el, fields)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			p := f.Path
			if p == "" {
				p = f.Name
			}
			val, err := e.path(t, tokenize(p))
			if err != nil {
				return nil, err
			}
			if len(f.Fields) > 0 && val != nil {
				val, err = e.project(val, f.Fields)
				if err != nil {
					return nil, err
				}
			}
			out[f.Name] = val
		}
		return out, nil
	default:
		return nil, nil
	}
}

// tokenize splits an attribute path into names, "->" and "[]".
func tokenize(path string) []string {
	var toks []string
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			switch {
			case strings.HasPrefix(part, "->"):
				toks = append(toks, "->")
				part = part[2:]
			case strings.HasPrefix(part, "[]"):
				toks = append(toks, "[]")
				part = part[2:]
			default:
				i := len(part)
				if j := strings.Index(part, "->"); j >= 0 && j < i {
					i = j
				}
				if j := strings.Index(part, "[]"); j >= 0 && j < i {
					i = j
				}
				toks = append(toks, part[:i])
				part = part[i:]
			}
		}
	}
	return toks
}

// normalizeParams round-trips params through JSON so they compare equal to
// values decoded from stored documents.
func normalizeParams(params Params) (map[string]any, error) {
	if len(params) == 0 {
		return map[string]any{}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return out, nil
}

// compare orders nulls after every other value, then numbers, strings and
// booleans within their own kind.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return 1
		default:
			return -1
		}
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return 0
}
