package groq

import (
	"reflect"
	"testing"
)

func TestQueryString(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{
			name: "first with projection",
			q:    Query{Type: "profile", First: true, Fields: F("whatsapp", "github", "linkedin", "email")},
			want: `*[_type == "profile"][0]{whatsapp, github, linkedin, email}`,
		},
		{
			name: "ordered list with renamed dereference",
			q: Query{
				Type:  "skills",
				Order: []Ordering{{Path: "category"}, {Path: "name"}},
				Fields: []Field{
					{Name: "_id"},
					{Name: "name"},
					{Name: "iconUrl", Path: "icon.asset->url"},
				},
			},
			want: `*[_type == "skills"] | order(category asc, name asc){_id, name, "iconUrl": icon.asset->url}`,
		},
		{
			name: "condition and nested projection",
			q: Query{
				Type:  "project",
				Where: []Cond{{Path: "slug.current", Param: "slug"}},
				First: true,
				Fields: []Field{
					{Name: "title"},
					{Name: "techStack", Path: "techStack[]->", Fields: F("_id", "name")},
				},
			},
			want: `*[_type == "project" && slug.current == $slug][0]{title, "techStack": techStack[]->{_id, name}}`,
		},
		{
			name: "count",
			q:    Query{Type: "contact", Count: true},
			want: `count(*[_type == "contact"])`,
		},
		{
			name: "pluck",
			q:    Query{Type: "contact", Pluck: "_id"},
			want: `*[_type == "contact"]._id`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.String(); got != tt.want {
				t.Errorf("String() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tests := map[string][]string{
		"name":            {"name"},
		"slug.current":    {"slug", "current"},
		"icon.asset->url": {"icon", "asset", "->", "url"},
		"techStack[]->":   {"techStack", "[]", "->"},
	}
	for in, want := range tests {
		if got := tokenize(in); !reflect.DeepEqual(got, want) {
			t.Errorf("tokenize(%q) = %v, want %v", in, got, want)
		}
	}
}
