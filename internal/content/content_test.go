package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/aTrapDeer/portfolio-site/internal/asset"
	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/store"
	"github.com/aTrapDeer/portfolio-site/internal/store/local"
)

var errUnreachable = errors.New("dial tcp: connection refused")

// downClient fails every call.
type downClient struct{}

func (downClient) Fetch(context.Context, groq.Query, groq.Params, ...store.FetchOption) (json.RawMessage, error) {
	return nil, errUnreachable
}

func (downClient) Create(context.Context, any) (string, error) { return "", errUnreachable }

func (downClient) Transaction() store.Transaction { return nil }

func newService(t *testing.T, c store.Client) (*Service, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	return New(c, asset.NewBuilder("abc123", "production"), logger), &logs
}

func seededStore(t *testing.T, docs ...map[string]any) *local.Store {
	t.Helper()
	s, err := local.Open(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	for _, d := range docs {
		if _, err := s.Create(context.Background(), d); err != nil {
			t.Fatalf("Create %v: %v", d, err)
		}
	}
	return s
}

func TestListsAreEmptyWhenStoreUnreachable(t *testing.T) {
	svc, logs := newService(t, downClient{})
	ctx := context.Background()

	if got := svc.Skills(ctx); got == nil || len(got) != 0 {
		t.Errorf("Skills = %#v, want empty list", got)
	}
	if got := svc.Experience(ctx); got == nil || len(got) != 0 {
		t.Errorf("Experience = %#v, want empty list", got)
	}
	if got := svc.Projects(ctx); got == nil || len(got) != 0 {
		t.Errorf("Projects = %#v, want empty list", got)
	}
	if got := svc.Hero(ctx); got != nil {
		t.Errorf("Hero = %+v, want nil", got)
	}
	if got := svc.About(ctx); got != nil {
		t.Errorf("About = %+v, want nil", got)
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Errorf("fallback was not logged:\n%s", logs.String())
	}
}

func TestHomeRendersWhenStoreUnreachable(t *testing.T) {
	svc, _ := newService(t, downClient{})
	home := svc.Home(context.Background())

	raw, err := json.Marshal(home)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"skills":[]`, `"projects":[]`, `"experience":[]`, `"hero":null`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("home props missing %s: %s", want, raw)
		}
	}
	if home.ContactInfo.Email != DefaultContactInfo.Email {
		t.Errorf("contact info = %+v", home.ContactInfo)
	}
}

func TestProjectNotFoundIsNotAFetchFailure(t *testing.T) {
	svc, _ := newService(t, seededStore(t))

	_, err := svc.Project(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var ferr *FetchError
	if errors.As(err, &ferr) {
		t.Fatalf("not-found must not be a FetchError")
	}
}

func TestProjectFetchFailure(t *testing.T) {
	svc, _ := newService(t, downClient{})

	_, err := svc.Project(context.Background(), "site")
	var ferr *FetchError
	if !errors.As(err, &ferr) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("fetch failure reported as not found")
	}
	if !errors.Is(err, errUnreachable) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestProjectDetail(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_id": "image-icon-64x64-svg", "_type": "sanity.imageAsset", "url": "https://cdn.example/go.svg"},
		map[string]any{"_id": "skill-go", "_type": "skills", "name": "Go", "websiteUrl": "https://go.dev",
			"icon": map[string]any{"asset": map[string]any{"_ref": "image-icon-64x64-svg"}}},
		map[string]any{"_id": "skill-next", "_type": "skills", "name": "Next.js"},
		map[string]any{
			"_type":     "project",
			"title":     "Portfolio",
			"slug":      map[string]any{"current": "portfolio"},
			"mainImage": map[string]any{"asset": map[string]any{"_ref": "image-hero-3000x2000-jpg"}, "alt": "Cover"},
			"techStack": []any{map[string]any{"_ref": "skill-go"}, map[string]any{"_ref": "skill-next"}},
			"content": []any{
				map[string]any{"_type": "block", "style": "normal"},
				map[string]any{"_type": "image", "asset": map[string]any{"_ref": "image-shot-1600x900-png"}},
			},
		},
	)
	svc, _ := newService(t, s)

	got, err := svc.Project(context.Background(), "portfolio")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if got.Title != "Portfolio" || got.ImageAlt != "Cover" {
		t.Errorf("detail = %s", spew.Sdump(got))
	}
	if want := "https://cdn.sanity.io/images/abc123/production/hero-3000x2000.jpg?w=1920"; got.ImageURL != want {
		t.Errorf("image url = %s, want %s", got.ImageURL, want)
	}
	if len(got.Content) != 2 {
		t.Fatalf("content = %s", spew.Sdump(got.Content))
	}
	if _, ok := got.Content[0]["url"]; ok {
		t.Error("text block should not get a url")
	}
	if want := "https://cdn.sanity.io/images/abc123/production/shot-1600x900.png?w=1200"; got.Content[1]["url"] != want {
		t.Errorf("content image url = %v, want %s", got.Content[1]["url"], want)
	}

	if len(got.TechStack) != 2 {
		t.Fatalf("tech stack = %s", spew.Sdump(got.TechStack))
	}
	goLogo := got.TechStack[0].Logo
	if goLogo.Sources[0] != "https://cdn.example/go.svg" || goLogo.Initial != "G" {
		t.Errorf("go logo = %s", spew.Sdump(goLogo))
	}
	nextLogo := got.TechStack[1].Logo
	if len(nextLogo.Sources) != 1 || nextLogo.Sources[0] != "https://cdn.simpleicons.org/nextdotjs" {
		t.Errorf("next logo = %s", spew.Sdump(nextLogo))
	}
}

func TestSkillsAreOrderedByCategoryThenName(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_type": "skills", "name": "React", "category": "frontend"},
		map[string]any{"_type": "skills", "name": "Go", "category": "backend"},
		map[string]any{"_type": "skills", "name": "Figma", "category": "design"},
		map[string]any{"_type": "skills", "name": "Docker", "category": "backend"},
	)
	svc, _ := newService(t, s)

	var names []string
	for _, sk := range svc.Skills(context.Background()) {
		names = append(names, sk.Name)
	}
	if got := strings.Join(names, ","); got != "Docker,Go,Figma,React" {
		t.Errorf("order = %s", got)
	}
}

func TestExperienceDropsEndDateForCurrentJob(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_type": "experience", "company": "Old", "role": "Dev", "startDate": "2019-01-01", "endDate": "2021-01-01"},
		map[string]any{"_type": "experience", "company": "Now", "role": "Lead", "startDate": "2022-03-01", "endDate": "2024-01-01", "isCurrentJob": true,
			"companyLogo": map[string]any{"asset": map[string]any{"_ref": "image-logo-512x512-png"}}},
	)
	svc, _ := newService(t, s)

	items := svc.Experience(context.Background())
	if len(items) != 2 {
		t.Fatalf("items = %s", spew.Sdump(items))
	}
	if items[0].Company != "Now" || items[0].EndDate != "" {
		t.Errorf("current job = %+v", items[0])
	}
	if items[0].LogoURL != "https://cdn.sanity.io/images/abc123/production/logo-512x512.png?w=200" {
		t.Errorf("logo url = %s", items[0].LogoURL)
	}
	if items[1].EndDate != "2021-01-01" {
		t.Errorf("past job = %+v", items[1])
	}
}

func TestHeroDefaultsAvailability(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_id": "file-cv-pdf", "_type": "sanity.fileAsset", "url": "https://cdn.example/cv.pdf"},
		map[string]any{"_type": "profile", "fullName": "Radit", "headline": "Engineer",
			"resume":       map[string]any{"asset": map[string]any{"_ref": "file-cv-pdf"}},
			"profileImage": map[string]any{"asset": map[string]any{"_ref": "image-me-800x800-jpg"}}},
	)
	svc, _ := newService(t, s)

	hero := svc.Hero(context.Background())
	if hero == nil {
		t.Fatal("hero is nil")
	}
	if !hero.IsAvailable {
		t.Error("isAvailable should default to true")
	}
	if hero.ResumeURL != "https://cdn.example/cv.pdf" {
		t.Errorf("resume url = %s", hero.ResumeURL)
	}
	if hero.ImageURL != "https://cdn.sanity.io/images/abc123/production/me-800x800.jpg?w=600&h=600" {
		t.Errorf("image url = %s", hero.ImageURL)
	}
	if about := svc.About(context.Background()); about != nil {
		t.Errorf("about without bio = %+v, want nil", about)
	}
}

func TestContactInfoFillsBlanksFromDefault(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_type": "profile", "whatsapp": "+62 812-0000-1111", "email": "me@radit.dev"},
	)
	svc, _ := newService(t, s)

	info := svc.ContactInfo(context.Background())
	if info.Email != "me@radit.dev" || info.GitHub != DefaultContactInfo.GitHub {
		t.Errorf("info = %+v", info)
	}
	want := "https://wa.me/6281200001111?text=Halo,%20saya%20tertarik%20untuk%20berdiskusi%20dengan%20Anda."
	if info.WhatsAppLink != want {
		t.Errorf("link = %s", info.WhatsAppLink)
	}
}

func TestSearchProjects(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_id": "p1", "_type": "project", "title": "Inventory Dashboard", "slug": map[string]any{"current": "inventory"},
			"description": "Warehouse stock tracking", "tags": []any{"laravel", "vue"}},
		map[string]any{"_id": "p2", "_type": "project", "title": "Portfolio", "slug": map[string]any{"current": "portfolio"},
			"description": "Personal site", "tags": []any{"nextjs"}},
	)
	svc, _ := newService(t, s)
	ctx := context.Background()

	got, err := svc.SearchProjects(ctx, "warehouse")
	if err != nil {
		t.Fatalf("SearchProjects: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "inventory" {
		t.Errorf("results = %s", spew.Sdump(got))
	}

	got, err = svc.SearchProjects(ctx, "nextjs")
	if err != nil {
		t.Fatalf("SearchProjects: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "portfolio" {
		t.Errorf("results = %s", spew.Sdump(got))
	}

	all, err := svc.SearchProjects(ctx, "  ")
	if err != nil || len(all) != 2 {
		t.Errorf("empty query = %d results, err %v", len(all), err)
	}
}

func TestProjectCardImageIsWidthOnly(t *testing.T) {
	s := seededStore(t,
		map[string]any{"_type": "project", "title": "Site", "slug": map[string]any{"current": "site"},
			"mainImage": map[string]any{"asset": map[string]any{"_ref": "image-cover-1600x900-png"}, "alt": "Cover"}},
	)
	svc, _ := newService(t, s)

	cards := svc.Projects(context.Background())
	if len(cards) != 1 {
		t.Fatalf("cards = %s", spew.Sdump(cards))
	}
	if want := "https://cdn.sanity.io/images/abc123/production/cover-1600x900.png?w=600"; cards[0].ImageURL != want {
		t.Errorf("image url = %s, want %s", cards[0].ImageURL, want)
	}
	if cards[0].ImageAlt != "Cover" {
		t.Errorf("alt = %q", cards[0].ImageAlt)
	}
}
