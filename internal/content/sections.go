package content

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	"github.com/aTrapDeer/portfolio-site/internal/asset"
	"github.com/aTrapDeer/portfolio-site/internal/groq"
	"github.com/aTrapDeer/portfolio-site/internal/models"
	"github.com/aTrapDeer/portfolio-site/internal/store"
)

const whatsappGreeting = "Halo,%20saya%20tertarik%20untuk%20berdiskusi%20dengan%20Anda."

// DefaultContactInfo is shown when the profile cannot be read.
var DefaultContactInfo = ContactInfo{
	WhatsApp: "6281234567890",
	GitHub:   "https://github.com",
	LinkedIn: "https://linkedin.com",
	Email:    "contact@radit.dev",
}

var (
	heroQuery = groq.Query{
		Type:  models.TypeProfile,
		First: true,
		Fields: append(groq.F("fullName", "headline", "subheadline", "profileImage", "email", "isAvailable"),
			groq.Field{Name: "resumeUrl", Path: "resume.asset->url"}),
	}
	aboutQuery = groq.Query{
		Type:   models.TypeProfile,
		First:  true,
		Fields: groq.F("bio", "fullName"),
	}
	skillsQuery = groq.Query{
		Type:  models.TypeSkill,
		Order: []groq.Ordering{{Path: "category"}, {Path: "name"}},
		Fields: []groq.Field{
			{Name: "_id"}, {Name: "name"}, {Name: "websiteUrl"},
			{Name: "iconUrl", Path: "icon.asset->url"},
			{Name: "category"},
		},
	}
	experienceQuery = groq.Query{
		Type:   models.TypeExperience,
		Order:  []groq.Ordering{{Path: "startDate", Desc: true}},
		Fields: groq.F("_id", "company", "role", "startDate", "endDate", "isCurrentJob", "companyLogo", "description"),
	}
	projectsQuery = groq.Query{
		Type:   models.TypeProject,
		Order:  []groq.Ordering{{Path: "_createdAt", Desc: true}},
		Fields: groq.F("_id", "title", "slug", "description", "tags", "demoLink", "repoLink", "mainImage"),
	}
	projectQuery = groq.Query{
		Type:  models.TypeProject,
		Where: []groq.Cond{{Path: "slug.current", Param: "slug"}},
		First: true,
		Fields: append(groq.F("title", "description", "mainImage", "demoLink", "repoLink", "content"),
			groq.Field{Name: "techStack", Path: "techStack[]->", Fields: []groq.Field{
				{Name: "_id"}, {Name: "name"}, {Name: "websiteUrl"},
				{Name: "iconUrl", Path: "icon.asset->url"},
			}}),
	}
	contactInfoQuery = groq.Query{
		Type:   models.TypeProfile,
		First:  true,
		Fields: groq.F("whatsapp", "github", "linkedin", "email"),
	}
)

type HeroProps struct {
	FullName    string `json:"fullName"`
	Headline    string `json:"headline"`
	Subheadline string `json:"subheadline,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	ImageAlt    string `json:"imageAlt,omitempty"`
	Email       string `json:"email,omitempty"`
	IsAvailable bool   `json:"isAvailable"`
	ResumeURL   string `json:"resumeUrl,omitempty"`
}

type AboutProps struct {
	FullName string         `json:"fullName"`
	Bio      []models.Block `json:"bio"`
}

type SkillItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Category   string     `json:"category,omitempty"`
	WebsiteURL string     `json:"websiteUrl,omitempty"`
	Logo       asset.Logo `json:"logo"`
}

type ExperienceItem struct {
	ID           string         `json:"id"`
	Company      string         `json:"company"`
	Role         string         `json:"role"`
	StartDate    string         `json:"startDate"`
	EndDate      string         `json:"endDate,omitempty"`
	IsCurrentJob bool           `json:"isCurrentJob"`
	LogoURL      string         `json:"logoUrl,omitempty"`
	Description  []models.Block `json:"description,omitempty"`
}

type ProjectCard struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags"`
	DemoLink    string   `json:"demoLink,omitempty"`
	RepoLink    string   `json:"repoLink,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	ImageAlt    string   `json:"imageAlt,omitempty"`
}

type ProjectDetail struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
	ImageAlt    string         `json:"imageAlt,omitempty"`
	DemoLink    string         `json:"demoLink,omitempty"`
	RepoLink    string         `json:"repoLink,omitempty"`
	Content     []models.Block `json:"content"`
	TechStack   []SkillItem    `json:"techStack"`
}

type ContactInfo struct {
	WhatsApp     string `json:"whatsapp"`
	GitHub       string `json:"github"`
	LinkedIn     string `json:"linkedin"`
	Email        string `json:"email"`
	WhatsAppLink string `json:"whatsappLink"`
}

// HomeProps is everything the landing page renders.
type HomeProps struct {
	Hero        *HeroProps       `json:"hero"`
	About       *AboutProps      `json:"about"`
	Skills      []SkillItem      `json:"skills"`
	Experience  []ExperienceItem `json:"experience"`
	Projects    []ProjectCard    `json:"projects"`
	ContactInfo ContactInfo      `json:"contactInfo"`
}

type heroDoc struct {
	models.Profile
	ResumeURL string `json:"resumeUrl"`
}

type skillDoc struct {
	models.Skill
	IconURL string `json:"iconUrl"`
}

type projectDoc struct {
	models.Project
	TechStack []skillDoc `json:"techStack"`
}

// Hero returns nil when no profile exists or it cannot be read.
func (s *Service) Hero(ctx context.Context) *HeroProps {
	doc := fetchWithFallback[*heroDoc](ctx, s, "hero", heroQuery, nil, nil)
	if doc == nil {
		return nil
	}
	props := &HeroProps{
		FullName:    doc.FullName,
		Headline:    doc.Headline,
		Subheadline: doc.Subheadline,
		Email:       doc.Email,
		IsAvailable: doc.IsAvailable == nil || *doc.IsAvailable,
		ResumeURL:   doc.ResumeURL,
	}
	if doc.ProfileImage != nil {
		props.ImageURL = s.images.MustURL(doc.ProfileImage, asset.Options{Width: 600, Height: 600})
		props.ImageAlt = doc.ProfileImage.Alt
	}
	return props
}

// About returns nil when there is no bio to show.
func (s *Service) About(ctx context.Context) *AboutProps {
	doc := fetchWithFallback[*models.Profile](ctx, s, "about", aboutQuery, nil, nil)
	if doc == nil || len(doc.Bio) == 0 {
		return nil
	}
	return &AboutProps{FullName: doc.FullName, Bio: doc.Bio}
}

func (s *Service) Skills(ctx context.Context) []SkillItem {
	docs := fetchWithFallback[[]skillDoc](ctx, s, "skills", skillsQuery, nil, nil, store.WithRevalidate(SkillsRevalidate))
	return skillItems(docs)
}

func (s *Service) Experience(ctx context.Context) []ExperienceItem {
	docs := fetchWithFallback[[]models.Experience](ctx, s, "experience", experienceQuery, nil, nil)
	items := make([]ExperienceItem, 0, len(docs))
	for _, d := range docs {
		item := ExperienceItem{
			ID:           d.ID,
			Company:      d.Company,
			Role:         d.Role,
			StartDate:    d.StartDate,
			EndDate:      d.EndDate,
			IsCurrentJob: d.IsCurrentJob,
			Description:  d.Description,
		}
		if d.IsCurrentJob {
			item.EndDate = ""
		}
		if d.CompanyLogo != nil {
			item.LogoURL = s.images.MustURL(d.CompanyLogo, asset.Options{Width: 200})
		}
		items = append(items, item)
	}
	return items
}

func (s *Service) Projects(ctx context.Context) []ProjectCard {
	docs := fetchWithFallback[[]models.Project](ctx, s, "projects", projectsQuery, nil, nil)
	cards := make([]ProjectCard, 0, len(docs))
	for _, d := range docs {
		card := ProjectCard{
			ID:          d.ID,
			Title:       d.Title,
			Slug:        d.Slug.Current,
			Description: d.Description,
			Tags:        d.Tags,
			DemoLink:    d.DemoLink,
			RepoLink:    d.RepoLink,
		}
		if card.Tags == nil {
			card.Tags = []string{}
		}
		if d.MainImage != nil {
			card.ImageURL = s.images.MustURL(d.MainImage, asset.Options{Width: 600})
			card.ImageAlt = d.MainImage.Alt
		}
		cards = append(cards, card)
	}
	return cards
}

// Project loads one case study by slug, bypassing the read cache.
// A missing slug is ErrNotFound; a failed read is a *FetchError.
func (s *Service) Project(ctx context.Context, slug string) (*ProjectDetail, error) {
	var doc *projectDoc
	err := store.FetchInto(ctx, s.store, projectQuery, groq.Params{"slug": slug}, &doc, store.NoCache())
	if err != nil {
		return nil, &FetchError{Section: "project " + slug, Err: err}
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	detail := &ProjectDetail{
		Title:       doc.Title,
		Description: doc.Description,
		DemoLink:    doc.DemoLink,
		RepoLink:    doc.RepoLink,
		Content:     s.resolveBlockImages(doc.Content),
		TechStack:   skillItems(doc.TechStack),
	}
	if doc.MainImage != nil {
		detail.ImageURL = s.images.MustURL(doc.MainImage, asset.Options{Width: 1920})
		detail.ImageAlt = doc.MainImage.Alt
	}
	return detail, nil
}

// ContactInfo never fails: missing fields come from DefaultContactInfo.
func (s *Service) ContactInfo(ctx context.Context) ContactInfo {
	info := fetchWithFallback[*ContactInfo](ctx, s, "contact info", contactInfoQuery, nil, nil)
	out := DefaultContactInfo
	if info != nil {
		if info.WhatsApp != "" {
			out.WhatsApp = info.WhatsApp
		}
		if info.GitHub != "" {
			out.GitHub = info.GitHub
		}
		if info.LinkedIn != "" {
			out.LinkedIn = info.LinkedIn
		}
		if info.Email != "" {
			out.Email = info.Email
		}
	}
	out.WhatsAppLink = WhatsAppLink(out.WhatsApp)
	return out
}

// Home composes the landing page, one section after another.
func (s *Service) Home(ctx context.Context) HomeProps {
	return HomeProps{
		Hero:        s.Hero(ctx),
		About:       s.About(ctx),
		Skills:      s.Skills(ctx),
		Experience:  s.Experience(ctx),
		Projects:    s.Projects(ctx),
		ContactInfo: s.ContactInfo(ctx),
	}
}

// WhatsAppLink builds the click-to-chat URL for a phone number in any
// punctuation.
func WhatsAppLink(number string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits + "?text=" + whatsappGreeting
}

func skillItems(docs []skillDoc) []SkillItem {
	items := make([]SkillItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, SkillItem{
			ID:         d.ID,
			Name:       d.Name,
			Category:   d.Category,
			WebsiteURL: d.WebsiteURL,
			Logo:       asset.ResolveLogo(d.Name, d.IconURL, d.WebsiteURL),
		})
	}
	return items
}

// resolveBlockImages adds a url to every embedded image block.
func (s *Service) resolveBlockImages(blocks []models.Block) []models.Block {
	out := make([]models.Block, 0, len(blocks))
	for _, b := range blocks {
		if t, _ := b["_type"].(string); t != "image" {
			out = append(out, b)
			continue
		}
		img, err := blockImage(b)
		if err != nil {
			out = append(out, b)
			continue
		}
		resolved := make(models.Block, len(b)+1)
		for k, v := range b {
			resolved[k] = v
		}
		if u, err := s.images.URL(img, asset.Options{Width: 1200}); err == nil {
			resolved["url"] = u
		}
		out = append(out, resolved)
	}
	return out
}

func blockImage(b models.Block) (*models.Image, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var img models.Image
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil, err
	}
	if img.Asset == nil {
		return nil, errors.New("image block without asset")
	}
	return &img, nil
}
