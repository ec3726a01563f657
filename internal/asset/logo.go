package asset

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	catalogBase = "https://cdn.simpleicons.org/"
	faviconBase = "https://www.google.com/s2/favicons?sz=128&domain="
)

// slugOverrides maps names that do not slugify to the icon catalog's slug.
var slugOverrides = map[string]string{
	"next.js":  "nextdotjs",
	"nextjs":   "nextdotjs",
	"next":     "nextdotjs",
	"c++":      "cplusplus",
	"c#":       "csharp",
	"node.js":  "nodedotjs",
	"nodejs":   "nodedotjs",
	"nuxt.js":  "nuxtdotjs",
	"vue.js":   "vuedotjs",
	"three.js": "threedotjs",
}

// IconSlug derives the icon catalog slug for a skill name.
func IconSlug(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if slug, ok := slugOverrides[normalized]; ok {
		return slug
	}
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, normalized)
}

// CatalogURL is the icon catalog URL for a slug.
func CatalogURL(slug string) string {
	return catalogBase + slug
}

// FaviconURL returns the favicon service URL for a website, or "" when the
// website has no hostname.
func FaviconURL(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return faviconBase + url.QueryEscape(u.Hostname())
}

// Initial is the letter glyph shown when every image source failed.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

// LogoStage is where a LogoChain currently is.
type LogoStage int

const (
	StagePrimary LogoStage = iota
	StageSecondary
	StageTerminal
)

func (s LogoStage) String() string {
	switch s {
	case StagePrimary:
		return "primary"
	case StageSecondary:
		return "secondary"
	default:
		return "terminal"
	}
}

// Logo is the serialisable form of a chain: image sources to try in order,
// then the letter glyph.
type Logo struct {
	Sources []string `json:"sources"`
	Initial string   `json:"initial"`
}

// ResolveLogo lists the logo sources for a skill: explicit icon, icon
// catalog by name, website favicon.
func ResolveLogo(name, iconURL, websiteURL string) Logo {
	var sources []string
	if iconURL != "" {
		sources = append(sources, iconURL)
	}
	if strings.TrimSpace(name) != "" {
		if slug := IconSlug(name); slug != "" {
			sources = append(sources, CatalogURL(slug))
		}
	}
	if fav := FaviconURL(websiteURL); fav != "" {
		sources = append(sources, fav)
	}
	return Logo{Sources: sources, Initial: Initial(name)}
}

// LogoChain walks a Logo one stage per load failure and ends at the glyph,
// which cannot fail.
type LogoChain struct {
	logo Logo
	pos  int
}

func NewLogoChain(logo Logo) *LogoChain {
	return &LogoChain{logo: logo}
}

// Stage reports the current stage.
func (c *LogoChain) Stage() LogoStage {
	switch {
	case c.pos >= len(c.logo.Sources):
		return StageTerminal
	case c.pos == 0:
		return StagePrimary
	default:
		return StageSecondary
	}
}

// Source is the image to load now, or "" at the terminal stage.
func (c *LogoChain) Source() string {
	if c.pos >= len(c.logo.Sources) {
		return ""
	}
	return c.logo.Sources[c.pos]
}

// Initial is the glyph rendered at the terminal stage.
func (c *LogoChain) Initial() string {
	return c.logo.Initial
}

// Fail records that the current source failed to load and advances.
func (c *LogoChain) Fail() LogoStage {
	if c.pos < len(c.logo.Sources) {
		c.pos++
	}
	return c.Stage()
}
