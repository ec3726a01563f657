// Package asset builds CDN URLs for images and resolves logos for skills.
// Nothing here performs network calls; URLs are constructed, not fetched.
package asset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aTrapDeer/portfolio-site/internal/models"
)

// DefaultCDN is the image CDN origin.
const DefaultCDN = "https://cdn.sanity.io"

var ErrInvalidRef = errors.New("invalid image asset reference")

// Builder turns image references into delivery URLs for one dataset.
type Builder struct {
	ProjectID string
	Dataset   string
	BaseURL   string
}

// NewBuilder returns a Builder for the given project and dataset.
func NewBuilder(projectID, dataset string) *Builder {
	return &Builder{ProjectID: projectID, Dataset: dataset, BaseURL: DefaultCDN}
}

// Options are the transform parameters. Zero values are omitted.
type Options struct {
	Width   int
	Height  int
	Quality int
	Fit     string
	Format  string
}

// AssetRef is a parsed `image-{id}-{w}x{h}-{ext}` reference.
type AssetRef struct {
	ID     string
	Width  int
	Height int
	Format string
}

// ParseRef splits an image asset reference into its parts.
func ParseRef(ref string) (AssetRef, error) {
	parts := strings.Split(ref, "-")
	if len(parts) != 4 || parts[0] != "image" || parts[1] == "" {
		return AssetRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	dims := strings.Split(parts[2], "x")
	if len(dims) != 2 {
		return AssetRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	w, err := strconv.Atoi(dims[0])
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	h, err := strconv.Atoi(dims[1])
	if err != nil {
		return AssetRef{}, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return AssetRef{ID: parts[1], Width: w, Height: h, Format: parts[3]}, nil
}

// URL builds the CDN URL for img with the given transforms.
func (b *Builder) URL(img *models.Image, opts Options) (string, error) {
	if img == nil || img.Asset == nil || img.Asset.Ref == "" {
		return "", fmt.Errorf("%w: missing asset", ErrInvalidRef)
	}
	ref, err := ParseRef(img.Asset.Ref)
	if err != nil {
		return "", err
	}

	base := b.BaseURL
	if base == "" {
		base = DefaultCDN
	}
	u := fmt.Sprintf("%s/images/%s/%s/%s-%dx%d.%s", base, b.ProjectID, b.Dataset, ref.ID, ref.Width, ref.Height, ref.Format)

	var q []string
	if rect, ok := cropRect(img.Crop, ref.Width, ref.Height); ok {
		q = append(q, "rect="+rect)
	}
	if opts.Width > 0 {
		q = append(q, "w="+strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q = append(q, "h="+strconv.Itoa(opts.Height))
	}
	if opts.Quality > 0 {
		q = append(q, "q="+strconv.Itoa(opts.Quality))
	}
	if opts.Fit != "" {
		q = append(q, "fit="+opts.Fit)
		if opts.Fit == "crop" && img.Hotspot != nil {
			q = append(q,
				"crop=focalpoint",
				"fp-x="+formatFraction(img.Hotspot.X),
				"fp-y="+formatFraction(img.Hotspot.Y),
			)
		}
	}
	if opts.Format != "" {
		q = append(q, "fm="+opts.Format)
	}

	if len(q) == 0 {
		return u, nil
	}
	return u + "?" + strings.Join(q, "&"), nil
}

// MustURL is URL for callers that treat a broken reference as "no image".
func (b *Builder) MustURL(img *models.Image, opts Options) string {
	u, err := b.URL(img, opts)
	if err != nil {
		return ""
	}
	return u
}

func cropRect(c *models.Crop, width, height int) (string, bool) {
	if c == nil || (c.Top == 0 && c.Bottom == 0 && c.Left == 0 && c.Right == 0) {
		return "", false
	}
	w, h := float64(width), float64(height)
	left := math.Round(c.Left * w)
	top := math.Round(c.Top * h)
	cw := math.Round(w - c.Right*w - left)
	ch := math.Round(h - c.Bottom*h - top)
	return fmt.Sprintf("%d,%d,%d,%d", int(left), int(top), int(cw), int(ch)), true
}

func formatFraction(f float64) string {
	return strconv.FormatFloat(math.Round(f*1000)/1000, 'f', -1, 64)
}
