// models.go these are the documents kept in the content store
package models

// Document type discriminators.
const (
	TypeProfile    = "profile"
	TypeProject    = "project"
	TypeSkill      = "skills"
	TypeExperience = "experience"
	TypeContact    = "contact"
)

// Reference points at another document or asset by id.
type Reference struct {
	Ref  string `json:"_ref"`
	Type string `json:"_type,omitempty"`
}

// Crop is the editor's crop, as fractions trimmed from each edge.
type Crop struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Hotspot is the editor's focal point, as fractions of the image size.
type Hotspot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Image is an image field: an asset reference plus editor metadata.
type Image struct {
	Asset   *Reference `json:"asset,omitempty"`
	Alt     string     `json:"alt,omitempty"`
	Crop    *Crop      `json:"crop,omitempty"`
	Hotspot *Hotspot   `json:"hotspot,omitempty"`
}

// Slug is a URL-safe identifier.
type Slug struct {
	Current string `json:"current"`
}

// Block is one rich-text block. Blocks are passed through to the client
// untouched apart from image blocks, which get a resolved url.
type Block map[string]any

type Profile struct {
	FullName     string     `json:"fullName,omitempty"`
	Headline     string     `json:"headline,omitempty"`
	Subheadline  string     `json:"subheadline,omitempty"`
	Bio          []Block    `json:"bio,omitempty"`
	ProfileImage *Image     `json:"profileImage,omitempty"`
	Email        string     `json:"email,omitempty"`
	IsAvailable  *bool      `json:"isAvailable,omitempty"`
	Resume       *Reference `json:"resume,omitempty"`
	LinkedIn     string     `json:"linkedin,omitempty"`
	GitHub       string     `json:"github,omitempty"`
	WhatsApp     string     `json:"whatsapp,omitempty"`
}

type Skill struct {
	ID         string `json:"_id,omitempty"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	WebsiteURL string `json:"websiteUrl,omitempty"`
	Icon       *Image `json:"icon,omitempty"`
}

type Project struct {
	ID          string      `json:"_id,omitempty"`
	Title       string      `json:"title"`
	Slug        Slug        `json:"slug"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	DemoLink    string      `json:"demoLink,omitempty"`
	RepoLink    string      `json:"repoLink,omitempty"`
	MainImage   *Image      `json:"mainImage,omitempty"`
	Content     []Block     `json:"content,omitempty"`
	TechStack   []Reference `json:"techStack,omitempty"`
}

type Experience struct {
	ID           string  `json:"_id,omitempty"`
	Company      string  `json:"company"`
	Role         string  `json:"role"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate,omitempty"`
	IsCurrentJob bool    `json:"isCurrentJob"`
	CompanyLogo  *Image  `json:"companyLogo,omitempty"`
	Description  []Block `json:"description,omitempty"`
}

// MessageStatus tracks what the operator has done with a contact message.
type MessageStatus string

const (
	StatusNew     MessageStatus = "new"
	StatusRead    MessageStatus = "read"
	StatusReplied MessageStatus = "replied"
)

// ContactMessage is written only by the contact pipeline. SentAt is a
// display string, not a parseable timestamp.
type ContactMessage struct {
	ID      string        `json:"_id,omitempty"`
	Type    string        `json:"_type"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Message string        `json:"message"`
	SentAt  string        `json:"sentAt"`
	Status  MessageStatus `json:"status"`
}
