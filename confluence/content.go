package confluence

import (
	"fmt"
)

// ContentStatus represents the lifecycle status of a piece of content
type ContentStatus string

const (
	// StatusCurrent is published content
	StatusCurrent ContentStatus = "current"
	// StatusTrashed is content moved to the space trash
	StatusTrashed ContentStatus = "trashed"
	// StatusHistorical is a previous version of content
	StatusHistorical ContentStatus = "historical"
	// StatusDraft is unpublished content
	StatusDraft ContentStatus = "draft"
)

// String returns the identifier used on the wire
func (s ContentStatus) String() string {
	return string(s)
}

// ParseContentStatus converts a wire identifier into a ContentStatus
func ParseContentStatus(s string) (ContentStatus, error) {
	switch ContentStatus(s) {
	case StatusCurrent, StatusTrashed, StatusHistorical, StatusDraft:
		return ContentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown content status: %q", s)
	}
}

// ContentType identifies one of the standard content types
type ContentType string

const (
	// TypePage is a regular page
	TypePage ContentType = "page"
	// TypeBlogPost is a blog post
	TypeBlogPost ContentType = "blogpost"
	// TypeAttachment is a file attached to other content
	TypeAttachment ContentType = "attachment"
	// TypeComment is a comment on other content
	TypeComment ContentType = "comment"
)

// BodyType identifies a body representation. The set is closed: values can
// only come from the package level variables or ParseBodyType.
type BodyType struct {
	id string
}

var (
	BodyStorage             = BodyType{"storage"}
	BodyView                = BodyType{"view"}
	BodyExportView          = BodyType{"export_view"}
	BodyStyledView          = BodyType{"styled_view"}
	BodyEditor              = BodyType{"editor"}
	BodyAnonymousExportView = BodyType{"anonymous_export_view"}
)

var bodyTypes = []BodyType{
	BodyStorage,
	BodyView,
	BodyExportView,
	BodyStyledView,
	BodyEditor,
	BodyAnonymousExportView,
}

// String returns the identifier used on the wire
func (bt BodyType) String() string {
	return bt.id
}

// IsZero reports whether bt was left unset
func (bt BodyType) IsZero() bool {
	return bt.id == ""
}

// ParseBodyType converts a wire identifier into a BodyType
func ParseBodyType(s string) (BodyType, error) {
	for _, bt := range bodyTypes {
		if bt.id == s {
			return bt, nil
		}
	}
	return BodyType{}, fmt.Errorf("unknown body type: %q", s)
}

// Space references the space content lives in
type Space struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// Version holds the version number of content
type Version struct {
	Number    int    `json:"number"`
	MinorEdit bool   `json:"minorEdit,omitempty"`
	When      string `json:"when,omitempty"`
}

// Ancestor references parent content by id only
type Ancestor struct {
	ID string `json:"id"`
}

// ContentBody is the body of content in a single representation.
// On the wire it is nested as {"<type>": {"value": ..., "representation": ...}}.
type ContentBody struct {
	Type  BodyType
	Value string
}

type bodyRepresentation struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// MarshalJSON nests the value under its representation key
func (b ContentBody) MarshalJSON() ([]byte, error) {
	bt := b.Type
	if bt.IsZero() {
		bt = BodyStorage
	}
	return json.Marshal(map[string]bodyRepresentation{
		bt.id: {Value: b.Value, Representation: bt.id},
	})
}

// UnmarshalJSON picks the first known representation present in the payload
func (b *ContentBody) UnmarshalJSON(data []byte) error {
	var raw map[string]bodyRepresentation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, bt := range bodyTypes {
		if rep, ok := raw[bt.id]; ok {
			b.Type = bt
			b.Value = rep.Value
			return nil
		}
	}
	return nil
}

// Extensions carries type specific details, mostly for attachments
type Extensions struct {
	MediaType string `json:"mediaType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// Links holds the relative links returned with content
type Links struct {
	WebUI    string `json:"webui,omitempty"`
	Download string `json:"download,omitempty"`
	Self     string `json:"self,omitempty"`
}

// Content mirrors a page, blog post, attachment or comment
type Content struct {
	ID         string        `json:"id,omitempty"`
	Type       ContentType   `json:"type,omitempty"`
	Title      string        `json:"title,omitempty"`
	Status     ContentStatus `json:"status,omitempty"`
	Space      *Space        `json:"space,omitempty"`
	Body       *ContentBody  `json:"body,omitempty"`
	Version    *Version      `json:"version,omitempty"`
	Ancestors  []Ancestor    `json:"ancestors,omitempty"`
	Extensions *Extensions   `json:"extensions,omitempty"`
	Links      *Links        `json:"_links,omitempty"`
}

// SpaceKey returns the key of the owning space, if known
func (c *Content) SpaceKey() string {
	if c.Space == nil {
		return ""
	}
	return c.Space.Key
}

// VersionNumber returns the version number, or 0 when the version was not expanded
func (c *Content) VersionNumber() int {
	if c.Version == nil {
		return 0
	}
	return c.Version.Number
}

// ParentID returns the id of the closest ancestor
func (c *Content) ParentID() string {
	if len(c.Ancestors) == 0 {
		return ""
	}
	return c.Ancestors[len(c.Ancestors)-1].ID
}

// clone returns a deep copy so requests never share state with callers
func (c Content) clone() Content {
	out := c
	if c.Space != nil {
		s := *c.Space
		out.Space = &s
	}
	if c.Body != nil {
		b := *c.Body
		out.Body = &b
	}
	if c.Version != nil {
		v := *c.Version
		out.Version = &v
	}
	if c.Ancestors != nil {
		out.Ancestors = append([]Ancestor(nil), c.Ancestors...)
	}
	if c.Extensions != nil {
		e := *c.Extensions
		out.Extensions = &e
	}
	if c.Links != nil {
		l := *c.Links
		out.Links = &l
	}
	return out
}

// ContentList is the envelope returned by list endpoints
type ContentList struct {
	Results []Content `json:"results"`
	Size    int       `json:"size"`
	Start   int       `json:"start,omitempty"`
	Limit   int       `json:"limit,omitempty"`
}

// ErrorResponse is the JSON error payload returned by the server
type ErrorResponse struct {
	StatusCode int    `json:"statusCode,omitempty"`
	Message    string `json:"message"`
}
