package confluence

import (
	"net/http"
	"net/url"
	"time"
)

// GetContentOptions selects content by type, space, title, status or posting day
type GetContentOptions struct {
	Type     ContentType
	SpaceKey string
	Title    string
	Status   ContentStatus
	// PostingDay restricts blog posts to a day, formatted as yyyy-mm-dd
	PostingDay string
	Expand     Expansion
	Start      int
	Limit      int
}

// GetContentRequest lists content matching a query
type GetContentRequest struct {
	jsonBase
	opts GetContentOptions
}

// NewGetContentRequest validates opts and builds the request
func NewGetContentRequest(opts GetContentOptions) (*GetContentRequest, error) {
	const name = "get content"
	if opts.Start < 0 {
		return nil, invalid(name, "start", "must not be negative")
	}
	if opts.Limit < 0 {
		return nil, invalid(name, "limit", "must not be negative")
	}
	if opts.PostingDay != "" {
		if opts.Type != TypeBlogPost {
			return nil, invalid(name, "posting day", "only valid for blog posts")
		}
		if _, err := time.Parse(time.DateOnly, opts.PostingDay); err != nil {
			return nil, invalid(name, "posting day", "must be formatted as yyyy-mm-dd")
		}
	}
	return &GetContentRequest{opts: opts}, nil
}

func (r *GetContentRequest) RelativePath() string         { return pathContent }
func (r *GetContentRequest) Method() string               { return http.MethodGet }
func (r *GetContentRequest) ResponseShape() ResponseShape { return ShapeContentList }

func (r *GetContentRequest) QueryParams() url.Values {
	q := url.Values{}
	if r.opts.Type != "" {
		q.Set("type", string(r.opts.Type))
	}
	if r.opts.SpaceKey != "" {
		q.Set("spaceKey", r.opts.SpaceKey)
	}
	if r.opts.Title != "" {
		q.Set("title", r.opts.Title)
	}
	if r.opts.Status != "" {
		q.Set("status", r.opts.Status.String())
	}
	if r.opts.PostingDay != "" {
		q.Set("postingDay", r.opts.PostingDay)
	}
	pagination{start: r.opts.Start, limit: r.opts.Limit}.apply(q)
	setExpand(q, r.opts.Expand)
	return q
}

// CreateContentOptions describes new content. Type and SpaceKey are
// required; drafts additionally need the id of the content they belong to.
type CreateContentOptions struct {
	ID         string
	Type       ContentType
	Title      string
	SpaceKey   string
	Status     ContentStatus
	BodyType   BodyType
	Body       string
	AncestorID string

	// ResponseStatus filters the status of the returned content
	ResponseStatus ContentStatus
	// Expand selects properties to include in the returned content
	Expand Expansion
}

// CreateContentRequest creates a page, blog post or other content
type CreateContentRequest struct {
	jsonBase
	responseStatus ContentStatus
	expand         Expansion
	content        Content
}

// NewCreateContentRequest validates opts and builds the request
func NewCreateContentRequest(opts CreateContentOptions) (*CreateContentRequest, error) {
	const name = "create content"
	if opts.Type == "" {
		return nil, invalid(name, "type", "you must specify the type of content to create")
	}
	if opts.SpaceKey == "" {
		return nil, invalid(name, "space key", "you must specify the space the content is created in")
	}
	if opts.Status == StatusDraft && opts.ID == "" {
		return nil, invalid(name, "id", "an id is required when creating a draft")
	}

	content := Content{
		ID:     opts.ID,
		Type:   opts.Type,
		Title:  opts.Title,
		Status: opts.Status,
		Space:  &Space{Key: opts.SpaceKey},
	}
	if opts.AncestorID != "" {
		content.Ancestors = []Ancestor{{ID: opts.AncestorID}}
	}
	if opts.Body != "" {
		content.Body = &ContentBody{Type: opts.BodyType, Value: opts.Body}
	}

	return &CreateContentRequest{
		responseStatus: opts.ResponseStatus,
		expand:         opts.Expand,
		content:        content,
	}, nil
}

func (r *CreateContentRequest) RelativePath() string         { return pathContent }
func (r *CreateContentRequest) Method() string               { return http.MethodPost }
func (r *CreateContentRequest) ResponseShape() ResponseShape { return ShapeContent }

func (r *CreateContentRequest) QueryParams() url.Values {
	q := url.Values{}
	if r.responseStatus != "" {
		q.Set("status", r.responseStatus.String())
	}
	setExpand(q, r.expand)
	return q
}

// BodyEntity returns a copy of the content to create
func (r *CreateContentRequest) BodyEntity() any {
	c := r.content.clone()
	return &c
}

// UpdateContentOptions describes the new state of existing content. Version
// must be the number of the version being written, one above the current.
type UpdateContentOptions struct {
	ID         string
	Type       ContentType
	Title      string
	Status     ContentStatus
	Version    int
	MinorEdit  bool
	BodyType   BodyType
	Body       string
	AncestorID string
}

// UpdateContentRequest replaces title, body, status or parent of content
type UpdateContentRequest struct {
	jsonBase
	id      string
	content Content
}

// NewUpdateContentRequest validates opts and builds the request
func NewUpdateContentRequest(opts UpdateContentOptions) (*UpdateContentRequest, error) {
	const name = "update content"
	if !validID(opts.ID) {
		return nil, invalid(name, "id", "you must specify the id of the content to update")
	}
	if opts.Type == "" {
		return nil, invalid(name, "type", "you must specify the type of the content to update")
	}
	if opts.Version <= 0 {
		return nil, invalid(name, "version", "you must specify the new version of the content")
	}
	if opts.Title == "" {
		return nil, invalid(name, "title", "you must specify the title of the content")
	}

	content := Content{
		Type:    opts.Type,
		Title:   opts.Title,
		Status:  opts.Status,
		Version: &Version{Number: opts.Version, MinorEdit: opts.MinorEdit},
	}
	if opts.AncestorID != "" {
		content.Ancestors = []Ancestor{{ID: opts.AncestorID}}
	}
	if opts.Body != "" {
		content.Body = &ContentBody{Type: opts.BodyType, Value: opts.Body}
	}

	return &UpdateContentRequest{id: opts.ID, content: content}, nil
}

func (r *UpdateContentRequest) RelativePath() string         { return resolvePath(pathContentByID, r.id) }
func (r *UpdateContentRequest) Method() string               { return http.MethodPut }
func (r *UpdateContentRequest) QueryParams() url.Values      { return url.Values{} }
func (r *UpdateContentRequest) ResponseShape() ResponseShape { return ShapeContent }

// BodyEntity returns a copy of the updated content
func (r *UpdateContentRequest) BodyEntity() any {
	c := r.content.clone()
	return &c
}
