package confluence

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	mediaTypeJSON      = "application/json"
	mediaTypeMultipart = "multipart/form-data"

	pathContent     = "rest/api/content"
	pathContentByID = "rest/api/content/{id}"
	pathAttachments = "rest/api/content/{id}/child/attachment"
)

// ResponseShape tells the dispatcher how to decode a success response
type ResponseShape int

const (
	// ShapeNone discards the response body
	ShapeNone ResponseShape = iota
	// ShapeContent decodes a single Content object
	ShapeContent
	// ShapeContentList decodes a {results, size} envelope
	ShapeContentList
)

// String returns a readable name for logging
func (s ResponseShape) String() string {
	switch s {
	case ShapeContent:
		return "content"
	case ShapeContentList:
		return "content_list"
	default:
		return "none"
	}
}

// newValue allocates the value a response of this shape is decoded into
func (s ResponseShape) newValue() any {
	switch s {
	case ShapeContent:
		return &Content{}
	case ShapeContentList:
		return &ContentList{}
	default:
		return nil
	}
}

// Request describes one call against the REST API. The set of
// implementations is closed: every request is either a JSONRequest or a
// FileRequest defined in this package.
type Request interface {
	// RelativePath returns the endpoint path with all placeholders resolved
	RelativePath() string
	// Method returns the HTTP method
	Method() string
	// QueryParams returns the query parameters; order is not significant
	QueryParams() url.Values
	// ContentType returns the media type of the request body
	ContentType() string
	// Accept returns the accepted response media type
	Accept() string
	// ResponseShape selects the decoder for a success response
	ResponseShape() ResponseShape

	sealed()
}

// JSONRequest is a request whose body, if any, is JSON encoded
type JSONRequest interface {
	Request
	// BodyEntity returns the value to encode, or nil when no body is sent
	BodyEntity() any
}

// FileRequest uploads a single file as a multipart form
type FileRequest interface {
	Request
	// File returns the path of the file to upload
	File() string
	// FieldName returns the multipart field the file is sent as
	FieldName() string
}

// jsonBase carries the defaults shared by all JSON requests
type jsonBase struct{}

func (jsonBase) ContentType() string { return mediaTypeJSON }
func (jsonBase) Accept() string      { return mediaTypeJSON }
func (jsonBase) BodyEntity() any     { return nil }
func (jsonBase) sealed()             {}

// fileBase carries the defaults shared by all file requests
type fileBase struct{}

func (fileBase) ContentType() string { return mediaTypeMultipart }
func (fileBase) Accept() string      { return mediaTypeJSON }
func (fileBase) FieldName() string   { return "file" }
func (fileBase) sealed()             {}

// resolvePath substitutes {id} with the escaped identifier
func resolvePath(template, id string) string {
	return strings.ReplaceAll(template, "{id}", url.PathEscape(id))
}

// validID reports whether id can name a single path segment.
// Dot segments would be cleaned away by URL joining and hit another endpoint.
func validID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && id != "." && id != ".."
}

// hasPlaceholder reports whether a path still contains a {token}
func hasPlaceholder(path string) bool {
	return strings.ContainsAny(path, "{}")
}

// pagination holds start/limit query parameters shared by list requests
type pagination struct {
	start int
	limit int
}

func (p pagination) apply(q url.Values) {
	if p.start > 0 {
		q.Set("start", strconv.Itoa(p.start))
	}
	if p.limit > 0 {
		q.Set("limit", strconv.Itoa(p.limit))
	}
}

func setExpand(q url.Values, e Expansion) {
	if !e.IsEmpty() {
		q.Set("expand", e.String())
	}
}
