package confluence

import (
	"net/http"
	"net/url"
)

// GetAttachmentsOptions selects the attachments of a piece of content
type GetAttachmentsOptions struct {
	ID        string
	Filename  string
	MediaType string
	Expand    Expansion
	Start     int
	Limit     int
}

// GetAttachmentsRequest lists attachments of a piece of content
type GetAttachmentsRequest struct {
	jsonBase
	opts GetAttachmentsOptions
}

// NewGetAttachmentsRequest validates opts and builds the request
func NewGetAttachmentsRequest(opts GetAttachmentsOptions) (*GetAttachmentsRequest, error) {
	const name = "get attachments"
	if !validID(opts.ID) {
		return nil, invalid(name, "id", "you must specify the id of the content to fetch attachments of")
	}
	if opts.Start < 0 || opts.Limit < 0 {
		return nil, invalid(name, "pagination", "start and limit must not be negative")
	}
	return &GetAttachmentsRequest{opts: opts}, nil
}

func (r *GetAttachmentsRequest) RelativePath() string         { return resolvePath(pathAttachments, r.opts.ID) }
func (r *GetAttachmentsRequest) Method() string               { return http.MethodGet }
func (r *GetAttachmentsRequest) ResponseShape() ResponseShape { return ShapeContentList }

func (r *GetAttachmentsRequest) QueryParams() url.Values {
	q := url.Values{}
	if r.opts.Filename != "" {
		q.Set("filename", r.opts.Filename)
	}
	if r.opts.MediaType != "" {
		q.Set("mediaType", r.opts.MediaType)
	}
	pagination{start: r.opts.Start, limit: r.opts.Limit}.apply(q)
	setExpand(q, r.opts.Expand)
	return q
}

// AddAttachmentOptions names the content to attach to and the file to upload
type AddAttachmentOptions struct {
	ID   string
	File string
}

// AddAttachmentRequest uploads a file as an attachment
type AddAttachmentRequest struct {
	fileBase
	id   string
	file string
}

// NewAddAttachmentRequest validates opts and builds the request
func NewAddAttachmentRequest(opts AddAttachmentOptions) (*AddAttachmentRequest, error) {
	const name = "add attachment"
	if !validID(opts.ID) {
		return nil, invalid(name, "id", "you must specify the id of the content to add attachments to")
	}
	if opts.File == "" {
		return nil, invalid(name, "file", "you must specify the file")
	}
	return &AddAttachmentRequest{id: opts.ID, file: opts.File}, nil
}

func (r *AddAttachmentRequest) RelativePath() string         { return resolvePath(pathAttachments, r.id) }
func (r *AddAttachmentRequest) Method() string               { return http.MethodPost }
func (r *AddAttachmentRequest) QueryParams() url.Values      { return url.Values{} }
func (r *AddAttachmentRequest) ResponseShape() ResponseShape { return ShapeContent }
func (r *AddAttachmentRequest) File() string                 { return r.file }

// DeleteAttachmentOptions names the attachment to delete. Purge removes an
// already trashed attachment permanently.
type DeleteAttachmentOptions struct {
	ID    string
	Purge bool
}

// DeleteAttachmentRequest moves an attachment to the trash or purges it
type DeleteAttachmentRequest struct {
	jsonBase
	id    string
	purge bool
}

// NewDeleteAttachmentRequest validates opts and builds the request
func NewDeleteAttachmentRequest(opts DeleteAttachmentOptions) (*DeleteAttachmentRequest, error) {
	if !validID(opts.ID) {
		return nil, invalid("delete attachment", "id", "you must specify the id of the attachment to delete")
	}
	return &DeleteAttachmentRequest{id: opts.ID, purge: opts.Purge}, nil
}

func (r *DeleteAttachmentRequest) RelativePath() string         { return resolvePath(pathContentByID, r.id) }
func (r *DeleteAttachmentRequest) Method() string               { return http.MethodDelete }
func (r *DeleteAttachmentRequest) ResponseShape() ResponseShape { return ShapeContent }

func (r *DeleteAttachmentRequest) QueryParams() url.Values {
	q := url.Values{}
	if r.purge {
		q.Set("status", StatusTrashed.String())
	}
	return q
}
