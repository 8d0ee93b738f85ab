package confluence

import (
	"context"
)

// API defines the interface for Confluence content operations
type API interface {
	// GetContent lists content matching a query
	GetContent(ctx context.Context, req *GetContentRequest) ([]Content, error)

	// CreateContent creates a page, blog post or other content
	CreateContent(ctx context.Context, req *CreateContentRequest) (*Content, error)

	// UpdateContent writes a new version of existing content
	UpdateContent(ctx context.Context, req *UpdateContentRequest) (*Content, error)

	// AddAttachment uploads a file to existing content
	AddAttachment(ctx context.Context, req *AddAttachmentRequest) (*Content, error)

	// DeleteAttachment trashes or purges an attachment
	DeleteAttachment(ctx context.Context, req *DeleteAttachmentRequest) (*Content, error)

	// GetAttachments lists the attachments of a piece of content
	GetAttachments(ctx context.Context, req *GetAttachmentsRequest) ([]Content, error)
}

var _ API = (*Client)(nil)
