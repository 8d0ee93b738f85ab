package confluence

import (
	"context"
	"fmt"
)

// Client represents a Confluence Cloud API client
type Client struct {
	dispatcher *Dispatcher
}

// NewClient creates a client without credentials. Its requests carry no
// Authorization header and can only access publicly readable content.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	d, err := NewDispatcher(baseURL, nil, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{dispatcher: d}, nil
}

// NewAuthenticatedClient creates a client that sends auth's header value
// with every request.
func NewAuthenticatedClient(baseURL string, auth AuthMethod, opts ...Option) (*Client, error) {
	if auth == nil {
		return nil, fmt.Errorf("%w: auth method is required", ErrInvalidConfig)
	}
	d, err := NewDispatcher(baseURL, auth, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{dispatcher: d}, nil
}

// BaseURL returns the server location the client talks to
func (c *Client) BaseURL() string {
	return c.dispatcher.BaseURL()
}

// Authenticated reports whether the client sends credentials
func (c *Client) Authenticated() bool {
	return c.dispatcher.Authenticated()
}

// GetContent returns the content matching the request
func (c *Client) GetContent(ctx context.Context, req *GetContentRequest) ([]Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil get content request", ErrInvalidRequest)
	}
	list, err := execute[*ContentList](ctx, c.dispatcher, req)
	if err != nil {
		return nil, err
	}
	return list.Results, nil
}

// CreateContent creates new content and returns it as stored by the server
func (c *Client) CreateContent(ctx context.Context, req *CreateContentRequest) (*Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil create content request", ErrInvalidRequest)
	}
	return execute[*Content](ctx, c.dispatcher, req)
}

// UpdateContent writes a new version of existing content
func (c *Client) UpdateContent(ctx context.Context, req *UpdateContentRequest) (*Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil update content request", ErrInvalidRequest)
	}
	return execute[*Content](ctx, c.dispatcher, req)
}

// AddAttachment uploads a file to the content named in the request
func (c *Client) AddAttachment(ctx context.Context, req *AddAttachmentRequest) (*Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil add attachment request", ErrInvalidRequest)
	}
	return execute[*Content](ctx, c.dispatcher, req)
}

// DeleteAttachment trashes or purges an attachment. The server usually
// answers with no body, in which case the returned Content is empty.
func (c *Client) DeleteAttachment(ctx context.Context, req *DeleteAttachmentRequest) (*Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil delete attachment request", ErrInvalidRequest)
	}
	return execute[*Content](ctx, c.dispatcher, req)
}

// GetAttachments returns the attachments of the content named in the request
func (c *Client) GetAttachments(ctx context.Context, req *GetAttachmentsRequest) ([]Content, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil get attachments request", ErrInvalidRequest)
	}
	list, err := execute[*ContentList](ctx, c.dispatcher, req)
	if err != nil {
		return nil, err
	}
	return list.Results, nil
}

// execute dispatches req and narrows the decoded value to T
func execute[T any](ctx context.Context, d *Dispatcher, req Request) (T, error) {
	var zero T
	v, err := d.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected response type %T", ErrDecode, v)
	}
	return out, nil
}
