package confluence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dispatcher turns any Request into exactly one HTTP call and maps the
// response to a decoded value or an error. It keeps no state between calls
// and is safe for concurrent use.
type Dispatcher struct {
	baseURL    *url.URL
	httpClient HTTPClient
	auth       AuthMethod
	userAgent  string
	logger     zerolog.Logger
}

// NewDispatcher creates a dispatcher for the server at baseURL. A nil auth
// produces anonymous requests that can only read public content.
func NewDispatcher(baseURL string, auth AuthMethod, opts ...Option) (*Dispatcher, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}

	return &Dispatcher{
		baseURL:    u,
		httpClient: o.httpClient,
		auth:       auth,
		userAgent:  o.userAgent,
		logger:     o.logger,
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q in base URL", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q has no host", ErrInvalidConfig, raw)
	}
	return u, nil
}

// BaseURL returns the configured server location
func (d *Dispatcher) BaseURL() string {
	return d.baseURL.String()
}

// Authenticated reports whether requests carry an Authorization header
func (d *Dispatcher) Authenticated() bool {
	return d.auth != nil
}

// Execute dispatches req and decodes the response according to its
// ResponseShape: *Content, *ContentList or nil.
//
// Responses with status >= 300 yield a *RequestError. Failures below HTTP
// match ErrTransport and keep their cause in the chain.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (any, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}

	path := req.RelativePath()
	if hasPlaceholder(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedPath, path)
	}

	target := d.baseURL.JoinPath(path)
	target.RawQuery = req.QueryParams().Encode()

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}
	if c, ok := body.(io.Closer); ok {
		defer c.Close()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method(), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	d.setHeaders(httpReq, req, contentType)

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		d.logger.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", req.Method()).
			Str("path", path).
			Msg("Confluence API request failed")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	d.logger.Debug().
		Str("request_id", requestID).
		Str("method", req.Method()).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Confluence API request")

	return decodeResponse(resp, req.ResponseShape())
}

func (d *Dispatcher) setHeaders(httpReq *http.Request, req Request, contentType string) {
	if httpReq.Body != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", req.Accept())
	if d.auth != nil {
		httpReq.Header.Set("Authorization", d.auth.AuthHeaderValue())
	}
	if _, ok := req.(FileRequest); ok {
		httpReq.Header.Set("X-Atlassian-Token", "nocheck")
	}
	if d.userAgent != "" {
		httpReq.Header.Set("User-Agent", d.userAgent)
	}
}

// encodeBody is the only step that differs between request variants
func encodeBody(req Request) (io.Reader, string, error) {
	switch r := req.(type) {
	case FileRequest:
		return multipartBody(r)
	case JSONRequest:
		entity := r.BodyEntity()
		if entity == nil {
			return nil, r.ContentType(), nil
		}
		data, err := json.Marshal(entity)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(data), r.ContentType(), nil
	default:
		return nil, "", fmt.Errorf("%w: unsupported request type %T", ErrInvalidRequest, req)
	}
}

// multipartBody streams the file as a single form part. The file is opened
// up front so a missing file fails before anything is sent.
func multipartBody(r FileRequest) (io.Reader, string, error) {
	f, err := os.Open(r.File())
	if err != nil {
		return nil, "", fmt.Errorf("failed to open attachment: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer f.Close()
		part, err := mw.CreateFormFile(r.FieldName(), filepath.Base(r.File()))
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	return pr, mw.FormDataContentType(), nil
}

func decodeResponse(resp *http.Response, shape ResponseShape) (any, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrTransport, err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newRequestError(resp, data)
	}

	v := shape.newValue()
	if v == nil || len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

// newRequestError prefers the message of a JSON error body and falls back to
// the status reason phrase.
func newRequestError(resp *http.Response, data []byte) *RequestError {
	reqErr := &RequestError{
		StatusCode: resp.StatusCode,
		Message:    reasonPhrase(resp),
	}
	if isJSON(resp.Header.Get("Content-Type")) {
		var errResp ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Message != "" {
			reqErr.Message = errResp.Message
		}
	}
	return reqErr
}

func reasonPhrase(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == mediaTypeJSON
}
