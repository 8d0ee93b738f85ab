package confluence

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAttachments = `{
	"results": [
		{"id": "att1", "type": "attachment", "title": "a.png", "extensions": {"mediaType": "image/png", "fileSize": 10}},
		{"id": "att2", "type": "attachment", "title": "b.pdf", "extensions": {"mediaType": "application/pdf", "fileSize": 20}}
	],
	"size": 2
}`

// placeholderRequest is a request whose path was never resolved
type placeholderRequest struct {
	jsonBase
}

func (placeholderRequest) RelativePath() string         { return "rest/api/content/{id}" }
func (placeholderRequest) Method() string               { return http.MethodGet }
func (placeholderRequest) QueryParams() url.Values      { return url.Values{} }
func (placeholderRequest) ResponseShape() ResponseShape { return ShapeContent }

func newTestDispatcher(t *testing.T, handler http.HandlerFunc, auth AuthMethod) *Dispatcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	d, err := NewDispatcher(server.URL+"/wiki", auth, WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	return d
}

func TestExecuteGetAttachments(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wiki/rest/api/content/123/child/attachment", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Empty(t, r.Header.Values("Authorization"))
		assert.Empty(t, r.Header.Get("X-Atlassian-Token"))
		assert.Empty(t, r.Header.Values("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Empty(t, body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, testAttachments)
	}, nil)

	req, err := NewGetAttachmentsRequest(GetAttachmentsOptions{ID: "123"})
	require.NoError(t, err)

	v, err := d.Execute(context.Background(), req)
	require.NoError(t, err)

	list, ok := v.(*ContentList)
	require.True(t, ok)
	assert.Equal(t, 2, list.Size)
	require.Len(t, list.Results, 2)
	assert.Equal(t, "att1", list.Results[0].ID)
	assert.Equal(t, "image/png", list.Results[0].Extensions.MediaType)
	assert.Equal(t, int64(20), list.Results[1].Extensions.FileSize)
}

func TestExecuteSendsQueryParams(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "current", q.Get("status"))
		assert.Equal(t, "body.storage.value,version", q.Get("expand"))
		assert.Len(t, q["expand"], 1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "1", "type": "page", "title": "Home"}`)
	}, nil)

	req, err := NewCreateContentRequest(CreateContentOptions{
		Type:           TypePage,
		SpaceKey:       "DOCS",
		Title:          "Home",
		ResponseStatus: StatusCurrent,
		Expand: NewExpandBuilder().
			Version().
			Body(BodyStorage, BodyFormat{}.Value()).
			Build(),
	})
	require.NoError(t, err)

	v, err := d.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Home", v.(*Content).Title)
}

func TestExecuteSendsJSONBody(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wiki/rest/api/content/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got Content
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, 5, got.VersionNumber())
		assert.Equal(t, "7", got.ParentID())
		if assert.NotNil(t, got.Body) {
			assert.Equal(t, BodyStorage, got.Body.Type)
			assert.Equal(t, "<p>x</p>", got.Body.Value)
		}

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "42",
			"type": "page",
			"title": "New title",
			"status": "current",
			"space": {"key": "DOCS", "name": "Documentation"},
			"version": {"number": 5},
			"ancestors": [{"id": "1", "title": "Root"}, {"id": "7", "title": "Parent"}]
		}`)
	}, nil)

	req, err := NewUpdateContentRequest(UpdateContentOptions{
		ID:         "42",
		Type:       TypePage,
		Title:      "New title",
		Version:    5,
		Body:       "<p>x</p>",
		AncestorID: "7",
	})
	require.NoError(t, err)

	v, err := d.Execute(context.Background(), req)
	require.NoError(t, err)

	c := v.(*Content)
	assert.Equal(t, StatusCurrent, c.Status)
	assert.Equal(t, "DOCS", c.SpaceKey())
	assert.Equal(t, []Ancestor{{ID: "1"}, {ID: "7"}}, c.Ancestors)
}

func TestExecuteAuthorizationHeader(t *testing.T) {
	var calls atomic.Int32
	auth := AuthFunc(func() string {
		n := calls.Add(1)
		return "Bearer token-" + string(rune('0'+n))
	})

	var seen []string
	var mu sync.Mutex
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values("Authorization")
		assert.Len(t, values, 1)
		mu.Lock()
		seen = append(seen, values...)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results": [], "size": 0}`)
	}, auth)

	req, err := NewGetContentRequest(GetContentOptions{SpaceKey: "DOCS"})
	require.NoError(t, err)

	for range 2 {
		_, err := d.Execute(context.Background(), req)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, seen)
}

func TestExecuteBasicAuth(t *testing.T) {
	auth := BasicAuth{Email: "me@example.com", APIToken: "secret"}
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "me@example.com", user)
		assert.Equal(t, "secret", pass)
		w.WriteHeader(http.StatusNoContent)
	}, auth)

	req, err := NewDeleteAttachmentRequest(DeleteAttachmentOptions{ID: "att1"})
	require.NoError(t, err)

	v, err := d.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &Content{}, v)
}

func TestExecuteErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{
			name:        "json error body",
			status:      http.StatusNotFound,
			contentType: "application/json",
			body:        `{"statusCode": 404, "message": "No content found with id 9"}`,
			wantMessage: "No content found with id 9",
		},
		{
			name:        "json error body with charset",
			status:      http.StatusBadRequest,
			contentType: "application/json; charset=utf-8",
			body:        `{"message": "Title already exists"}`,
			wantMessage: "Title already exists",
		},
		{
			name:        "html error body",
			status:      http.StatusInternalServerError,
			contentType: "text/html",
			body:        `<html>oops</html>`,
			wantMessage: "Internal Server Error",
		},
		{
			name:        "redirect is a failure",
			status:      http.StatusNotModified,
			contentType: "text/plain",
			wantMessage: "Not Modified",
		},
		{
			name:        "malformed json falls back to reason phrase",
			status:      http.StatusConflict,
			contentType: "application/json",
			body:        `not json`,
			wantMessage: "Conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}, nil)

			req, err := NewGetAttachmentsRequest(GetAttachmentsOptions{ID: "9"})
			require.NoError(t, err)

			v, err := d.Execute(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, v)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.status, reqErr.StatusCode)
			assert.Equal(t, tt.wantMessage, reqErr.Message)
			assert.False(t, errors.Is(err, ErrTransport))
		})
	}
}

func TestExecuteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	d, err := NewDispatcher(baseURL, nil)
	require.NoError(t, err)

	req, err := NewGetContentRequest(GetContentOptions{})
	require.NoError(t, err)

	_, err = d.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)

	var reqErr *RequestError
	assert.False(t, errors.As(err, &reqErr))
	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr))
}

func TestExecuteCanceledContext(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := NewGetContentRequest(GetContentOptions{})
	require.NoError(t, err)

	_, err = d.Execute(ctx, req)
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteDecodeError(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"results": "nope"`)
	}, nil)

	req, err := NewGetContentRequest(GetContentOptions{})
	require.NoError(t, err)

	_, err = d.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestExecuteRejectsUnresolvedPath(t *testing.T) {
	var hits atomic.Int32
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, nil)

	_, err := d.Execute(context.Background(), placeholderRequest{})
	assert.ErrorIs(t, err, ErrUnresolvedPath)
	assert.Equal(t, int32(0), hits.Load())
}

func TestExecuteNilRequest(t *testing.T) {
	d, err := NewDispatcher("https://example.atlassian.net/wiki", nil)
	require.NoError(t, err)

	_, err = d.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestExecuteFileUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("attachment body"), 0o600))

	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wiki/rest/api/content/123/child/attachment", r.URL.Path)
		assert.Equal(t, "nocheck", r.Header.Get("X-Atlassian-Token"))
		assert.Equal(t, "Basic dTpw", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))

		file, header, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "attachment body", string(data))
			assert.Equal(t, "notes.txt", header.Filename)
		}
		assert.Len(t, r.MultipartForm.File, 1)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "att9", "type": "attachment", "title": "notes.txt"}`)
	}, BasicAuth{Email: "u", APIToken: "p"})

	req, err := NewAddAttachmentRequest(AddAttachmentOptions{ID: "123", File: path})
	require.NoError(t, err)

	v, err := d.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "att9", v.(*Content).ID)
}

func TestExecuteFileUploadMissingFile(t *testing.T) {
	var hits atomic.Int32
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}, nil)

	req, err := NewAddAttachmentRequest(AddAttachmentOptions{
		ID:   "123",
		File: filepath.Join(t.TempDir(), "missing.txt"),
	})
	require.NoError(t, err)

	_, err = d.Execute(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, int32(0), hits.Load())
}

func TestExecuteConcurrent(t *testing.T) {
	var hits atomic.Int32
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "`+strings.TrimPrefix(r.URL.Path, "/wiki/rest/api/content/")+`"}`)
	}, BearerAuth{Token: "t"})

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			id := string(rune('a' + i))
			req, err := NewDeleteAttachmentRequest(DeleteAttachmentOptions{ID: id})
			if !assert.NoError(t, err) {
				return
			}
			v, err := d.Execute(context.Background(), req)
			if assert.NoError(t, err) {
				assert.Equal(t, id, v.(*Content).ID)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(n), hits.Load())
}

func TestParseBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "empty", raw: "", wantErr: true},
		{name: "no scheme", raw: "bogus", wantErr: true},
		{name: "bad scheme", raw: "htts://example.com", wantErr: true},
		{name: "path only", raw: "/path/segment/only", wantErr: true},
		{name: "no host", raw: "https://", wantErr: true},
		{name: "trailing slash", raw: "https://example.atlassian.net/wiki/", want: "https://example.atlassian.net/wiki"},
		{name: "plain host", raw: "http://localhost:8090", want: "http://localhost:8090"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := parseBaseURL(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/json;charset=UTF-8"))
	assert.False(t, isJSON("text/html"))
	assert.False(t, isJSON(""))
}
