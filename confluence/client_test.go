package confluence

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHTTPClient struct {
	requests []*http.Request
	status   int
	body     string
}

func (c *recordingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, req)
	rec := httptest.NewRecorder()
	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(c.status)
	io.WriteString(rec, c.body)
	return rec.Result(), nil
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{name: "valid cloud url", baseURL: "https://example.atlassian.net/wiki"},
		{name: "valid local url", baseURL: "http://localhost:8090"},
		{name: "empty", baseURL: "", wantErr: true},
		{name: "missing scheme", baseURL: "example.atlassian.net/wiki", wantErr: true},
		{name: "ftp scheme", baseURL: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.False(t, client.Authenticated())
		})
	}
}

func TestNewAuthenticatedClient(t *testing.T) {
	client, err := NewAuthenticatedClient("https://example.atlassian.net/wiki/", BearerAuth{Token: "t"})
	require.NoError(t, err)
	assert.True(t, client.Authenticated())
	assert.Equal(t, "https://example.atlassian.net/wiki", client.BaseURL())

	_, err = NewAuthenticatedClient("https://example.atlassian.net/wiki", nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClientOptions(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		d, err := NewDispatcher("https://example.atlassian.net", nil)
		require.NoError(t, err)
		hc, ok := d.httpClient.(*http.Client)
		require.True(t, ok)
		assert.Equal(t, defaultTimeout, hc.Timeout)
	})

	t.Run("custom timeout", func(t *testing.T) {
		d, err := NewDispatcher("https://example.atlassian.net", nil, WithTimeout(5*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, d.httpClient.(*http.Client).Timeout)
	})

	t.Run("non positive timeout is ignored", func(t *testing.T) {
		d, err := NewDispatcher("https://example.atlassian.net", nil, WithTimeout(0))
		require.NoError(t, err)
		assert.Equal(t, defaultTimeout, d.httpClient.(*http.Client).Timeout)
	})

	t.Run("custom http client and user agent", func(t *testing.T) {
		hc := &recordingHTTPClient{status: http.StatusOK, body: `{"results": [{"id": "1"}], "size": 1}`}
		client, err := NewClient("https://example.atlassian.net/wiki",
			WithHTTPClient(hc),
			WithUserAgent("cfclient/test"),
		)
		require.NoError(t, err)

		req, err := NewGetContentRequest(GetContentOptions{SpaceKey: "DOCS", Limit: 10})
		require.NoError(t, err)

		results, err := client.GetContent(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "1", results[0].ID)

		require.Len(t, hc.requests, 1)
		sent := hc.requests[0]
		assert.Equal(t, "cfclient/test", sent.Header.Get("User-Agent"))
		assert.Equal(t, "https://example.atlassian.net/wiki/rest/api/content?limit=10&spaceKey=DOCS", sent.URL.String())
	})
}

func TestClientOperations(t *testing.T) {
	var lastMethod, lastPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastMethod, lastPath = r.Method, r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet:
			io.WriteString(w, `{"results": [{"id": "1", "type": "page"}], "size": 1}`)
		default:
			io.WriteString(w, `{"id": "2", "type": "page", "title": "Created", "version": {"number": 1}}`)
		}
	}))
	defer server.Close()

	client, err := NewAuthenticatedClient(server.URL, BearerAuth{Token: "t"})
	require.NoError(t, err)
	ctx := context.Background()

	getReq, err := NewGetContentRequest(GetContentOptions{})
	require.NoError(t, err)
	pages, err := client.GetContent(ctx, getReq)
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, "/rest/api/content", lastPath)

	createReq, err := NewCreateContentRequest(CreateContentOptions{Type: TypePage, SpaceKey: "DOCS", Title: "Created"})
	require.NoError(t, err)
	created, err := client.CreateContent(ctx, createReq)
	require.NoError(t, err)
	assert.Equal(t, "Created", created.Title)
	assert.Equal(t, 1, created.VersionNumber())
	assert.Equal(t, http.MethodPost, lastMethod)

	updateReq, err := NewUpdateContentRequest(UpdateContentOptions{ID: "2", Type: TypePage, Title: "Created", Version: 2})
	require.NoError(t, err)
	_, err = client.UpdateContent(ctx, updateReq)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, lastMethod)
	assert.Equal(t, "/rest/api/content/2", lastPath)

	attReq, err := NewGetAttachmentsRequest(GetAttachmentsOptions{ID: "2"})
	require.NoError(t, err)
	attachments, err := client.GetAttachments(ctx, attReq)
	require.NoError(t, err)
	assert.Len(t, attachments, 1)
	assert.Equal(t, "/rest/api/content/2/child/attachment", lastPath)

	delReq, err := NewDeleteAttachmentRequest(DeleteAttachmentOptions{ID: "att1"})
	require.NoError(t, err)
	deleted, err := client.DeleteAttachment(ctx, delReq)
	require.NoError(t, err)
	assert.Equal(t, &Content{}, deleted)
	assert.Equal(t, http.MethodDelete, lastMethod)
}

func TestClientNilRequests(t *testing.T) {
	client, err := NewClient("https://example.atlassian.net")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = client.GetContent(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = client.CreateContent(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = client.UpdateContent(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = client.AddAttachment(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = client.DeleteAttachment(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = client.GetAttachments(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRequestError(t *testing.T) {
	tests := []struct {
		status       int
		notFound     bool
		unauthorized bool
		conflict     bool
	}{
		{status: http.StatusNotFound, notFound: true},
		{status: http.StatusUnauthorized, unauthorized: true},
		{status: http.StatusForbidden, unauthorized: true},
		{status: http.StatusConflict, conflict: true},
		{status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := &RequestError{StatusCode: tt.status, Message: "msg"}
			assert.Equal(t, tt.notFound, err.IsNotFound())
			assert.Equal(t, tt.unauthorized, err.IsUnauthorized())
			assert.Equal(t, tt.conflict, err.IsConflict())
			assert.Contains(t, err.Error(), "msg")
		})
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := invalid("get content", "start", "must not be negative")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "invalid get content request: start: must not be negative", err.Error())
}
