package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cloudinaryServer struct {
	uploadBody  string
	destroyBody string

	uploadForm   url.Values
	uploadedFile []byte
	destroyForm  url.Values
}

func (s *cloudinaryServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/auto/upload"):
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.uploadForm = url.Values(r.MultipartForm.Value)
		if f, _, err := r.FormFile("file"); err == nil {
			s.uploadedFile, _ = io.ReadAll(f)
			f.Close()
		}
		_, _ = io.WriteString(w, s.uploadBody)
	case strings.HasSuffix(r.URL.Path, "/image/destroy"):
		body, _ := io.ReadAll(r.Body)
		s.destroyForm, _ = url.ParseQuery(string(body))
		_, _ = io.WriteString(w, s.destroyBody)
	default:
		http.NotFound(w, r)
	}
}

func newTestCloudinary(t *testing.T, srv *cloudinaryServer) *Cloudinary {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	c, err := NewCloudinary(CloudinaryConfig{
		CloudName:    "demo",
		APIKey:       "key",
		APISecret:    "secret",
		Folder:       "ecommerce",
		UploadPrefix: ts.URL,
	})
	require.NoError(t, err)
	return c
}

func TestNewCloudinary_NoCredentials(t *testing.T) {
	_, err := NewCloudinary(CloudinaryConfig{Folder: "ecommerce"})
	require.Error(t, err)
}

func TestCloudinary_Upload(t *testing.T) {
	srv := &cloudinaryServer{uploadBody: `{"public_id":"ecommerce/pen","secure_url":"https://res.test/ecommerce/pen.png"}`}
	c := newTestCloudinary(t, srv)

	res, err := c.Upload(context.Background(), bytes.NewReader([]byte("png bytes")), "pen.png")
	require.NoError(t, err)
	assert.Equal(t, "ecommerce/pen", res.PublicID)
	assert.Equal(t, "https://res.test/ecommerce/pen.png", res.SecureURL)

	require.NotNil(t, srv.uploadForm)
	assert.Equal(t, "ecommerce", srv.uploadForm.Get("folder"))
	assert.Equal(t, "true", srv.uploadForm.Get("use_filename"))
	assert.Equal(t, "pen.png", srv.uploadForm.Get("filename_override"))
	assert.Equal(t, "key", srv.uploadForm.Get("api_key"))
	assert.NotEmpty(t, srv.uploadForm.Get("signature"))
	assert.Equal(t, []byte("png bytes"), srv.uploadedFile)
}

func TestCloudinary_UploadErrorBody(t *testing.T) {
	srv := &cloudinaryServer{uploadBody: `{"error":{"message":"Invalid image file"}}`}
	c := newTestCloudinary(t, srv)

	res, err := c.Upload(context.Background(), bytes.NewReader([]byte("junk")), "pen.png")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestCloudinary_UploadEmptyPublicID(t *testing.T) {
	srv := &cloudinaryServer{uploadBody: `{"secure_url":"https://res.test/pen.png"}`}
	c := newTestCloudinary(t, srv)

	_, err := c.Upload(context.Background(), bytes.NewReader([]byte("png bytes")), "pen.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty public id")
}

func TestCloudinary_Delete(t *testing.T) {
	srv := &cloudinaryServer{destroyBody: `{"result":"ok"}`}
	c := newTestCloudinary(t, srv)

	require.NoError(t, c.Delete(context.Background(), "ecommerce/pen"))
	require.NotNil(t, srv.destroyForm)
	assert.Equal(t, "ecommerce/pen", srv.destroyForm.Get("public_id"))
	assert.NotEmpty(t, srv.destroyForm.Get("signature"))
}

func TestCloudinary_DeleteErrorBody(t *testing.T) {
	srv := &cloudinaryServer{destroyBody: `{"error":{"message":"Invalid Signature"}}`}
	c := newTestCloudinary(t, srv)

	err := c.Delete(context.Background(), "ecommerce/pen")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Signature")
}

func TestCloudinary_DeleteMissingAsset(t *testing.T) {
	srv := &cloudinaryServer{destroyBody: `{"result":"not found"}`}
	c := newTestCloudinary(t, srv)

	require.NoError(t, c.Delete(context.Background(), "ecommerce/missing"))
}
