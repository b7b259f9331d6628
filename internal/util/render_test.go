package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"t/layout.html": {Data: []byte(`{{define "base"}}<main>{{template "content" .}}</main>{{end}}`)},
		"t/hello.html":  {Data: []byte(`{{define "content"}}Hello {{.Name}} {{richText .HTML}}{{end}}`)},
		"t/broken.html": {Data: []byte(`{{define "content"}}{{.Missing.Field}}{{end}}`)},
	}
}

func TestRender(t *testing.T) {
	r, err := NewRenderer(testFS(), "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusTeapot, "hello.html", map[string]any{"Name": "<b>you</b>", "HTML": "<i>ok</i>"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<main>Hello &lt;b&gt;you&lt;/b&gt; <i>ok</i></main>", rec.Body.String())
}

func TestRenderErrors(t *testing.T) {
	r, err := NewRenderer(testFS(), "t")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "nope.html", nil))

	rec = httptest.NewRecorder()
	assert.Error(t, r.Render(rec, http.StatusOK, "broken.html", struct{}{}))
	assert.Empty(t, rec.Body.String(), "nothing written on template failure")
}
