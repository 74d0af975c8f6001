package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatic(t *testing.T) {
	html := `<html><body>
		<h1>Instructions</h1>
		<p>Count the items below.</p>
		<a href="/next">next</a>
		<a href='http://x/submit'>submit</a>
		<form action="/api/grade" method="post"></form>
		<script>var secret = "abc";</script>
	</body></html>`

	page := ParseStatic(html)

	assert.Equal(t, html, page.HTML)
	assert.Equal(t, []string{"/next", "http://x/submit", "/api/grade"}, page.Hrefs)
	require.Len(t, page.Scripts, 1)
	assert.Contains(t, page.Scripts[0], `var secret = "abc";`)
	assert.Equal(t, "Instructions Count the items below. next submit", page.VisibleText)
}

func TestStripTags_RemovesScriptBodies(t *testing.T) {
	html := `<p>visible</p><script>document.write("hidden");</script><p>also visible</p>`
	assert.Equal(t, "visible also visible", StripTags(html))
}

func TestStripTags_CollapsesWhitespace(t *testing.T) {
	html := "<div>\n  a\t\tb\n\n c </div>"
	assert.Equal(t, "a b c", StripTags(html))
}

func TestHTTPRenderer_Render(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>hello</p><a href="/submit">go</a></body></html>`))
	}))
	t.Cleanup(srv.Close)

	r := NewHTTPRenderer(NewClient(5 * time.Second))
	page, err := r.Render(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "hello go", page.VisibleText)
	assert.Equal(t, []string{"/submit"}, page.Hrefs)
}

func TestHTTPRenderer_RenderPropagatesFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	r := NewHTTPRenderer(NewClient(5 * time.Second))
	page, err := r.Render(context.Background(), srv.URL)

	assert.Nil(t, page)
	assert.ErrorContains(t, err, "unexpected status 404")
}
