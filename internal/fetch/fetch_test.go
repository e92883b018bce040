package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestFetcher(baseURL string, opts ...Option) *Fetcher {
	return New(baseURL, "test-agent", 5*time.Second, zap.NewNop().Sugar(), opts...)
}

func TestPageURL(t *testing.T) {
	f := newTestFetcher("https://x.test/listado")
	assert.Equal(t, "https://x.test/listado.html", f.PageURL(1))
	assert.Equal(t, "https://x.test/listado/s---2.html", f.PageURL(2))
	assert.Equal(t, "https://x.test/listado/s---17.html", f.PageURL(17))
}

func TestFetchOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>hola</body></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL + "/listado")
	content, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, content, "hola")
}

func TestFetchNotFoundIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL + "/listado")
	_, err := f.Fetch(context.Background(), 9)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL + "/listado")
	_, err := f.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchDecodesMisdeclaredCharset(t *testing.T) {
	// Latin-1 bytes served without a charset parameter; the Ñ (0xD1) must be
	// decoded from the meta tag in the content, not assumed UTF-8.
	body := []byte("<html><head><meta charset=\"ISO-8859-1\"></head><body>SE\xd1OR DE LOS TEMBLORES</body></html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write(body)
	}))
	defer srv.Close()

	f := newTestFetcher(srv.URL + "/listado")
	content, err := f.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, strings.Contains(content, "SEÑOR"), "expected decoded Ñ, got %q", content)
}

func TestFetchDumpsPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := newTestFetcher(srv.URL+"/listado", WithDumpDir(dir))
	_, err := f.Fetch(context.Background(), 3)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "page_03.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}
