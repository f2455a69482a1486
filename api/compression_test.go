package api

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulldump/box"
	"github.com/fulldump/biff"
)

func TestCompression(t *testing.T) {

	b := box.NewBox()
	b.WithInterceptors(Compression)
	b.Resource("/hello").WithActions(box.Get(func() string {
		return "hello world"
	}))

	biff.Alternative("Compression", func(a *biff.A) {

		a.Alternative("Gzip accepted", func(a *biff.A) {
			r := httptest.NewRequest(http.MethodGet, "/hello", nil)
			r.Header.Set("Accept-Encoding", "gzip")
			w := httptest.NewRecorder()
			b.ServeHTTP(w, r)

			biff.AssertEqual(w.Header().Get("Content-Encoding"), "gzip")
			gz, err := gzip.NewReader(w.Body)
			biff.AssertNil(err)
			body, _ := io.ReadAll(gz)
			biff.AssertEqual(string(body), `"hello world"`+"\n")
		})

		a.Alternative("Plain", func(a *biff.A) {
			r := httptest.NewRequest(http.MethodGet, "/hello", nil)
			w := httptest.NewRecorder()
			b.ServeHTTP(w, r)

			biff.AssertEqual(w.Header().Get("Content-Encoding"), "")
			biff.AssertEqual(w.Body.String(), `"hello world"`+"\n")
		})
	})
}
